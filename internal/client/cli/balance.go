package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/sealstream/internal/common"
	"github.com/dmitrijs2005/sealstream/internal/ledger"
)

// Balance shows the gas and storage coin balances of the signing address.
func (a *App) Balance(ctx context.Context) error {
	owner := a.ledger.Sender()

	primary, err := a.ledger.Balance(ctx, owner, common.PrimaryCoinType)
	if err != nil {
		return err
	}
	storage, err := a.ledger.Balance(ctx, owner, common.StorageCoinType)
	if err != nil {
		return err
	}

	fmt.Println("gas:    ", primary)
	fmt.Println("storage:", storage)
	return nil
}

// Topup exchanges the configured amount of gas coin for storage coin,
// regardless of the current balance.
func (a *App) Topup(ctx context.Context) error {
	intent := ledger.ExchangeForStorageTokenIntent(
		a.config.ExchangePackageID, a.config.ExchangeObjectID,
		a.ledger.Sender(), a.config.ExchangeAmount)
	return a.finalize(ctx, intent, fmt.Sprintf("exchanged %d for storage coin", a.config.ExchangeAmount))
}

// Epoch shows the current epoch of the storage network system object.
// Registration lifetimes are expressed in epochs from the current one.
func (a *App) Epoch(ctx context.Context) error {
	obj, err := a.ledger.ReadObject(ctx, a.config.SystemObjectID)
	if err != nil {
		return err
	}

	var fields struct {
		Epoch uint64 `json:"epoch"`
	}
	if err := json.Unmarshal(obj.Fields, &fields); err != nil {
		return fmt.Errorf("decoding system object fields: %w", err)
	}

	fmt.Println("current epoch:", fields.Epoch)
	return nil
}
