package ledger

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/sealstream/internal/common"
	"github.com/dmitrijs2005/sealstream/internal/logging"
	"github.com/filecoin-project/go-jsonrpc"
)

// Client submits user-signed transactions and reads ledger state. It is an
// explicit dependency of the orchestrators so tests can substitute fakes.
type Client struct {
	api    *NodeAPI
	closer jsonrpc.ClientCloser
	signer Signer
	log    logging.Logger
}

// Dial connects to the fullnode at addr and binds the client to signer.
func Dial(ctx context.Context, addr string, signer Signer, log logging.Logger) (*Client, error) {
	api, closer, err := DialNode(ctx, addr, http.Header{})
	if err != nil {
		return nil, fmt.Errorf("dialing fullnode: %w", err)
	}
	return &Client{api: api, closer: closer, signer: signer, log: log}, nil
}

// NewClient wraps an already constructed NodeAPI; used by tests.
func NewClient(api *NodeAPI, signer Signer, log logging.Logger) *Client {
	return &Client{api: api, signer: signer, log: log}
}

func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

// Sender returns the address transactions are signed for.
func (c *Client) Sender() string {
	return c.signer.Address()
}

// Submit validates and encodes the intent, obtains the user's signature, and
// submits the transaction. A signer refusal is surfaced as ErrUserRejected:
// recoverable, and distinct from network failure, so callers can offer a
// same-phase retry without redoing earlier work.
func (c *Client) Submit(ctx context.Context, intent *TxIntent) (string, error) {
	if err := intent.Complete(); err != nil {
		return "", err
	}
	txBytes, err := intent.Encode()
	if err != nil {
		return "", err
	}

	sig, err := c.signer.Sign(ctx, txBytes)
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, common.ErrUserRejected)
	}

	sub, err := c.api.Internal.ExecuteTransactionBlock(ctx, txBytes, sig)
	if err != nil {
		return "", fmt.Errorf("executing transaction: %w", err)
	}

	c.log.Info(ctx, "transaction submitted", "digest", sub.Digest, "sender", intent.Sender)
	return sub.Digest, nil
}

// AwaitFinality blocks until the transaction reaches finality and returns its
// effects. The wait bound is the fullnode's own; this client treats it as a
// black box. A point read runs first: on a resumed wait, typically after a
// dropped connection mid-publish, the transaction is often already final and
// the read answers without blocking.
func (c *Client) AwaitFinality(ctx context.Context, digest string) (*TxEffects, error) {
	if effects, err := c.api.Internal.GetTransactionBlock(ctx, digest); err == nil && effects != nil {
		return finalEffects(digest, effects)
	}

	effects, err := c.api.Internal.WaitForTransaction(ctx, digest)
	if err != nil {
		return nil, fmt.Errorf("waiting for transaction %s: %w", digest, err)
	}
	return finalEffects(digest, effects)
}

func finalEffects(digest string, effects *TxEffects) (*TxEffects, error) {
	if !effects.Success() {
		return nil, fmt.Errorf("transaction %s failed on ledger: %s", digest, effects.Error)
	}
	return effects, nil
}

// ReadObject fetches a ledger object by id.
func (c *Client) ReadObject(ctx context.Context, id string) (*Object, error) {
	obj, err := c.api.Internal.GetObject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reading object %s: %w", id, err)
	}
	return obj, nil
}

// Balance returns the owner's total balance of the given coin type.
func (c *Client) Balance(ctx context.Context, owner, coinType string) (uint64, error) {
	b, err := c.api.Internal.GetBalance(ctx, owner, coinType)
	if err != nil {
		return 0, fmt.Errorf("reading %s balance of %s: %w", coinType, owner, err)
	}
	return b.TotalBalance, nil
}

// EnsureStorageBalance checks that the sender holds at least min of the
// storage coin and, if not, runs the exchange top-up once before rechecking.
// It fails with ErrInsufficientBalance when the top-up cannot close the gap.
func (c *Client) EnsureStorageBalance(ctx context.Context, min, exchangeAmount uint64, exchangePkg, exchangeObjectID string) error {
	owner := c.signer.Address()

	balance, err := c.Balance(ctx, owner, common.StorageCoinType)
	if err != nil {
		return err
	}
	if balance >= min {
		return nil
	}

	c.log.Info(ctx, "storage balance below floor, exchanging",
		"balance", balance, "min", min, "amount", exchangeAmount)

	intent := ExchangeForStorageTokenIntent(exchangePkg, exchangeObjectID, owner, exchangeAmount)
	digest, err := c.Submit(ctx, intent)
	if err != nil {
		return fmt.Errorf("exchange top-up: %w", err)
	}
	if _, err := c.AwaitFinality(ctx, digest); err != nil {
		return fmt.Errorf("exchange top-up: %w", err)
	}

	balance, err = c.Balance(ctx, owner, common.StorageCoinType)
	if err != nil {
		return err
	}
	if balance < min {
		return fmt.Errorf("storage balance %d below %d after top-up: %w",
			balance, min, common.ErrInsufficientBalance)
	}
	return nil
}
