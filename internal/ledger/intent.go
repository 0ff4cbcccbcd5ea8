package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/sealstream/internal/client/models"
	"github.com/dmitrijs2005/sealstream/internal/common"
)

// defaultGasBudget covers every entry point this pipeline submits.
const defaultGasBudget = 10_000_000

// MoveCall is one entry-point invocation inside a transaction intent.
type MoveCall struct {
	Package  string `json:"package"`
	Module   string `json:"module"`
	Function string `json:"function"`
	Args     []any  `json:"args"`
}

// TxIntent is a fully constructed, not-yet-signed transaction. Intents must
// be complete (sender, gas policy, arguments) before they reach the signer,
// because signing is delegated to an external, user-controlled wallet that
// may reject or time out.
type TxIntent struct {
	Sender     string     `json:"sender"`
	GasBudget  uint64     `json:"gas_budget"`
	Calls      []MoveCall `json:"calls"`
	TransferTo string     `json:"transfer_to,omitempty"`
}

// Complete validates that the intent is ready for signing.
func (i *TxIntent) Complete() error {
	if i.Sender == "" || i.GasBudget == 0 || len(i.Calls) == 0 {
		return fmt.Errorf("incomplete transaction intent: %w", common.ErrInvalidInput)
	}
	return nil
}

// Encode serializes the intent to the canonical byte form that is signed and
// submitted. The same encoding, unsubmitted, doubles as the access proof fed
// to key servers.
func (i *TxIntent) Encode() ([]byte, error) {
	return json.Marshal(i)
}

// RegisterStorageObjectIntent reserves a storage object for the encoded blob.
func RegisterStorageObjectIntent(pkg, sender, blobID string, size int64, epochs uint64, deletable bool, owner string) *TxIntent {
	return &TxIntent{
		Sender:    sender,
		GasBudget: defaultGasBudget,
		Calls: []MoveCall{{
			Package:  pkg,
			Module:   "storage",
			Function: "register_storage_object",
			Args:     []any{blobID, size, epochs, deletable, owner},
		}},
	}
}

// CertifyStorageObjectIntent marks a previously uploaded blob durable.
func CertifyStorageObjectIntent(pkg, sender, blobID, storageObjectID string) *TxIntent {
	return &TxIntent{
		Sender:    sender,
		GasBudget: defaultGasBudget,
		Calls: []MoveCall{{
			Package:  pkg,
			Module:   "storage",
			Function: "certify_storage_object",
			Args:     []any{storageObjectID, blobID},
		}},
	}
}

// CreateContentRecordIntent attaches marketplace metadata to a durable blob.
// The returned capability object is transferred back to the sender.
func CreateContentRecordIntent(pkg, sender, blobID string, meta models.ContentMetadata) *TxIntent {
	return &TxIntent{
		Sender:     sender,
		GasBudget:  defaultGasBudget,
		TransferTo: sender,
		Calls: []MoveCall{{
			Package:  pkg,
			Module:   "content_access",
			Function: "create_content_record",
			Args: []any{
				meta.Title, meta.Description, meta.Category, meta.Tags,
				blobID, meta.Price, meta.TTLMs, meta.Scarcity,
			},
		}},
	}
}

// UpdateContentRecordIntent rewrites the mutable display metadata of an
// existing record. Price, TTL and scarcity are immutable after creation.
func UpdateContentRecordIntent(pkg, sender, recordID, capID string, meta models.ContentMetadata) *TxIntent {
	return &TxIntent{
		Sender:    sender,
		GasBudget: defaultGasBudget,
		Calls: []MoveCall{{
			Package:  pkg,
			Module:   "content_access",
			Function: "update_content_record",
			Args:     []any{capID, recordID, meta.Title, meta.Description, meta.Category, meta.Tags},
		}},
	}
}

// DeleteContentRecordIntent removes a record using its capability.
func DeleteContentRecordIntent(pkg, sender, recordID, capID string) *TxIntent {
	return &TxIntent{
		Sender:    sender,
		GasBudget: defaultGasBudget,
		Calls: []MoveCall{{
			Package:  pkg,
			Module:   "content_access",
			Function: "delete_content_record",
			Args:     []any{capID, recordID},
		}},
	}
}

// AccessProofIntent is the minimal unsubmitted transaction that proves the
// sender's relationship to a content id. Key servers dry-run it against
// ledger state; it is never executed.
func AccessProofIntent(pkg, sender, contentID string) *TxIntent {
	return &TxIntent{
		Sender:    sender,
		GasBudget: defaultGasBudget,
		Calls: []MoveCall{{
			Package:  pkg,
			Module:   "content_access",
			Function: "seal_approve",
			Args:     []any{contentID},
		}},
	}
}

// ExchangeForStorageTokenIntent swaps amount of the primary coin for the
// storage coin through the on-ledger exchange object, transferring the
// proceeds back to the sender.
func ExchangeForStorageTokenIntent(exchangePkg, exchangeObjectID, sender string, amount uint64) *TxIntent {
	return &TxIntent{
		Sender:     sender,
		GasBudget:  defaultGasBudget,
		TransferTo: sender,
		Calls: []MoveCall{{
			Package:  exchangePkg,
			Module:   "token_exchange",
			Function: "exchange_all_for_storage",
			Args:     []any{exchangeObjectID, amount},
		}},
	}
}
