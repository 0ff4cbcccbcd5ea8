package ledger

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/sealstream/internal/common"
)

// Object is a ledger object as returned by the read boundary.
type Object struct {
	ID     string          `json:"id"`
	Type   string          `json:"type"`
	Owner  string          `json:"owner"`
	Fields json.RawMessage `json:"fields"`
}

// Balance is the total balance of one coin type held by an owner.
type Balance struct {
	CoinType     string `json:"coin_type"`
	TotalBalance uint64 `json:"total_balance"`
}

// TxSubmission is the fullnode's acknowledgment of a submitted transaction.
type TxSubmission struct {
	Digest string `json:"digest"`
}

// ObjectChange records one object mutation caused by a finalized transaction.
type ObjectChange struct {
	Kind     string `json:"kind"` // "created", "mutated", "deleted"
	Type     string `json:"type"`
	ObjectID string `json:"object_id"`
}

// TxEffects is the finalized outcome of a transaction.
type TxEffects struct {
	Digest        string         `json:"digest"`
	Status        string         `json:"status"` // "success" or "failure"
	Error         string         `json:"error,omitempty"`
	ObjectChanges []ObjectChange `json:"object_changes"`
}

// Success reports whether the transaction executed without aborting.
func (e *TxEffects) Success() bool {
	return e.Status == "success"
}

// CreatedObject scans the effects for a created object whose type ends with
// the given suffix and returns its id. A missing entry is protocol drift
// between this client and the ledger program, not a retryable condition.
func (e *TxEffects) CreatedObject(typeSuffix string) (string, error) {
	for _, ch := range e.ObjectChanges {
		if ch.Kind == "created" && strings.HasSuffix(ch.Type, typeSuffix) {
			return ch.ObjectID, nil
		}
	}
	return "", fmt.Errorf("no created object of type %q in tx %s: %w",
		typeSuffix, e.Digest, common.ErrObjectNotFound)
}
