// Package ledger is the client for the public ledger: it builds transaction
// intents, hands them to an external signer, submits them to a fullnode over
// JSON-RPC, waits for finality, and reads back objects and effects.
package ledger

import (
	"context"
	"net/http"

	"github.com/filecoin-project/go-jsonrpc"
)

// NodeAPI mirrors the fullnode's JSON-RPC surface as a struct of function
// stubs, populated by jsonrpc.NewMergeClient. Only the read and submit
// methods this pipeline consumes are declared.
type NodeAPI struct {
	Internal struct {
		GetObject               func(ctx context.Context, id string) (*Object, error)
		GetTransactionBlock     func(ctx context.Context, digest string) (*TxEffects, error)
		GetBalance              func(ctx context.Context, owner, coinType string) (*Balance, error)
		ExecuteTransactionBlock func(ctx context.Context, txBytes, signature []byte) (*TxSubmission, error)
		WaitForTransaction      func(ctx context.Context, digest string) (*TxEffects, error)
	}
}

// DialNode creates a JSON-RPC client bound to the fullnode at addr.
func DialNode(ctx context.Context, addr string, header http.Header) (*NodeAPI, jsonrpc.ClientCloser, error) {
	var api NodeAPI
	closer, err := jsonrpc.NewMergeClient(ctx, addr, "chain",
		[]interface{}{
			&api.Internal,
		},
		header,
	)
	return &api, closer, err
}
