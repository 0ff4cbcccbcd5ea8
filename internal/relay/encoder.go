// Package relay implements the storage network protocol: client-side blob
// encoding, the two-phase register/certify intents, the HTTP upload to the
// relay, and blob retrieval through an aggregator.
package relay

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/sealstream/internal/common"
)

// EncodingType names the erasure coding scheme the network expects. The
// coding itself happens inside the storage nodes' pipeline; clients only
// declare the scheme and address the blob by content.
const EncodingType = "RS2"

const sliverSize = 1 << 20 // 1 MiB

// EncodedPayload is a blob prepared for the register/upload/certify protocol.
// Blob is an exclusive copy: the encoder never aliases caller memory, so the
// payload stays stable across asynchronous phases and retries.
type EncodedPayload struct {
	BlobID  string
	Blob    []byte
	Size    int64
	Slivers int
}

// Encode prepares the payload client-side. It is purely local and CPU-bound:
// the blob id is the content address (unpadded base64url of SHA-256), and no
// bytes leave the process.
func Encode(payload []byte) (*EncodedPayload, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("empty payload: %w", common.ErrInvalidInput)
	}

	blob := make([]byte, len(payload))
	copy(blob, payload)

	sum := sha256.Sum256(blob)
	blobID := base64.RawURLEncoding.EncodeToString(sum[:])

	slivers := (len(blob) + sliverSize - 1) / sliverSize

	return &EncodedPayload{
		BlobID:  blobID,
		Blob:    blob,
		Size:    int64(len(blob)),
		Slivers: slivers,
	}, nil
}
