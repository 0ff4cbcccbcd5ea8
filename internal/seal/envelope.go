package seal

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/sealstream/internal/common"
)

const envelopeVersion = 1

// envelope is the serialized form of an encrypted payload. The header fields
// are what Decrypt needs to rebuild the content key: the content id embedded
// at encryption time, the policy namespace, and which key servers contributed
// shards to the content key.
type envelope struct {
	Version    int      `json:"v"`
	Namespace  string   `json:"namespace"`
	ContentID  string   `json:"content_id"`
	Threshold  int      `json:"threshold"`
	KeyServers []string `json:"key_servers"`
	Nonce      []byte   `json:"nonce"`
	Ciphertext []byte   `json:"ciphertext"`
}

func (e *envelope) encode() ([]byte, error) {
	return json.Marshal(e)
}

func parseEnvelope(data []byte) (*envelope, error) {
	var e envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("malformed envelope: %w", common.ErrDecryptionFailed)
	}
	if e.Version != envelopeVersion || e.ContentID == "" || e.Threshold <= 0 ||
		len(e.KeyServers) < e.Threshold || len(e.Nonce) == 0 || len(e.Ciphertext) == 0 {
		return nil, fmt.Errorf("invalid envelope header: %w", common.ErrDecryptionFailed)
	}
	return &e, nil
}

// ParseContentID extracts the content id from an encrypted payload without
// decrypting it.
func ParseContentID(data []byte) (string, error) {
	e, err := parseEnvelope(data)
	if err != nil {
		return "", err
	}
	return e.ContentID, nil
}
