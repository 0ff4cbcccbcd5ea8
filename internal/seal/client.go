// Package seal wraps the remote threshold-encryption quorum: encrypting
// content under a quorum-derived key, and releasing that key again against a
// session credential plus a ledger-readable proof of access.
package seal

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/sealstream/internal/client/models"
	"github.com/dmitrijs2005/sealstream/internal/common"
	"github.com/dmitrijs2005/sealstream/internal/logging"
	"github.com/sethvargo/go-retry"
	"golang.org/x/crypto/hkdf"
)

const (
	contentIDBytes = 5
	keySize        = 32
	nonceSize      = 12
)

// KeyServer identifies one member of the key-management quorum.
type KeyServer struct {
	// ObjectID is the server's ledger object id; it names the server in
	// envelopes so decryption can request shards from the same members.
	ObjectID string
	URL      string
}

// ProofBuilder produces the serialized, unsubmitted ledger transaction that
// proves the caller's relationship to the given content id. The transaction
// is never executed on-chain; key servers dry-run it against current ledger
// state, so policy changes take effect without re-encrypting anything.
type ProofBuilder func(ctx context.Context, contentID string) ([]byte, error)

// Client talks to the key-server quorum. Encryption needs no proof of rights
// (a publisher may always encrypt their own content); decryption requires a
// fresh session credential and a verified proof.
type Client struct {
	servers   []KeyServer
	threshold int
	http      *http.Client
	log       logging.Logger
}

// NewClient returns a quorum client with a fixed threshold. The threshold is
// a deployment parameter: the minimum number of shard holders required to
// rebuild a content key.
func NewClient(servers []KeyServer, threshold int, log logging.Logger) (*Client, error) {
	if threshold <= 0 || threshold > len(servers) {
		return nil, fmt.Errorf("threshold %d out of range for %d servers: %w",
			threshold, len(servers), common.ErrInvalidInput)
	}
	return &Client{
		servers:   servers,
		threshold: threshold,
		http:      &http.Client{Timeout: 30 * time.Second},
		log:       log,
	}, nil
}

type shareRequest struct {
	Namespace string `json:"namespace"`
	ContentID string `json:"content_id"`
	Threshold int    `json:"threshold"`
}

type fetchKeyRequest struct {
	Namespace string `json:"namespace"`
	ContentID string `json:"content_id"`
	Address   string `json:"address"`
	Proof     []byte `json:"proof"`
}

type shardResponse struct {
	Share []byte `json:"share"`
}

// Encrypt encrypts plaintext under a quorum-derived key and returns the
// envelope bytes plus the fresh content id correlating them to the
// key-release policy in the given namespace. The content id is random per
// call and never reused.
func (c *Client) Encrypt(ctx context.Context, plaintext []byte, namespace string) (*models.EncryptedPayload, error) {
	if len(plaintext) == 0 {
		return nil, fmt.Errorf("empty plaintext: %w", common.ErrInvalidInput)
	}
	if namespace == "" {
		return nil, fmt.Errorf("empty namespace: %w", common.ErrInvalidInput)
	}

	contentID, err := common.MakeRandHexString(contentIDBytes)
	if err != nil {
		return nil, err
	}

	req := shareRequest{Namespace: namespace, ContentID: contentID, Threshold: c.threshold}

	var chosen []KeyServer
	var shares [][]byte
	for _, srv := range c.servers {
		share, err := c.requestShard(ctx, srv, "/v1/share", req, "")
		if err != nil {
			if rejected(err) {
				return nil, fmt.Errorf("key server %s: %v: %w", srv.ObjectID, err, common.ErrEncryptionRejected)
			}
			c.log.Warn(ctx, "key server unavailable during encrypt", "server", srv.ObjectID, "error", err)
			continue
		}
		chosen = append(chosen, srv)
		shares = append(shares, share)
		if len(shares) == c.threshold {
			break
		}
	}

	if len(shares) < c.threshold {
		return nil, fmt.Errorf("got %d of %d required shards: %w",
			len(shares), c.threshold, common.ErrEncryptionUnavailable)
	}

	key := deriveContentKey(shares, contentID)
	defer common.WipeByteArray(key)

	nonce := common.GenerateRandByteArray(nonceSize)
	ciphertext, err := sealBytes(key, nonce, plaintext)
	if err != nil {
		return nil, err
	}

	serverIDs := make([]string, len(chosen))
	for i, srv := range chosen {
		serverIDs[i] = srv.ObjectID
	}

	env := &envelope{
		Version:    envelopeVersion,
		Namespace:  namespace,
		ContentID:  contentID,
		Threshold:  c.threshold,
		KeyServers: serverIDs,
		Nonce:      nonce,
		Ciphertext: ciphertext,
	}
	data, err := env.encode()
	if err != nil {
		return nil, err
	}

	return &models.EncryptedPayload{Ciphertext: data, ContentID: contentID}, nil
}

// Decrypt recovers plaintext from an envelope produced by Encrypt. The
// credential must be unexpired and the proof must satisfy the key-release
// policy the quorum reads from the ledger; the quorum's answer distinguishes
// denial (no rights) from expiry. No plaintext buffer is allocated unless the
// shard threshold is met.
func (c *Client) Decrypt(ctx context.Context, data []byte, cred *SessionCredential, proof ProofBuilder) ([]byte, error) {
	if cred == nil || proof == nil {
		return nil, fmt.Errorf("missing credential or proof builder: %w", common.ErrInvalidInput)
	}
	if cred.Expired() {
		return nil, fmt.Errorf("credential expired at %s: %w", cred.ExpiresAt.Format(time.RFC3339), common.ErrCredentialExpired)
	}

	env, err := parseEnvelope(data)
	if err != nil {
		return nil, err
	}

	proofBytes, err := proof(ctx, env.ContentID)
	if err != nil {
		return nil, fmt.Errorf("building access proof: %v: %w", err, common.ErrDecryptionFailed)
	}

	req := fetchKeyRequest{
		Namespace: env.Namespace,
		ContentID: env.ContentID,
		Address:   cred.Address,
		Proof:     proofBytes,
	}

	shares := make([][]byte, 0, env.Threshold)
	for _, id := range env.KeyServers {
		srv, ok := c.serverByID(id)
		if !ok {
			return nil, fmt.Errorf("unknown key server %s in envelope: %w", id, common.ErrDecryptionFailed)
		}
		share, err := c.requestShard(ctx, srv, "/v1/fetch_key", req, cred.Token())
		if err != nil {
			if typed := classifyAccessError(err); typed != nil {
				return nil, typed
			}
			return nil, fmt.Errorf("key server %s: %v: %w", id, err, common.ErrDecryptionFailed)
		}
		shares = append(shares, share)
	}

	key := deriveContentKey(shares, env.ContentID)
	defer common.WipeByteArray(key)

	plaintext, err := openBytes(key, env.Nonce, env.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("authenticated decryption: %w", common.ErrDecryptionFailed)
	}
	return plaintext, nil
}

func (c *Client) serverByID(id string) (KeyServer, bool) {
	for _, srv := range c.servers {
		if srv.ObjectID == id {
			return srv, true
		}
	}
	return KeyServer{}, false
}

// httpStatusError carries the quorum's verbatim response for classification.
type httpStatusError struct {
	status int
	body   string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("key server status %d: %s", e.status, e.body)
}

func rejected(err error) bool {
	var se *httpStatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.status >= 400 && se.status < 500
}

func classifyAccessError(err error) error {
	var se *httpStatusError
	if !errors.As(err, &se) {
		return nil
	}
	switch se.status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", se.body, common.ErrCredentialExpired)
	case http.StatusForbidden:
		return fmt.Errorf("%s: %w", se.body, common.ErrAccessDenied)
	}
	return nil
}

// requestShard performs one quorum call with bounded exponential backoff.
// 5xx responses and transport errors are retried; 4xx responses are final.
func (c *Client) requestShard(ctx context.Context, srv KeyServer, path string, payload any, sessionToken string) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var share []byte
	backoff := retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, srv.URL+path, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if sessionToken != "" {
			req.Header.Set(common.SessionTokenHeaderName, sessionToken)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if resp.StatusCode >= 500 {
			return retry.RetryableError(&httpStatusError{status: resp.StatusCode, body: string(respBody)})
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &httpStatusError{status: resp.StatusCode, body: string(respBody)}
		}

		var sr shardResponse
		if err := json.Unmarshal(respBody, &sr); err != nil {
			return err
		}
		if len(sr.Share) == 0 {
			return fmt.Errorf("empty shard from %s", srv.ObjectID)
		}
		share = sr.Share
		return nil
	})
	if err != nil {
		return nil, err
	}
	return share, nil
}

// deriveContentKey combines quorum shards into the symmetric content key.
// Shard order follows the envelope's key-server list, so decryption feeds the
// KDF the same byte stream that encryption did.
func deriveContentKey(shares [][]byte, contentID string) []byte {
	var combined []byte
	for _, s := range shares {
		combined = append(combined, s...)
	}
	defer common.WipeByteArray(combined)

	r := hkdf.New(sha256.New, combined, []byte(contentID), []byte("sealstream content key v1"))
	key := make([]byte, keySize)
	if _, err := io.ReadFull(r, key); err != nil {
		panic(err)
	}
	return key
}

func sealBytes(key, nonce, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return aesgcm.Seal(nil, nonce, plaintext, nil), nil
}

func openBytes(key, nonce, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return aesgcm.Open(nil, nonce, ciphertext, nil)
}
