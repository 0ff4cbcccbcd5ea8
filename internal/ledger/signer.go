package ledger

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
)

// Signer signs fully built transaction bytes. The production signer is an
// external, user-controlled wallet; it may decline or time out, and either
// outcome must surface to the caller as a recoverable rejection rather than a
// fatal pipeline error.
type Signer interface {
	// Address returns the ledger address the signer signs for.
	Address() string

	// Sign returns the signature over txBytes, or an error if the user
	// declined or the wallet is unreachable.
	Sign(ctx context.Context, txBytes []byte) ([]byte, error)
}

// LocalSigner is an in-process ed25519 signer used by the CLI and tests.
type LocalSigner struct {
	priv ed25519.PrivateKey
	addr string
}

// NewLocalSigner builds a signer from an ed25519 private key.
func NewLocalSigner(priv ed25519.PrivateKey) *LocalSigner {
	pub := priv.Public().(ed25519.PublicKey)
	sum := sha256.Sum256(pub)
	return &LocalSigner{priv: priv, addr: "0x" + hex.EncodeToString(sum[:20])}
}

// GenerateLocalSigner creates a signer with a fresh random key.
func GenerateLocalSigner() (*LocalSigner, error) {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, err
	}
	return NewLocalSigner(priv), nil
}

func (s *LocalSigner) Address() string { return s.addr }

func (s *LocalSigner) Sign(_ context.Context, txBytes []byte) ([]byte, error) {
	return ed25519.Sign(s.priv, txBytes), nil
}
