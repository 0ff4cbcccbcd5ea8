package cli

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/sealstream/internal/common"
	"github.com/dmitrijs2005/sealstream/internal/cryptox"
	"github.com/dmitrijs2005/sealstream/internal/ledger"
)

// loadSigner opens the passphrase-protected signer key at path, creating a
// fresh key (and file) on first run. The passphrase is read from the terminal
// without echo and wiped after use.
func loadSigner(path string, w io.Writer) (*ledger.LocalSigner, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return createSigner(path, w)
	}
	if err != nil {
		return nil, fmt.Errorf("reading signer key %s: %w", path, err)
	}

	pw, err := GetPassword(w)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(pw)

	seed, err := cryptox.OpenSeed(data, pw)
	if err != nil {
		return nil, fmt.Errorf("unlocking signer key %s: %w", path, err)
	}
	defer common.WipeByteArray(seed)

	return ledger.NewLocalSigner(ed25519.NewKeyFromSeed(seed)), nil
}

func createSigner(path string, w io.Writer) (*ledger.LocalSigner, error) {
	fmt.Fprintf(w, "No signer key found, creating %s\n", path)

	pw, err := GetPassword(w)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(pw)

	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, err
	}

	seed := priv.Seed()
	defer common.WipeByteArray(seed)

	sealed, err := cryptox.SealSeed(seed, pw)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, sealed, 0o600); err != nil {
		return nil, fmt.Errorf("writing signer key %s: %w", path, err)
	}

	return ledger.NewLocalSigner(priv), nil
}
