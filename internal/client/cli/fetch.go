package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/sealstream/internal/common"
)

// Fetch downloads a published blob from the aggregator, decrypts it with a
// fresh session credential, and writes the plaintext to the given path.
func (a *App) Fetch(ctx context.Context, args []string) error {
	if len(args) != 2 {
		fmt.Println("Usage: fetch <blob-id> <output-file>")
		return nil
	}
	blobID, out := args[0], args[1]

	plaintext, err := a.access.Fetch(ctx, blobID)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(plaintext)

	if err := os.WriteFile(out, plaintext, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	fmt.Printf("wrote %d bytes to %s\n", len(plaintext), out)
	return nil
}
