package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/sealstream/internal/client/models"
	"github.com/dmitrijs2005/sealstream/internal/ledger"
)

// Update replaces the marketplace metadata of an existing content record.
// The creator capability object proves the caller may change the record.
func (a *App) Update(ctx context.Context, args []string) error {
	if len(args) != 2 {
		fmt.Println("Usage: update <record-id> <cap-id>")
		return nil
	}
	recordID, capID := args[0], args[1]

	title, err := GetSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		return err
	}
	description, err := GetMultiline(a.reader, "Description", os.Stdout)
	if err != nil {
		return err
	}
	category, err := GetSimpleText(a.reader, "Category", os.Stdout)
	if err != nil {
		return err
	}
	tags, err := GetTags(a.reader)
	if err != nil {
		return err
	}
	price, err := getUint(a.reader, "Price (smallest coin unit, 0 = free)")
	if err != nil {
		return err
	}
	ttlDays, err := getUint(a.reader, "Access duration in days (0 = unlimited)")
	if err != nil {
		return err
	}
	scarcity, err := getUint(a.reader, "Max copies (0 = unlimited)")
	if err != nil {
		return err
	}

	meta := models.ContentMetadata{
		Title:       title,
		Description: description,
		Category:    category,
		Tags:        tags,
		Price:       price,
		TTLMs:       ttlDays * 24 * 60 * 60 * 1000,
		Scarcity:    scarcity,
	}
	if err := meta.Validate(); err != nil {
		return err
	}

	intent := ledger.UpdateContentRecordIntent(a.config.PackageID, a.ledger.Sender(), recordID, capID, meta)
	return a.finalize(ctx, intent, "updated record "+recordID)
}

// Unlist deletes a content record, taking the content off the marketplace.
// The certified blob itself stays on the storage network.
func (a *App) Unlist(ctx context.Context, args []string) error {
	if len(args) != 2 {
		fmt.Println("Usage: unlist <record-id> <cap-id>")
		return nil
	}
	recordID, capID := args[0], args[1]

	intent := ledger.DeleteContentRecordIntent(a.config.PackageID, a.ledger.Sender(), recordID, capID)
	return a.finalize(ctx, intent, "unlisted record "+recordID)
}

func (a *App) finalize(ctx context.Context, intent *ledger.TxIntent, okMsg string) error {
	digest, err := a.ledger.Submit(ctx, intent)
	if err != nil {
		return err
	}
	if _, err := a.ledger.AwaitFinality(ctx, digest); err != nil {
		return err
	}
	fmt.Println(okMsg, "(tx "+digest+")")
	return nil
}
