package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/dmitrijs2005/sealstream/internal/client/models"
	"github.com/dmitrijs2005/sealstream/internal/client/services"
)

// Publish interactively collects content metadata and runs the file through
// the whole pipeline: encrypt, register, upload, certify, list.
func (a *App) Publish(ctx context.Context) error {
	path, err := GetSimpleText(a.reader, "File to publish", os.Stdout)
	if err != nil {
		return err
	}

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

	job, err := a.publish.Publish(ctx, services.PublishRequest{
		FilePath: path,
		Meta: models.ContentMetadata{
			Title:       title,
			Description: description,
			Category:    category,
			Tags:        tags,
			Price:       price,
			TTLMs:       ttlDays * 24 * 60 * 60 * 1000,
			Scarcity:    scarcity,
		},
	})
	if job != nil {
		printJob(job)
	}
	return err
}

func getUint(reader *bufio.Reader, prompt string) (uint64, error) {
	s, err := GetSimpleText(reader, prompt, os.Stdout)
	if err != nil {
		return 0, err
	}
	if s == "" {
		return 0, nil
	}
	return strconv.ParseUint(s, 10, 64)
}

func printJob(j *models.UploadJob) {
	fmt.Printf("job %s: %s (%d%%)\n", j.ID, j.Phase, j.Progress)
	if j.BlobID != "" {
		fmt.Println("  blob:", j.BlobID)
	}
	if j.StorageObjectID != "" {
		fmt.Println("  storage object:", j.StorageObjectID)
	}
	if j.ContentRecordID != "" {
		fmt.Println("  content record:", j.ContentRecordID)
	}
	if j.Listing == models.ListingNotListed {
		fmt.Println("  published but not listed; run 'retry", j.ID+"' to list it")
	}
	if j.ErrorMsg != "" {
		fmt.Println("  error:", j.ErrorMsg, "(failed at "+string(j.FailedPhase)+")")
	}
}
