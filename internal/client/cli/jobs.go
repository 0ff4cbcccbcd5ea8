package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sealstream/internal/client/services"
)

// Jobs lists journal entries that have not finished cleanly.
func (a *App) Jobs(ctx context.Context) error {
	list, err := a.publish.Jobs(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No unfinished jobs")
		return nil
	}
	for _, j := range list {
		printJob(j)
	}
	return nil
}

// Retry re-enters the failed phase of a job, reusing durable artifacts. The
// job may be referenced by its id or by its registration digest.
func (a *App) Retry(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Println("Usage: retry <job-id|register-digest>")
		return nil
	}

	job, err := a.publish.Retry(ctx, args[0])
	if errors.Is(err, services.ErrArtifactsLost) {
		fmt.Println("The job's bytes did not survive a restart; publish the file again")
		return nil
	}
	if job != nil {
		printJob(job)
	}
	return err
}

// Abandon drops a job from the journal. Any ledger-side state it created
// stays behind as an orphan.
func (a *App) Abandon(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Println("Usage: abandon <job-id>")
		return nil
	}
	if err := a.publish.Abandon(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("Abandoned", args[0])
	return nil
}
