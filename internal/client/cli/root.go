package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

// Run starts the interactive loop. Progress updates from running jobs are
// printed from a background goroutine so long uploads stay visible.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Println("Welcome to sealstream CLI (type 'help' for commands)")
	fmt.Println("Signing as", a.ledger.Sender())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.watchProgress(ctx)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, scanner)
}

func (a *App) watchProgress(ctx context.Context) {
	for {
		select {
		case u := <-a.sink.Updates():
			fmt.Printf("  [%s] %s %d%%\n", shortID(u.JobID), u.Phase, u.Percent)
		case <-ctx.Done():
			return
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
