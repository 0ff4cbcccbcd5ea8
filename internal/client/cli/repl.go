package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Publish(ctx context.Context) error
	Fetch(ctx context.Context, args []string) error
	Jobs(ctx context.Context) error
	Retry(ctx context.Context, args []string) error
	Abandon(ctx context.Context, args []string) error
	Update(ctx context.Context, args []string) error
	Unlist(ctx context.Context, args []string) error
	Balance(ctx context.Context) error
	Topup(ctx context.Context) error
	Epoch(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the sealstream CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands:
//
//   - help               show available commands
//   - publish            encrypt, register, upload and certify a file
//   - fetch <blob> <out> download and decrypt a published blob
//   - jobs               list unfinished jobs
//   - retry <ref>        re-enter the failed phase of a job, by id or digest
//   - abandon <id>       drop a job from the journal
//   - update <rec> <cap> replace the metadata of a content record
//   - unlist <rec> <cap> delete a content record
//   - balance            show gas and storage coin balances
//   - topup              exchange gas coin for storage coin
//   - epoch              show the current storage epoch
//   - exit | quit        leave the program
//
// Any errors returned by command handlers are reported here and the loop
// continues. This keeps the REPL resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, scanner *bufio.Scanner) {
	for {
		printlnFn("sealstream> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn("Available commands: publish, fetch, jobs, retry, abandon, update, unlist, balance, topup, epoch, exit")

		case "publish":
			err = a.Publish(ctx)

		case "fetch":
			err = a.Fetch(ctx, args)

		case "jobs":
			err = a.Jobs(ctx)

		case "retry":
			err = a.Retry(ctx, args)

		case "abandon":
			err = a.Abandon(ctx, args)

		case "update":
			err = a.Update(ctx, args)

		case "unlist":
			err = a.Unlist(ctx, args)

		case "balance":
			err = a.Balance(ctx)

		case "topup":
			err = a.Topup(ctx)

		case "epoch":
			err = a.Epoch(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}
