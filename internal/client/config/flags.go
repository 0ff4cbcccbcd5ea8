package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/sealstream/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-n string   fullnode JSON-RPC address
//	-r string   relay host
//	-g string   aggregator host
//	-p string   ledger package id
//	-u int      upload timeout in seconds
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-n", "-r", "-g", "-p", "-u"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.NodeRPCAddr, "n", cfg.NodeRPCAddr, "fullnode JSON-RPC address")
	fs.StringVar(&cfg.RelayHost, "r", cfg.RelayHost, "upload relay host")
	fs.StringVar(&cfg.AggregatorHost, "g", cfg.AggregatorHost, "aggregator host")
	fs.StringVar(&cfg.PackageID, "p", cfg.PackageID, "ledger package id")
	uploadTimeout := fs.Int("u", int(cfg.UploadTimeout.Seconds()), "upload timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.UploadTimeout = time.Duration(*uploadTimeout) * time.Second
}
