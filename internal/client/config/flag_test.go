package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK",
			args:        []string{"cmd", "-n", "http://127.0.0.1:9090", "-r", "http://relay:9002", "-p", "0xcafe", "-u", "120"},
			expectPanic: false,
			expected: &Config{
				NodeRPCAddr:   "http://127.0.0.1:9090",
				RelayHost:     "http://relay:9002",
				PackageID:     "0xcafe",
				UploadTimeout: 120 * time.Second,
			}},
		{name: "Test2 incorrect upload timeout",
			args: []string{"cmd", "-n", "http://127.0.0.1:9090", "-u", "abc"}, expectPanic: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
