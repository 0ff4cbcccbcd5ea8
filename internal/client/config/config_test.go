package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:9000/rpc/v1", c.NodeRPCAddr)
	assert.Equal(t, "http://127.0.0.1:9002", c.RelayHost)
	assert.Equal(t, "http://127.0.0.1:9003", c.AggregatorHost)
	assert.Equal(t, 2, c.Threshold)
	assert.Equal(t, "::storage::StorageObject", c.StorageObjectType)
	assert.Equal(t, "::content_access::ContentRecord", c.ContentRecordType)
	assert.EqualValues(t, 30, c.Epochs)
	assert.True(t, c.Deletable)
	assert.Equal(t, 10*time.Minute, c.CredentialTTL)
	assert.Equal(t, 5*time.Minute, c.UploadTimeout)
	assert.Equal(t, "journal.db", c.JournalFile)
	assert.Equal(t, "signer.key", c.KeyFile)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://127.0.0.1:9000/rpc/v1", cfg.NodeRPCAddr)
	assert.Equal(t, 2, cfg.Threshold)
}
