// Package config loads runtime settings for the sealstream CLI.
//
// Sources are applied in order, later ones overriding earlier ones:
// defaults -> JSON file (-c/-config) -> environment (.env aware) -> flags.
package config

import (
	"time"

	"github.com/dmitrijs2005/sealstream/internal/seal"
)

// Config holds runtime settings for the sealstream client.
type Config struct {
	// NodeRPCAddr is the fullnode JSON-RPC endpoint.
	NodeRPCAddr string

	// RelayHost accepts encoded blob bytes for registered storage objects;
	// AggregatorHost serves them back.
	RelayHost      string
	AggregatorHost string

	// KeyServers is the key-management quorum; Threshold is the minimum
	// number of shard holders required to rebuild a content key.
	KeyServers []seal.KeyServer
	Threshold  int

	// PackageID is the ledger package exposing the storage and content
	// entry points; it doubles as the encryption policy namespace.
	PackageID string

	// StorageObjectType / ContentRecordType are the effect type suffixes
	// scanned for created objects.
	StorageObjectType string
	ContentRecordType string

	// Retention defaults for registered blobs.
	Epochs    uint64
	Deletable bool

	// Gas precondition and exchange top-up parameters.
	MinStorageBalance uint64
	ExchangeAmount    uint64
	ExchangePackageID string
	ExchangeObjectID  string

	// SystemObjectID is the storage network system object (epoch queries).
	SystemObjectID string

	CredentialTTL time.Duration
	UploadTimeout time.Duration

	// JournalFile is the SQLite file name of the local job journal.
	JournalFile string

	// KeyFile is the passphrase-protected signer key file.
	KeyFile string
}

// LoadDefaults populates c with sensible testnet defaults.
func (c *Config) LoadDefaults() {
	c.NodeRPCAddr = "http://127.0.0.1:9000/rpc/v1"
	c.RelayHost = "http://127.0.0.1:9002"
	c.AggregatorHost = "http://127.0.0.1:9003"
	c.KeyServers = nil
	c.Threshold = 2
	c.StorageObjectType = "::storage::StorageObject"
	c.ContentRecordType = "::content_access::ContentRecord"
	c.Epochs = 30
	c.Deletable = true
	c.MinStorageBalance = 100_000_000
	c.ExchangeAmount = 500_000_000
	c.CredentialTTL = 10 * time.Minute
	c.UploadTimeout = 5 * time.Minute
	c.JournalFile = "journal.db"
	c.KeyFile = "signer.key"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), environment variables, and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
