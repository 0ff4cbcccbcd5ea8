package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/sealstream/internal/seal"
	"github.com/joho/godotenv"
)

// parseEnv overlays Config with environment variables. A .env file in the
// working directory is loaded first, without overriding variables already
// present in the environment.
//
// Key servers are encoded as a comma-separated list of objectID=url pairs:
//
//	SEALSTREAM_KEY_SERVERS=0xaa=http://ks1:8080,0xbb=http://ks2:8080
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	setString("SEALSTREAM_NODE_RPC_ADDR", &cfg.NodeRPCAddr)
	setString("SEALSTREAM_RELAY_HOST", &cfg.RelayHost)
	setString("SEALSTREAM_AGGREGATOR_HOST", &cfg.AggregatorHost)
	setString("SEALSTREAM_PACKAGE_ID", &cfg.PackageID)
	setString("SEALSTREAM_EXCHANGE_PACKAGE_ID", &cfg.ExchangePackageID)
	setString("SEALSTREAM_EXCHANGE_OBJECT_ID", &cfg.ExchangeObjectID)
	setString("SEALSTREAM_SYSTEM_OBJECT_ID", &cfg.SystemObjectID)
	setString("SEALSTREAM_JOURNAL_FILE", &cfg.JournalFile)
	setString("SEALSTREAM_KEY_FILE", &cfg.KeyFile)

	if v, ok := os.LookupEnv("SEALSTREAM_KEY_SERVERS"); ok && v != "" {
		var servers []seal.KeyServer
		for _, pair := range strings.Split(v, ",") {
			parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
			if len(parts) != 2 {
				continue
			}
			servers = append(servers, seal.KeyServer{ObjectID: parts[0], URL: parts[1]})
		}
		if len(servers) > 0 {
			cfg.KeyServers = servers
		}
	}

	if v, ok := os.LookupEnv("SEALSTREAM_THRESHOLD"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Threshold = n
		}
	}
	if v, ok := os.LookupEnv("SEALSTREAM_EPOCHS"); ok {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Epochs = n
		}
	}
	if v, ok := os.LookupEnv("SEALSTREAM_UPLOAD_TIMEOUT"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.UploadTimeout = d
		}
	}
	if v, ok := os.LookupEnv("SEALSTREAM_CREDENTIAL_TTL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CredentialTTL = d
		}
	}
}
