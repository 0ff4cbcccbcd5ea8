package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/sealstream/internal/flagx"
	"github.com/dmitrijs2005/sealstream/internal/seal"
	"github.com/dmitrijs2005/sealstream/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "5m"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config.
type JsonConfig struct {
	NodeRPCAddr    string `json:"node_rpc_addr"`
	RelayHost      string `json:"relay_host"`
	AggregatorHost string `json:"aggregator_host"`

	KeyServers []struct {
		ObjectID string `json:"object_id"`
		URL      string `json:"url"`
	} `json:"key_servers"`
	Threshold *int `json:"threshold"`

	PackageID         string `json:"package_id"`
	StorageObjectType string `json:"storage_object_type"`
	ContentRecordType string `json:"content_record_type"`

	Epochs    *uint64 `json:"epochs"`
	Deletable *bool   `json:"deletable"`

	MinStorageBalance *uint64 `json:"min_storage_balance"`
	ExchangeAmount    *uint64 `json:"exchange_amount"`
	ExchangePackageID string  `json:"exchange_package_id"`
	ExchangeObjectID  string  `json:"exchange_object_id"`
	SystemObjectID    string  `json:"system_object_id"`

	CredentialTTL *timex.Duration `json:"credential_ttl"`
	UploadTimeout *timex.Duration `json:"upload_timeout"`

	JournalFile string `json:"journal_file"`
	KeyFile     string `json:"key_file"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// the -c/-config flags. Missing file path means no JSON is loaded. Read or
// unmarshal errors panic; the process cannot run with half-applied config.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.NodeRPCAddr != "" {
		cfg.NodeRPCAddr = jc.NodeRPCAddr
	}
	if jc.RelayHost != "" {
		cfg.RelayHost = jc.RelayHost
	}
	if jc.AggregatorHost != "" {
		cfg.AggregatorHost = jc.AggregatorHost
	}
	if len(jc.KeyServers) > 0 {
		cfg.KeyServers = nil
		for _, ks := range jc.KeyServers {
			cfg.KeyServers = append(cfg.KeyServers, seal.KeyServer{ObjectID: ks.ObjectID, URL: ks.URL})
		}
	}
	if jc.Threshold != nil {
		cfg.Threshold = *jc.Threshold
	}
	if jc.PackageID != "" {
		cfg.PackageID = jc.PackageID
	}
	if jc.StorageObjectType != "" {
		cfg.StorageObjectType = jc.StorageObjectType
	}
	if jc.ContentRecordType != "" {
		cfg.ContentRecordType = jc.ContentRecordType
	}
	if jc.Epochs != nil {
		cfg.Epochs = *jc.Epochs
	}
	if jc.Deletable != nil {
		cfg.Deletable = *jc.Deletable
	}
	if jc.MinStorageBalance != nil {
		cfg.MinStorageBalance = *jc.MinStorageBalance
	}
	if jc.ExchangeAmount != nil {
		cfg.ExchangeAmount = *jc.ExchangeAmount
	}
	if jc.ExchangePackageID != "" {
		cfg.ExchangePackageID = jc.ExchangePackageID
	}
	if jc.ExchangeObjectID != "" {
		cfg.ExchangeObjectID = jc.ExchangeObjectID
	}
	if jc.SystemObjectID != "" {
		cfg.SystemObjectID = jc.SystemObjectID
	}
	if jc.CredentialTTL != nil {
		cfg.CredentialTTL = jc.CredentialTTL.Duration
	}
	if jc.UploadTimeout != nil {
		cfg.UploadTimeout = jc.UploadTimeout.Duration
	}
	if jc.JournalFile != "" {
		cfg.JournalFile = jc.JournalFile
	}
	if jc.KeyFile != "" {
		cfg.KeyFile = jc.KeyFile
	}
}
