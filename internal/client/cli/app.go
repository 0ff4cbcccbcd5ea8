package cli

import (
	"bufio"
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/sealstream/internal/client/config"
	"github.com/dmitrijs2005/sealstream/internal/client/db"
	"github.com/dmitrijs2005/sealstream/internal/client/repositories/jobs"
	"github.com/dmitrijs2005/sealstream/internal/client/services"
	"github.com/dmitrijs2005/sealstream/internal/ledger"
	"github.com/dmitrijs2005/sealstream/internal/logging"
	"github.com/dmitrijs2005/sealstream/internal/relay"
	"github.com/dmitrijs2005/sealstream/internal/seal"
)

// App wires the publish and access flows behind an interactive prompt.
type App struct {
	config  *config.Config
	log     logging.Logger
	db      *sql.DB
	ledger  *ledger.Client
	publish *services.PublishService
	access  *services.AccessService
	sink    *services.ChannelSink
	reader  *bufio.Reader
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	database, err := db.InitDatabase(ctx, c.JournalFile)
	if err != nil {
		log.Error(ctx, "error initializing journal", "error", err)
		return nil, err
	}
	repo := jobs.NewSQLiteRepository(database)

	signer, err := loadSigner(c.KeyFile, os.Stdout)
	if err != nil {
		database.Close()
		return nil, err
	}

	ledgerClient, err := ledger.Dial(ctx, c.NodeRPCAddr, signer, log)
	if err != nil {
		database.Close()
		return nil, err
	}

	sealClient, err := seal.NewClient(c.KeyServers, c.Threshold, log)
	if err != nil {
		database.Close()
		ledgerClient.Close()
		return nil, err
	}

	relayClient := relay.NewClient(c.RelayHost, c.AggregatorHost, c.PackageID, log)
	if c.UploadTimeout > 0 {
		relayClient = relayClient.WithUploadTimeout(c.UploadTimeout)
	}

	sink := services.NewChannelSink(64)

	ps := services.NewPublishService(sealClient, relayClient, ledgerClient, repo, sink, log,
		services.PublishConfig{
			PackageID:         c.PackageID,
			Epochs:            c.Epochs,
			Deletable:         c.Deletable,
			StorageObjectType: c.StorageObjectType,
			ContentRecordType: c.ContentRecordType,
			MinStorageBalance: c.MinStorageBalance,
			ExchangeAmount:    c.ExchangeAmount,
			ExchangePackageID: c.ExchangePackageID,
			ExchangeObjectID:  c.ExchangeObjectID,
		})

	as := services.NewAccessService(sealClient, relayClient, ledgerClient, log,
		services.AccessConfig{
			PackageID:     c.PackageID,
			CredentialTTL: c.CredentialTTL,
		})

	return &App{
		config:  c,
		log:     log,
		db:      database,
		ledger:  ledgerClient,
		publish: ps,
		access:  as,
		sink:    sink,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Close() {
	a.ledger.Close()
	a.db.Close()
}
