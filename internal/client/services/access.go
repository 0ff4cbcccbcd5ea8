package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/sealstream/internal/client/models"
	"github.com/dmitrijs2005/sealstream/internal/ledger"
	"github.com/dmitrijs2005/sealstream/internal/logging"
	"github.com/dmitrijs2005/sealstream/internal/seal"
)

// Decrypter is the slice of the encryption adapter the access flow uses.
type Decrypter interface {
	Decrypt(ctx context.Context, data []byte, cred *seal.SessionCredential, proof seal.ProofBuilder) ([]byte, error)
}

// BlobFetcher retrieves encrypted blob bytes from the storage network.
type BlobFetcher interface {
	FetchBlob(ctx context.Context, blobID string) ([]byte, error)
}

// AccessConfig carries the deployment parameters of the decrypt flow.
type AccessConfig struct {
	// PackageID is the ledger package whose access policy governs key
	// release; it is also the encryption policy namespace.
	PackageID string

	// CredentialTTL bounds each session credential. Credentials are created
	// fresh per decrypt attempt and never reused across attempts.
	CredentialTTL time.Duration
}

// AccessService is the decrypt orchestrator: it obtains a session credential,
// proves access on the ledger without executing anything, fetches key shards,
// and recovers plaintext.
type AccessService struct {
	dec    Decrypter
	blobs  BlobFetcher
	ledger LedgerClient
	log    logging.Logger
	cfg    AccessConfig

	mu    sync.Mutex
	phase models.AccessPhase
}

// NewAccessService wires the decrypt orchestrator.
func NewAccessService(dec Decrypter, blobs BlobFetcher, ledgerClient LedgerClient,
	log logging.Logger, cfg AccessConfig) *AccessService {
	if cfg.CredentialTTL <= 0 {
		cfg.CredentialTTL = 10 * time.Minute
	}
	return &AccessService{
		dec:    dec,
		blobs:  blobs,
		ledger: ledgerClient,
		log:    log,
		cfg:    cfg,
		phase:  models.AccessIdle,
	}
}

// Phase reports the current phase of the flow.
func (s *AccessService) Phase() models.AccessPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *AccessService) setPhase(p models.AccessPhase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

// Fetch retrieves the encrypted blob from the aggregator and decrypts it.
func (s *AccessService) Fetch(ctx context.Context, blobID string) ([]byte, error) {
	encrypted, err := s.blobs.FetchBlob(ctx, blobID)
	if err != nil {
		s.setPhase(models.AccessError)
		return nil, fmt.Errorf("fetching blob %s: %w", blobID, err)
	}
	return s.Open(ctx, encrypted)
}

// Open decrypts already-fetched envelope bytes. The returned plaintext is a
// defensive copy owned by the caller: decrypted buffers may sit in memory the
// adapter still references, and are never handed off directly.
func (s *AccessService) Open(ctx context.Context, encrypted []byte) ([]byte, error) {
	s.setPhase(models.AccessRequestingCredential)
	cred, err := seal.NewSessionCredential(s.ledger.Sender(), s.cfg.PackageID, s.cfg.CredentialTTL)
	if err != nil {
		s.setPhase(models.AccessError)
		return nil, fmt.Errorf("creating session credential: %w", err)
	}

	proof := func(ctx context.Context, contentID string) ([]byte, error) {
		intent := ledger.AccessProofIntent(s.cfg.PackageID, s.ledger.Sender(), contentID)
		return intent.Encode()
	}

	s.setPhase(models.AccessFetchingKeys)
	s.log.Info(ctx, "requesting decryption keys", "address", cred.Address)

	plaintext, err := s.dec.Decrypt(ctx, encrypted, cred, proof)
	if err != nil {
		s.setPhase(models.AccessError)
		return nil, err
	}

	s.setPhase(models.AccessDecrypting)
	out := make([]byte, len(plaintext))
	copy(out, plaintext)

	s.setPhase(models.AccessReady)
	return out, nil
}
