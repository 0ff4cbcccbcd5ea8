// Package services contains the two orchestrators of the content pipeline:
// PublishService drives encode → encrypt → register → upload → certify for
// one job at a time per job, and AccessService runs the mirror flow that
// exchanges a session credential and ledger proof for plaintext.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dmitrijs2005/sealstream/internal/client/models"
	"github.com/dmitrijs2005/sealstream/internal/client/repositories/jobs"
	"github.com/dmitrijs2005/sealstream/internal/common"
	"github.com/dmitrijs2005/sealstream/internal/ledger"
	"github.com/dmitrijs2005/sealstream/internal/logging"
	"github.com/dmitrijs2005/sealstream/internal/relay"
	"github.com/google/uuid"
)

var (
	// ErrJobBusy is returned when a phase transition is requested while a
	// previous one for the same job has not settled.
	ErrJobBusy = errors.New("job transition already in flight")

	// ErrArtifactsLost is returned when a retry needs in-memory artifacts
	// (plaintext or ciphertext bytes) that did not survive a restart.
	ErrArtifactsLost = errors.New("job artifacts not available in this process")
)

// Encrypter is the slice of the encryption adapter the publish flow uses.
type Encrypter interface {
	Encrypt(ctx context.Context, plaintext []byte, namespace string) (*models.EncryptedPayload, error)
}

// RelayClient is the storage relay surface consumed by the publish flow.
type RelayClient interface {
	RegisterIntent(encoded *relay.EncodedPayload, sender string, epochs uint64, deletable bool, owner string) *ledger.TxIntent
	CertifyIntent(encoded *relay.EncodedPayload, sender, storageObjectID string) *ledger.TxIntent
	Upload(ctx context.Context, encoded *relay.EncodedPayload, registrationDigest, storageObjectID string, onProgress func(sent, total int64)) error
	ListPublished(encoded *relay.EncodedPayload, storageObjectID string, epochs uint64, deletable bool, owner string) []models.StorageObjectReference
}

// LedgerClient is the ledger surface consumed by the orchestrators.
type LedgerClient interface {
	Sender() string
	Submit(ctx context.Context, intent *ledger.TxIntent) (string, error)
	AwaitFinality(ctx context.Context, digest string) (*ledger.TxEffects, error)
	EnsureStorageBalance(ctx context.Context, min, exchangeAmount uint64, exchangePkg, exchangeObjectID string) error
}

// PublishConfig carries the deployment parameters of the publish flow.
type PublishConfig struct {
	// PackageID is the ledger package exposing the storage and content
	// entry points; it doubles as the encryption policy namespace.
	PackageID string

	Epochs    uint64
	Deletable bool

	// StorageObjectType is the type suffix scanned for in register effects.
	StorageObjectType string
	// ContentRecordType is the type suffix scanned for in content-record effects.
	ContentRecordType string

	// Gas precondition: minimum storage-coin balance required before
	// register, and the exchange parameters used to top up below it.
	MinStorageBalance uint64
	ExchangeAmount    uint64
	ExchangePackageID string
	ExchangeObjectID  string
}

// jobArtifacts are the byte-level artifacts of a running job. They live only
// in process memory; the journal records identifiers and digests, not bytes.
type jobArtifacts struct {
	plaintext []byte
	encrypted *models.EncryptedPayload
	encoded   *relay.EncodedPayload
}

// PublishService is the upload orchestrator. All collaborators are explicit
// constructor dependencies so tests can substitute fakes.
type PublishService struct {
	enc    Encrypter
	relay  RelayClient
	ledger LedgerClient
	repo   jobs.Repository
	sink   ProgressSink
	log    logging.Logger
	cfg    PublishConfig

	mu        sync.Mutex
	inflight  map[string]bool
	artifacts map[string]*jobArtifacts
}

// NewPublishService wires the upload orchestrator.
func NewPublishService(enc Encrypter, relayClient RelayClient, ledgerClient LedgerClient,
	repo jobs.Repository, sink ProgressSink, log logging.Logger, cfg PublishConfig) *PublishService {
	if sink == nil {
		sink = NopSink{}
	}
	return &PublishService{
		enc:       enc,
		relay:     relayClient,
		ledger:    ledgerClient,
		repo:      repo,
		sink:      sink,
		log:       log,
		cfg:       cfg,
		inflight:  make(map[string]bool),
		artifacts: make(map[string]*jobArtifacts),
	}
}

// PublishRequest describes one publish attempt. Either Data or FilePath must
// be set; Data takes precedence.
type PublishRequest struct {
	Data     []byte
	FilePath string
	Meta     models.ContentMetadata
}

// Publish runs a new job through the whole pipeline. The returned job is a
// snapshot; on failure it reports which phase failed and which artifacts are
// already durable, so Retry never redundantly re-encrypts or re-registers.
func (s *PublishService) Publish(ctx context.Context, req PublishRequest) (*models.UploadJob, error) {
	if err := req.Meta.Validate(); err != nil {
		return nil, fmt.Errorf("validating metadata: %w", err)
	}

	plaintext, err := s.readSource(req)
	if err != nil {
		return nil, err
	}

	job := &models.UploadJob{
		ID:    uuid.NewString(),
		Meta:  req.Meta,
		Phase: models.PhaseIdle,
	}
	if err := s.repo.CreateOrUpdate(ctx, job); err != nil {
		return nil, fmt.Errorf("journaling job: %w", err)
	}

	s.mu.Lock()
	s.artifacts[job.ID] = &jobArtifacts{plaintext: plaintext}
	s.mu.Unlock()

	return s.runFrom(ctx, job, models.PhaseEncoding)
}

// Retry re-enters the phase a failed job stopped at, reusing every artifact
// that is already durable. Registration is never repeated once its digest
// exists: repeating it would create a duplicate, orphaned storage object.
func (s *PublishService) Retry(ctx context.Context, ref string) (*models.UploadJob, error) {
	job, err := s.lookupJob(ctx, ref)
	if err != nil {
		return nil, err
	}
	jobID := job.ID
	retryable := job.Phase == models.PhaseError ||
		(job.Phase == models.PhaseCompleted && job.Listing == models.ListingNotListed)
	if !retryable {
		return nil, fmt.Errorf("job %s is %s, not retryable: %w", jobID, job.Phase, common.ErrInvalidInput)
	}

	s.mu.Lock()
	arts := s.artifacts[job.ID]
	if arts == nil && job.Published() {
		// Certified jobs only have ledger work left; no bytes needed.
		arts = &jobArtifacts{}
		s.artifacts[job.ID] = arts
	}
	s.mu.Unlock()
	if arts == nil {
		return nil, fmt.Errorf("job %s: %w", jobID, ErrArtifactsLost)
	}

	from := job.RetryPhase()
	job.Phase = from
	job.ErrorMsg = ""
	job.FailedPhase = ""

	s.log.Info(ctx, "retrying job", "job", job.ID, "phase", from)
	return s.runFrom(ctx, job, from)
}

// lookupJob resolves a job by its id or, failing that, by its registration
// digest. Digests show up in explorer output and relay logs, so they are the
// reference a user is most likely to have at hand for an orphaned job.
func (s *PublishService) lookupJob(ctx context.Context, ref string) (*models.UploadJob, error) {
	job, err := s.repo.GetByID(ctx, ref)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	byDigest, derr := s.repo.GetByRegistrationDigest(ctx, ref)
	if derr != nil {
		return nil, derr
	}
	if byDigest == nil {
		return nil, err
	}
	return byDigest, nil
}

// Jobs lists journal entries that have not finished cleanly, including
// orphaned registrations from previous runs of the process.
func (s *PublishService) Jobs(ctx context.Context) ([]*models.UploadJob, error) {
	return s.repo.GetUnfinished(ctx)
}

// Abandon removes a job from the journal. Ledger-side state, if any, stays
// behind as an explicit orphan for external cleanup tooling.
func (s *PublishService) Abandon(ctx context.Context, jobID string) error {
	s.mu.Lock()
	delete(s.artifacts, jobID)
	s.mu.Unlock()
	return s.repo.DeleteByID(ctx, jobID)
}

func (s *PublishService) readSource(req PublishRequest) ([]byte, error) {
	if len(req.Data) > 0 {
		// Exclusive copy: the caller's buffer must not be able to mutate
		// under the asynchronous encryption that follows.
		buf := make([]byte, len(req.Data))
		copy(buf, req.Data)
		return buf, nil
	}
	if req.FilePath == "" {
		return nil, fmt.Errorf("no file or data provided: %w", common.ErrInvalidInput)
	}
	buf, err := os.ReadFile(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %v: %w", req.FilePath, err, common.ErrInvalidInput)
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("%s is empty: %w", req.FilePath, common.ErrInvalidInput)
	}
	return buf, nil
}

// runFrom executes phases in order starting at from. At most one transition
// per job may be in flight; a second concurrent call fails with ErrJobBusy.
func (s *PublishService) runFrom(ctx context.Context, job *models.UploadJob, from models.Phase) (*models.UploadJob, error) {
	s.mu.Lock()
	if s.inflight[job.ID] {
		s.mu.Unlock()
		return job, ErrJobBusy
	}
	s.inflight[job.ID] = true
	arts := s.artifacts[job.ID]
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inflight, job.ID)
		s.mu.Unlock()
	}()

	type step struct {
		phase models.Phase
		fn    func(context.Context, *models.UploadJob, *jobArtifacts) error
	}
	pipeline := []step{
		{models.PhaseEncoding, s.stepEncode},
		{models.PhaseEncrypting, s.stepEncrypt},
		{models.PhaseRegistering, s.stepRegister},
		{models.PhaseUploading, s.stepUpload},
		{models.PhaseCertifying, s.stepCertify},
	}

	for _, st := range pipeline {
		if st.phase.Before(from) {
			continue
		}

		// Cancellation is cooperative and honored only before the register
		// transaction exists; past that point the only remedies are retry
		// or abandon, both of which leave ledger state as an explicit orphan.
		stepCtx := ctx
		if !st.phase.Before(models.PhaseRegistering) {
			stepCtx = context.WithoutCancel(ctx)
		} else if err := ctx.Err(); err != nil {
			return job, s.fail(ctx, job, st.phase, err)
		}

		s.enterPhase(ctx, job, st.phase)
		if err := st.fn(stepCtx, job, arts); err != nil {
			return job, s.fail(ctx, job, st.phase, err)
		}
	}

	job.Phase = models.PhaseCompleted
	s.setProgress(ctx, job, 100)
	s.persist(ctx, job)
	s.log.Info(ctx, "publish completed",
		"job", job.ID, "blob_id", job.BlobID, "object_id", job.StorageObjectID, "listing", string(job.Listing))

	s.mu.Lock()
	delete(s.artifacts, job.ID)
	s.mu.Unlock()

	return job, nil
}

func (s *PublishService) enterPhase(ctx context.Context, job *models.UploadJob, p models.Phase) {
	job.Phase = p
	s.setProgress(ctx, job, p.ProgressFloor())
	s.persist(ctx, job)
}

// setProgress advances the job percentage; it never moves backwards, for any
// interleaving of retries.
func (s *PublishService) setProgress(ctx context.Context, job *models.UploadJob, p int) {
	if p <= job.Progress {
		return
	}
	job.Progress = p
	s.sink.Publish(ProgressUpdate{JobID: job.ID, Phase: job.Phase, Percent: p})
}

func (s *PublishService) persist(ctx context.Context, job *models.UploadJob) {
	if err := s.repo.CreateOrUpdate(ctx, job); err != nil {
		// The journal is best-effort durability, not a gate on the pipeline.
		s.log.Warn(ctx, "failed to journal job state", "job", job.ID, "error", err)
	}
}

// fail records a classified failure. Unclassified errors are wrapped with
// phase and job context, never swallowed.
func (s *PublishService) fail(ctx context.Context, job *models.UploadJob, phase models.Phase, err error) error {
	wrapped := fmt.Errorf("job %s: phase %s: %w", job.ID, phase, err)
	job.Phase = models.PhaseError
	job.FailedPhase = phase
	job.ErrorMsg = wrapped.Error()
	s.persist(ctx, job)
	s.log.Error(ctx, "publish phase failed", "job", job.ID, "phase", string(phase), "error", err)
	return wrapped
}

func (s *PublishService) stepEncode(ctx context.Context, job *models.UploadJob, arts *jobArtifacts) error {
	if arts == nil || len(arts.plaintext) == 0 {
		return ErrArtifactsLost
	}
	s.setProgress(ctx, job, 5)
	return nil
}

func (s *PublishService) stepEncrypt(ctx context.Context, job *models.UploadJob, arts *jobArtifacts) error {
	encrypted, err := s.enc.Encrypt(ctx, arts.plaintext, s.cfg.PackageID)
	if err != nil {
		return err
	}
	arts.encrypted = encrypted

	// The ciphertext is immutable from here on; a retry of any later phase
	// reuses it rather than re-encrypting.
	encoded, err := relay.Encode(encrypted.Ciphertext)
	if err != nil {
		return err
	}
	arts.encoded = encoded

	job.EncryptionID = encrypted.ContentID
	job.CiphertextLen = len(encrypted.Ciphertext)
	job.BlobID = encoded.BlobID
	s.setProgress(ctx, job, models.PhaseEncrypting.ProgressCeil())
	return nil
}

func (s *PublishService) stepRegister(ctx context.Context, job *models.UploadJob, arts *jobArtifacts) error {
	if job.RegistrationDigest == "" {
		if arts.encoded == nil {
			return ErrArtifactsLost
		}

		if s.cfg.MinStorageBalance > 0 {
			if err := s.ledger.EnsureStorageBalance(ctx, s.cfg.MinStorageBalance, s.cfg.ExchangeAmount,
				s.cfg.ExchangePackageID, s.cfg.ExchangeObjectID); err != nil {
				return err
			}
		}
		s.setProgress(ctx, job, 25)

		sender := s.ledger.Sender()
		intent := s.relay.RegisterIntent(arts.encoded, sender, s.cfg.Epochs, s.cfg.Deletable, sender)
		digest, err := s.ledger.Submit(ctx, intent)
		if err != nil {
			return err
		}
		job.RegistrationDigest = digest
		s.persist(ctx, job)
		s.setProgress(ctx, job, 32)
	}

	// The digest may already be journaled with no object id: submission went
	// through but the finality wait failed in between. Waiting on the same
	// digest again is safe and never creates a second registration.
	effects, err := s.ledger.AwaitFinality(ctx, job.RegistrationDigest)
	if err != nil {
		return err
	}

	objectID, err := effects.CreatedObject(s.cfg.StorageObjectType)
	if err != nil {
		return err
	}
	job.StorageObjectID = objectID
	s.setProgress(ctx, job, models.PhaseRegistering.ProgressCeil())
	return nil
}

func (s *PublishService) stepUpload(ctx context.Context, job *models.UploadJob, arts *jobArtifacts) error {
	if arts.encoded == nil {
		return ErrArtifactsLost
	}

	floor := models.PhaseUploading.ProgressFloor()
	span := models.PhaseUploading.ProgressCeil() - floor
	onProgress := func(sent, total int64) {
		if total <= 0 {
			return
		}
		s.setProgress(ctx, job, floor+int(sent*int64(span)/total))
	}

	return s.relay.Upload(ctx, arts.encoded, job.RegistrationDigest, job.StorageObjectID, onProgress)
}

func (s *PublishService) stepCertify(ctx context.Context, job *models.UploadJob, arts *jobArtifacts) error {
	sender := s.ledger.Sender()

	if job.CertifyDigest == "" {
		intent := s.relay.CertifyIntent(arts.encoded, sender, job.StorageObjectID)
		digest, err := s.ledger.Submit(ctx, intent)
		if err != nil {
			return err
		}
		if _, err := s.ledger.AwaitFinality(ctx, digest); err != nil {
			return err
		}
		job.CertifyDigest = digest
		s.persist(ctx, job)
	}
	s.setProgress(ctx, job, 95)

	if arts.encoded != nil {
		refs := s.relay.ListPublished(arts.encoded, job.StorageObjectID, s.cfg.Epochs, s.cfg.Deletable, sender)
		if len(refs) > 0 {
			job.BlobID = refs[0].BlobID
		}
	}

	// The object is durable at this point. Attaching the marketplace record
	// is best-effort: a failure leaves a distinct "published but not listed"
	// condition, never a pipeline error.
	recordIntent := ledger.CreateContentRecordIntent(s.cfg.PackageID, sender, job.BlobID, job.Meta)
	recordDigest, err := s.ledger.Submit(ctx, recordIntent)
	if err != nil {
		job.Listing = models.ListingNotListed
		s.log.Warn(ctx, "certified but content record submission failed", "job", job.ID, "error", err)
		return nil
	}
	effects, err := s.ledger.AwaitFinality(ctx, recordDigest)
	if err != nil {
		job.Listing = models.ListingNotListed
		s.log.Warn(ctx, "certified but content record not finalized", "job", job.ID, "error", err)
		return nil
	}
	recordID, err := effects.CreatedObject(s.cfg.ContentRecordType)
	if err != nil {
		// Finalized effects with no record object: without the id the
		// record cannot be updated or unlisted later, so the job must not
		// present itself as listed.
		job.Listing = models.ListingNotListed
		s.log.Warn(ctx, "content record finalized but missing from effects", "job", job.ID, "error", err)
		return nil
	}
	job.ContentRecordID = recordID
	job.Listing = models.ListingListed
	return nil
}
