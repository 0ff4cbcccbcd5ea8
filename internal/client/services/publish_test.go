package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/sealstream/internal/client/models"
	"github.com/dmitrijs2005/sealstream/internal/common"
	"github.com/dmitrijs2005/sealstream/internal/ledger"
	"github.com/dmitrijs2005/sealstream/internal/logging"
	"github.com/dmitrijs2005/sealstream/internal/relay"
	"github.com/stretchr/testify/require"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testMeta() models.ContentMetadata {
	return models.ContentMetadata{
		Title:       "Test Clip",
		Description: "A test clip",
		Category:    "music",
		Tags:        []string{"live"},
		Price:       100,
	}
}

// memRepo is an in-memory job journal. Freezing it makes updates no-ops,
// which lets tests pin the journal at a known state.
type memRepo struct {
	mu     sync.Mutex
	jobs   map[string]models.UploadJob
	frozen bool
}

func newMemRepo() *memRepo {
	return &memRepo{jobs: make(map[string]models.UploadJob)}
}

func (r *memRepo) CreateOrUpdate(ctx context.Context, job *models.UploadJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return nil
	}
	r.jobs[job.ID] = *job
	return nil
}

func (r *memRepo) freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

func (r *memRepo) GetByID(ctx context.Context, id string) (*models.UploadJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", id, sql.ErrNoRows)
	}
	cp := j
	return &cp, nil
}

func (r *memRepo) GetByRegistrationDigest(ctx context.Context, digest string) (*models.UploadJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.jobs {
		if j.RegistrationDigest == digest {
			cp := j
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRepo) GetUnfinished(ctx context.Context) ([]*models.UploadJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.UploadJob
	for _, j := range r.jobs {
		if j.Phase != models.PhaseCompleted {
			cp := j
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memRepo) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
	return nil
}

// fakeEncrypter produces a deterministic envelope-like ciphertext.
type fakeEncrypter struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeEncrypter) Encrypt(ctx context.Context, plaintext []byte, namespace string) (*models.EncryptedPayload, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &models.EncryptedPayload{
		Ciphertext: append([]byte("sealed:"), plaintext...),
		ContentID:  "aabbccddee",
	}, nil
}

func (f *fakeEncrypter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeRelay counts protocol calls and lets tests script upload outcomes.
type fakeRelay struct {
	mu             sync.Mutex
	registerCalls  int
	certifyCalls   int
	uploadCalls    int
	uploadErrs     []error // consumed one per call; nil means success
	uploadStarted  chan struct{}
	uploadRelease  chan struct{}
	uploadObserved struct {
		digest   string
		objectID string
	}
}

func (f *fakeRelay) RegisterIntent(encoded *relay.EncodedPayload, sender string, epochs uint64, deletable bool, owner string) *ledger.TxIntent {
	f.mu.Lock()
	f.registerCalls++
	f.mu.Unlock()
	return ledger.RegisterStorageObjectIntent("0xpkg", sender, encoded.BlobID, encoded.Size, epochs, deletable, owner)
}

func (f *fakeRelay) CertifyIntent(encoded *relay.EncodedPayload, sender, storageObjectID string) *ledger.TxIntent {
	f.mu.Lock()
	f.certifyCalls++
	f.mu.Unlock()
	blobID := ""
	if encoded != nil {
		blobID = encoded.BlobID
	}
	return ledger.CertifyStorageObjectIntent("0xpkg", sender, blobID, storageObjectID)
}

func (f *fakeRelay) Upload(ctx context.Context, encoded *relay.EncodedPayload, registrationDigest, storageObjectID string, onProgress func(sent, total int64)) error {
	f.mu.Lock()
	f.uploadCalls++
	call := f.uploadCalls
	f.uploadObserved.digest = registrationDigest
	f.uploadObserved.objectID = storageObjectID
	f.mu.Unlock()

	if f.uploadStarted != nil {
		f.uploadStarted <- struct{}{}
	}
	if f.uploadRelease != nil {
		<-f.uploadRelease
	}

	if onProgress != nil {
		onProgress(encoded.Size/2, encoded.Size)
		onProgress(encoded.Size, encoded.Size)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if call <= len(f.uploadErrs) {
		return f.uploadErrs[call-1]
	}
	return nil
}

func (f *fakeRelay) ListPublished(encoded *relay.EncodedPayload, storageObjectID string, epochs uint64, deletable bool, owner string) []models.StorageObjectReference {
	return []models.StorageObjectReference{{
		BlobID:    encoded.BlobID,
		ObjectID:  storageObjectID,
		Epochs:    epochs,
		Deletable: deletable,
		Owner:     owner,
	}}
}

func (f *fakeRelay) counts() (register, upload, certify int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registerCalls, f.uploadCalls, f.certifyCalls
}

// fakeLedger scripts transaction outcomes by entry-point name.
type fakeLedger struct {
	mu           sync.Mutex
	digestSeq    int
	submitErrs   map[string]error // function name -> error for next submit
	submitCounts map[string]int
	ensureCalls  int
	ensureErr    error

	// effects returned by AwaitFinality, keyed by the function that
	// produced the digest.
	noCreatedObject bool
	noRecordObject  bool

	awaitErrs   map[string]error // function name -> error for next finality wait
	awaitCounts map[string]int

	digestFn map[string]string // digest -> function name
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		submitErrs:   make(map[string]error),
		submitCounts: make(map[string]int),
		awaitErrs:    make(map[string]error),
		awaitCounts:  make(map[string]int),
		digestFn:     make(map[string]string),
	}
}

func (f *fakeLedger) Sender() string { return "0xsender" }

func (f *fakeLedger) Submit(ctx context.Context, intent *ledger.TxIntent) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fn := intent.Calls[0].Function
	f.submitCounts[fn]++
	if err := f.submitErrs[fn]; err != nil {
		return "", err
	}

	f.digestSeq++
	digest := fmt.Sprintf("digest-%d", f.digestSeq)
	f.digestFn[digest] = fn
	return digest, nil
}

func (f *fakeLedger) AwaitFinality(ctx context.Context, digest string) (*ledger.TxEffects, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fn := f.digestFn[digest]
	f.awaitCounts[fn]++
	if err := f.awaitErrs[fn]; err != nil {
		delete(f.awaitErrs, fn)
		return nil, err
	}

	effects := &ledger.TxEffects{Digest: digest, Status: "success"}
	if f.noCreatedObject {
		return effects, nil
	}
	switch fn {
	case "register_storage_object":
		effects.ObjectChanges = []ledger.ObjectChange{
			{Kind: "created", Type: "0xpkg::storage::StorageObject", ObjectID: "0xstorage"},
		}
	case "create_content_record":
		if f.noRecordObject {
			break
		}
		effects.ObjectChanges = []ledger.ObjectChange{
			{Kind: "created", Type: "0xpkg::content_access::ContentRecord", ObjectID: "0xrecord"},
		}
	}
	return effects, nil
}

func (f *fakeLedger) EnsureStorageBalance(ctx context.Context, min, exchangeAmount uint64, exchangePkg, exchangeObjectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensureCalls++
	return f.ensureErr
}

func (f *fakeLedger) submits(fn string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitCounts[fn]
}

func (f *fakeLedger) awaits(fn string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.awaitCounts[fn]
}

// recordingSink collects every progress update, in order.
type recordingSink struct {
	mu      sync.Mutex
	updates []ProgressUpdate
}

func (s *recordingSink) Publish(u ProgressUpdate) {
	s.mu.Lock()
	s.updates = append(s.updates, u)
	s.mu.Unlock()
}

func (s *recordingSink) all() []ProgressUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ProgressUpdate(nil), s.updates...)
}

func testPublishConfig() PublishConfig {
	return PublishConfig{
		PackageID:         "0xpkg",
		Epochs:            30,
		Deletable:         true,
		StorageObjectType: "::storage::StorageObject",
		ContentRecordType: "::content_access::ContentRecord",
		MinStorageBalance: 100,
		ExchangeAmount:    1000,
		ExchangePackageID: "0xex",
		ExchangeObjectID:  "0xpool",
	}
}

type fixture struct {
	enc    *fakeEncrypter
	relay  *fakeRelay
	ledger *fakeLedger
	repo   *memRepo
	sink   *recordingSink
	svc    *PublishService
}

func newFixture() *fixture {
	f := &fixture{
		enc:    &fakeEncrypter{},
		relay:  &fakeRelay{},
		ledger: newFakeLedger(),
		repo:   newMemRepo(),
		sink:   &recordingSink{},
	}
	f.svc = NewPublishService(f.enc, f.relay, f.ledger, f.repo, f.sink, testLogger(), testPublishConfig())
	return f
}

func TestPublishSuccess(t *testing.T) {
	f := newFixture()
	data := bytes.Repeat([]byte{0x42}, 10<<20)

	job, err := f.svc.Publish(context.Background(), PublishRequest{Data: data, Meta: testMeta()})
	require.NoError(t, err)

	require.Equal(t, models.PhaseCompleted, job.Phase)
	require.Equal(t, 100, job.Progress)
	require.NotEmpty(t, job.BlobID)
	require.NotEmpty(t, job.StorageObjectID)
	require.NotEmpty(t, job.RegistrationDigest)
	require.NotEmpty(t, job.CertifyDigest)
	require.Equal(t, "0xrecord", job.ContentRecordID)
	require.Equal(t, models.ListingListed, job.Listing)
	require.Equal(t, "aabbccddee", job.EncryptionID)
	require.Greater(t, job.CiphertextLen, len(data))

	register, upload, certify := f.relay.counts()
	require.Equal(t, 1, register)
	require.Equal(t, 1, upload)
	require.Equal(t, 1, certify)
	require.Equal(t, 1, f.enc.callCount())
	require.Equal(t, 1, f.ledger.ensureCalls)

	// The upload was tagged with the registration digest.
	require.Equal(t, job.RegistrationDigest, f.relay.uploadObserved.digest)
	require.Equal(t, job.StorageObjectID, f.relay.uploadObserved.objectID)

	// The journal converged on the final state.
	stored, err := f.repo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, models.PhaseCompleted, stored.Phase)
}

func TestPublishValidatesMetadata(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Publish(context.Background(), PublishRequest{
		Data: []byte("data"),
		Meta: models.ContentMetadata{Description: "no title"},
	})
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = f.svc.Publish(context.Background(), PublishRequest{Meta: testMeta()})
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestUploadTimeoutRetryReusesArtifacts(t *testing.T) {
	f := newFixture()
	f.relay.uploadErrs = []error{fmt.Errorf("after 5m0s: %w", common.ErrUploadTimeout)}

	job, err := f.svc.Publish(context.Background(), PublishRequest{Data: []byte("payload"), Meta: testMeta()})
	require.ErrorIs(t, err, common.ErrUploadTimeout)
	require.Equal(t, models.PhaseError, job.Phase)
	require.Equal(t, models.PhaseUploading, job.FailedPhase)
	require.NotEmpty(t, job.RegistrationDigest)

	retried, err := f.svc.Retry(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, models.PhaseCompleted, retried.Phase)

	// The retry re-entered uploading without touching earlier phases.
	register, upload, _ := f.relay.counts()
	require.Equal(t, 1, register)
	require.Equal(t, 2, upload)
	require.Equal(t, 1, f.enc.callCount())
	require.Equal(t, 1, f.ledger.submits("register_storage_object"))
}

func TestUploadNeverSucceedsNoCertify(t *testing.T) {
	f := newFixture()
	f.relay.uploadErrs = []error{
		common.ErrUploadTimeout, common.ErrUploadTimeout, common.ErrUploadTimeout,
	}

	job, err := f.svc.Publish(context.Background(), PublishRequest{Data: []byte("payload"), Meta: testMeta()})
	require.Error(t, err)

	for i := 0; i < 2; i++ {
		_, err = f.svc.Retry(context.Background(), job.ID)
		require.ErrorIs(t, err, common.ErrUploadTimeout)
	}

	// An uncertified blob never becomes visible as published.
	_, _, certify := f.relay.counts()
	require.Zero(t, certify)
	require.Zero(t, f.ledger.submits("certify_storage_object"))

	stored, err := f.repo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	require.Empty(t, stored.CertifyDigest)
}

func TestSignerRejectionIsRecoverable(t *testing.T) {
	f := newFixture()
	f.ledger.submitErrs["register_storage_object"] = fmt.Errorf("declined: %w", common.ErrUserRejected)

	job, err := f.svc.Publish(context.Background(), PublishRequest{Data: []byte("payload"), Meta: testMeta()})
	require.ErrorIs(t, err, common.ErrUserRejected)
	require.Equal(t, models.PhaseRegistering, job.FailedPhase)
	require.Empty(t, job.RegistrationDigest)

	// Approving on the second attempt resumes at register; the ciphertext
	// is reused, not rebuilt.
	f.ledger.mu.Lock()
	delete(f.ledger.submitErrs, "register_storage_object")
	f.ledger.mu.Unlock()

	retried, err := f.svc.Retry(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, models.PhaseCompleted, retried.Phase)
	require.Equal(t, 1, f.enc.callCount())
}

func TestRetryRejectsHealthyJob(t *testing.T) {
	f := newFixture()

	job, err := f.svc.Publish(context.Background(), PublishRequest{Data: []byte("payload"), Meta: testMeta()})
	require.NoError(t, err)

	_, err = f.svc.Retry(context.Background(), job.ID)
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestRegisterFinalityWithoutObjectIsFatal(t *testing.T) {
	f := newFixture()
	f.ledger.noCreatedObject = true

	job, err := f.svc.Publish(context.Background(), PublishRequest{Data: []byte("payload"), Meta: testMeta()})
	require.ErrorIs(t, err, common.ErrObjectNotFound)
	require.NotEmpty(t, job.RegistrationDigest)
	require.Empty(t, job.StorageObjectID)

	// A digest whose effects hold no object is protocol drift. A retry
	// re-checks the effects but must not submit a second registration.
	_, err = f.svc.Retry(context.Background(), job.ID)
	require.ErrorIs(t, err, common.ErrObjectNotFound)
	require.Equal(t, 1, f.ledger.submits("register_storage_object"))
	require.Equal(t, 2, f.ledger.awaits("register_storage_object"))
}

func TestRegisterFinalityBlipIsRecoverable(t *testing.T) {
	f := newFixture()
	f.ledger.awaitErrs["register_storage_object"] = errors.New("rpc: connection reset by peer")

	job, err := f.svc.Publish(context.Background(), PublishRequest{Data: []byte("payload"), Meta: testMeta()})
	require.Error(t, err)
	require.Equal(t, models.PhaseError, job.Phase)
	require.Equal(t, models.PhaseRegistering, job.FailedPhase)
	require.NotEmpty(t, job.RegistrationDigest)
	require.Empty(t, job.StorageObjectID)

	// The registration is on the ledger; the retry resumes at the finality
	// wait instead of refusing or resubmitting.
	retried, err := f.svc.Retry(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, models.PhaseCompleted, retried.Phase)
	require.Equal(t, "0xstorage", retried.StorageObjectID)
	require.Equal(t, 1, f.ledger.submits("register_storage_object"))
	require.Equal(t, 2, f.ledger.awaits("register_storage_object"))
	require.Equal(t, 1, f.ledger.ensureCalls)
}

func TestRetryResolvesJobByRegistrationDigest(t *testing.T) {
	f := newFixture()
	f.relay.uploadErrs = []error{common.ErrUploadTimeout}

	job, err := f.svc.Publish(context.Background(), PublishRequest{Data: []byte("payload"), Meta: testMeta()})
	require.ErrorIs(t, err, common.ErrUploadTimeout)
	require.NotEmpty(t, job.RegistrationDigest)

	retried, err := f.svc.Retry(context.Background(), job.RegistrationDigest)
	require.NoError(t, err)
	require.Equal(t, job.ID, retried.ID)
	require.Equal(t, models.PhaseCompleted, retried.Phase)

	_, err = f.svc.Retry(context.Background(), "no-such-ref")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListingRecordMissingFromEffects(t *testing.T) {
	f := newFixture()
	f.ledger.noRecordObject = true

	job, err := f.svc.Publish(context.Background(), PublishRequest{Data: []byte("payload"), Meta: testMeta()})
	require.NoError(t, err)

	// Finalized record effects without a record object: the blob is durable
	// but the job must not claim a listing it has no record id for.
	require.Equal(t, models.PhaseCompleted, job.Phase)
	require.Equal(t, models.ListingNotListed, job.Listing)
	require.Empty(t, job.ContentRecordID)
}

func TestMonotonicProgress(t *testing.T) {
	f := newFixture()
	f.relay.uploadErrs = []error{common.ErrUploadTimeout}

	job, err := f.svc.Publish(context.Background(), PublishRequest{Data: []byte("payload"), Meta: testMeta()})
	require.Error(t, err)

	_, err = f.svc.Retry(context.Background(), job.ID)
	require.NoError(t, err)

	updates := f.sink.all()
	require.NotEmpty(t, updates)
	last := 0
	for _, u := range updates {
		require.GreaterOrEqual(t, u.Percent, last, "progress went backwards at %v", u)
		last = u.Percent
	}
	require.Equal(t, 100, last)
}

func TestConcurrentTransitionRejected(t *testing.T) {
	f := newFixture()
	f.relay.uploadErrs = []error{common.ErrUploadTimeout}

	job, err := f.svc.Publish(context.Background(), PublishRequest{Data: []byte("payload"), Meta: testMeta()})
	require.Error(t, err)

	// Pin the journal at the failed state so both retries pass the phase
	// check and race for the same in-flight slot.
	f.repo.freeze()
	f.relay.uploadStarted = make(chan struct{})
	f.relay.uploadRelease = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Retry(context.Background(), job.ID)
		done <- err
	}()

	<-f.relay.uploadStarted
	_, err = f.svc.Retry(context.Background(), job.ID)
	require.ErrorIs(t, err, ErrJobBusy)

	close(f.relay.uploadRelease)
	require.NoError(t, <-done)
}

func TestCancelledBeforeRegisterStopsPipeline(t *testing.T) {
	f := newFixture()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job, err := f.svc.Publish(ctx, PublishRequest{Data: []byte("payload"), Meta: testMeta()})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, models.PhaseError, job.Phase)
	require.Zero(t, f.ledger.submits("register_storage_object"))
}

func TestCancelAfterRegisterDoesNotAbort(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())

	// Cancel arrives while the upload is in flight: by then the register
	// transaction exists, so the pipeline runs to completion.
	f.relay.uploadStarted = make(chan struct{}, 1)
	f.relay.uploadRelease = make(chan struct{})
	go func() {
		<-f.relay.uploadStarted
		cancel()
		close(f.relay.uploadRelease)
	}()

	job, err := f.svc.Publish(ctx, PublishRequest{Data: []byte("payload"), Meta: testMeta()})
	require.NoError(t, err)
	require.Equal(t, models.PhaseCompleted, job.Phase)
	require.NotEmpty(t, job.CertifyDigest)
}

func TestCertifiedButNotListed(t *testing.T) {
	f := newFixture()
	f.ledger.submitErrs["create_content_record"] = errors.New("gas object busy")

	job, err := f.svc.Publish(context.Background(), PublishRequest{Data: []byte("payload"), Meta: testMeta()})
	require.NoError(t, err)

	// The blob is durable and certified; only the marketplace record is
	// missing, which is a distinct sub-state, not a failure.
	require.Equal(t, models.PhaseCompleted, job.Phase)
	require.NotEmpty(t, job.CertifyDigest)
	require.Equal(t, models.ListingNotListed, job.Listing)
	require.Empty(t, job.ContentRecordID)

	f.ledger.mu.Lock()
	delete(f.ledger.submitErrs, "create_content_record")
	f.ledger.mu.Unlock()

	retried, err := f.svc.Retry(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, models.ListingListed, retried.Listing)
	require.Equal(t, "0xrecord", retried.ContentRecordID)

	// Certification is never repeated.
	require.Equal(t, 1, f.ledger.submits("certify_storage_object"))
	require.Equal(t, job.CertifyDigest, retried.CertifyDigest)
}

func TestRetryAfterRestartReportsArtifactsLost(t *testing.T) {
	f := newFixture()
	f.relay.uploadErrs = []error{common.ErrUploadTimeout}

	job, err := f.svc.Publish(context.Background(), PublishRequest{Data: []byte("payload"), Meta: testMeta()})
	require.Error(t, err)

	// A new service over the same journal simulates a process restart: the
	// identifiers survived, the bytes did not.
	svc2 := NewPublishService(f.enc, f.relay, f.ledger, f.repo, f.sink, testLogger(), testPublishConfig())
	_, err = svc2.Retry(context.Background(), job.ID)
	require.ErrorIs(t, err, ErrArtifactsLost)
}

func TestAbandon(t *testing.T) {
	f := newFixture()
	f.relay.uploadErrs = []error{common.ErrUploadTimeout}

	job, err := f.svc.Publish(context.Background(), PublishRequest{Data: []byte("payload"), Meta: testMeta()})
	require.Error(t, err)

	require.NoError(t, f.svc.Abandon(context.Background(), job.ID))

	list, err := f.svc.Jobs(context.Background())
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestEncryptionUnavailableFailsBeforeLedger(t *testing.T) {
	f := newFixture()
	f.enc.err = fmt.Errorf("got 1 of 2 required shards: %w", common.ErrEncryptionUnavailable)

	job, err := f.svc.Publish(context.Background(), PublishRequest{Data: []byte("payload"), Meta: testMeta()})
	require.ErrorIs(t, err, common.ErrEncryptionUnavailable)
	require.Equal(t, models.PhaseEncrypting, job.FailedPhase)
	require.Zero(t, f.ledger.submits("register_storage_object"))
	require.Zero(t, f.ledger.ensureCalls)
}

func TestPublishFromFile(t *testing.T) {
	f := newFixture()

	path := filepath.Join(t.TempDir(), "clip.bin")
	require.NoError(t, os.WriteFile(path, []byte("file payload"), 0o600))

	job, err := f.svc.Publish(context.Background(), PublishRequest{FilePath: path, Meta: testMeta()})
	require.NoError(t, err)
	require.Equal(t, models.PhaseCompleted, job.Phase)
}
