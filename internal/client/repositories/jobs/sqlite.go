package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sealstream/internal/client/models"
	"github.com/dmitrijs2005/sealstream/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const jobColumns = `id, meta, phase, progress, error_msg, failed_phase,
	encryption_id, ciphertext_len, blob_id, registration_digest,
	storage_object_id, certify_digest, content_record_id, listing`

// CreateOrUpdate upserts a job by id. Every pipeline transition writes the
// whole row, so the journal always reflects the last completed transition.
func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, j *models.UploadJob) error {
	meta, err := json.Marshal(j.Meta)
	if err != nil {
		return fmt.Errorf("failed to serialize job metadata: %w", err)
	}

	query := ` INSERT INTO jobs (` + jobColumns + `, updated_at)
			values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
			ON CONFLICT(id) DO UPDATE SET meta = excluded.meta,
				phase = excluded.phase,
				progress = excluded.progress,
				error_msg = excluded.error_msg,
				failed_phase = excluded.failed_phase,
				encryption_id = excluded.encryption_id,
				ciphertext_len = excluded.ciphertext_len,
				blob_id = excluded.blob_id,
				registration_digest = excluded.registration_digest,
				storage_object_id = excluded.storage_object_id,
				certify_digest = excluded.certify_digest,
				content_record_id = excluded.content_record_id,
				listing = excluded.listing,
				updated_at = excluded.updated_at
	`
	_, err = r.db.ExecContext(ctx, query,
		j.ID, string(meta), string(j.Phase), j.Progress, j.ErrorMsg, string(j.FailedPhase),
		j.EncryptionID, j.CiphertextLen, j.BlobID, j.RegistrationDigest,
		j.StorageObjectID, j.CertifyDigest, j.ContentRecordID, string(j.Listing))
	if err != nil {
		return fmt.Errorf("failed to upsert job: %w", err)
	}
	return nil
}

func scanJob(row interface{ Scan(dest ...any) error }) (*models.UploadJob, error) {
	var j models.UploadJob
	var meta, phase, failedPhase, listing string

	err := row.Scan(&j.ID, &meta, &phase, &j.Progress, &j.ErrorMsg, &failedPhase,
		&j.EncryptionID, &j.CiphertextLen, &j.BlobID, &j.RegistrationDigest,
		&j.StorageObjectID, &j.CertifyDigest, &j.ContentRecordID, &listing)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(meta), &j.Meta); err != nil {
		return nil, fmt.Errorf("failed to parse job metadata: %w", err)
	}
	j.Phase = models.Phase(phase)
	j.FailedPhase = models.Phase(failedPhase)
	j.Listing = models.ListingState(listing)
	return &j, nil
}

// GetByID returns the job with the given id, or sql.ErrNoRows.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.UploadJob, error) {
	row := r.db.QueryRowContext(ctx, `select `+jobColumns+` from jobs where id=?`, id)
	j, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("failed to select job %s: %w", id, err)
	}
	return j, nil
}

// GetByRegistrationDigest finds the job that registered a storage object with
// the given transaction digest. Returns nil when no such job exists.
func (r *SQLiteRepository) GetByRegistrationDigest(ctx context.Context, digest string) (*models.UploadJob, error) {
	row := r.db.QueryRowContext(ctx, `select `+jobColumns+` from jobs where registration_digest=?`, digest)
	j, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to select job by digest %s: %w", digest, err)
	}
	return j, nil
}

// GetUnfinished lists jobs that have not reached a terminal phase, plus jobs
// that errored with durable artifacts still worth resuming.
func (r *SQLiteRepository) GetUnfinished(ctx context.Context) ([]*models.UploadJob, error) {
	query := `select ` + jobColumns + ` from jobs where phase not in (?, ?) or (phase = ? and registration_digest != '') order by updated_at`
	rows, err := r.db.QueryContext(ctx, query,
		string(models.PhaseCompleted), string(models.PhaseError), string(models.PhaseError))
	if err != nil {
		return nil, fmt.Errorf("failed to select unfinished jobs: %w", err)
	}
	defer rows.Close()

	var result []*models.UploadJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteByID removes a job from the journal.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `delete from jobs where id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job %s: %w", id, err)
	}
	return nil
}
