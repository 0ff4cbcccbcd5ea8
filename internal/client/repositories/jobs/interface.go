// Package jobs persists publish-job state in the local database so a killed
// process can resume a pipeline at the phase it reached, instead of leaving a
// registered storage object undiscoverable.
package jobs

import (
	"context"

	"github.com/dmitrijs2005/sealstream/internal/client/models"
)

// Repository stores and retrieves upload jobs.
type Repository interface {
	CreateOrUpdate(ctx context.Context, job *models.UploadJob) error
	GetByID(ctx context.Context, id string) (*models.UploadJob, error)
	GetByRegistrationDigest(ctx context.Context, digest string) (*models.UploadJob, error)
	GetUnfinished(ctx context.Context) ([]*models.UploadJob, error)
	DeleteByID(ctx context.Context, id string) error
}
