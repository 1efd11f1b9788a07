package repositories

import (
	"context"

	"github.com/yoockh/cvstudio/internal/models"
)

// UserRepository is implemented by the mongo and postgres stores.
type UserRepository interface {
	// Create returns utils.ErrDuplicateEmail when the unique email constraint fires.
	Create(ctx context.Context, u *models.User) error
	// FindByEmail returns utils.ErrNotFound when no user has the address.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type CVRecordRepository interface {
	Insert(ctx context.Context, rec *models.CVRecord) error
	GetByID(ctx context.Context, id string) (*models.CVRecord, error)
	// ListByOwner returns summaries, newest first: only the id, owner, upload time,
	// and the CV's header name, job title and key skills are filled in.
	ListByOwner(ctx context.Context, userID string, limit int) ([]models.CVRecord, error)
}
