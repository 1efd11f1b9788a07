package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/cvstudio/internal/models"
	"github.com/yoockh/cvstudio/internal/repositories"
	"github.com/yoockh/cvstudio/internal/utils"
	"gorm.io/gorm"
)

type cvRecordRepo struct {
	db *gorm.DB
}

func NewCVRecordRepo(db *gorm.DB) repositories.CVRecordRepository {
	return &cvRecordRepo{db: db}
}

func (r *cvRecordRepo) Insert(ctx context.Context, rec *models.CVRecord) error {
	if rec.UploadedAt.IsZero() {
		rec.UploadedAt = time.Now().UTC()
	}
	row, err := recordToRow(rec)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *cvRecordRepo) GetByID(ctx context.Context, id string) (*models.CVRecord, error) {
	var row cvRecordRow
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toModel()
}

func (r *cvRecordRepo) ListByOwner(ctx context.Context, userID string, limit int) ([]models.CVRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []cvRecordRow
	err := r.db.WithContext(ctx).
		Select(summaryColumns).
		Where("uploaded_by = ?", userID).
		Order("uploaded_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]models.CVRecord, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toSummary())
	}
	return out, nil
}
