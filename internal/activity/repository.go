package activity

import (
	"context"

	"gorm.io/gorm"

	"github.com/uncoverhq/ops-backend/pkg/db/models"
	"github.com/uncoverhq/ops-backend/pkg/enums"
)

// Repository manages persistence for activity log entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.ActivityLog) error
	ListLatest(ctx context.Context, logType *enums.ActivityType, limit int) ([]models.ActivityLog, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an activity repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListLatest(ctx context.Context, logType *enums.ActivityType, limit int) ([]models.ActivityLog, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityLog{})
	if logType != nil {
		query = query.Where("type = ?", *logType)
	}

	var entries []models.ActivityLog
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
