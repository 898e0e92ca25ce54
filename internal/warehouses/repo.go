package warehouses

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/uncoverhq/ops-backend/pkg/db/models"
	"github.com/uncoverhq/ops-backend/pkg/enums"
)

// Repository defines persistence operations for warehouses. FindByID also
// serves the transfer engine's warehouse lookups.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, warehouse *models.Warehouse) (*models.Warehouse, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error)
	Save(ctx context.Context, warehouse *models.Warehouse) (*models.Warehouse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, region *enums.Region) ([]models.Warehouse, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a warehouse repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, warehouse *models.Warehouse) (*models.Warehouse, error) {
	if err := r.db.WithContext(ctx).Create(warehouse).Error; err != nil {
		return nil, err
	}
	return warehouse, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	if err := r.db.WithContext(ctx).First(&warehouse, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &warehouse, nil
}

func (r *repository) Save(ctx context.Context, warehouse *models.Warehouse) (*models.Warehouse, error) {
	if err := r.db.WithContext(ctx).Save(warehouse).Error; err != nil {
		return nil, err
	}
	return warehouse, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Warehouse{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, region *enums.Region) ([]models.Warehouse, error) {
	query := r.db.WithContext(ctx).Model(&models.Warehouse{})
	if region != nil {
		query = query.Where("region = ?", *region)
	}

	var warehouses []models.Warehouse
	if err := query.Order("created_at ASC").Find(&warehouses).Error; err != nil {
		return nil, err
	}
	return warehouses, nil
}

// IsNotFound reports whether err is a missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
