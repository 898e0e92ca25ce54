package mappings

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/uncoverhq/ops-backend/pkg/db/models"
	"github.com/uncoverhq/ops-backend/pkg/enums"
)

// Repository defines persistence operations for product platform mappings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, mapping *models.ProductMapping) (*models.ProductMapping, error)
	Save(ctx context.Context, mapping *models.ProductMapping) (*models.ProductMapping, error)
	FindByProductAndMarket(ctx context.Context, productID uuid.UUID, market enums.Region) (*models.ProductMapping, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.ProductMapping, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a mapping repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, mapping *models.ProductMapping) (*models.ProductMapping, error) {
	if err := r.db.WithContext(ctx).Create(mapping).Error; err != nil {
		return nil, err
	}
	return mapping, nil
}

func (r *repository) Save(ctx context.Context, mapping *models.ProductMapping) (*models.ProductMapping, error) {
	if err := r.db.WithContext(ctx).Save(mapping).Error; err != nil {
		return nil, err
	}
	return mapping, nil
}

func (r *repository) FindByProductAndMarket(ctx context.Context, productID uuid.UUID, market enums.Region) (*models.ProductMapping, error) {
	var mapping models.ProductMapping
	err := r.db.WithContext(ctx).
		First(&mapping, "product_id = ? AND market = ?", productID, market).Error
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

func (r *repository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.ProductMapping, error) {
	var list []models.ProductMapping
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("market ASC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// IsNotFound reports whether err is a missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
