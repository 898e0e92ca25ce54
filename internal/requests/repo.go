package requests

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/uncoverhq/ops-backend/pkg/db/models"
	"github.com/uncoverhq/ops-backend/pkg/enums"
)

// Repository defines persistence operations for product requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.ProductRequest) (*models.ProductRequest, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.ProductRequest, error)
	Save(ctx context.Context, request *models.ProductRequest) (*models.ProductRequest, error)
	List(ctx context.Context, status *enums.RequestStatus) ([]models.ProductRequest, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a request repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.ProductRequest) (*models.ProductRequest, error) {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ProductRequest, error) {
	var request models.ProductRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) Save(ctx context.Context, request *models.ProductRequest) (*models.ProductRequest, error) {
	if err := r.db.WithContext(ctx).Save(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

func (r *repository) List(ctx context.Context, status *enums.RequestStatus) ([]models.ProductRequest, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductRequest{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var list []models.ProductRequest
	if err := query.Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// IsNotFound reports whether err is a missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
