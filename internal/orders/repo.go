package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/uncoverhq/ops-backend/pkg/db/models"
	"github.com/uncoverhq/ops-backend/pkg/enums"
	"github.com/uncoverhq/ops-backend/pkg/pagination"
)

// ListFilters describe the inputs supported by the orders list.
type ListFilters struct {
	Status   *enums.OrderStatus
	Source   *enums.OrderSource
	Type     *enums.OrderType
	DateFrom *time.Time
	DateTo   *time.Time
	Query    string
}

// Repository defines persistence operations for orders and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Save(ctx context.Context, order *models.Order) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) Save(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Order{}).Preload("Items")
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Source != nil {
		query = query.Where("source = ?", *filters.Source)
	}
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("reference LIKE ? OR customer_name LIKE ? OR customer_email LIKE ?", like, like, like)
	}

	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, "", err
		}
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var orders []models.Order
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&orders).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(orders) > limit {
		orders = orders[:limit]
		last := orders[len(orders)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return orders, nextCursor, nil
}

// IsNotFound reports whether err is a missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
