package shipments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/uncoverhq/ops-backend/pkg/db/models"
	"github.com/uncoverhq/ops-backend/pkg/enums"
	"github.com/uncoverhq/ops-backend/pkg/pagination"
)

// ListFilters describe the inputs supported by the shipments list.
type ListFilters struct {
	Status                 *enums.ShipmentStatus
	DestinationWarehouseID *uuid.UUID
	Query                  string
}

// Repository defines persistence operations for inbound shipments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, shipment *models.Shipment) (*models.Shipment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error)
	Save(ctx context.Context, shipment *models.Shipment) (*models.Shipment, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Shipment, string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a shipments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, shipment *models.Shipment) (*models.Shipment, error) {
	if err := r.db.WithContext(ctx).Create(shipment).Error; err != nil {
		return nil, err
	}
	return shipment, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	var shipment models.Shipment
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&shipment).Error
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *repository) Save(ctx context.Context, shipment *models.Shipment) (*models.Shipment, error) {
	if err := r.db.WithContext(ctx).Save(shipment).Error; err != nil {
		return nil, err
	}
	return shipment, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Shipment, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Shipment{}).Preload("Items")
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DestinationWarehouseID != nil {
		query = query.Where("destination_warehouse_id = ?", *filters.DestinationWarehouseID)
	}
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("reference LIKE ? OR supplier LIKE ? OR origin LIKE ?", like, like, like)
	}

	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, "", err
		}
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var shipments []models.Shipment
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&shipments).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(shipments) > limit {
		shipments = shipments[:limit]
		last := shipments[len(shipments)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return shipments, nextCursor, nil
}

// IsNotFound reports whether err is a missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
