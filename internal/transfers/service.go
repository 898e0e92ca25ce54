package transfers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/uncoverhq/ops-backend/internal/inventory"
	"github.com/uncoverhq/ops-backend/pkg/db"
	"github.com/uncoverhq/ops-backend/pkg/db/models"
	"github.com/uncoverhq/ops-backend/pkg/enums"
	pkgerrors "github.com/uncoverhq/ops-backend/pkg/errors"
	"github.com/uncoverhq/ops-backend/pkg/logger"
	"github.com/uncoverhq/ops-backend/pkg/metrics"
)

// Service reassigns products between warehouses. Transfers never change stock
// counts, only the warehouse assignment.
type Service interface {
	Transfer(ctx context.Context, input TransferInput) (*TransferResult, error)
	BulkTransfer(ctx context.Context, input BulkTransferInput) (*BulkTransferResult, error)
}

// TransferInput moves one product between warehouses.
type TransferInput struct {
	ProductID         uuid.UUID
	SourceWarehouseID uuid.UUID
	DestWarehouseID   uuid.UUID
	Quantity          int
	ActorUserID       *uuid.UUID
}

// TransferResult reports a completed single transfer.
type TransferResult struct {
	Product     *inventory.ProductDTO `json:"product"`
	Quantity    int                   `json:"quantity"`
	CrossRegion bool                  `json:"cross_region"`
	Advisory    string                `json:"advisory,omitempty"`
}

// BulkTransferItem is one product line in a bulk transfer request.
type BulkTransferItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// BulkTransferInput moves several products from one warehouse to another.
type BulkTransferInput struct {
	Items             []BulkTransferItem
	SourceWarehouseID uuid.UUID
	DestWarehouseID   uuid.UUID
	ActorUserID       *uuid.UUID
}

// SkippedItem explains why a bulk line was not moved.
type SkippedItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Reason    string    `json:"reason"`
}

// BulkTransferResult reports the partial-success outcome of a bulk transfer.
type BulkTransferResult struct {
	MovedCount  int           `json:"moved_count"`
	TotalUnits  int           `json:"total_units"`
	Skipped     []SkippedItem `json:"skipped,omitempty"`
	CrossRegion bool          `json:"cross_region"`
	Advisory    string        `json:"advisory,omitempty"`
}

const crossRegionAdvisory = "transfer crosses regions; customs and logistics lead times apply"

type warehouseLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error)
}

type activityRecorder interface {
	Record(ctx context.Context, logType enums.ActivityType, message string, details *string, actorUserID *uuid.UUID) error
}

type service struct {
	inventoryRepo *inventory.Repository
	warehouses    warehouseLoader
	dbClient      *db.Client
	activity      activityRecorder
	metrics       *metrics.InventoryMetrics
	logg          *logger.Logger
}

// NewService constructs the transfer engine.
func NewService(inventoryRepo *inventory.Repository, warehouses warehouseLoader, dbClient *db.Client, activity activityRecorder, m *metrics.InventoryMetrics, logg *logger.Logger) (Service, error) {
	if inventoryRepo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if warehouses == nil {
		return nil, fmt.Errorf("warehouse loader required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		inventoryRepo: inventoryRepo,
		warehouses:    warehouses,
		dbClient:      dbClient,
		activity:      activity,
		metrics:       m,
		logg:          logg,
	}, nil
}

// Transfer validates and applies a single warehouse reassignment. The
// cross-region advisory is informational and never blocks the move.
func (s *service) Transfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	source, dest, err := s.loadWarehousePair(ctx, input.SourceWarehouseID, input.DestWarehouseID)
	if err != nil {
		return nil, err
	}

	result := &TransferResult{Quantity: input.Quantity}
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.inventoryRepo.WithTx(tx)

		product, err := txRepo.FindByID(ctx, input.ProductID)
		if err != nil {
			if inventory.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
		}

		if reason := transferBlockReason(product, source.ID, input.Quantity); reason != "" {
			return pkgerrors.New(pkgerrors.CodeValidation, reason)
		}

		product.WarehouseID = &dest.ID
		saved, err := txRepo.Save(ctx, product)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save product")
		}
		result.Product = inventory.NewProductDTO(saved)
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transfer")
	}

	if source.Region != dest.Region {
		result.CrossRegion = true
		result.Advisory = crossRegionAdvisory
	}

	s.metrics.IncTransfer("single")
	s.record(ctx, fmt.Sprintf("Transferred %d units of %s from %s to %s",
		input.Quantity, result.Product.SKU, source.Name, dest.Name), input.ActorUserID)

	return result, nil
}

// BulkTransfer applies every valid line and silently skips the rest. It fails
// only when no line at all is movable.
func (s *service) BulkTransfer(ctx context.Context, input BulkTransferInput) (*BulkTransferResult, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNoValidItems, "no transfer items in request")
	}

	source, dest, err := s.loadWarehousePair(ctx, input.SourceWarehouseID, input.DestWarehouseID)
	if err != nil {
		return nil, err
	}

	result := &BulkTransferResult{}
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.inventoryRepo.WithTx(tx)

		for _, item := range input.Items {
			product, err := txRepo.FindByID(ctx, item.ProductID)
			if err != nil {
				if inventory.IsNotFound(err) {
					result.Skipped = append(result.Skipped, SkippedItem{ProductID: item.ProductID, Reason: "product not found"})
					continue
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
			}

			if reason := transferBlockReason(product, source.ID, item.Quantity); reason != "" {
				result.Skipped = append(result.Skipped, SkippedItem{ProductID: item.ProductID, Reason: reason})
				continue
			}

			product.WarehouseID = &dest.ID
			if _, err := txRepo.Save(ctx, product); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save product")
			}
			result.MovedCount++
			result.TotalUnits += item.Quantity
		}

		if result.MovedCount == 0 {
			return pkgerrors.New(pkgerrors.CodeNoValidItems, "no valid transfers in request")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bulk transfer")
	}

	if source.Region != dest.Region {
		result.CrossRegion = true
		result.Advisory = crossRegionAdvisory
	}

	s.metrics.IncTransfer("bulk")
	s.record(ctx, fmt.Sprintf("Bulk transferred %d products (%d units) from %s to %s",
		result.MovedCount, result.TotalUnits, source.Name, dest.Name), input.ActorUserID)

	return result, nil
}

func (s *service) loadWarehousePair(ctx context.Context, sourceID, destID uuid.UUID) (*models.Warehouse, *models.Warehouse, error) {
	if sourceID == destID {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "source and destination warehouses must differ")
	}

	source, err := s.warehouses.FindByID(ctx, sourceID)
	if err != nil {
		if inventory.IsNotFound(err) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "source warehouse not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load source warehouse")
	}

	dest, err := s.warehouses.FindByID(ctx, destID)
	if err != nil {
		if inventory.IsNotFound(err) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "destination warehouse not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load destination warehouse")
	}

	return source, dest, nil
}

// transferBlockReason returns a human-readable reason when the line cannot be
// moved, or "" when it is valid.
func transferBlockReason(product *models.Product, sourceID uuid.UUID, quantity int) string {
	if product.WarehouseID == nil || *product.WarehouseID != sourceID {
		return "product is not located in the source warehouse"
	}
	if quantity <= 0 {
		return "quantity must be positive"
	}
	if quantity > product.AvailableStock {
		return fmt.Sprintf("quantity %d exceeds available stock %d", quantity, product.AvailableStock)
	}
	return ""
}

func (s *service) record(ctx context.Context, message string, actorUserID *uuid.UUID) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(ctx, enums.ActivityTypeTransfer, message, nil, actorUserID); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"activity_error": err.Error()}), "activity record failed")
	}
}
