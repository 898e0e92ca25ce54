package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/uncoverhq/ops-backend/pkg/db"
	"github.com/uncoverhq/ops-backend/pkg/db/models"
	"github.com/uncoverhq/ops-backend/pkg/enums"
	pkgerrors "github.com/uncoverhq/ops-backend/pkg/errors"
	"github.com/uncoverhq/ops-backend/pkg/logger"
	"github.com/uncoverhq/ops-backend/pkg/metrics"
)

// Service owns every write to stock, reserved stock, and their derived fields.
// Available stock and status are never written directly by callers.
type Service interface {
	CreateProduct(ctx context.Context, input CreateInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID, actorUserID *uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListInput) ([]ProductDTO, string, error)
	AdjustStock(ctx context.Context, productID uuid.UUID, delta int, actorUserID *uuid.UUID) (*AdjustResult, error)
	SetWarehouse(ctx context.Context, productID uuid.UUID, warehouseID *uuid.UUID) (*ProductDTO, error)
}

// CreateInput holds the validated payload to create a product.
type CreateInput struct {
	SKU           string
	Name          string
	Category      string
	PriceUSDCents int
	PriceKESCents int
	PriceNGNCents int
	CostCents     int
	Stock         int
	ReservedStock int
	ReorderLevel  int
	ImageURL      *string
	Description   *string
	WarehouseID   *uuid.UUID
	ActorUserID   *uuid.UUID
}

// UpdateInput holds optional mutation values for a product.
type UpdateInput struct {
	Name          *string
	Category      *string
	PriceUSDCents *int
	PriceKESCents *int
	PriceNGNCents *int
	CostCents     *int
	Stock         *int
	ReservedStock *int
	ReorderLevel  *int
	ImageURL      *string
	Description   *string
	ActorUserID   *uuid.UUID
}

// AdjustResult reports the outcome of a stock adjustment.
type AdjustResult struct {
	Product *ProductDTO `json:"product"`
	Applied int         `json:"applied"`
	Clamped bool        `json:"clamped"`
}

type activityRecorder interface {
	Record(ctx context.Context, logType enums.ActivityType, message string, details *string, actorUserID *uuid.UUID) error
}

// service implements the inventory ledger.
type service struct {
	repo     *Repository
	dbClient *db.Client
	activity activityRecorder
	metrics  *metrics.InventoryMetrics
	logg     *logger.Logger
}

// NewService constructs the inventory service.
func NewService(repo *Repository, dbClient *db.Client, activity activityRecorder, m *metrics.InventoryMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		activity: activity,
		metrics:  m,
		logg:     logg,
	}, nil
}

// CreateProduct validates the counts and inserts the product with derived
// fields computed.
func (s *service) CreateProduct(ctx context.Context, input CreateInput) (*ProductDTO, error) {
	if err := validateCounts(input.Stock, input.ReservedStock, input.ReorderLevel); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.SKU) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	product := &models.Product{
		SKU:           strings.TrimSpace(input.SKU),
		Name:          strings.TrimSpace(input.Name),
		Category:      strings.TrimSpace(input.Category),
		PriceUSDCents: input.PriceUSDCents,
		PriceKESCents: input.PriceKESCents,
		PriceNGNCents: input.PriceNGNCents,
		CostCents:     input.CostCents,
		Stock:         input.Stock,
		ReservedStock: input.ReservedStock,
		ReorderLevel:  input.ReorderLevel,
		ImageURL:      input.ImageURL,
		Description:   input.Description,
		WarehouseID:   input.WarehouseID,
	}
	recompute(product)

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			conflict := pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
			if existing, lookupErr := s.repo.FindBySKU(ctx, product.SKU); lookupErr == nil {
				conflict = conflict.WithDetails(map[string]any{"product_id": existing.ID})
			}
			return nil, conflict
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}

	s.record(ctx, enums.ActivityTypeInventory,
		fmt.Sprintf("Product %s created with %d units", created.SKU, created.Stock),
		nil, input.ActorUserID)
	s.refreshStatusCounts(ctx)

	return NewProductDTO(created), nil
}

// UpdateProduct applies the provided fields and recomputes derived state in a
// single transaction.
func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateInput) (*ProductDTO, error) {
	var updated *models.Product
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		product, err := txRepo.FindByID(ctx, productID)
		if err != nil {
			if IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
		}

		applyUpdate(product, input)
		if err := validateCounts(product.Stock, product.ReservedStock, product.ReorderLevel); err != nil {
			return err
		}
		recompute(product)

		if updated, err = txRepo.Save(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save product")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	s.record(ctx, enums.ActivityTypeInventory,
		fmt.Sprintf("Product %s updated", updated.SKU),
		nil, input.ActorUserID)
	s.refreshStatusCounts(ctx)

	return NewProductDTO(updated), nil
}

// DeleteProduct removes the product.
func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID, actorUserID *uuid.UUID) error {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	if err := s.repo.Delete(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
	}

	s.record(ctx, enums.ActivityTypeInventory,
		fmt.Sprintf("Product %s deleted", product.SKU),
		nil, actorUserID)
	s.refreshStatusCounts(ctx)
	return nil
}

// GetProduct loads one product.
func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return NewProductDTO(product), nil
}

// ListProducts returns a filtered page plus the next cursor.
func (s *service) ListProducts(ctx context.Context, input ListInput) ([]ProductDTO, string, error) {
	products, nextCursor, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	return NewProductDTOs(products), nextCursor, nil
}

// AdjustStock applies a signed delta to on-hand stock, clamping at zero. A
// debit below zero is clamped rather than rejected; reserved stock is lowered
// when it would exceed the new on-hand count.
func (s *service) AdjustStock(ctx context.Context, productID uuid.UUID, delta int, actorUserID *uuid.UUID) (*AdjustResult, error) {
	result := &AdjustResult{}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		product, err := txRepo.FindByID(ctx, productID)
		if err != nil {
			if IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
		}

		result.Applied, result.Clamped = ApplyDelta(product, delta)

		saved, err := txRepo.Save(ctx, product)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save product")
		}
		result.Product = NewProductDTO(saved)
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust stock")
	}

	direction := "credit"
	if delta < 0 {
		direction = "debit"
	}
	s.metrics.IncAdjustment(direction)
	if result.Clamped {
		s.metrics.IncClampedDebit()
		if s.logg != nil {
			ctx := s.logg.WithFields(ctx, map[string]any{
				"product_id": productID.String(),
				"delta":      delta,
				"applied":    result.Applied,
			})
			s.logg.Warn(ctx, "stock debit clamped at zero")
		}
	}
	s.refreshStatusCounts(ctx)

	return result, nil
}

// SetWarehouse reassigns the product's location. Counts are untouched.
func (s *service) SetWarehouse(ctx context.Context, productID uuid.UUID, warehouseID *uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	product.WarehouseID = warehouseID
	saved, err := s.repo.Save(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save product")
	}
	return NewProductDTO(saved), nil
}

// refreshStatusCounts re-exports the per-status product counts after a write.
// Statuses with no products are reset to zero so the gauge never goes stale.
func (s *service) refreshStatusCounts(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"count_error": err.Error()}), "status count refresh failed")
		}
		return
	}
	for _, status := range []enums.StockStatus{enums.StockStatusInStock, enums.StockStatusLowStock, enums.StockStatusOutOfStock} {
		s.metrics.SetStatusCount(status.String(), float64(counts[status]))
	}
}

func (s *service) record(ctx context.Context, logType enums.ActivityType, message string, details *string, actorUserID *uuid.UUID) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(ctx, logType, message, details, actorUserID); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"activity_error": err.Error()}), "activity record failed")
	}
}

// ApplyDelta mutates the product counts for a signed stock delta. A debit past
// zero is clamped rather than rejected; reserved stock is lowered when it would
// exceed the new on-hand count. Derived fields are recomputed in place.
func ApplyDelta(product *models.Product, delta int) (applied int, clamped bool) {
	newStock := product.Stock + delta
	if newStock < 0 {
		clamped = true
		newStock = 0
	}
	applied = newStock - product.Stock

	product.Stock = newStock
	if product.ReservedStock > newStock {
		product.ReservedStock = newStock
	}
	recompute(product)
	return applied, clamped
}

// recompute derives available stock and status. Every stock write funnels
// through here.
func recompute(product *models.Product) {
	product.AvailableStock = product.Stock - product.ReservedStock
	product.Status = Classify(product.Stock, product.ReorderLevel)
}

func validateCounts(stock, reserved, reorderLevel int) error {
	if stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if reserved < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "reserved_stock cannot be negative")
	}
	if reserved > stock {
		return pkgerrors.New(pkgerrors.CodeValidation, "reserved_stock cannot exceed stock")
	}
	if reorderLevel < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "reorder_level cannot be negative")
	}
	return nil
}

func applyUpdate(product *models.Product, input UpdateInput) {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.PriceUSDCents != nil {
		product.PriceUSDCents = *input.PriceUSDCents
	}
	if input.PriceKESCents != nil {
		product.PriceKESCents = *input.PriceKESCents
	}
	if input.PriceNGNCents != nil {
		product.PriceNGNCents = *input.PriceNGNCents
	}
	if input.CostCents != nil {
		product.CostCents = *input.CostCents
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.ReservedStock != nil {
		product.ReservedStock = *input.ReservedStock
	}
	if input.ReorderLevel != nil {
		product.ReorderLevel = *input.ReorderLevel
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.Description != nil {
		product.Description = input.Description
	}
}
