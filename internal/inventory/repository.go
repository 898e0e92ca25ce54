package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/uncoverhq/ops-backend/pkg/db/models"
	"github.com/uncoverhq/ops-backend/pkg/enums"
	"github.com/uncoverhq/ops-backend/pkg/pagination"
)

// ListFilters describe the supported filter knobs for the product listing.
type ListFilters struct {
	WarehouseID *uuid.UUID
	Status      *enums.StockStatus
	Category    string
	Query       string
}

// ListInput captures the inputs needed to paginate/filter products.
type ListInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

// Repository wires together product persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Save persists all fields of an existing product.
func (r *Repository) Save(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// FindByID loads the product or returns gorm.ErrRecordNotFound.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindBySKU loads a product by its unique SKU.
func (r *Repository) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Delete removes the product row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns a page of products ordered by created_at desc, id desc, plus the
// cursor for the next page.
func (r *Repository) List(ctx context.Context, input ListInput) ([]models.Product, string, error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if input.Filters.WarehouseID != nil {
		query = query.Where("warehouse_id = ?", *input.Filters.WarehouseID)
	}
	if input.Filters.Status != nil {
		query = query.Where("status = ?", *input.Filters.Status)
	}
	if category := strings.TrimSpace(input.Filters.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	if q := strings.TrimSpace(input.Filters.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", like, like)
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var products []models.Product
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&products).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(products) > limit {
		products = products[:limit]
		last := products[len(products)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return products, nextCursor, nil
}

// CountByStatus returns product counts grouped by stock status.
func (r *Repository) CountByStatus(ctx context.Context) (map[enums.StockStatus]int64, error) {
	type row struct {
		Status enums.StockStatus
		Total  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[enums.StockStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}

// SumStockByWarehouse returns total on-hand stock per warehouse.
func (r *Repository) SumStockByWarehouse(ctx context.Context) (map[uuid.UUID]int64, error) {
	type row struct {
		WarehouseID *uuid.UUID
		Total       int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("warehouse_id, COALESCE(SUM(stock), 0) AS total").
		Where("warehouse_id IS NOT NULL").
		Group("warehouse_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	totals := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		if r.WarehouseID != nil {
			totals[*r.WarehouseID] = r.Total
		}
	}
	return totals, nil
}

// IsNotFound reports whether the error is the repository's missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
