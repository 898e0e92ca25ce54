package transfers

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/uncoverhq/ops-backend/internal/inventory"
	"github.com/uncoverhq/ops-backend/pkg/db"
	"github.com/uncoverhq/ops-backend/pkg/db/models"
	"github.com/uncoverhq/ops-backend/pkg/enums"
	pkgerrors "github.com/uncoverhq/ops-backend/pkg/errors"
)

const testWarehousesSchema = `
CREATE TABLE IF NOT EXISTS warehouses (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  location TEXT NOT NULL,
  region TEXT NOT NULL,
  capacity INTEGER NOT NULL DEFAULT 0,
  manager_name TEXT,
  manager_user_id TEXT,
  status TEXT NOT NULL DEFAULT 'active',
  delivery_platform TEXT NOT NULL DEFAULT 'none',
  last_audit_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`

const testProductsSchema = `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  sku TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  category TEXT NOT NULL,
  price_usd_cents INTEGER NOT NULL DEFAULT 0,
  price_kes_cents INTEGER NOT NULL DEFAULT 0,
  price_ngn_cents INTEGER NOT NULL DEFAULT 0,
  cost_cents INTEGER NOT NULL DEFAULT 0,
  stock INTEGER NOT NULL DEFAULT 0,
  reserved_stock INTEGER NOT NULL DEFAULT 0,
  available_stock INTEGER NOT NULL DEFAULT 0,
  reorder_level INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL,
  image_url TEXT,
  description TEXT,
  warehouse_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`

type gormWarehouseLoader struct {
	db *gorm.DB
}

func (l *gormWarehouseLoader) FindByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	if err := l.db.WithContext(ctx).First(&warehouse, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &warehouse, nil
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:transfers_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	for _, schema := range []string{testWarehousesSchema, testProductsSchema} {
		if err := conn.Exec(schema).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	svc, err := NewService(inventory.NewRepository(conn), &gormWarehouseLoader{db: conn}, db.FromGorm(conn), nil, nil, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func mustCreateWarehouse(t *testing.T, conn *gorm.DB, name string, region enums.Region) *models.Warehouse {
	t.Helper()
	warehouse := &models.Warehouse{
		ID:       uuid.New(),
		Name:     name,
		Location: name,
		Region:   region,
		Capacity: 10000,
		Status:   enums.WarehouseStatusActive,
	}
	if err := conn.Create(warehouse).Error; err != nil {
		t.Fatalf("create warehouse: %v", err)
	}
	return warehouse
}

func mustCreateProduct(t *testing.T, conn *gorm.DB, warehouseID *uuid.UUID, stock, reserved, reorder int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:             uuid.New(),
		SKU:            fmt.Sprintf("SKU-%s", uuid.NewString()),
		Name:           "Test Product",
		Category:       "electronics",
		Stock:          stock,
		ReservedStock:  reserved,
		AvailableStock: stock - reserved,
		ReorderLevel:   reorder,
		Status:         inventory.Classify(stock, reorder),
		WarehouseID:    warehouseID,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func TestTransferMovesProductOnly(t *testing.T) {
	t.Parallel()
	svc, conn := newTestService(t)
	ctx := context.Background()

	source := mustCreateWarehouse(t, conn, "Nairobi A", enums.RegionKenya)
	dest := mustCreateWarehouse(t, conn, "Nairobi B", enums.RegionKenya)
	product := mustCreateProduct(t, conn, &source.ID, 100, 10, 20)

	result, err := svc.Transfer(ctx, TransferInput{
		ProductID:         product.ID,
		SourceWarehouseID: source.ID,
		DestWarehouseID:   dest.ID,
		Quantity:          90,
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if result.Product.WarehouseID == nil || *result.Product.WarehouseID != dest.ID {
		t.Fatalf("expected destination assignment, got %v", result.Product.WarehouseID)
	}
	if result.Product.Stock != 100 || result.Product.ReservedStock != 10 || result.Product.AvailableStock != 90 {
		t.Fatalf("counts changed by transfer: %+v", result.Product)
	}
	if result.CrossRegion {
		t.Fatal("same-region transfer flagged as cross-region")
	}
}

func TestTransferCrossRegionAdvisory(t *testing.T) {
	t.Parallel()
	svc, conn := newTestService(t)

	source := mustCreateWarehouse(t, conn, "Nairobi", enums.RegionKenya)
	dest := mustCreateWarehouse(t, conn, "Lagos", enums.RegionNigeria)
	product := mustCreateProduct(t, conn, &source.ID, 50, 0, 5)

	result, err := svc.Transfer(context.Background(), TransferInput{
		ProductID:         product.ID,
		SourceWarehouseID: source.ID,
		DestWarehouseID:   dest.ID,
		Quantity:          10,
	})
	if err != nil {
		t.Fatalf("cross-region transfer should not be blocked: %v", err)
	}
	if !result.CrossRegion || result.Advisory == "" {
		t.Fatalf("expected cross-region advisory, got %+v", result)
	}
}

func TestTransferValidation(t *testing.T) {
	t.Parallel()
	svc, conn := newTestService(t)
	ctx := context.Background()

	source := mustCreateWarehouse(t, conn, "Source", enums.RegionKenya)
	dest := mustCreateWarehouse(t, conn, "Dest", enums.RegionKenya)
	other := mustCreateWarehouse(t, conn, "Other", enums.RegionKenya)
	product := mustCreateProduct(t, conn, &source.ID, 100, 10, 20)

	tests := []struct {
		name     string
		input    TransferInput
		wantCode pkgerrors.Code
	}{
		{
			"same warehouse",
			TransferInput{ProductID: product.ID, SourceWarehouseID: source.ID, DestWarehouseID: source.ID, Quantity: 1},
			pkgerrors.CodeValidation,
		},
		{
			"missing source warehouse",
			TransferInput{ProductID: product.ID, SourceWarehouseID: uuid.New(), DestWarehouseID: dest.ID, Quantity: 1},
			pkgerrors.CodeNotFound,
		},
		{
			"missing product",
			TransferInput{ProductID: uuid.New(), SourceWarehouseID: source.ID, DestWarehouseID: dest.ID, Quantity: 1},
			pkgerrors.CodeNotFound,
		},
		{
			"product in different warehouse",
			TransferInput{ProductID: product.ID, SourceWarehouseID: other.ID, DestWarehouseID: dest.ID, Quantity: 1},
			pkgerrors.CodeValidation,
		},
		{
			"zero quantity",
			TransferInput{ProductID: product.ID, SourceWarehouseID: source.ID, DestWarehouseID: dest.ID, Quantity: 0},
			pkgerrors.CodeValidation,
		},
		{
			"exceeds available",
			TransferInput{ProductID: product.ID, SourceWarehouseID: source.ID, DestWarehouseID: dest.ID, Quantity: 91},
			pkgerrors.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Transfer(ctx, tt.input)
			if err == nil {
				t.Fatal("expected error")
			}
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != tt.wantCode {
				t.Fatalf("expected code %s, got %v", tt.wantCode, err)
			}
		})
	}

	// failed attempts must not move the product
	var reloaded models.Product
	if err := conn.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.WarehouseID == nil || *reloaded.WarehouseID != source.ID {
		t.Fatalf("product moved by failed transfer: %v", reloaded.WarehouseID)
	}
}

func TestBulkTransferPartialSuccess(t *testing.T) {
	t.Parallel()
	svc, conn := newTestService(t)

	source := mustCreateWarehouse(t, conn, "Source", enums.RegionKenya)
	dest := mustCreateWarehouse(t, conn, "Dest", enums.RegionKenya)

	movable := mustCreateProduct(t, conn, &source.ID, 100, 0, 10)
	short := mustCreateProduct(t, conn, &source.ID, 5, 0, 10)
	elsewhere := mustCreateProduct(t, conn, &dest.ID, 50, 0, 10)

	result, err := svc.BulkTransfer(context.Background(), BulkTransferInput{
		SourceWarehouseID: source.ID,
		DestWarehouseID:   dest.ID,
		Items: []BulkTransferItem{
			{ProductID: movable.ID, Quantity: 40},
			{ProductID: short.ID, Quantity: 50},
			{ProductID: elsewhere.ID, Quantity: 1},
			{ProductID: uuid.New(), Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("bulk transfer: %v", err)
	}

	if result.MovedCount != 1 {
		t.Fatalf("expected 1 moved, got %d", result.MovedCount)
	}
	if result.TotalUnits != 40 {
		t.Fatalf("expected 40 units, got %d", result.TotalUnits)
	}
	if len(result.Skipped) != 3 {
		t.Fatalf("expected 3 skipped, got %d: %+v", len(result.Skipped), result.Skipped)
	}
	for _, skipped := range result.Skipped {
		if skipped.Reason == "" {
			t.Fatalf("skipped item missing reason: %+v", skipped)
		}
	}

	var moved models.Product
	if err := conn.First(&moved, "id = ?", movable.ID).Error; err != nil {
		t.Fatalf("reload moved product: %v", err)
	}
	if moved.WarehouseID == nil || *moved.WarehouseID != dest.ID {
		t.Fatal("valid line was not moved")
	}
}

func TestBulkTransferNoValidItems(t *testing.T) {
	t.Parallel()
	svc, conn := newTestService(t)
	ctx := context.Background()

	source := mustCreateWarehouse(t, conn, "Source", enums.RegionKenya)
	dest := mustCreateWarehouse(t, conn, "Dest", enums.RegionKenya)
	short := mustCreateProduct(t, conn, &source.ID, 5, 0, 10)

	_, err := svc.BulkTransfer(ctx, BulkTransferInput{
		SourceWarehouseID: source.ID,
		DestWarehouseID:   dest.ID,
		Items: []BulkTransferItem{
			{ProductID: short.ID, Quantity: 50},
			{ProductID: uuid.New(), Quantity: 1},
		},
	})
	if err == nil {
		t.Fatal("expected no-valid-items error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNoValidItems {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.BulkTransfer(ctx, BulkTransferInput{
		SourceWarehouseID: source.ID,
		DestWarehouseID:   dest.ID,
	})
	if err == nil {
		t.Fatal("expected error for empty request")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNoValidItems {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBulkTransferCrossRegionAdvisory(t *testing.T) {
	t.Parallel()
	svc, conn := newTestService(t)

	source := mustCreateWarehouse(t, conn, "Nairobi", enums.RegionKenya)
	dest := mustCreateWarehouse(t, conn, "Lagos", enums.RegionNigeria)
	product := mustCreateProduct(t, conn, &source.ID, 30, 0, 5)

	result, err := svc.BulkTransfer(context.Background(), BulkTransferInput{
		SourceWarehouseID: source.ID,
		DestWarehouseID:   dest.ID,
		Items:             []BulkTransferItem{{ProductID: product.ID, Quantity: 10}},
	})
	if err != nil {
		t.Fatalf("bulk transfer: %v", err)
	}
	if !result.CrossRegion || result.Advisory == "" {
		t.Fatalf("expected advisory, got %+v", result)
	}
}
