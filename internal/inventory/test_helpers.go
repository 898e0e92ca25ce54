package inventory

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/uncoverhq/ops-backend/pkg/db"
	"github.com/uncoverhq/ops-backend/pkg/db/models"
	"github.com/uncoverhq/ops-backend/pkg/enums"
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

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	for _, schema := range []string{testWarehousesSchema, testProductsSchema} {
		if err := conn.Exec(schema).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return conn
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := newTestDB(t)
	svc, err := NewService(NewRepository(conn), db.FromGorm(conn), nil, nil, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func mustCreateProduct(t *testing.T, svc Service, stock, reserved, reorder int) *ProductDTO {
	t.Helper()
	dto, err := svc.CreateProduct(context.Background(), CreateInput{
		SKU:           fmt.Sprintf("SKU-%s", uuid.NewString()),
		Name:          "Test Product",
		Category:      "electronics",
		Stock:         stock,
		ReservedStock: reserved,
		ReorderLevel:  reorder,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return dto
}

func mustCreateWarehouse(t *testing.T, conn *gorm.DB, region enums.Region) *models.Warehouse {
	t.Helper()
	warehouse := &models.Warehouse{
		ID:       uuid.New(),
		Name:     "Test Warehouse",
		Location: "Nairobi",
		Region:   region,
		Capacity: 10000,
		Status:   enums.WarehouseStatusActive,
	}
	if err := conn.Create(warehouse).Error; err != nil {
		t.Fatalf("create warehouse: %v", err)
	}
	return warehouse
}
