package shipments

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/uncoverhq/ops-backend/internal/fulfillment"
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

const testShipmentsSchema = `
CREATE TABLE IF NOT EXISTS shipments (
  id TEXT PRIMARY KEY,
  reference TEXT NOT NULL UNIQUE,
  supplier TEXT NOT NULL,
  origin TEXT NOT NULL,
  destination_warehouse_id TEXT NOT NULL,
  total_units INTEGER NOT NULL DEFAULT 0,
  total_value_cents INTEGER NOT NULL DEFAULT 0,
  currency TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'created',
  carrier TEXT,
  tracking_number TEXT,
  container_number TEXT,
  estimated_arrival DATETIME,
  actual_arrival DATETIME,
  created_by_user_id TEXT,
  received_by_user_id TEXT,
  received_at DATETIME,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`

const testShipmentItemsSchema = `
CREATE TABLE IF NOT EXISTS shipment_items (
  id TEXT PRIMARY KEY,
  shipment_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  sku TEXT NOT NULL,
  product_name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_cost_cents INTEGER NOT NULL DEFAULT 0,
  total_cost_cents INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
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
	dsn := "file:shipments_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	for _, schema := range []string{testWarehousesSchema, testProductsSchema, testShipmentsSchema, testShipmentItemsSchema} {
		if err := conn.Exec(schema).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	inventoryRepo := inventory.NewRepository(conn)
	creditor, err := fulfillment.NewDebitor(inventoryRepo, nil, nil)
	if err != nil {
		t.Fatalf("new debitor: %v", err)
	}
	svc, err := NewService(NewRepository(conn), inventoryRepo, &gormWarehouseLoader{db: conn}, db.FromGorm(conn), creditor, nil, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func mustCreateWarehouse(t *testing.T, conn *gorm.DB) *models.Warehouse {
	t.Helper()
	warehouse := &models.Warehouse{
		ID:       uuid.New(),
		Name:     "Lagos Hub",
		Location: "Lagos",
		Region:   enums.RegionNigeria,
		Capacity: 5000,
		Status:   enums.WarehouseStatusActive,
	}
	if err := conn.Create(warehouse).Error; err != nil {
		t.Fatalf("create warehouse: %v", err)
	}
	return warehouse
}

func mustCreateProduct(t *testing.T, conn *gorm.DB, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:             uuid.New(),
		SKU:            fmt.Sprintf("SKU-%s", uuid.NewString()),
		Name:           "Black Soap 200g",
		Category:       "beauty",
		Stock:          stock,
		AvailableStock: stock,
		ReorderLevel:   10,
		Status:         inventory.Classify(stock, 10),
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func mustCreateShipment(t *testing.T, svc Service, conn *gorm.DB, quantity int) (*ShipmentDTO, *models.Product) {
	t.Helper()
	warehouse := mustCreateWarehouse(t, conn)
	product := mustCreateProduct(t, conn, 5)
	shipment, err := svc.CreateShipment(context.Background(), CreateInput{
		Supplier:               "Dangote Trading",
		Origin:                 "Accra",
		DestinationWarehouseID: warehouse.ID,
		Currency:               enums.CurrencyUSD,
		Carrier:                "Maersk",
		Items:                  []CreateItemInput{{ProductID: product.ID, Quantity: quantity, UnitCostCents: 250}},
	})
	if err != nil {
		t.Fatalf("create shipment: %v", err)
	}
	return shipment, product
}

func reloadProduct(t *testing.T, conn *gorm.DB, id uuid.UUID) *models.Product {
	t.Helper()
	var product models.Product
	if err := conn.First(&product, "id = ?", id).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	return &product
}

func TestCreateShipmentComputesTotals(t *testing.T) {
	t.Parallel()
	svc, conn := newTestService(t)

	shipment, product := mustCreateShipment(t, svc, conn, 40)

	if shipment.Status != enums.ShipmentStatusCreated {
		t.Fatalf("expected created, got %s", shipment.Status)
	}
	if shipment.TotalUnits != 40 || shipment.TotalValueCents != 10000 {
		t.Fatalf("unexpected totals: %+v", shipment)
	}
	if len(shipment.Items) != 1 || shipment.Items[0].SKU != product.SKU {
		t.Fatalf("item not denormalized: %+v", shipment.Items)
	}
	if shipment.Reference == "" {
		t.Fatal("reference not generated")
	}

	// creating a shipment must not touch stock
	got := reloadProduct(t, conn, product.ID)
	if got.Stock != 5 {
		t.Fatalf("stock changed on shipment creation: %d", got.Stock)
	}
}

func TestCreateShipmentValidation(t *testing.T) {
	t.Parallel()
	svc, conn := newTestService(t)
	warehouse := mustCreateWarehouse(t, conn)
	product := mustCreateProduct(t, conn, 5)

	valid := CreateInput{
		Supplier:               "Dangote Trading",
		Origin:                 "Accra",
		DestinationWarehouseID: warehouse.ID,
		Currency:               enums.CurrencyUSD,
		Items:                  []CreateItemInput{{ProductID: product.ID, Quantity: 1, UnitCostCents: 100}},
	}

	tests := []struct {
		name     string
		mutate   func(*CreateInput)
		wantCode pkgerrors.Code
	}{
		{"missing supplier", func(in *CreateInput) { in.Supplier = " " }, pkgerrors.CodeValidation},
		{"missing origin", func(in *CreateInput) { in.Origin = "" }, pkgerrors.CodeValidation},
		{"invalid currency", func(in *CreateInput) { in.Currency = "EUR" }, pkgerrors.CodeValidation},
		{"no items", func(in *CreateInput) { in.Items = nil }, pkgerrors.CodeValidation},
		{"zero quantity", func(in *CreateInput) {
			in.Items = []CreateItemInput{{ProductID: product.ID, Quantity: 0, UnitCostCents: 100}}
		}, pkgerrors.CodeValidation},
		{"unknown warehouse", func(in *CreateInput) { in.DestinationWarehouseID = uuid.New() }, pkgerrors.CodeNotFound},
		{"unknown product", func(in *CreateInput) {
			in.Items = []CreateItemInput{{ProductID: uuid.New(), Quantity: 1, UnitCostCents: 100}}
		}, pkgerrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid
			tt.mutate(&input)
			_, err := svc.CreateShipment(context.Background(), input)
			if err == nil {
				t.Fatal("expected error")
			}
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != tt.wantCode {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestAdvanceForwardOnly(t *testing.T) {
	t.Parallel()
	svc, conn := newTestService(t)
	ctx := context.Background()

	shipment, _ := mustCreateShipment(t, svc, conn, 10)

	moved, err := svc.Advance(ctx, shipment.ID, enums.ShipmentStatusAtPort, nil)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if moved.Status != enums.ShipmentStatusAtPort {
		t.Fatalf("expected at_port, got %s", moved.Status)
	}

	// backward and same-status moves are rejected
	for _, target := range []enums.ShipmentStatus{enums.ShipmentStatusCreated, enums.ShipmentStatusInTransit, enums.ShipmentStatusAtPort} {
		if _, err := svc.Advance(ctx, shipment.ID, target, nil); err == nil {
			t.Fatalf("expected rejection moving to %s", target)
		} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// received is not reachable through advance
	if _, err := svc.Advance(ctx, shipment.ID, enums.ShipmentStatusReceived, nil); err == nil {
		t.Fatal("advance to received must be rejected")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReceiveCreditsStockExactlyOnce(t *testing.T) {
	t.Parallel()
	svc, conn := newTestService(t)
	ctx := context.Background()

	shipment, product := mustCreateShipment(t, svc, conn, 40)

	actor := uuid.New()
	outcome, err := svc.Receive(ctx, shipment.ID, &actor)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if outcome.Shipment.Status != enums.ShipmentStatusReceived {
		t.Fatalf("expected received, got %s", outcome.Shipment.Status)
	}
	if outcome.Shipment.ReceivedAt == nil || outcome.Shipment.ActualArrival == nil {
		t.Fatal("receive timestamps not set")
	}
	if outcome.Shipment.ReceivedByUserID == nil || *outcome.Shipment.ReceivedByUserID != actor {
		t.Fatal("receiver not recorded")
	}
	if outcome.Credit.TotalApplied != 40 {
		t.Fatalf("expected 40 units credited, got %d", outcome.Credit.TotalApplied)
	}

	got := reloadProduct(t, conn, product.ID)
	if got.Stock != 45 || got.Status != enums.StockStatusInStock {
		t.Fatalf("credit not applied: %+v", got)
	}

	// a second receive must not credit again
	if _, err := svc.Receive(ctx, shipment.ID, &actor); err == nil {
		t.Fatal("repeated receive must be rejected")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error: %v", err)
	}

	got = reloadProduct(t, conn, product.ID)
	if got.Stock != 45 {
		t.Fatalf("stock credited twice: %d", got.Stock)
	}
}

func TestReceiveSkipsMissingProducts(t *testing.T) {
	t.Parallel()
	svc, conn := newTestService(t)
	ctx := context.Background()

	shipment, product := mustCreateShipment(t, svc, conn, 10)
	if err := conn.Delete(&models.Product{}, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("delete product: %v", err)
	}

	outcome, err := svc.Receive(ctx, shipment.ID, nil)
	if err != nil {
		t.Fatalf("receive with missing product must still succeed: %v", err)
	}
	if outcome.Shipment.Status != enums.ShipmentStatusReceived {
		t.Fatalf("expected received, got %s", outcome.Shipment.Status)
	}
	if len(outcome.Credit.MissingProducts) != 1 {
		t.Fatalf("missing product not reported: %+v", outcome.Credit)
	}
}
