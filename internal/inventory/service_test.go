package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/uncoverhq/ops-backend/pkg/db"
	"github.com/uncoverhq/ops-backend/pkg/enums"
	pkgerrors "github.com/uncoverhq/ops-backend/pkg/errors"
	"github.com/uncoverhq/ops-backend/pkg/metrics"
)

func TestCreateProductDerivesFields(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	dto := mustCreateProduct(t, svc, 100, 10, 20)

	if dto.AvailableStock != 90 {
		t.Fatalf("expected available 90, got %d", dto.AvailableStock)
	}
	if dto.Status != enums.StockStatusInStock.String() {
		t.Fatalf("expected in_stock, got %s", dto.Status)
	}
}

func TestCreateProductValidation(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateInput
	}{
		{"negative stock", CreateInput{SKU: "A", Name: "a", Stock: -1}},
		{"negative reserved", CreateInput{SKU: "A", Name: "a", ReservedStock: -1}},
		{"reserved exceeds stock", CreateInput{SKU: "A", Name: "a", Stock: 5, ReservedStock: 6}},
		{"negative reorder", CreateInput{SKU: "A", Name: "a", ReorderLevel: -1}},
		{"missing sku", CreateInput{Name: "a"}},
		{"missing name", CreateInput{SKU: "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, tt.input)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateProduct(ctx, CreateInput{SKU: "DUP-1", Name: "First", Stock: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.CreateProduct(ctx, CreateInput{SKU: "DUP-1", Name: "Second", Stock: 1})
	if err == nil {
		t.Fatal("expected conflict error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("unexpected error: %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details with the existing product id, got %v", typed.Details())
	}
	if details["product_id"] != first.ID {
		t.Fatalf("expected existing product id %s, got %v", first.ID, details["product_id"])
	}
}

func TestUpdateProductRecomputesDerivedFields(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	dto := mustCreateProduct(t, svc, 100, 10, 20)

	newStock := 15
	updated, err := svc.UpdateProduct(ctx, dto.ID, UpdateInput{Stock: &newStock})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.AvailableStock != 5 {
		t.Fatalf("expected available 5, got %d", updated.AvailableStock)
	}
	if updated.Status != enums.StockStatusLowStock.String() {
		t.Fatalf("expected low_stock, got %s", updated.Status)
	}
}

func TestUpdateProductRejectsInvalidCombination(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	dto := mustCreateProduct(t, svc, 10, 2, 5)

	reserved := 20
	_, err := svc.UpdateProduct(ctx, dto.ID, UpdateInput{ReservedStock: &reserved})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}

	// rejected update must not leave partial state behind
	reloaded, err := svc.GetProduct(ctx, dto.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reloaded.ReservedStock != 2 || reloaded.AvailableStock != 8 {
		t.Fatalf("state mutated by failed update: %+v", reloaded)
	}
}

func TestAdjustStockCredit(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	dto := mustCreateProduct(t, svc, 10, 0, 20)

	result, err := svc.AdjustStock(context.Background(), dto.ID, 15, nil)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if result.Clamped {
		t.Fatal("credit should not clamp")
	}
	if result.Applied != 15 {
		t.Fatalf("expected applied 15, got %d", result.Applied)
	}
	if result.Product.Stock != 25 || result.Product.Status != enums.StockStatusInStock.String() {
		t.Fatalf("unexpected product state: %+v", result.Product)
	}
}

func TestAdjustStockClampsAtZero(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	dto := mustCreateProduct(t, svc, 10, 4, 20)

	result, err := svc.AdjustStock(context.Background(), dto.ID, -25, nil)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if !result.Clamped {
		t.Fatal("expected clamped debit")
	}
	if result.Applied != -10 {
		t.Fatalf("expected applied -10, got %d", result.Applied)
	}
	if result.Product.Stock != 0 {
		t.Fatalf("expected stock 0, got %d", result.Product.Stock)
	}
	if result.Product.ReservedStock != 0 {
		t.Fatalf("reserved should be clamped to stock, got %d", result.Product.ReservedStock)
	}
	if result.Product.AvailableStock != 0 {
		t.Fatalf("expected available 0, got %d", result.Product.AvailableStock)
	}
	if result.Product.Status != enums.StockStatusOutOfStock.String() {
		t.Fatalf("expected out_of_stock, got %s", result.Product.Status)
	}
}

func TestAdjustStockNotFound(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	_, err := svc.AdjustStock(context.Background(), uuid.New(), 1, nil)
	if err == nil {
		t.Fatal("expected not found")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetWarehouseLeavesCountsUntouched(t *testing.T) {
	t.Parallel()
	svc, conn := newTestService(t)

	warehouse := mustCreateWarehouse(t, conn, enums.RegionKenya)
	dto := mustCreateProduct(t, svc, 50, 5, 10)

	moved, err := svc.SetWarehouse(context.Background(), dto.ID, &warehouse.ID)
	if err != nil {
		t.Fatalf("set warehouse: %v", err)
	}
	if moved.WarehouseID == nil || *moved.WarehouseID != warehouse.ID {
		t.Fatalf("expected warehouse assignment, got %v", moved.WarehouseID)
	}
	if moved.Stock != 50 || moved.ReservedStock != 5 || moved.AvailableStock != 45 {
		t.Fatalf("counts changed on reassignment: %+v", moved)
	}
}

func TestDeleteProduct(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	dto := mustCreateProduct(t, svc, 5, 0, 2)

	if err := svc.DeleteProduct(ctx, dto.ID, nil); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetProduct(ctx, dto.ID); err == nil {
		t.Fatal("expected not found after delete")
	}
	if err := svc.DeleteProduct(ctx, dto.ID, nil); err == nil {
		t.Fatal("expected not found on second delete")
	}
}

func TestListProductsFiltersAndPagination(t *testing.T) {
	t.Parallel()
	svc, conn := newTestService(t)
	ctx := context.Background()

	warehouse := mustCreateWarehouse(t, conn, enums.RegionNigeria)

	for i := 0; i < 3; i++ {
		dto := mustCreateProduct(t, svc, 10, 0, 2)
		if _, err := svc.SetWarehouse(ctx, dto.ID, &warehouse.ID); err != nil {
			t.Fatalf("assign warehouse: %v", err)
		}
	}
	mustCreateProduct(t, svc, 0, 0, 2) // out of stock, unassigned

	byWarehouse, _, err := svc.ListProducts(ctx, ListInput{
		Filters: ListFilters{WarehouseID: &warehouse.ID},
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(byWarehouse) != 3 {
		t.Fatalf("expected 3 products in warehouse, got %d", len(byWarehouse))
	}

	outOfStock := enums.StockStatusOutOfStock
	byStatus, _, err := svc.ListProducts(ctx, ListInput{
		Filters: ListFilters{Status: &outOfStock},
	})
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(byStatus) != 1 {
		t.Fatalf("expected 1 out-of-stock product, got %d", len(byStatus))
	}
}

func TestStockWritesRefreshStatusGauge(t *testing.T) {
	t.Parallel()
	conn := newTestDB(t)
	reg := prometheus.NewRegistry()
	m := metrics.NewInventoryMetrics(reg)
	svc, err := NewService(NewRepository(conn), db.FromGorm(conn), nil, m, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	healthy := mustCreateProduct(t, svc, 100, 0, 10)
	mustCreateProduct(t, svc, 0, 0, 10)

	if got := statusGaugeValue(t, reg, "in_stock"); got != 1 {
		t.Fatalf("expected in_stock=1, got %f", got)
	}
	if got := statusGaugeValue(t, reg, "out_of_stock"); got != 1 {
		t.Fatalf("expected out_of_stock=1, got %f", got)
	}

	// debiting everything moves the product across statuses
	if _, err := svc.AdjustStock(ctx, healthy.ID, -100, nil); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if got := statusGaugeValue(t, reg, "in_stock"); got != 0 {
		t.Fatalf("expected in_stock reset to 0, got %f", got)
	}
	if got := statusGaugeValue(t, reg, "out_of_stock"); got != 2 {
		t.Fatalf("expected out_of_stock=2, got %f", got)
	}
}

func statusGaugeValue(t *testing.T, reg *prometheus.Registry, status string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != "inventory_products_by_status" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "status" && label.GetValue() == status {
					return metric.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("status gauge for %q not found", status)
	return 0
}
