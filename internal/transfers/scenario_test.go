package transfers

import (
	"context"
	"testing"

	"github.com/uncoverhq/ops-backend/internal/fulfillment"
	"github.com/uncoverhq/ops-backend/internal/inventory"
	"github.com/uncoverhq/ops-backend/pkg/db"
	"github.com/uncoverhq/ops-backend/pkg/enums"
)

// Walks a product through the full operational flow: created with reserved
// stock, transferred between warehouses, then debited by fulfillment.
func TestInventoryLifecycleScenario(t *testing.T) {
	t.Parallel()
	svc, conn := newTestService(t)
	ctx := context.Background()

	inventoryRepo := inventory.NewRepository(conn)
	ledger, err := inventory.NewService(inventoryRepo, db.FromGorm(conn), nil, nil, nil)
	if err != nil {
		t.Fatalf("new inventory service: %v", err)
	}
	debitor, err := fulfillment.NewDebitor(inventoryRepo, nil, nil)
	if err != nil {
		t.Fatalf("new debitor: %v", err)
	}

	source := mustCreateWarehouse(t, conn, "Nairobi Central", enums.RegionKenya)
	dest := mustCreateWarehouse(t, conn, "Mombasa Depot", enums.RegionKenya)

	product, err := ledger.CreateProduct(ctx, inventory.CreateInput{
		SKU:           "SKU-SCENARIO-1",
		Name:          "Shea Butter 500g",
		Category:      "beauty",
		Stock:         100,
		ReservedStock: 10,
		ReorderLevel:  20,
		WarehouseID:   &source.ID,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if product.AvailableStock != 90 || product.Status != enums.StockStatusInStock.String() {
		t.Fatalf("unexpected initial state: %+v", product)
	}

	// move everything available to the destination warehouse
	moved, err := svc.Transfer(ctx, TransferInput{
		ProductID:         product.ID,
		SourceWarehouseID: source.ID,
		DestWarehouseID:   dest.ID,
		Quantity:          90,
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if moved.Product.Stock != 100 || moved.Product.AvailableStock != 90 {
		t.Fatalf("transfer changed counts: %+v", moved.Product)
	}
	if moved.Product.WarehouseID == nil || *moved.Product.WarehouseID != dest.ID {
		t.Fatal("transfer did not reassign the warehouse")
	}

	// fulfill 85 units
	debit, err := debitor.DebitLines(ctx, conn, []fulfillment.Line{
		{ProductID: product.ID, SKU: product.SKU, Quantity: 85},
	})
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if debit.TotalApplied != 85 {
		t.Fatalf("expected 85 debited, got %d", debit.TotalApplied)
	}

	final, err := ledger.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if final.Stock != 15 || final.ReservedStock != 10 || final.AvailableStock != 5 {
		t.Fatalf("unexpected final counts: %+v", final)
	}
	if final.Status != enums.StockStatusLowStock.String() {
		t.Fatalf("expected low_stock, got %s", final.Status)
	}
}
