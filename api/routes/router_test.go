package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/uncoverhq/ops-backend/internal/activity"
	"github.com/uncoverhq/ops-backend/internal/inventory"
	"github.com/uncoverhq/ops-backend/internal/mappings"
	"github.com/uncoverhq/ops-backend/internal/orders"
	"github.com/uncoverhq/ops-backend/internal/requests"
	"github.com/uncoverhq/ops-backend/internal/shipments"
	"github.com/uncoverhq/ops-backend/internal/transfers"
	"github.com/uncoverhq/ops-backend/internal/warehouses"
	"github.com/uncoverhq/ops-backend/pkg/config"
	"github.com/uncoverhq/ops-backend/pkg/db/models"
	"github.com/uncoverhq/ops-backend/pkg/enums"
	"github.com/uncoverhq/ops-backend/pkg/logger"
	"github.com/uncoverhq/ops-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubInventoryService struct{}

func (stubInventoryService) CreateProduct(ctx context.Context, input inventory.CreateInput) (*inventory.ProductDTO, error) {
	return &inventory.ProductDTO{}, nil
}

func (stubInventoryService) UpdateProduct(ctx context.Context, productID uuid.UUID, input inventory.UpdateInput) (*inventory.ProductDTO, error) {
	return &inventory.ProductDTO{}, nil
}

func (stubInventoryService) DeleteProduct(ctx context.Context, productID uuid.UUID, actorUserID *uuid.UUID) error {
	return nil
}

func (stubInventoryService) GetProduct(ctx context.Context, productID uuid.UUID) (*inventory.ProductDTO, error) {
	return &inventory.ProductDTO{ID: productID}, nil
}

func (stubInventoryService) ListProducts(ctx context.Context, input inventory.ListInput) ([]inventory.ProductDTO, string, error) {
	return []inventory.ProductDTO{}, "", nil
}

func (stubInventoryService) AdjustStock(ctx context.Context, productID uuid.UUID, delta int, actorUserID *uuid.UUID) (*inventory.AdjustResult, error) {
	return &inventory.AdjustResult{Product: &inventory.ProductDTO{ID: productID}, Applied: delta}, nil
}

func (stubInventoryService) SetWarehouse(ctx context.Context, productID uuid.UUID, warehouseID *uuid.UUID) (*inventory.ProductDTO, error) {
	return &inventory.ProductDTO{ID: productID}, nil
}

type stubTransfersService struct{}

func (stubTransfersService) Transfer(ctx context.Context, input transfers.TransferInput) (*transfers.TransferResult, error) {
	return &transfers.TransferResult{Quantity: input.Quantity}, nil
}

func (stubTransfersService) BulkTransfer(ctx context.Context, input transfers.BulkTransferInput) (*transfers.BulkTransferResult, error) {
	return &transfers.BulkTransferResult{}, nil
}

type stubOrdersService struct{}

func (stubOrdersService) CreateOrder(ctx context.Context, input orders.CreateInput) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{}, nil
}

func (stubOrdersService) GetOrder(ctx context.Context, orderID uuid.UUID) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{ID: orderID}, nil
}

func (stubOrdersService) ListOrders(ctx context.Context, params pagination.Params, filters orders.ListFilters) ([]orders.OrderDTO, string, error) {
	return []orders.OrderDTO{}, "", nil
}

func (stubOrdersService) Transition(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus, actorUserID *uuid.UUID) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{ID: orderID, Status: target}, nil
}

func (stubOrdersService) Fulfill(ctx context.Context, orderID uuid.UUID, actorUserID *uuid.UUID) (*orders.FulfillOutcome, error) {
	return &orders.FulfillOutcome{}, nil
}

func (stubOrdersService) Deliver(ctx context.Context, orderID uuid.UUID, actorUserID *uuid.UUID) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{ID: orderID}, nil
}

func (stubOrdersService) UpdateSync(ctx context.Context, orderID uuid.UUID, input orders.SyncInput, actorUserID *uuid.UUID) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{ID: orderID}, nil
}

type stubShipmentsService struct{}

func (stubShipmentsService) CreateShipment(ctx context.Context, input shipments.CreateInput) (*shipments.ShipmentDTO, error) {
	return &shipments.ShipmentDTO{}, nil
}

func (stubShipmentsService) GetShipment(ctx context.Context, shipmentID uuid.UUID) (*shipments.ShipmentDTO, error) {
	return &shipments.ShipmentDTO{ID: shipmentID}, nil
}

func (stubShipmentsService) ListShipments(ctx context.Context, params pagination.Params, filters shipments.ListFilters) ([]shipments.ShipmentDTO, string, error) {
	return []shipments.ShipmentDTO{}, "", nil
}

func (stubShipmentsService) Advance(ctx context.Context, shipmentID uuid.UUID, target enums.ShipmentStatus, actorUserID *uuid.UUID) (*shipments.ShipmentDTO, error) {
	return &shipments.ShipmentDTO{ID: shipmentID, Status: target}, nil
}

func (stubShipmentsService) Receive(ctx context.Context, shipmentID uuid.UUID, actorUserID *uuid.UUID) (*shipments.ReceiveOutcome, error) {
	return &shipments.ReceiveOutcome{}, nil
}

type stubWarehousesService struct{}

func (stubWarehousesService) CreateWarehouse(ctx context.Context, input warehouses.CreateInput) (*warehouses.WarehouseDTO, error) {
	return &warehouses.WarehouseDTO{}, nil
}

func (stubWarehousesService) UpdateWarehouse(ctx context.Context, warehouseID uuid.UUID, input warehouses.UpdateInput) (*warehouses.WarehouseDTO, error) {
	return &warehouses.WarehouseDTO{ID: warehouseID}, nil
}

func (stubWarehousesService) DeleteWarehouse(ctx context.Context, warehouseID uuid.UUID, actorUserID *uuid.UUID) error {
	return nil
}

func (stubWarehousesService) GetWarehouse(ctx context.Context, warehouseID uuid.UUID) (*warehouses.WarehouseDTO, error) {
	return &warehouses.WarehouseDTO{ID: warehouseID}, nil
}

func (stubWarehousesService) ListWarehouses(ctx context.Context, region *enums.Region) ([]warehouses.WarehouseDTO, error) {
	return []warehouses.WarehouseDTO{}, nil
}

func (stubWarehousesService) Summary(ctx context.Context) ([]warehouses.OccupancyDTO, error) {
	return []warehouses.OccupancyDTO{}, nil
}

func (stubWarehousesService) FindByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	return &models.Warehouse{ID: id}, nil
}

type stubMappingsService struct{}

func (stubMappingsService) UpsertMapping(ctx context.Context, productID uuid.UUID, market enums.Region, input mappings.UpsertInput) (*mappings.MappingDTO, error) {
	return &mappings.MappingDTO{ProductID: productID, Market: market}, nil
}

func (stubMappingsService) ListMappings(ctx context.Context, productID uuid.UUID) ([]mappings.MappingDTO, error) {
	return []mappings.MappingDTO{}, nil
}

type stubRequestsService struct{}

func (stubRequestsService) CreateRequest(ctx context.Context, input requests.CreateInput) (*requests.RequestDTO, error) {
	return &requests.RequestDTO{}, nil
}

func (stubRequestsService) GetRequest(ctx context.Context, requestID uuid.UUID) (*requests.RequestDTO, error) {
	return &requests.RequestDTO{ID: requestID}, nil
}

func (stubRequestsService) ListRequests(ctx context.Context, status *enums.RequestStatus) ([]requests.RequestDTO, error) {
	return []requests.RequestDTO{}, nil
}

func (stubRequestsService) Approve(ctx context.Context, requestID uuid.UUID, input requests.ApproveInput) (*requests.RequestDTO, error) {
	return &requests.RequestDTO{ID: requestID}, nil
}

func (stubRequestsService) Reject(ctx context.Context, requestID uuid.UUID, input requests.RejectInput) (*requests.RequestDTO, error) {
	return &requests.RequestDTO{ID: requestID}, nil
}

func (stubRequestsService) MarkReady(ctx context.Context, requestID uuid.UUID, input requests.ReadyInput) (*requests.RequestDTO, error) {
	return &requests.RequestDTO{ID: requestID}, nil
}

func (stubRequestsService) MarkCollected(ctx context.Context, requestID uuid.UUID, actorUserID *uuid.UUID) (*requests.RequestDTO, error) {
	return &requests.RequestDTO{ID: requestID}, nil
}

type stubActivityService struct{}

func (stubActivityService) Record(ctx context.Context, logType enums.ActivityType, message string, details *string, actorUserID *uuid.UUID) error {
	return nil
}

func (stubActivityService) List(ctx context.Context, logType *enums.ActivityType) ([]activity.EntryDTO, error) {
	return []activity.EntryDTO{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		nil,
		prometheus.NewRegistry(),
		Services{
			Inventory:  stubInventoryService{},
			Transfers:  stubTransfersService{},
			Orders:     stubOrdersService{},
			Shipments:  stubShipmentsService{},
			Warehouses: stubWarehousesService{},
			Mappings:   stubMappingsService{},
			Requests:   stubRequestsService{},
			Activity:   stubActivityService{},
		},
	)
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(testConfig())

	live := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, live)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for live got %d", resp.Code)
	}
	if env := resp.Header().Get("X-Ops-Env"); env != "test" {
		t.Fatalf("expected env header got %q", env)
	}

	ready := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, ready)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for ready got %d", resp.Code)
	}
}

func TestMetricsEndpointMounted(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
}

func TestResourceRoutesMounted(t *testing.T) {
	router := newTestRouter(testConfig())

	cases := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/api/v1/products", "", http.StatusOK},
		{http.MethodGet, "/api/v1/products/" + uuid.NewString(), "", http.StatusOK},
		{http.MethodGet, "/api/v1/orders", "", http.StatusOK},
		{http.MethodGet, "/api/v1/orders/" + uuid.NewString(), "", http.StatusOK},
		{http.MethodGet, "/api/v1/shipments", "", http.StatusOK},
		{http.MethodGet, "/api/v1/warehouses", "", http.StatusOK},
		{http.MethodGet, "/api/v1/warehouses/summary", "", http.StatusOK},
		{http.MethodGet, "/api/v1/activity", "", http.StatusOK},
		{http.MethodGet, "/api/v1/requests", "", http.StatusOK},
		{http.MethodGet, "/api/v1/requests/" + uuid.NewString(), "", http.StatusOK},
		{http.MethodPost, "/api/v1/requests/" + uuid.NewString() + "/collect", "", http.StatusOK},
		{http.MethodGet, "/api/v1/products/" + uuid.NewString() + "/mappings", "", http.StatusOK},
		{http.MethodPost, "/api/v1/orders/" + uuid.NewString() + "/fulfill", "", http.StatusOK},
		{http.MethodPost, "/api/v1/shipments/" + uuid.NewString() + "/receive", "", http.StatusOK},
		{http.MethodDelete, "/api/v1/warehouses/" + uuid.NewString(), "", http.StatusNoContent},
		{http.MethodGet, "/api/v1/nope", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != tc.want {
			t.Fatalf("%s %s: expected %d got %d", tc.method, tc.path, tc.want, resp.Code)
		}
	}
}

func TestPathIDValidation(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/not-a-uuid", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id got %d", resp.Code)
	}
}

func TestListOrdersRejectsUnknownStatus(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?status=bogus", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status got %d", resp.Code)
	}
}
