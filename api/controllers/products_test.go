package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/uncoverhq/ops-backend/api/middleware"
	"github.com/uncoverhq/ops-backend/internal/inventory"
	pkgerrors "github.com/uncoverhq/ops-backend/pkg/errors"
	"github.com/uncoverhq/ops-backend/pkg/logger"
)

type stubInventoryService struct {
	createInput *inventory.CreateInput
	adjustDelta *int
	adjustActor *uuid.UUID
}

func (s *stubInventoryService) CreateProduct(ctx context.Context, input inventory.CreateInput) (*inventory.ProductDTO, error) {
	s.createInput = &input
	return &inventory.ProductDTO{ID: uuid.New(), SKU: input.SKU}, nil
}

func (s *stubInventoryService) UpdateProduct(ctx context.Context, productID uuid.UUID, input inventory.UpdateInput) (*inventory.ProductDTO, error) {
	return &inventory.ProductDTO{ID: productID}, nil
}

func (s *stubInventoryService) DeleteProduct(ctx context.Context, productID uuid.UUID, actorUserID *uuid.UUID) error {
	return nil
}

func (s *stubInventoryService) GetProduct(ctx context.Context, productID uuid.UUID) (*inventory.ProductDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *stubInventoryService) ListProducts(ctx context.Context, input inventory.ListInput) ([]inventory.ProductDTO, string, error) {
	return []inventory.ProductDTO{}, "", nil
}

func (s *stubInventoryService) AdjustStock(ctx context.Context, productID uuid.UUID, delta int, actorUserID *uuid.UUID) (*inventory.AdjustResult, error) {
	s.adjustDelta = &delta
	s.adjustActor = actorUserID
	return &inventory.AdjustResult{Product: &inventory.ProductDTO{ID: productID}, Applied: delta}, nil
}

func (s *stubInventoryService) SetWarehouse(ctx context.Context, productID uuid.UUID, warehouseID *uuid.UUID) (*inventory.ProductDTO, error) {
	return &inventory.ProductDTO{ID: productID}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func withPathID(r *http.Request, id string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, routeCtx))
}

func TestCreateProduct(t *testing.T) {
	logg := testLogger()

	t.Run("rejects malformed json", func(t *testing.T) {
		svc := &stubInventoryService{}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		CreateProduct(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("rejects missing sku", func(t *testing.T) {
		svc := &stubInventoryService{}
		body := `{"name":"Shea Butter","category":"beauty","stock":10}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		CreateProduct(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if svc.createInput != nil {
			t.Fatal("service should not be called on validation failure")
		}
	})

	t.Run("creates and returns 201", func(t *testing.T) {
		svc := &stubInventoryService{}
		actorID := uuid.New()
		body := `{"sku":"SKU-1","name":"Shea Butter","category":"beauty","stock":10,"reorder_level":3}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req = req.WithContext(middleware.WithActorID(req.Context(), actorID.String()))
		rec := httptest.NewRecorder()
		CreateProduct(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if svc.createInput == nil || svc.createInput.SKU != "SKU-1" {
			t.Fatalf("unexpected create input: %+v", svc.createInput)
		}
		if svc.createInput.ActorUserID == nil || *svc.createInput.ActorUserID != actorID {
			t.Fatalf("expected actor %s, got %v", actorID, svc.createInput.ActorUserID)
		}

		var envelope struct {
			Data inventory.ProductDTO `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if envelope.Data.SKU != "SKU-1" {
			t.Fatalf("expected sku in envelope, got %+v", envelope.Data)
		}
	})
}

func TestAdjustStock(t *testing.T) {
	logg := testLogger()

	t.Run("rejects missing delta", func(t *testing.T) {
		svc := &stubInventoryService{}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products/x/adjust-stock", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req = withPathID(req, uuid.NewString())
		rec := httptest.NewRecorder()
		AdjustStock(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("rejects malformed id", func(t *testing.T) {
		svc := &stubInventoryService{}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products/x/adjust-stock", strings.NewReader(`{"delta":-5}`))
		req.Header.Set("Content-Type", "application/json")
		req = withPathID(req, "not-a-uuid")
		rec := httptest.NewRecorder()
		AdjustStock(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("applies delta without actor header", func(t *testing.T) {
		svc := &stubInventoryService{}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products/x/adjust-stock", strings.NewReader(`{"delta":-5}`))
		req.Header.Set("Content-Type", "application/json")
		req = withPathID(req, uuid.NewString())
		rec := httptest.NewRecorder()
		AdjustStock(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if svc.adjustDelta == nil || *svc.adjustDelta != -5 {
			t.Fatalf("unexpected delta: %v", svc.adjustDelta)
		}
		if svc.adjustActor != nil {
			t.Fatalf("expected nil actor, got %v", svc.adjustActor)
		}
	})
}

func TestGetProductNotFound(t *testing.T) {
	logg := testLogger()
	svc := &stubInventoryService{}
	req := withPathID(httptest.NewRequest(http.MethodGet, "/api/v1/products/x", nil), uuid.NewString())
	rec := httptest.NewRecorder()
	GetProduct(svc, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
