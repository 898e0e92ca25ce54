package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/uncoverhq/ops-backend/api/responses"
	"github.com/uncoverhq/ops-backend/api/validators"
	"github.com/uncoverhq/ops-backend/internal/inventory"
	"github.com/uncoverhq/ops-backend/pkg/enums"
	pkgerrors "github.com/uncoverhq/ops-backend/pkg/errors"
	"github.com/uncoverhq/ops-backend/pkg/logger"
)

type createProductRequest struct {
	SKU           string  `json:"sku" validate:"required"`
	Name          string  `json:"name" validate:"required"`
	Category      string  `json:"category" validate:"required"`
	PriceUSDCents int     `json:"price_usd_cents" validate:"omitempty,min=0"`
	PriceKESCents int     `json:"price_kes_cents" validate:"omitempty,min=0"`
	PriceNGNCents int     `json:"price_ngn_cents" validate:"omitempty,min=0"`
	CostCents     int     `json:"cost_cents" validate:"omitempty,min=0"`
	Stock         int     `json:"stock" validate:"min=0"`
	ReservedStock int     `json:"reserved_stock" validate:"min=0"`
	ReorderLevel  int     `json:"reorder_level" validate:"min=0"`
	ImageURL      *string `json:"image_url,omitempty"`
	Description   *string `json:"description,omitempty"`
	WarehouseID   *string `json:"warehouse_id,omitempty" validate:"omitempty,uuid"`
}

type updateProductRequest struct {
	Name          *string `json:"name,omitempty"`
	Category      *string `json:"category,omitempty"`
	PriceUSDCents *int    `json:"price_usd_cents,omitempty" validate:"omitempty,min=0"`
	PriceKESCents *int    `json:"price_kes_cents,omitempty" validate:"omitempty,min=0"`
	PriceNGNCents *int    `json:"price_ngn_cents,omitempty" validate:"omitempty,min=0"`
	CostCents     *int    `json:"cost_cents,omitempty" validate:"omitempty,min=0"`
	Stock         *int    `json:"stock,omitempty"`
	ReservedStock *int    `json:"reserved_stock,omitempty"`
	ReorderLevel  *int    `json:"reorder_level,omitempty"`
	ImageURL      *string `json:"image_url,omitempty"`
	Description   *string `json:"description,omitempty"`
}

type adjustStockRequest struct {
	Delta int `json:"delta" validate:"required"`
}

type setWarehouseRequest struct {
	WarehouseID *string `json:"warehouse_id" validate:"omitempty,uuid"`
}

// CreateProduct handles product creation.
func CreateProduct(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		warehouseID, err := parseOptionalUUID(payload.WarehouseID, "warehouse_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), inventory.CreateInput{
			SKU:           payload.SKU,
			Name:          payload.Name,
			Category:      payload.Category,
			PriceUSDCents: payload.PriceUSDCents,
			PriceKESCents: payload.PriceKESCents,
			PriceNGNCents: payload.PriceNGNCents,
			CostCents:     payload.CostCents,
			Stock:         payload.Stock,
			ReservedStock: payload.ReservedStock,
			ReorderLevel:  payload.ReorderLevel,
			ImageURL:      payload.ImageURL,
			Description:   payload.Description,
			WarehouseID:   warehouseID,
			ActorUserID:   actorFrom(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// GetProduct returns one product by id.
func GetProduct(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ListProducts returns a filtered, cursor-paginated page of products.
func ListProducts(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := inventory.ListFilters{
			Category: strings.TrimSpace(r.URL.Query().Get("category")),
			Query:    strings.TrimSpace(r.URL.Query().Get("q")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseStockStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filters.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("warehouse_id")); raw != "" {
			warehouseID, err := validators.ParsePathUUID(raw, "warehouse_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filters.WarehouseID = &warehouseID
		}

		products, nextCursor, err := svc.ListProducts(r.Context(), inventory.ListInput{
			Filters:    filters,
			Pagination: params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, products, nextCursor)
	}
}

// UpdateProduct applies a partial update.
func UpdateProduct(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), productID, inventory.UpdateInput{
			Name:          payload.Name,
			Category:      payload.Category,
			PriceUSDCents: payload.PriceUSDCents,
			PriceKESCents: payload.PriceKESCents,
			PriceNGNCents: payload.PriceNGNCents,
			CostCents:     payload.CostCents,
			Stock:         payload.Stock,
			ReservedStock: payload.ReservedStock,
			ReorderLevel:  payload.ReorderLevel,
			ImageURL:      payload.ImageURL,
			Description:   payload.Description,
			ActorUserID:   actorFrom(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// DeleteProduct removes a product.
func DeleteProduct(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), productID, actorFrom(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdjustStock applies a signed stock delta, clamping debits at zero.
func AdjustStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adjustStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AdjustStock(r.Context(), productID, payload.Delta, actorFrom(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// SetProductWarehouse reassigns the product's storage location.
func SetProductWarehouse(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setWarehouseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		warehouseID, err := parseOptionalUUID(payload.WarehouseID, "warehouse_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.SetWarehouse(r.Context(), productID, warehouseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func parseOptionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := validators.ParsePathUUID(*raw, field)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
