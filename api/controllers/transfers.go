package controllers

import (
	"net/http"

	"github.com/uncoverhq/ops-backend/api/responses"
	"github.com/uncoverhq/ops-backend/api/validators"
	"github.com/uncoverhq/ops-backend/internal/transfers"
	"github.com/uncoverhq/ops-backend/pkg/logger"
)

type transferRequest struct {
	ProductID         string `json:"product_id" validate:"required,uuid"`
	SourceWarehouseID string `json:"source_warehouse_id" validate:"required,uuid"`
	DestWarehouseID   string `json:"dest_warehouse_id" validate:"required,uuid"`
	Quantity          int    `json:"quantity" validate:"required"`
}

type bulkTransferItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required"`
}

type bulkTransferRequest struct {
	SourceWarehouseID string                    `json:"source_warehouse_id" validate:"required,uuid"`
	DestWarehouseID   string                    `json:"dest_warehouse_id" validate:"required,uuid"`
	Items             []bulkTransferItemRequest `json:"items"`
}

// Transfer moves one product between warehouses.
func Transfer(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload transferRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParsePathUUID(payload.ProductID, "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sourceID, err := validators.ParsePathUUID(payload.SourceWarehouseID, "source_warehouse_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		destID, err := validators.ParsePathUUID(payload.DestWarehouseID, "dest_warehouse_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Transfer(r.Context(), transfers.TransferInput{
			ProductID:         productID,
			SourceWarehouseID: sourceID,
			DestWarehouseID:   destID,
			Quantity:          payload.Quantity,
			ActorUserID:       actorFrom(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// BulkTransfer moves a batch of products between two warehouses, skipping
// invalid lines.
func BulkTransfer(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload bulkTransferRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sourceID, err := validators.ParsePathUUID(payload.SourceWarehouseID, "source_warehouse_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		destID, err := validators.ParsePathUUID(payload.DestWarehouseID, "dest_warehouse_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]transfers.BulkTransferItem, 0, len(payload.Items))
		for _, item := range payload.Items {
			productID, err := validators.ParsePathUUID(item.ProductID, "product_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			items = append(items, transfers.BulkTransferItem{
				ProductID: productID,
				Quantity:  item.Quantity,
			})
		}

		result, err := svc.BulkTransfer(r.Context(), transfers.BulkTransferInput{
			Items:             items,
			SourceWarehouseID: sourceID,
			DestWarehouseID:   destID,
			ActorUserID:       actorFrom(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
