package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/uncoverhq/ops-backend/api/responses"
	"github.com/uncoverhq/ops-backend/api/validators"
	"github.com/uncoverhq/ops-backend/internal/shipments"
	"github.com/uncoverhq/ops-backend/pkg/enums"
	pkgerrors "github.com/uncoverhq/ops-backend/pkg/errors"
	"github.com/uncoverhq/ops-backend/pkg/logger"
)

type shipmentItemRequest struct {
	ProductID     string `json:"product_id" validate:"required,uuid"`
	Quantity      int    `json:"quantity" validate:"required,min=1"`
	UnitCostCents int    `json:"unit_cost_cents" validate:"omitempty,min=0"`
}

type createShipmentRequest struct {
	Supplier               string                `json:"supplier" validate:"required"`
	Origin                 string                `json:"origin" validate:"required"`
	DestinationWarehouseID string                `json:"destination_warehouse_id" validate:"required,uuid"`
	Currency               string                `json:"currency" validate:"required"`
	Carrier                string                `json:"carrier" validate:"omitempty"`
	TrackingNumber         *string               `json:"tracking_number,omitempty"`
	ContainerNumber        *string               `json:"container_number,omitempty"`
	EstimatedArrival       *string               `json:"estimated_arrival,omitempty"`
	Notes                  *string               `json:"notes,omitempty"`
	Items                  []shipmentItemRequest `json:"items" validate:"required,min=1,dive"`
}

type advanceShipmentRequest struct {
	Status string `json:"status" validate:"required"`
}

// CreateShipment registers an inbound shipment against a destination warehouse.
func CreateShipment(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createShipmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		destinationID, err := validators.ParsePathUUID(payload.DestinationWarehouseID, "destination_warehouse_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := shipments.CreateInput{
			Supplier:               payload.Supplier,
			Origin:                 payload.Origin,
			DestinationWarehouseID: destinationID,
			Currency:               enums.Currency(strings.ToUpper(strings.TrimSpace(payload.Currency))),
			Carrier:                payload.Carrier,
			TrackingNumber:         payload.TrackingNumber,
			ContainerNumber:        payload.ContainerNumber,
			Notes:                  payload.Notes,
			ActorUserID:            actorFrom(r),
		}
		if payload.EstimatedArrival != nil {
			estimated, err := validators.ParseRFC3339(*payload.EstimatedArrival, "estimated_arrival")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.EstimatedArrival = &estimated
		}
		for _, item := range payload.Items {
			productID, err := validators.ParsePathUUID(item.ProductID, "product_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Items = append(input.Items, shipments.CreateItemInput{
				ProductID:     productID,
				Quantity:      item.Quantity,
				UnitCostCents: item.UnitCostCents,
			})
		}

		shipment, err := svc.CreateShipment(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, shipment)
	}
}

// GetShipment returns one shipment with its items.
func GetShipment(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shipmentID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shipment, err := svc.GetShipment(r.Context(), shipmentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shipment)
	}
}

// ListShipments returns a filtered, cursor-paginated page of shipments.
func ListShipments(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := shipments.ListFilters{
			Query: strings.TrimSpace(r.URL.Query().Get("q")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseShipmentStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filters.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("destination_warehouse_id")); raw != "" {
			warehouseID, err := validators.ParsePathUUID(raw, "destination_warehouse_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filters.DestinationWarehouseID = &warehouseID
		}

		page, nextCursor, err := svc.ListShipments(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, page, nextCursor)
	}
}

// AdvanceShipment moves an in-flight shipment to a later tracking status.
func AdvanceShipment(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shipmentID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload advanceShipmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shipment, err := svc.Advance(r.Context(), shipmentID, enums.ShipmentStatus(strings.TrimSpace(payload.Status)), actorFrom(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shipment)
	}
}

// ReceiveShipment credits stock at the destination and closes the shipment.
func ReceiveShipment(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shipmentID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outcome, err := svc.Receive(r.Context(), shipmentID, actorFrom(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, outcome)
	}
}
