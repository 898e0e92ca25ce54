package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/uncoverhq/ops-backend/api/responses"
	"github.com/uncoverhq/ops-backend/api/validators"
	"github.com/uncoverhq/ops-backend/internal/orders"
	"github.com/uncoverhq/ops-backend/pkg/enums"
	pkgerrors "github.com/uncoverhq/ops-backend/pkg/errors"
	"github.com/uncoverhq/ops-backend/pkg/logger"
)

type orderLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type createOrderRequest struct {
	Source           string             `json:"source" validate:"required"`
	Type             string             `json:"type" validate:"required"`
	Currency         string             `json:"currency" validate:"required"`
	CustomerName     string             `json:"customer_name" validate:"required"`
	CustomerEmail    string             `json:"customer_email" validate:"required,email"`
	CustomerPhone    *string            `json:"customer_phone,omitempty"`
	CustomerAddress  *string            `json:"customer_address,omitempty"`
	ShippingCents    int                `json:"shipping_cents" validate:"omitempty,min=0"`
	DeliveryPlatform *string            `json:"delivery_platform,omitempty"`
	DeliveryNotes    *string            `json:"delivery_notes,omitempty"`
	ShopifyOrderID   *string            `json:"shopify_order_id,omitempty"`
	Items            []orderLineRequest `json:"items" validate:"required,min=1,dive"`
}

type transitionOrderRequest struct {
	Status string `json:"status" validate:"required"`
}

type orderSyncRequest struct {
	OdooSOSync      *string `json:"odoo_so_sync,omitempty"`
	OdooInvoiceSync *string `json:"odoo_invoice_sync,omitempty"`
	QBInvoiceSync   *string `json:"qb_invoice_sync,omitempty"`
	DeliverySync    *string `json:"delivery_sync,omitempty"`
	OdooInvoiceID   *string `json:"odoo_invoice_id,omitempty"`
}

// CreateOrder handles order intake from the sales channels.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := orders.CreateInput{
			Source:          enums.OrderSource(strings.TrimSpace(payload.Source)),
			Type:            enums.OrderType(strings.TrimSpace(payload.Type)),
			Currency:        enums.Currency(strings.ToUpper(strings.TrimSpace(payload.Currency))),
			CustomerName:    payload.CustomerName,
			CustomerEmail:   payload.CustomerEmail,
			CustomerPhone:   payload.CustomerPhone,
			CustomerAddress: payload.CustomerAddress,
			ShippingCents:   payload.ShippingCents,
			DeliveryNotes:   payload.DeliveryNotes,
			ShopifyOrderID:  payload.ShopifyOrderID,
			ActorUserID:     actorFrom(r),
		}
		if payload.DeliveryPlatform != nil {
			input.DeliveryPlatform = enums.DeliveryPlatform(strings.TrimSpace(*payload.DeliveryPlatform))
		}
		for _, line := range payload.Items {
			productID, err := validators.ParsePathUUID(line.ProductID, "product_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Items = append(input.Items, orders.CreateLineInput{
				ProductID: productID,
				Quantity:  line.Quantity,
			})
		}

		order, err := svc.CreateOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// GetOrder returns one order with its line items.
func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ListOrders returns a filtered, cursor-paginated page of orders.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := orders.ListFilters{
			Query: strings.TrimSpace(r.URL.Query().Get("q")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filters.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("source")); raw != "" {
			source, err := enums.ParseOrderSource(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid source"))
				return
			}
			filters.Source = &source
		}

		page, nextCursor, err := svc.ListOrders(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, page, nextCursor)
	}
}

// TransitionOrder moves the order along the lifecycle.
func TransitionOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload transitionOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Transition(r.Context(), orderID, enums.OrderStatus(strings.TrimSpace(payload.Status)), actorFrom(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// FulfillOrder debits stock and moves the order to in_transit.
func FulfillOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outcome, err := svc.Fulfill(r.Context(), orderID, actorFrom(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, outcome)
	}
}

// DeliverOrder marks an in-transit order delivered.
func DeliverOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Deliver(r.Context(), orderID, actorFrom(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// SyncOrder records the downstream platform handoff states.
func SyncOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload orderSyncRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := orders.SyncInput{OdooInvoiceID: payload.OdooInvoiceID}
		fields := []struct {
			raw  *string
			dest **enums.SyncState
		}{
			{payload.OdooSOSync, &input.OdooSOSync},
			{payload.OdooInvoiceSync, &input.OdooInvoiceSync},
			{payload.QBInvoiceSync, &input.QBInvoiceSync},
			{payload.DeliverySync, &input.DeliverySync},
		}
		for _, field := range fields {
			if field.raw == nil {
				continue
			}
			state := enums.SyncState(strings.TrimSpace(*field.raw))
			*field.dest = &state
		}

		order, err := svc.UpdateSync(r.Context(), orderID, input, actorFrom(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
