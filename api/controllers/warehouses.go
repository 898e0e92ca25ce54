package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/uncoverhq/ops-backend/api/responses"
	"github.com/uncoverhq/ops-backend/api/validators"
	"github.com/uncoverhq/ops-backend/internal/warehouses"
	"github.com/uncoverhq/ops-backend/pkg/enums"
	pkgerrors "github.com/uncoverhq/ops-backend/pkg/errors"
	"github.com/uncoverhq/ops-backend/pkg/logger"
)

type createWarehouseRequest struct {
	Name             string  `json:"name" validate:"required"`
	Location         string  `json:"location" validate:"required"`
	Region           string  `json:"region" validate:"required"`
	Capacity         int     `json:"capacity" validate:"required,min=1"`
	ManagerName      string  `json:"manager_name" validate:"omitempty"`
	ManagerUserID    *string `json:"manager_user_id,omitempty"`
	DeliveryPlatform *string `json:"delivery_platform,omitempty"`
}

type updateWarehouseRequest struct {
	Name             *string `json:"name,omitempty"`
	Location         *string `json:"location,omitempty"`
	Capacity         *int    `json:"capacity,omitempty" validate:"omitempty,min=1"`
	ManagerName      *string `json:"manager_name,omitempty"`
	ManagerUserID    *string `json:"manager_user_id,omitempty"`
	Status           *string `json:"status,omitempty"`
	DeliveryPlatform *string `json:"delivery_platform,omitempty"`
	LastAuditAt      *string `json:"last_audit_at,omitempty"`
}

// CreateWarehouse registers a new warehouse.
func CreateWarehouse(svc warehouses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createWarehouseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := warehouses.CreateInput{
			Name:        payload.Name,
			Location:    payload.Location,
			Region:      enums.Region(strings.TrimSpace(payload.Region)),
			Capacity:    payload.Capacity,
			ManagerName: payload.ManagerName,
			ActorUserID: actorFrom(r),
		}
		managerID, err := parseOptionalUUID(payload.ManagerUserID, "manager_user_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.ManagerUserID = managerID
		if payload.DeliveryPlatform != nil {
			input.DeliveryPlatform = enums.DeliveryPlatform(strings.TrimSpace(*payload.DeliveryPlatform))
		}

		warehouse, err := svc.CreateWarehouse(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, warehouse)
	}
}

// GetWarehouse returns one warehouse.
func GetWarehouse(svc warehouses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		warehouseID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		warehouse, err := svc.GetWarehouse(r.Context(), warehouseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, warehouse)
	}
}

// ListWarehouses returns warehouses, optionally scoped to a region.
func ListWarehouses(svc warehouses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var region *enums.Region
		if raw := strings.TrimSpace(r.URL.Query().Get("region")); raw != "" {
			parsed, err := enums.ParseRegion(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid region"))
				return
			}
			region = &parsed
		}

		list, err := svc.ListWarehouses(r.Context(), region)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// UpdateWarehouse applies partial mutations to a warehouse.
func UpdateWarehouse(svc warehouses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		warehouseID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateWarehouseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := warehouses.UpdateInput{
			Name:        payload.Name,
			Location:    payload.Location,
			Capacity:    payload.Capacity,
			ManagerName: payload.ManagerName,
			ActorUserID: actorFrom(r),
		}
		managerID, err := parseOptionalUUID(payload.ManagerUserID, "manager_user_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.ManagerUserID = managerID
		if payload.Status != nil {
			status, err := enums.ParseWarehouseStatus(*payload.Status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			input.Status = &status
		}
		if payload.DeliveryPlatform != nil {
			platform := enums.DeliveryPlatform(strings.TrimSpace(*payload.DeliveryPlatform))
			input.DeliveryPlatform = &platform
		}
		if payload.LastAuditAt != nil {
			audited, err := validators.ParseRFC3339(*payload.LastAuditAt, "last_audit_at")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.LastAuditAt = &audited
		}

		warehouse, err := svc.UpdateWarehouse(r.Context(), warehouseID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, warehouse)
	}
}

// DeleteWarehouse removes an empty warehouse.
func DeleteWarehouse(svc warehouses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		warehouseID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteWarehouse(r.Context(), warehouseID, actorFrom(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// WarehouseSummary reports derived occupancy for every warehouse.
func WarehouseSummary(svc warehouses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
