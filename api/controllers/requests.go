package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/uncoverhq/ops-backend/api/responses"
	"github.com/uncoverhq/ops-backend/api/validators"
	"github.com/uncoverhq/ops-backend/internal/requests"
	"github.com/uncoverhq/ops-backend/pkg/enums"
	pkgerrors "github.com/uncoverhq/ops-backend/pkg/errors"
	"github.com/uncoverhq/ops-backend/pkg/logger"
)

type createRequestRequest struct {
	ProductID       string  `json:"product_id" validate:"required,uuid"`
	Quantity        int     `json:"quantity" validate:"required,min=1"`
	Reason          string  `json:"reason" validate:"required"`
	RequesterName   string  `json:"requester_name" validate:"required"`
	RequesterEmail  string  `json:"requester_email" validate:"omitempty,email"`
	RequesterUserID *string `json:"requester_user_id,omitempty"`
	ApproverName    string  `json:"approver_name" validate:"required"`
	ApproverEmail   string  `json:"approver_email" validate:"omitempty,email"`
	ApproverUserID  *string `json:"approver_user_id,omitempty"`
}

type approveRequestRequest struct {
	AssignedToName   string  `json:"assigned_to_name" validate:"required"`
	AssignedToUserID *string `json:"assigned_to_user_id,omitempty"`
}

type rejectRequestRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type readyRequestRequest struct {
	CollectionPoint string `json:"collection_point" validate:"required"`
}

// CreateRequest submits a product request for approval.
func CreateRequest(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createRequestRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product_id must be a uuid"))
			return
		}

		input := requests.CreateInput{
			ProductID:      productID,
			Quantity:       payload.Quantity,
			Reason:         payload.Reason,
			RequesterName:  payload.RequesterName,
			RequesterEmail: payload.RequesterEmail,
			ApproverName:   payload.ApproverName,
			ApproverEmail:  payload.ApproverEmail,
			ActorUserID:    actorFrom(r),
		}
		if input.RequesterUserID, err = parseOptionalUUID(payload.RequesterUserID, "requester_user_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.ApproverUserID, err = parseOptionalUUID(payload.ApproverUserID, "approver_user_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.CreateRequest(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, request)
	}
}

// GetRequest returns one product request.
func GetRequest(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.GetRequest(r.Context(), requestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

// ListRequests returns product requests newest first, optionally filtered by
// status.
func ListRequests(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var status *enums.RequestStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, err := enums.ParseRequestStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			status = &parsed
		}

		list, err := svc.ListRequests(r.Context(), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ApproveRequest approves a pending request and assigns it for dispatch.
func ApproveRequest(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload approveRequestRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := requests.ApproveInput{
			AssignedToName: payload.AssignedToName,
			ActorUserID:    actorFrom(r),
		}
		if input.AssignedToUserID, err = parseOptionalUUID(payload.AssignedToUserID, "assigned_to_user_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Approve(r.Context(), requestID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

// RejectRequest rejects a pending request with a reason.
func RejectRequest(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload rejectRequestRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Reject(r.Context(), requestID, requests.RejectInput{
			Reason:      payload.Reason,
			ActorUserID: actorFrom(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

// ReadyRequest marks an approved request ready for collection.
func ReadyRequest(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload readyRequestRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.MarkReady(r.Context(), requestID, requests.ReadyInput{
			CollectionPoint: payload.CollectionPoint,
			ActorUserID:     actorFrom(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

// CollectRequest closes a ready request once the items are picked up.
func CollectRequest(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.MarkCollected(r.Context(), requestID, actorFrom(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}
