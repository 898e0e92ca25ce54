package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/uncoverhq/ops-backend/api/responses"
	"github.com/uncoverhq/ops-backend/api/validators"
	"github.com/uncoverhq/ops-backend/internal/mappings"
	"github.com/uncoverhq/ops-backend/pkg/enums"
	pkgerrors "github.com/uncoverhq/ops-backend/pkg/errors"
	"github.com/uncoverhq/ops-backend/pkg/logger"
)

type upsertMappingRequest struct {
	Market         string  `json:"market" validate:"required"`
	ShopifyID      *string `json:"shopify_id,omitempty"`
	ShopifyHandle  *string `json:"shopify_handle,omitempty"`
	OdooID         *string `json:"odoo_id,omitempty"`
	OdooName       *string `json:"odoo_name,omitempty"`
	QuickbooksID   *string `json:"quickbooks_id,omitempty"`
	QuickbooksName *string `json:"quickbooks_name,omitempty"`
	LetaAiID       *string `json:"leta_ai_id,omitempty"`
	LetaAiName     *string `json:"leta_ai_name,omitempty"`
	RendaID        *string `json:"renda_id,omitempty"`
	RendaName      *string `json:"renda_name,omitempty"`
}

// UpsertProductMapping creates or updates a product's platform identifiers for
// one market. Omitted fields keep their stored values.
func UpsertProductMapping(svc mappings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload upsertMappingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		market, err := enums.ParseRegion(payload.Market)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid market"))
			return
		}

		mapping, err := svc.UpsertMapping(r.Context(), productID, market, mappings.UpsertInput{
			ShopifyID:      payload.ShopifyID,
			ShopifyHandle:  payload.ShopifyHandle,
			OdooID:         payload.OdooID,
			OdooName:       payload.OdooName,
			QuickbooksID:   payload.QuickbooksID,
			QuickbooksName: payload.QuickbooksName,
			LetaAiID:       payload.LetaAiID,
			LetaAiName:     payload.LetaAiName,
			RendaID:        payload.RendaID,
			RendaName:      payload.RendaName,
			ActorUserID:    actorFrom(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mapping)
	}
}

// ListProductMappings returns every market mapping of one product.
func ListProductMappings(svc mappings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListMappings(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
