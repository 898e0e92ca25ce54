package controllers

import (
	"net/http"
	"strings"

	"github.com/uncoverhq/ops-backend/api/responses"
	"github.com/uncoverhq/ops-backend/internal/activity"
	"github.com/uncoverhq/ops-backend/pkg/enums"
	pkgerrors "github.com/uncoverhq/ops-backend/pkg/errors"
	"github.com/uncoverhq/ops-backend/pkg/logger"
)

// ListActivity returns the latest activity entries, optionally filtered by type.
func ListActivity(svc activity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var logType *enums.ActivityType
		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			parsed, err := enums.ParseActivityType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type"))
				return
			}
			logType = &parsed
		}

		entries, err := svc.List(r.Context(), logType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}
