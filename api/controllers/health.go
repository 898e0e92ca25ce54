package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/uncoverhq/ops-backend/api/responses"
	"github.com/uncoverhq/ops-backend/pkg/config"
	"github.com/uncoverhq/ops-backend/pkg/db"
	pkgerrors "github.com/uncoverhq/ops-backend/pkg/errors"
	"github.com/uncoverhq/ops-backend/pkg/logger"
	"github.com/uncoverhq/ops-backend/pkg/redis"
)

const readinessTimeout = 3 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Ops-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies the backing stores before reporting ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Ops-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				checks["db"] = err.Error()
				healthy = false
			} else {
				checks["db"] = "ok"
			}
		}
		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				checks["redis"] = err.Error()
				healthy = false
			} else {
				checks["redis"] = "ok"
			}
		}

		if !healthy {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
