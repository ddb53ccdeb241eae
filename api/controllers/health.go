package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/printhubhq/printhub-backend/api/responses"
	"github.com/printhubhq/printhub-backend/pkg/config"
	pkgerrors "github.com/printhubhq/printhub-backend/pkg/errors"
	"github.com/printhubhq/printhub-backend/pkg/logger"
)

const readyProbeTimeout = 3 * time.Second

// Pinger is the health-check surface shared by the backing stores.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PrintHub-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the backing stores. A nil dependency is treated as not
// wired for this deployment and skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, db, redis, bigquery Pinger) http.HandlerFunc {
	deps := map[string]Pinger{
		"database": db,
		"redis":    redis,
		"bigquery": bigquery,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PrintHub-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyProbeTimeout)
		defer cancel()

		failed := map[string]string{}
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				failed[name] = err.Error()
				if logg != nil {
					logg.Error(logg.WithField(ctx, "dependency", name), "readiness probe failed", err)
				}
			}
		}

		if len(failed) > 0 {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(failed)
			responses.WriteError(r.Context(), nil, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
