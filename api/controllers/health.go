package controllers

import (
	"context"
	"net/http"

	"github.com/hirekitlabs/hirekit-backend/api/responses"
	"github.com/hirekitlabs/hirekit-backend/pkg/config"
	pkgerrors "github.com/hirekitlabs/hirekit-backend/pkg/errors"
	"github.com/hirekitlabs/hirekit-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthLive reports process liveness only; it never touches dependencies.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-HireKit-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady probes Postgres, Redis, and object storage. Any failing probe
// makes the whole endpoint fail so the instance is pulled from rotation.
func HealthReady(cfg *config.Config, logg *logger.Logger, db, cache, storage pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w.Header().Set("X-HireKit-Env", cfg.App.Env)

		if db == nil || cache == nil || storage == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "readiness probes unavailable"))
			return
		}

		probes := []struct {
			name   string
			target pinger
		}{
			{"database", db},
			{"redis", cache},
			{"object storage", storage},
		}
		for _, probe := range probes {
			if err := probe.target.Ping(ctx); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, probe.name+" not ready"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
