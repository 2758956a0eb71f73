package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/dmarchuk/artvault-backend/api/responses"
	"github.com/dmarchuk/artvault-backend/pkg/config"
	"github.com/dmarchuk/artvault-backend/pkg/logger"
)

const envHeader = "X-ArtVault-Env"

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports per-dependency readiness. Nil dependencies are skipped
// so deployments without the optional clients can share this handler.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP, gcsP, pubsubP pinger) http.HandlerFunc {
	deps := []struct {
		name string
		dep  pinger
	}{
		{"postgres", dbP},
		{"redis", redisP},
		{"gcs", gcsP},
		{"pubsub", pubsubP},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]string{}
		ready := true
		for _, d := range deps {
			if d.dep == nil {
				continue
			}
			if err := d.dep.Ping(ctx); err != nil {
				checks[d.name] = "down"
				ready = false
				if logg != nil {
					logg.Error(logg.WithField(ctx, "dependency", d.name), "readiness check failed", err)
				}
				continue
			}
			checks[d.name] = "up"
		}

		status := "ready"
		code := http.StatusOK
		if !ready {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		responses.WriteSuccessStatus(w, code, map[string]any{
			"status": status,
			"checks": checks,
		})
	}
}
