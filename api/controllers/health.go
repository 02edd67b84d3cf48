package controllers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/smartkisan/kisan-backend/api/responses"
	"github.com/smartkisan/kisan-backend/pkg/config"
	pkgerrors "github.com/smartkisan/kisan-backend/pkg/errors"
	"github.com/smartkisan/kisan-backend/pkg/logger"
)

type healthResponse struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
}

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteJSON(w, http.StatusOK, healthResponse{
			Success:     true,
			Message:     "Smart Kisan Shakti API is running!",
			Timestamp:   time.Now().UTC(),
			Environment: cfg.App.Env,
		})
	}
}

// HealthReady pings every dependency and answers 503 when any fails.
func HealthReady(deps map[string]Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := make(map[string]string, len(deps))
		var errs error
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				status[name] = "down"
				errs = multierr.Append(errs, err)
				continue
			}
			status[name] = "up"
		}
		if errs != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "dependency check failed").WithDetails(status))
			return
		}
		responses.WriteSuccess(w, status)
	}
}
