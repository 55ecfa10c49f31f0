package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Merco74/ScoutPlateform/common/httputil"
	"github.com/Merco74/ScoutPlateform/common/metrics"

	"github.com/go-chi/chi/v5"
)

const checkTimeout = 2 * time.Second

// Dependency is probed by the readiness endpoint.
type Dependency struct {
	Name  string
	Check func(ctx context.Context) error
}

type Handler struct {
	dependencies []Dependency
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

func NewHandler(logger *slog.Logger, m *metrics.Metrics, dependencies ...Dependency) *Handler {
	return &Handler{
		dependencies: dependencies,
		metrics:      m,
		logger:       logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.Health)
	router.Get("/ready", h.Ready)
}

type HealthResponse struct {
	Status     string `json:"status"`
	Dependency string `json:"dependency,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready reports 503 naming the first dependency that fails its check.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	for _, dep := range h.dependencies {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		start := time.Now()
		err := dep.Check(ctx)
		cancel()

		h.metrics.Health.RecordDependencyCheck(r.Context(), dep.Name, time.Since(start), err)
		if err != nil {
			h.logger.WarnContext(r.Context(), "dependency not ready", "dependency", dep.Name, "error", err)
			httputil.RespondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:     "unavailable",
				Dependency: dep.Name,
			})
			return
		}
	}

	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ready"})
}
