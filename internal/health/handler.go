package health

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/skarras/circuitguard/circuitbreaker"
)

const (
	statusOK       = "ok"
	statusDegraded = "degraded"
)

// Handler renders circuit breaker registry state as JSON. Every request
// reads the registry fresh; nothing is cached.
type Handler struct {
	logger   *slog.Logger
	registry *circuitbreaker.Registry
}

type breakerStatus struct {
	Name             string     `json:"name"`
	State            string     `json:"state"`
	FailureCount     int        `json:"failure_count"`
	OpenRemainingSec int        `json:"open_remaining_sec"`
	OpenUntil        *time.Time `json:"open_until,omitempty"`
	LastFailure      string     `json:"last_failure,omitempty"`
}

type healthResponse struct {
	Status   string          `json:"status"`
	Breakers []breakerStatus `json:"breakers"`
}

func New(logger *slog.Logger, registry *circuitbreaker.Registry) *Handler {
	return &Handler{
		logger:   logger,
		registry: registry,
	}
}

// Health serves a readiness verdict: 200 when every breaker is effectively
// closed, 503 otherwise. The body lists every breaker either way.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:   statusOK,
		Breakers: h.snapshot(),
	}

	code := http.StatusOK
	if !h.registry.AllClosed() {
		resp.Status = statusDegraded
		code = http.StatusServiceUnavailable
	}

	h.writeJSON(w, code, resp)
}

// Breakers serves the full breaker list regardless of health.
func (h *Handler) Breakers(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.snapshot())
}

func (h *Handler) snapshot() []breakerStatus {
	all := h.registry.All()

	statuses := make([]breakerStatus, 0, len(all))
	for _, cb := range all {
		status := breakerStatus{
			Name:             cb.Name(),
			State:            cb.State().String(),
			FailureCount:     cb.FailureCount(),
			OpenRemainingSec: cb.OpenRemaining(),
		}
		if cb.Opened() {
			until := cb.OpenUntil()
			status.OpenUntil = &until
		}
		if err := cb.LastFailure(); err != nil {
			status.LastFailure = err.Error()
		}
		statuses = append(statuses, status)
	}

	// Registry iteration order is random; keep the payload stable.
	slices.SortFunc(statuses, func(a, b breakerStatus) int {
		return strings.Compare(a.Name, b.Name)
	})
	return statuses
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}
