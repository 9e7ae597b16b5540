package handlers

import (
	"net/http"
	"time"

	"github.com/isdelr/pulse-be/internal/api/respond"
	"github.com/isdelr/pulse-be/internal/services"
)

// ServiceName is reported by the health check.
const ServiceName = "Project Pulse API"

// SummaryHandler serves the internal daily summary.
type SummaryHandler struct {
	service services.SummaryServiceProvider
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(service services.SummaryServiceProvider) *SummaryHandler {
	return &SummaryHandler{service: service}
}

// GetDaily handles the request for today's summary across all users.
func (h *SummaryHandler) GetDaily(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.ComputeDailySummary(r.Context())
	if err != nil {
		respond.Err(w, r, err)
		return
	}
	respond.Data(w, http.StatusOK, summary)
}

// Health reports liveness. It is not wrapped in the success envelope.
func Health(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"service":   ServiceName,
	})
}

// NotFound answers unmatched routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	respond.Fail(w, http.StatusNotFound, "Route not found")
}
