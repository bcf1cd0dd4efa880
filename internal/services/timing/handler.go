package timing

import (
	"net/http"

	"canteen-system/internal/logger"
	"canteen-system/internal/models"
	"canteen-system/internal/web"
)

// Handler handles HTTP requests for the canteen hours
type Handler struct {
	service *Service
	logger  *logger.Logger
	respond *web.Responder
}

// NewHandler creates a new timing handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
		respond: web.NewResponder(log),
	}
}

// Get handles GET /api/timings/
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	timing, err := h.service.Current(r.Context())
	if err != nil {
		h.respond.Error(w, r, "timing_get_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, timing)
}

// Update handles PUT /api/timings/
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateTimingRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		h.respond.Error(w, r, "timing_update_failed", err)
		return
	}

	timing, err := h.service.Update(r.Context(), &req, web.RequestID(r.Context()))
	if err != nil {
		h.respond.Error(w, r, "timing_update_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, timing)
}
