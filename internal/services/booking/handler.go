package booking

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"canteen-system/internal/auth"
	"canteen-system/internal/logger"
	"canteen-system/internal/models"
	"canteen-system/internal/web"
)

// Handler handles HTTP requests for bookings
type Handler struct {
	service *Service
	logger  *logger.Logger
	respond *web.Responder
}

// NewHandler creates a new booking handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
		respond: web.NewResponder(log),
	}
}

// Routes mounts the booking routes. Callers must authenticate first.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Delete("/{id}/cancel/", h.Cancel)
}

// List handles GET /api/bookings/
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, err := auth.Current(r.Context())
	if err != nil {
		h.respond.Error(w, r, "booking_list_failed", err)
		return
	}

	bookings, err := h.service.List(r.Context(), p.UserID)
	if err != nil {
		h.respond.Error(w, r, "booking_list_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, bookings)
}

// Create handles POST /api/bookings/
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := auth.Current(r.Context())
	if err != nil {
		h.respond.Error(w, r, "booking_create_failed", err)
		return
	}

	var req models.CreateBookingRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		h.respond.Error(w, r, "booking_create_failed", err)
		return
	}

	booking, err := h.service.Create(r.Context(), p.UserID, &req, web.RequestID(r.Context()))
	if err != nil {
		h.respond.Error(w, r, "booking_create_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusCreated, booking)
}

// Cancel handles DELETE /api/bookings/{id}/cancel/
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	p, err := auth.Current(r.Context())
	if err != nil {
		h.respond.Error(w, r, "booking_cancel_failed", err)
		return
	}

	id, err := web.IDParam(r, "id")
	if err != nil {
		h.respond.Error(w, r, "booking_cancel_failed", err)
		return
	}

	if err := h.service.Cancel(r.Context(), p.UserID, id, web.RequestID(r.Context())); err != nil {
		h.respond.Error(w, r, "booking_cancel_failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
