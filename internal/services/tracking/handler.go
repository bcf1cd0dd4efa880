package tracking

import (
	"net/http"

	"canteen-system/internal/auth"
	"canteen-system/internal/logger"
	"canteen-system/internal/web"
)

// Handler handles HTTP requests for order tracking
type Handler struct {
	service *Service
	logger  *logger.Logger
	respond *web.Responder
}

// NewHandler creates a new tracking handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
		respond: web.NewResponder(log),
	}
}

// GetOrderHistory handles GET /api/orders/{id}/history/
func (h *Handler) GetOrderHistory(w http.ResponseWriter, r *http.Request) {
	p, err := auth.Current(r.Context())
	if err != nil {
		h.respond.Error(w, r, "order_history_failed", err)
		return
	}

	orderID, err := web.IDParam(r, "id")
	if err != nil {
		h.respond.Error(w, r, "order_history_failed", err)
		return
	}

	history, err := h.service.GetOrderHistory(r.Context(), p, orderID, web.RequestID(r.Context()))
	if err != nil {
		h.respond.Error(w, r, "order_history_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, history)
}
