package order

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"canteen-system/internal/apperror"
	"canteen-system/internal/auth"
	"canteen-system/internal/logger"
	"canteen-system/internal/models"
	"canteen-system/internal/web"
)

// Handler handles HTTP requests for orders
type Handler struct {
	service *Service
	logger  *logger.Logger
	respond *web.Responder
}

// NewHandler creates a new order handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
		respond: web.NewResponder(log),
	}
}

// Routes mounts the customer order routes. Callers must authenticate first.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/history/", h.History)
	r.Post("/place/", h.Place)
	r.Get("/{id}/", h.Get)
	r.Post("/{id}/cancel/", h.Cancel)
}

// AdminRoutes mounts the order management routes
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Get("/", h.AdminList)
	r.Get("/summary/today/", h.TodaySummary)
	r.Get("/{id}/", h.AdminGet)
	r.Patch("/{id}/update-status/", h.UpdateStatus)
}

// List handles GET /api/orders/
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, err := auth.Current(r.Context())
	if err != nil {
		h.respond.Error(w, r, "order_list_failed", err)
		return
	}

	status, err := statusParam(r)
	if err != nil {
		h.respond.Error(w, r, "order_list_failed", err)
		return
	}

	orders, err := h.service.ListForUser(r.Context(), p.UserID, status)
	if err != nil {
		h.respond.Error(w, r, "order_list_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, orders)
}

// History handles GET /api/orders/history/?page=N
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	p, err := auth.Current(r.Context())
	if err != nil {
		h.respond.Error(w, r, "order_history_failed", err)
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil {
			h.respond.Error(w, r, "order_history_failed", apperror.Validation("page", "page must be a positive integer"))
			return
		}
	}

	result, err := h.service.History(r.Context(), p.UserID, page)
	if err != nil {
		h.respond.Error(w, r, "order_history_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, result)
}

// Get handles GET /api/orders/{id}/
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := auth.Current(r.Context())
	if err != nil {
		h.respond.Error(w, r, "order_get_failed", err)
		return
	}

	id, err := web.IDParam(r, "id")
	if err != nil {
		h.respond.Error(w, r, "order_get_failed", err)
		return
	}

	order, err := h.service.GetForUser(r.Context(), p.UserID, id)
	if err != nil {
		h.respond.Error(w, r, "order_get_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, order)
}

// Place handles POST /api/orders/place/. An empty body is accepted.
func (h *Handler) Place(w http.ResponseWriter, r *http.Request) {
	p, err := auth.Current(r.Context())
	if err != nil {
		h.respond.Error(w, r, "order_place_failed", err)
		return
	}

	var req models.PlaceOrderRequest
	if r.ContentLength != 0 {
		if err := web.DecodeJSON(r, &req); err != nil {
			h.respond.Error(w, r, "order_place_failed", err)
			return
		}
	}

	order, err := h.service.PlaceOrder(r.Context(), p, &req, web.RequestID(r.Context()))
	if err != nil {
		h.respond.Error(w, r, "order_place_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusCreated, map[string]interface{}{
		"message": "Order placed successfully",
		"order":   order,
	})
}

// Cancel handles POST /api/orders/{id}/cancel/
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	p, err := auth.Current(r.Context())
	if err != nil {
		h.respond.Error(w, r, "order_cancel_failed", err)
		return
	}

	id, err := web.IDParam(r, "id")
	if err != nil {
		h.respond.Error(w, r, "order_cancel_failed", err)
		return
	}

	order, err := h.service.CancelOrder(r.Context(), p, id, web.RequestID(r.Context()))
	if err != nil {
		h.respond.Error(w, r, "order_cancel_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, map[string]interface{}{
		"message": "Order cancelled successfully",
		"order":   order,
	})
}

// AdminList handles GET /api/orders/admin/?status=&user=&search=
func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	status, err := statusParam(r)
	if err != nil {
		h.respond.Error(w, r, "order_list_failed", err)
		return
	}

	filter := models.OrderFilter{
		Status: status,
		Search: r.URL.Query().Get("search"),
	}
	if raw := r.URL.Query().Get("user"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.respond.Error(w, r, "order_list_failed", apperror.Validation("user", "user must be a numeric id"))
			return
		}
		filter.UserID = &userID
	}

	orders, err := h.service.ListAll(r.Context(), filter)
	if err != nil {
		h.respond.Error(w, r, "order_list_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, orders)
}

// AdminGet handles GET /api/orders/admin/{id}/
func (h *Handler) AdminGet(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		h.respond.Error(w, r, "order_get_failed", err)
		return
	}

	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respond.Error(w, r, "order_get_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, order)
}

// UpdateStatus handles PATCH /api/orders/admin/{id}/update-status/
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	p, err := auth.Current(r.Context())
	if err != nil {
		h.respond.Error(w, r, "order_status_update_failed", err)
		return
	}

	id, err := web.IDParam(r, "id")
	if err != nil {
		h.respond.Error(w, r, "order_status_update_failed", err)
		return
	}

	var req models.UpdateStatusRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		h.respond.Error(w, r, "order_status_update_failed", err)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), p, id, &req, web.RequestID(r.Context()))
	if err != nil {
		h.respond.Error(w, r, "order_status_update_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, map[string]interface{}{
		"message": "Order status updated successfully",
		"order":   order,
	})
}

// TodaySummary handles GET /api/orders/admin/summary/today/
func (h *Handler) TodaySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.TodaySummary(r.Context())
	if err != nil {
		h.respond.Error(w, r, "order_summary_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, summary)
}

func statusParam(r *http.Request) (models.OrderStatus, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("status"))
	if raw == "" {
		return "", nil
	}
	return models.ParseOrderStatus(raw)
}
