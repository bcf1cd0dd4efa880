package cart

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"canteen-system/internal/auth"
	"canteen-system/internal/logger"
	"canteen-system/internal/models"
	"canteen-system/internal/web"
)

// Handler handles HTTP requests for the cart
type Handler struct {
	service *Service
	logger  *logger.Logger
	respond *web.Responder
}

// NewHandler creates a new cart handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
		respond: web.NewResponder(log),
	}
}

// Routes mounts the cart routes. Callers must authenticate first.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Get)
	r.Get("/summary/", h.Summary)
	r.Post("/add/", h.Add)
	r.Put("/items/{id}/update/", h.Update)
	r.Delete("/items/{id}/remove/", h.Remove)
	r.Delete("/clear/", h.Clear)
}

// Get handles GET /api/cart/
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := auth.Current(r.Context())
	if err != nil {
		h.respond.Error(w, r, "cart_get_failed", err)
		return
	}

	cart, err := h.service.Get(r.Context(), p.UserID)
	if err != nil {
		h.respond.Error(w, r, "cart_get_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, cart)
}

// Summary handles GET /api/cart/summary/
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	p, err := auth.Current(r.Context())
	if err != nil {
		h.respond.Error(w, r, "cart_summary_failed", err)
		return
	}

	summary, err := h.service.Summary(r.Context(), p.UserID)
	if err != nil {
		h.respond.Error(w, r, "cart_summary_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, summary)
}

// Add handles POST /api/cart/add/
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	p, err := auth.Current(r.Context())
	if err != nil {
		h.respond.Error(w, r, "cart_add_failed", err)
		return
	}

	var req models.AddToCartRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		h.respond.Error(w, r, "cart_add_failed", err)
		return
	}

	item, message, err := h.service.AddItem(r.Context(), p.UserID, &req, web.RequestID(r.Context()))
	if err != nil {
		h.respond.Error(w, r, "cart_add_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusCreated, map[string]interface{}{
		"message":   message,
		"cart_item": item,
	})
}

// Update handles PUT /api/cart/items/{id}/update/
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	p, err := auth.Current(r.Context())
	if err != nil {
		h.respond.Error(w, r, "cart_update_failed", err)
		return
	}

	itemID, err := web.IDParam(r, "id")
	if err != nil {
		h.respond.Error(w, r, "cart_update_failed", err)
		return
	}

	var req models.UpdateCartItemRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		h.respond.Error(w, r, "cart_update_failed", err)
		return
	}

	item, err := h.service.UpdateItem(r.Context(), p.UserID, itemID, &req)
	if err != nil {
		h.respond.Error(w, r, "cart_update_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, map[string]interface{}{
		"message":   "Cart item updated successfully",
		"cart_item": item,
	})
}

// Remove handles DELETE /api/cart/items/{id}/remove/
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	p, err := auth.Current(r.Context())
	if err != nil {
		h.respond.Error(w, r, "cart_remove_failed", err)
		return
	}

	itemID, err := web.IDParam(r, "id")
	if err != nil {
		h.respond.Error(w, r, "cart_remove_failed", err)
		return
	}

	name, err := h.service.RemoveItem(r.Context(), p.UserID, itemID)
	if err != nil {
		h.respond.Error(w, r, "cart_remove_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, map[string]string{
		"message": "Removed " + name + " from cart",
	})
}

// Clear handles DELETE /api/cart/clear/
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	p, err := auth.Current(r.Context())
	if err != nil {
		h.respond.Error(w, r, "cart_clear_failed", err)
		return
	}

	if err := h.service.Clear(r.Context(), p.UserID); err != nil {
		h.respond.Error(w, r, "cart_clear_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, map[string]string{
		"message": "Cart cleared successfully",
	})
}
