package menu

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"canteen-system/internal/apperror"
	"canteen-system/internal/logger"
	"canteen-system/internal/models"
	"canteen-system/internal/web"
)

// Handler handles HTTP requests for the menu catalog
type Handler struct {
	service *Service
	logger  *logger.Logger
	respond *web.Responder
}

// NewHandler creates a new menu handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
		respond: web.NewResponder(log),
	}
}

// CustomerRoutes mounts the public catalog routes
func (h *Handler) CustomerRoutes(r chi.Router) {
	r.Get("/", h.ListAvailable)
	r.Get("/categories/", h.Categories)
	r.Get("/featured/", h.Featured)
	r.Get("/search/", h.Search)
	r.Get("/{id}/", h.GetAvailable)
}

// AdminRoutes mounts the catalog management routes
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Get("/", h.ListAll)
	r.Post("/", h.Create)
	r.Get("/{id}/", h.Get)
	r.Put("/{id}/", h.Update)
	r.Delete("/{id}/", h.Delete)
}

// ListAvailable handles GET /api/menu/customer/
func (h *Handler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		h.respond.Error(w, r, "menu_list_failed", err)
		return
	}

	items, err := h.service.ListAvailable(r.Context(), filter)
	if err != nil {
		h.respond.Error(w, r, "menu_list_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, items)
}

// GetAvailable handles GET /api/menu/customer/{id}/
func (h *Handler) GetAvailable(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		h.respond.Error(w, r, "menu_item_get_failed", err)
		return
	}

	item, err := h.service.GetAvailable(r.Context(), id)
	if err != nil {
		h.respond.Error(w, r, "menu_item_get_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, item)
}

// Categories handles GET /api/menu/customer/categories/
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		h.respond.Error(w, r, "menu_categories_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, categories)
}

// Featured handles GET /api/menu/customer/featured/
func (h *Handler) Featured(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Featured(r.Context())
	if err != nil {
		h.respond.Error(w, r, "menu_featured_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, items)
}

// Search handles GET /api/menu/customer/search/
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		h.respond.Error(w, r, "menu_search_failed", err)
		return
	}

	items, err := h.service.ListAvailable(r.Context(), filter)
	if err != nil {
		h.respond.Error(w, r, "menu_search_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, map[string]interface{}{
		"results": items,
		"count":   len(items),
	})
}

// ListAll handles GET /api/menu/admin/
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		h.respond.Error(w, r, "menu_admin_list_failed", err)
		return
	}

	items, err := h.service.ListAll(r.Context(), filter)
	if err != nil {
		h.respond.Error(w, r, "menu_admin_list_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, items)
}

// Get handles GET /api/menu/admin/{id}/
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		h.respond.Error(w, r, "menu_item_get_failed", err)
		return
	}

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respond.Error(w, r, "menu_item_get_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, item)
}

// Create handles POST /api/menu/admin/
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.MenuItemRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		h.respond.Error(w, r, "menu_item_create_failed", err)
		return
	}

	item, err := h.service.Create(r.Context(), &req, web.RequestID(r.Context()))
	if err != nil {
		h.respond.Error(w, r, "menu_item_create_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusCreated, item)
}

// Update handles PUT /api/menu/admin/{id}/
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		h.respond.Error(w, r, "menu_item_update_failed", err)
		return
	}

	var req models.MenuItemRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		h.respond.Error(w, r, "menu_item_update_failed", err)
		return
	}

	item, err := h.service.Update(r.Context(), id, &req, web.RequestID(r.Context()))
	if err != nil {
		h.respond.Error(w, r, "menu_item_update_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, item)
}

// Delete handles DELETE /api/menu/admin/{id}/
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := web.IDParam(r, "id")
	if err != nil {
		h.respond.Error(w, r, "menu_item_delete_failed", err)
		return
	}

	if err := h.service.Delete(r.Context(), id, web.RequestID(r.Context())); err != nil {
		h.respond.Error(w, r, "menu_item_delete_failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseFilter reads catalog filters from the query string. Unparseable prices are ignored.
func parseFilter(r *http.Request) (models.MenuFilter, error) {
	q := r.URL.Query()
	filter := models.MenuFilter{
		Category: models.Category(q.Get("category")),
		Query:    q.Get("q"),
		Ordering: q.Get("ordering"),
	}
	if filter.Query == "" {
		filter.Query = q.Get("search")
	}
	if filter.Category != "" && !filter.Category.Valid() {
		return filter, apperror.Validation("category", "category must be one of: breakfast, lunch, dinner")
	}

	if v := q.Get("available"); v != "" {
		available, err := strconv.ParseBool(v)
		if err != nil {
			return filter, apperror.Validation("available", "available must be true or false")
		}
		filter.Available = &available
	}
	if v, err := decimal.NewFromString(q.Get("min_price")); err == nil {
		filter.MinPrice = &v
	}
	if v, err := decimal.NewFromString(q.Get("max_price")); err == nil {
		filter.MaxPrice = &v
	}
	return filter, nil
}
