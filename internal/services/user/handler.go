package user

import (
	"net/http"

	"canteen-system/internal/logger"
	"canteen-system/internal/models"
	"canteen-system/internal/web"
)

// Handler handles login requests
type Handler struct {
	service *Service
	logger  *logger.Logger
	respond *web.Responder
}

// NewHandler creates a new user handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
		respond: web.NewResponder(log),
	}
}

// Token handles POST /api/token/
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	var req models.TokenRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		h.respond.Error(w, r, "login_failed", err)
		return
	}

	token, err := h.service.Login(r.Context(), &req, web.RequestID(r.Context()))
	if err != nil {
		h.respond.Error(w, r, "login_failed", err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, token)
}
