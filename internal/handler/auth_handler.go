package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/techskill-console/internal/backend"
	"github.com/noah-isme/techskill-console/internal/dto"
	"github.com/noah-isme/techskill-console/internal/models"
	"github.com/noah-isme/techskill-console/pkg/response"
)

type authService interface {
	Login(ctx context.Context, req models.LoginRequest) (*dto.LoginResponse, *backend.Session, error)
	Logout(ctx context.Context, session *backend.Session) error
}

// AuthHandler wires sign in and sign out to the auth service.
type AuthHandler struct {
	service authService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Login godoc
// @Summary Sign in
// @Description Exchange operator credentials for a backend bearer token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := bindJSON(c, &req, "login"); err != nil {
		response.ActionError(c, err)
		return
	}

	res, _, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.ActionError(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Logout godoc
// @Summary Sign out
// @Tags Authentication
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Logout(c.Request.Context(), session); err != nil {
		response.ActionError(c, err)
		return
	}
	response.NoContent(c)
}
