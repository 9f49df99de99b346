package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MASTFAX12/MAKERS/internal/models"
	"github.com/MASTFAX12/MAKERS/internal/service"
	appErrors "github.com/MASTFAX12/MAKERS/pkg/errors"
	"github.com/MASTFAX12/MAKERS/pkg/response"
)

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// LeaderLogin godoc
// @Summary Log in with the leader token
// @Description Exchange the raw leader token for a leader session
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LeaderLoginRequest true "Leader token"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/leader-login [post]
func (h *AuthHandler) LeaderLogin(c *gin.Context) {
	var req models.LeaderLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	res, err := h.service.LoginLeaderWithToken(c.Request.Context(), req.Token)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// BootstrapToken godoc
// @Summary Bootstrap the leader token
// @Description Mints the leader token when none exists; the raw token is disclosed exactly once
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Router /auth/leader-token/bootstrap [post]
func (h *AuthHandler) BootstrapToken(c *gin.Context) {
	res, err := h.service.EnsureLeaderToken(c.Request.Context(), true)
	if err != nil {
		response.Error(c, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	response.JSON(c, status, res, nil)
}

// RotateToken godoc
// @Summary Rotate the leader token
// @Description Replaces the leader token; the old one is unusable immediately
// @Tags Authentication
// @Produce json
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /auth/leader-token/rotate [post]
func (h *AuthHandler) RotateToken(c *gin.Context) {
	res, err := h.service.RotateLeaderToken(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, res)
}

// Logout godoc
// @Summary Log out
// @Description Records the logout; the client discards its token
// @Tags Authentication
// @Produce json
// @Success 204 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	h.service.Logout(c.Request.Context(), session)
	response.NoContent(c)
}

// Me godoc
// @Summary Get current session
// @Description Returns the authenticated session's identity and permissions
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	response.JSON(c, http.StatusOK, session, nil)
}

// Permissions godoc
// @Summary List the permission catalog
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/permissions [get]
func (h *AuthHandler) Permissions(c *gin.Context) {
	response.JSON(c, http.StatusOK, models.PermissionCatalog(), nil)
}
