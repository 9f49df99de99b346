package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MASTFAX12/MAKERS/internal/models"
	"github.com/MASTFAX12/MAKERS/internal/service"
	appErrors "github.com/MASTFAX12/MAKERS/pkg/errors"
	"github.com/MASTFAX12/MAKERS/pkg/response"
)

// InviteHandler wires HTTP endpoints to the invite service.
type InviteHandler struct {
	service *service.InviteService
}

// NewInviteHandler creates a new handler.
func NewInviteHandler(svc *service.InviteService) *InviteHandler {
	return &InviteHandler{service: svc}
}

// Create godoc
// @Summary Create an invite
// @Description Issues a single-use invite link for a member identity. Leader only.
// @Tags Invites
// @Accept json
// @Produce json
// @Param payload body models.CreateInviteRequest true "Invite payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /invites [post]
func (h *InviteHandler) Create(c *gin.Context) {
	var req models.CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid invite payload"))
		return
	}

	res, err := h.service.Create(c.Request.Context(), sessionFromContext(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, res)
}

// List godoc
// @Summary List invites
// @Description Returns every issued invite, newest first. Leader only.
// @Tags Invites
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /invites [get]
func (h *InviteHandler) List(c *gin.Context) {
	invites, err := h.service.List(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, invites, nil)
}

// Revoke godoc
// @Summary Revoke an invite
// @Description Terminates a pending invite. Leader only.
// @Tags Invites
// @Produce json
// @Param id path string true "Invite ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /invites/{id} [delete]
func (h *InviteHandler) Revoke(c *gin.Context) {
	if err := h.service.Revoke(c.Request.Context(), sessionFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Consume godoc
// @Summary Redeem an invite
// @Description Exchanges an invite id and token for a member session. Each rejection carries its own reason.
// @Tags Invites
// @Accept json
// @Produce json
// @Param payload body models.ConsumeInviteRequest true "Invite credentials"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /invites/consume [post]
func (h *InviteHandler) Consume(c *gin.Context) {
	var req models.ConsumeInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid invite payload"))
		return
	}

	res, err := h.service.Consume(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}
