package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MASTFAX12/MAKERS/internal/models"
	"github.com/MASTFAX12/MAKERS/internal/service"
	appErrors "github.com/MASTFAX12/MAKERS/pkg/errors"
	"github.com/MASTFAX12/MAKERS/pkg/response"
)

// MemberHandler wires HTTP endpoints to the member service.
type MemberHandler struct {
	service *service.MemberService
}

// NewMemberHandler creates a new handler.
func NewMemberHandler(svc *service.MemberService) *MemberHandler {
	return &MemberHandler{service: svc}
}

// List godoc
// @Summary List the roster
// @Tags Members
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /members [get]
func (h *MemberHandler) List(c *gin.Context) {
	members, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, members, nil)
}

// Get godoc
// @Summary Get one member
// @Tags Members
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /members/{id} [get]
func (h *MemberHandler) Get(c *gin.Context) {
	member, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, member, nil)
}

// Update godoc
// @Summary Update a member
// @Description Members edit their own profile; the leader edits anyone including permissions
// @Tags Members
// @Accept json
// @Produce json
// @Param id path string true "Member ID"
// @Param payload body models.UpdateMemberRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /members/{id} [patch]
func (h *MemberHandler) Update(c *gin.Context) {
	var req models.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid member payload"))
		return
	}

	member, err := h.service.Update(c.Request.Context(), sessionFromContext(c), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, member, nil)
}

// SetAvailability godoc
// @Summary Change a member's availability
// @Tags Members
// @Accept json
// @Produce json
// @Param id path string true "Member ID"
// @Param payload body models.SetAvailabilityRequest true "New availability"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /members/{id}/availability [put]
func (h *MemberHandler) SetAvailability(c *gin.Context) {
	var req models.SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability payload"))
		return
	}

	member, err := h.service.SetAvailability(c.Request.Context(), sessionFromContext(c), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, member, nil)
}
