package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MASTFAX12/MAKERS/internal/service"
	"github.com/MASTFAX12/MAKERS/pkg/response"
)

// ActivityHandler exposes the audit trail.
type ActivityHandler struct {
	service *service.ActivityService
}

// NewActivityHandler creates a new handler.
func NewActivityHandler(svc *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: svc}
}

// List godoc
// @Summary List recent activity
// @Description Entries come back newest first, capped at the retention window
// @Tags Activity
// @Produce json
// @Param limit query int false "Max entries" default(100)
// @Success 200 {object} response.Envelope
// @Router /activity [get]
func (h *ActivityHandler) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 1 {
		limit = 100
	}

	entries, err := h.service.List(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entries, nil)
}

// Clear godoc
// @Summary Clear the activity log
// @Description Leader only
// @Tags Activity
// @Produce json
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /activity [delete]
func (h *ActivityHandler) Clear(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
