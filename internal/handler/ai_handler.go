package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MASTFAX12/MAKERS/internal/service"
	appErrors "github.com/MASTFAX12/MAKERS/pkg/errors"
	"github.com/MASTFAX12/MAKERS/pkg/response"
)

// AIHandler exposes the assistant helpers. Every endpoint degrades to a
// deterministic answer when the model is unavailable.
type AIHandler struct {
	service *service.AIService
}

// NewAIHandler creates a new handler.
func NewAIHandler(svc *service.AIService) *AIHandler {
	return &AIHandler{service: svc}
}

type suggestTeamRequest struct {
	Subject  string `json:"subject" binding:"required"`
	TeamSize int    `json:"team_size"`
}

type describeProjectRequest struct {
	Title   string `json:"title" binding:"required"`
	Subject string `json:"subject" binding:"required"`
}

// SuggestTeam godoc
// @Summary Ask the assistant to pick a team
// @Description Falls back to the scoring ranking when the model declines or fails
// @Tags AI
// @Accept json
// @Produce json
// @Param payload body suggestTeamRequest true "Subject and team size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /ai/suggest-team [post]
func (h *AIHandler) SuggestTeam(c *gin.Context) {
	var req suggestTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid suggestion payload"))
		return
	}
	if req.TeamSize < 1 {
		req.TeamSize = defaultTeamSize
	}

	suggestion, err := h.service.SuggestTeam(c.Request.Context(), req.Subject, req.TeamSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, suggestion, nil)
}

// DescribeProject godoc
// @Summary Draft a project description
// @Tags AI
// @Accept json
// @Produce json
// @Param payload body describeProjectRequest true "Title and subject"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /ai/describe-project [post]
func (h *AIHandler) DescribeProject(c *gin.Context) {
	var req describeProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid description payload"))
		return
	}

	description := h.service.DescribeProject(c.Request.Context(), req.Title, req.Subject)
	response.JSON(c, http.StatusOK, gin.H{"description": description}, nil)
}

// Status godoc
// @Summary Assistant availability
// @Tags AI
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /ai/status [get]
func (h *AIHandler) Status(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Status(), nil)
}
