package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MASTFAX12/MAKERS/internal/service"
	appErrors "github.com/MASTFAX12/MAKERS/pkg/errors"
	"github.com/MASTFAX12/MAKERS/pkg/response"
)

const defaultTeamSize = 3

// ScoringHandler exposes the priority ranking engine.
type ScoringHandler struct {
	service *service.ScoringService
	metrics *service.MetricsService
}

// NewScoringHandler creates a new handler.
func NewScoringHandler(svc *service.ScoringService, metrics *service.MetricsService) *ScoringHandler {
	return &ScoringHandler{service: svc, metrics: metrics}
}

// Suggest godoc
// @Summary Suggest a team for a subject
// @Description Ranks the roster by priority score and flags the top entries
// @Tags Scoring
// @Produce json
// @Param subject query string true "Subject ID"
// @Param size query int false "Team size" default(3)
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /scoring/suggest [get]
func (h *ScoringHandler) Suggest(c *gin.Context) {
	subject := c.Query("subject")
	if subject == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "a subject query parameter is required"))
		return
	}

	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultTeamSize)))
	if err != nil || size < 1 {
		size = defaultTeamSize
	}

	ranked, err := h.service.SuggestedTeam(c.Request.Context(), subject, size)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.CountRanking()
	response.JSON(c, http.StatusOK, ranked, nil)
}

// Ranking godoc
// @Summary Roster ranking by contribution score
// @Description Subject-independent standing built from accumulated contribution
// @Tags Scoring
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /scoring/ranking [get]
func (h *ScoringHandler) Ranking(c *gin.Context) {
	ranked, err := h.service.MemberRanking(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.CountRanking()
	response.JSON(c, http.StatusOK, ranked, nil)
}

// Workload godoc
// @Summary Active workload distribution
// @Description Per-member share of active work plus a balance flag
// @Tags Scoring
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /scoring/workload [get]
func (h *ScoringHandler) Workload(c *gin.Context) {
	shares, err := h.service.WorkloadDistribution(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	balanced, err := h.service.IsWorkloadBalanced(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"distribution": shares,
		"balanced":     balanced,
	}, nil)
}
