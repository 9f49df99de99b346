package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MASTFAX12/MAKERS/internal/mirror"
	"github.com/MASTFAX12/MAKERS/internal/service"
	"github.com/MASTFAX12/MAKERS/pkg/response"
)

// DashboardHandler composes the aggregate view the HQ landing page renders
// in one request.
type DashboardHandler struct {
	members    *service.MemberService
	projects   *service.ProjectService
	scoring    *service.ScoringService
	replicator *mirror.Replicator
	lookahead  time.Duration
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(
	members *service.MemberService,
	projects *service.ProjectService,
	scoring *service.ScoringService,
	replicator *mirror.Replicator,
	lookahead time.Duration,
) *DashboardHandler {
	if lookahead <= 0 {
		lookahead = 72 * time.Hour
	}
	return &DashboardHandler{
		members:    members,
		projects:   projects,
		scoring:    scoring,
		replicator: replicator,
		lookahead:  lookahead,
	}
}

// Get godoc
// @Summary Dashboard aggregate
// @Description Roster totals, project stats, workload distribution and upcoming deadlines in one payload
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	totals, err := h.members.Totals(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}

	stats, err := h.projects.Stats(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}

	shares, err := h.scoring.WorkloadDistribution(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}

	balanced, err := h.scoring.IsWorkloadBalanced(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}

	approaching, overdue, err := h.projects.DueWithin(ctx, h.lookahead)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"team":      totals,
		"projects":  stats,
		"workload":  gin.H{"distribution": shares, "balanced": balanced},
		"deadlines": gin.H{"approaching": approaching, "overdue": overdue},
		"mirror": gin.H{
			"enabled": h.replicator.Enabled(),
			"online":  h.replicator.Online(),
		},
	}, nil)
}
