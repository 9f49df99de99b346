package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/MASTFAX12/MAKERS/internal/middleware"
	"github.com/MASTFAX12/MAKERS/internal/models"
	"github.com/MASTFAX12/MAKERS/internal/service"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth          *AuthHandler
	Invites       *InviteHandler
	Members       *MemberHandler
	Projects      *ProjectHandler
	Scoring       *ScoringHandler
	Activity      *ActivityHandler
	Notifications *NotificationHandler
	Dashboard     *DashboardHandler
	Reports       *ReportHandler
	AI            *AIHandler
}

// RegisterRoutes mounts the API surface under prefix. Route-level
// permission checks mirror the capability catalog; the leader bypasses
// them all.
func RegisterRoutes(r *gin.Engine, prefix string, authService *service.AuthService, h Handlers) {
	api := r.Group(prefix)

	// Public endpoints: credentials go in, sessions come out.
	api.POST("/auth/leader-login", h.Auth.LeaderLogin)
	api.POST("/auth/leader-token/bootstrap", h.Auth.BootstrapToken)
	api.POST("/invites/consume", h.Invites.Consume)
	api.GET("/files/download", h.Projects.Download)

	authed := api.Group("", middleware.Session(authService))

	auth := authed.Group("/auth")
	{
		auth.POST("/leader-token/rotate", middleware.LeaderOnly(), h.Auth.RotateToken)
		auth.POST("/logout", h.Auth.Logout)
		auth.GET("/me", h.Auth.Me)
		auth.GET("/permissions", h.Auth.Permissions)
	}

	invites := authed.Group("/invites", middleware.LeaderOnly())
	{
		invites.POST("", h.Invites.Create)
		invites.GET("", h.Invites.List)
		invites.DELETE("/:id", h.Invites.Revoke)
	}

	members := authed.Group("/members")
	{
		members.GET("", middleware.Require(models.PermissionMembersView), h.Members.List)
		members.GET("/:id", middleware.Require(models.PermissionMembersView), h.Members.Get)
		members.PATCH("/:id", h.Members.Update)
		members.PUT("/:id/availability", h.Members.SetAvailability)
	}

	projects := authed.Group("/projects")
	{
		projects.GET("", middleware.Require(models.PermissionProjectsView), h.Projects.List)
		projects.GET("/deadlines", middleware.Require(models.PermissionProjectsView), h.Projects.Deadlines)
		projects.GET("/:id", middleware.Require(models.PermissionProjectsView), h.Projects.Get)
		projects.POST("", middleware.Require(models.PermissionProjectsCreate), h.Projects.Create)
		projects.PATCH("/:id", middleware.Require(models.PermissionProjectsManage), h.Projects.Update)
		projects.DELETE("/:id", middleware.LeaderOnly(), h.Projects.Delete)
		projects.PUT("/:id/status", h.Projects.ChangeStatus)
		projects.POST("/:id/comments", middleware.Require(models.PermissionProjectsView), h.Projects.AddComment)
		projects.POST("/:id/subtasks", h.Projects.AddSubtask)
		projects.PUT("/:id/subtasks/:subtaskId/toggle", h.Projects.ToggleSubtask)
		projects.POST("/:id/files", middleware.Require(models.PermissionProjectsView), h.Projects.UploadFile)
		projects.GET("/:id/files/:fileId/url", middleware.Require(models.PermissionProjectsView), h.Projects.FileURL)
	}

	scoring := authed.Group("/scoring")
	{
		scoring.GET("/suggest", middleware.Require(models.PermissionProjectsView), h.Scoring.Suggest)
		scoring.GET("/ranking", middleware.Require(models.PermissionAnalyticsView), h.Scoring.Ranking)
		scoring.GET("/workload", middleware.Require(models.PermissionAnalyticsView), h.Scoring.Workload)
	}

	authed.GET("/activity", middleware.Require(models.PermissionActivityView), h.Activity.List)
	authed.DELETE("/activity", middleware.LeaderOnly(), h.Activity.Clear)

	authed.GET("/notifications", h.Notifications.List)
	authed.PUT("/notifications/:id/read", h.Notifications.MarkRead)

	authed.GET("/dashboard", h.Dashboard.Get)

	reports := authed.Group("/reports", middleware.Require(models.PermissionAnalyticsView))
	{
		reports.GET("/workload.pdf", h.Reports.WorkloadPDF)
		reports.GET("/members.csv", h.Reports.MembersCSV)
		reports.GET("/projects.csv", h.Reports.ProjectsCSV)
	}

	ai := authed.Group("/ai", middleware.Require(models.PermissionProjectsCreate))
	{
		ai.POST("/suggest-team", h.AI.SuggestTeam)
		ai.POST("/describe-project", h.AI.DescribeProject)
		ai.GET("/status", h.AI.Status)
	}
}
