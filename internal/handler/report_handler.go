package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MASTFAX12/MAKERS/internal/service"
	"github.com/MASTFAX12/MAKERS/pkg/response"
)

// ReportHandler streams rendered exports back to the browser.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// WorkloadPDF godoc
// @Summary Download the team workload report
// @Tags Reports
// @Produce application/pdf
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /reports/workload.pdf [get]
func (h *ReportHandler) WorkloadPDF(c *gin.Context) {
	out, err := h.service.TeamReportPDF(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	serveDownload(c, out, "application/pdf", "workload")
}

// MembersCSV godoc
// @Summary Download the roster as CSV
// @Tags Reports
// @Produce text/csv
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /reports/members.csv [get]
func (h *ReportHandler) MembersCSV(c *gin.Context) {
	out, err := h.service.MembersCSV(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	serveDownload(c, out, "text/csv", "members")
}

// ProjectsCSV godoc
// @Summary Download projects as CSV
// @Tags Reports
// @Produce text/csv
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /reports/projects.csv [get]
func (h *ReportHandler) ProjectsCSV(c *gin.Context) {
	out, err := h.service.ProjectsCSV(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	serveDownload(c, out, "text/csv", "projects")
}

func serveDownload(c *gin.Context, body []byte, contentType, stem string) {
	ext := "csv"
	if contentType == "application/pdf" {
		ext = "pdf"
	}
	filename := fmt.Sprintf("%s_%s.%s", stem, time.Now().Format("2006-01-02"), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, body)
}
