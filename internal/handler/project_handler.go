package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MASTFAX12/MAKERS/internal/models"
	"github.com/MASTFAX12/MAKERS/internal/service"
	appErrors "github.com/MASTFAX12/MAKERS/pkg/errors"
	"github.com/MASTFAX12/MAKERS/pkg/response"
)

// maxAttachmentSize bounds uploaded file bodies.
const maxAttachmentSize = 20 << 20

// ProjectHandler wires HTTP endpoints to the project service.
type ProjectHandler struct {
	service *service.ProjectService
}

// NewProjectHandler creates a new handler.
func NewProjectHandler(svc *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: svc}
}

// List godoc
// @Summary List projects
// @Tags Projects
// @Produce json
// @Param status query string false "Filter by status"
// @Param subject query string false "Filter by subject"
// @Success 200 {object} response.Envelope
// @Router /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.service.List(c.Request.Context(), c.Query("status"), c.Query("subject"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, projects, nil)
}

// Get godoc
// @Summary Get one project
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, project, nil)
}

// Create godoc
// @Summary Create a project
// @Tags Projects
// @Accept json
// @Produce json
// @Param payload body models.CreateProjectRequest true "Project payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid project payload"))
		return
	}

	project, err := h.service.Create(c.Request.Context(), sessionFromContext(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, project)
}

// Update godoc
// @Summary Update a project
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param payload body models.UpdateProjectRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /projects/{id} [patch]
func (h *ProjectHandler) Update(c *gin.Context) {
	var req models.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid project payload"))
		return
	}

	project, err := h.service.Update(c.Request.Context(), sessionFromContext(c), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, project, nil)
}

// ChangeStatus godoc
// @Summary Change a project's status
// @Description Completing a project settles team workload counters and accepts an optional grade
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param payload body models.ChangeStatusRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /projects/{id}/status [put]
func (h *ProjectHandler) ChangeStatus(c *gin.Context) {
	var req models.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	project, err := h.service.ChangeStatus(c.Request.Context(), sessionFromContext(c), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, project, nil)
}

// Delete godoc
// @Summary Delete a project
// @Description Leader only; attachments are removed with it
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), sessionFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// AddComment godoc
// @Summary Comment on a project
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param payload body models.AddCommentRequest true "Comment text"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /projects/{id}/comments [post]
func (h *ProjectHandler) AddComment(c *gin.Context) {
	var req models.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid comment payload"))
		return
	}

	project, err := h.service.AddComment(c.Request.Context(), sessionFromContext(c), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, project, nil)
}

// AddSubtask godoc
// @Summary Add a checklist item
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param payload body models.AddSubtaskRequest true "Subtask title"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /projects/{id}/subtasks [post]
func (h *ProjectHandler) AddSubtask(c *gin.Context) {
	var req models.AddSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid subtask payload"))
		return
	}

	project, err := h.service.AddSubtask(c.Request.Context(), sessionFromContext(c), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, project, nil)
}

// ToggleSubtask godoc
// @Summary Toggle a checklist item
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Param subtaskId path string true "Subtask ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /projects/{id}/subtasks/{subtaskId}/toggle [put]
func (h *ProjectHandler) ToggleSubtask(c *gin.Context) {
	project, err := h.service.ToggleSubtask(c.Request.Context(), sessionFromContext(c), c.Param("id"), c.Param("subtaskId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, project, nil)
}

// Deadlines godoc
// @Summary Upcoming and overdue deadlines
// @Tags Projects
// @Produce json
// @Param hours query int false "Lookahead window in hours" default(72)
// @Success 200 {object} response.Envelope
// @Router /projects/deadlines [get]
func (h *ProjectHandler) Deadlines(c *gin.Context) {
	hours, err := strconv.Atoi(c.DefaultQuery("hours", "72"))
	if err != nil || hours < 1 {
		hours = 72
	}

	approaching, overdue, err := h.service.DueWithin(c.Request.Context(), time.Duration(hours)*time.Hour)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"approaching": approaching,
		"overdue":     overdue,
	}, nil)
}

// UploadFile godoc
// @Summary Attach a file
// @Tags Projects
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Project ID"
// @Param file formData file true "Attachment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /projects/{id}/files [post]
func (h *ProjectHandler) UploadFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "a file field is required"))
		return
	}
	if header.Size > maxAttachmentSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "attachment exceeds the size limit"))
		return
	}

	src, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable attachment"))
		return
	}
	defer src.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(src, maxAttachmentSize))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to read attachment"))
		return
	}

	file, err := h.service.AttachFile(c.Request.Context(), sessionFromContext(c), c.Param("id"), header.Filename, data)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, file)
}

// FileURL godoc
// @Summary Get a signed download link
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Param fileId path string true "File ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /projects/{id}/files/{fileId}/url [get]
func (h *ProjectHandler) FileURL(c *gin.Context) {
	token, expiresAt, err := h.service.FileURL(c.Request.Context(), sessionFromContext(c), c.Param("id"), c.Param("fileId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt,
	}, nil)
}

// Download godoc
// @Summary Download an attachment with a signed token
// @Tags Projects
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /files/download [get]
func (h *ProjectHandler) Download(c *gin.Context) {
	file, name, err := h.service.OpenFile(c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.FileAttachment(file.Name(), name)
}
