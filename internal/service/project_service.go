package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MASTFAX12/MAKERS/internal/models"
	"github.com/MASTFAX12/MAKERS/pkg/errors"
	"github.com/MASTFAX12/MAKERS/pkg/storage"
)

// ProjectStorage is the project persistence contract.
type ProjectStorage interface {
	List(ctx context.Context) ([]models.Project, error)
	Get(ctx context.Context, id string) (*models.Project, error)
	Insert(ctx context.Context, project models.Project) error
	Update(ctx context.Context, project models.Project) error
	Delete(ctx context.Context, id string) error
}

// SubjectCatalog resolves the configured subject list.
type SubjectCatalog interface {
	Get(ctx context.Context) (*models.Settings, error)
}

// WorkloadTracker is the scoring engine surface the project lifecycle
// drives. Satisfied by ScoringService.
type WorkloadTracker interface {
	AssignProject(ctx context.Context, memberID, projectID, subjectID string) error
	CompleteProject(ctx context.Context, memberID, subjectID string, grade *float64) error
}

// Notifier fans events out to the notification feed.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification)
}

// AttachmentStore persists uploaded file blobs.
type AttachmentStore interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

// ProjectService owns the project lifecycle. Assignment and completion feed
// the scoring engine so workload counters track reality.
type ProjectService struct {
	projects ProjectStorage
	settings SubjectCatalog
	workload WorkloadTracker
	activity ActivityRecorder
	notifier Notifier
	files    AttachmentStore
	signer   *storage.SignedURLSigner
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// NewProjectService creates a project service. files and signer may be nil
// when attachment support is disabled.
func NewProjectService(
	projects ProjectStorage,
	settings SubjectCatalog,
	workload WorkloadTracker,
	activity ActivityRecorder,
	notifier Notifier,
	files AttachmentStore,
	signer *storage.SignedURLSigner,
	logger *zap.Logger,
) *ProjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectService{
		projects: projects,
		settings: settings,
		workload: workload,
		activity: activity,
		notifier: notifier,
		files:    files,
		signer:   signer,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// List returns projects, optionally filtered by status and subject.
func (s *ProjectService) List(ctx context.Context, status, subject string) ([]models.Project, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, err
	}
	if status == "" && subject == "" {
		return projects, nil
	}

	out := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if status != "" && string(p.Status) != status {
			continue
		}
		if subject != "" && p.Subject != subject {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Get returns one project.
func (s *ProjectService) Get(ctx context.Context, id string) (*models.Project, error) {
	return s.projects.Get(ctx, id)
}

// Create opens a new project and registers every assigned member with the
// scoring engine.
func (s *ProjectService) Create(ctx context.Context, session *models.Session, req *models.CreateProjectRequest) (*models.Project, error) {
	if !session.Can(models.PermissionProjectsCreate) {
		return nil, errors.ErrForbidden
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation.Code, errors.ErrValidation.Status, "invalid project payload")
	}
	if err := s.checkSubject(ctx, req.Subject); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	project := models.Project{
		ID:              "proj_" + uuid.NewString(),
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		Subject:         req.Subject,
		TeamSize:        req.TeamSize,
		AssignedMembers: req.AssignedMembers,
		CreatedDate:     now,
		Deadline:        req.Deadline,
		Status:          models.StatusNew,
		Priority:        req.Priority,
	}
	project.Normalize()

	if err := s.projects.Insert(ctx, project); err != nil {
		return nil, err
	}

	for _, memberID := range project.AssignedMembers {
		if err := s.workload.AssignProject(ctx, memberID, project.ID, project.Subject); err != nil {
			s.logger.Warn("workload update failed", zap.String("member_id", memberID), zap.Error(err))
		}
		s.notify(ctx, models.Notification{
			Type:         models.NotificationMemberAssigned,
			Title:        "New assignment",
			Message:      fmt.Sprintf("You were assigned to %q", project.Title),
			TargetMember: memberID,
			ProjectID:    project.ID,
		})
	}

	s.activity.Record(ctx, models.ActionProjectCreate, session.MemberID, map[string]string{
		"project_id": project.ID,
		"title":      project.Title,
	})
	s.notify(ctx, models.Notification{
		Type:      models.NotificationProjectCreated,
		Title:     "Project created",
		Message:   fmt.Sprintf("%q was created", project.Title),
		ProjectID: project.ID,
	})

	return &project, nil
}

// Update edits project metadata. Members newly added to the team get an
// assignment hook; removed members keep their counters, history is not
// rewritten.
func (s *ProjectService) Update(ctx context.Context, session *models.Session, id string, req *models.UpdateProjectRequest) (*models.Project, error) {
	if !session.Can(models.PermissionProjectsManage) {
		return nil, errors.ErrForbidden
	}

	project, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := make(map[string]struct{}, len(project.AssignedMembers))
	for _, memberID := range project.AssignedMembers {
		previous[memberID] = struct{}{}
	}

	if req.Title != nil {
		project.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.TeamSize != nil {
		project.TeamSize = *req.TeamSize
	}
	if req.AssignedMembers != nil {
		project.AssignedMembers = *req.AssignedMembers
	}
	if req.Deadline != nil {
		project.Deadline = *req.Deadline
	}
	if req.Priority != nil {
		project.Priority = *req.Priority
	}
	if req.Feedback != nil {
		project.Feedback = *req.Feedback
	}
	if req.DemoURL != nil {
		project.DemoURL = *req.DemoURL
	}
	if req.RepoURL != nil {
		project.RepoURL = *req.RepoURL
	}
	project.Normalize()

	if err := s.projects.Update(ctx, *project); err != nil {
		return nil, err
	}

	for _, memberID := range project.AssignedMembers {
		if _, existed := previous[memberID]; existed {
			continue
		}
		if err := s.workload.AssignProject(ctx, memberID, project.ID, project.Subject); err != nil {
			s.logger.Warn("workload update failed", zap.String("member_id", memberID), zap.Error(err))
		}
		s.notify(ctx, models.Notification{
			Type:         models.NotificationMemberAssigned,
			Title:        "New assignment",
			Message:      fmt.Sprintf("You were assigned to %q", project.Title),
			TargetMember: memberID,
			ProjectID:    project.ID,
		})
	}

	s.activity.Record(ctx, models.ActionProjectUpdate, session.MemberID, map[string]string{
		"project_id": project.ID,
	})
	return project, nil
}

// ChangeStatus moves a project through its lifecycle. Completing a project
// settles every assigned member's workload counters exactly once; repeat
// completion attempts are rejected.
func (s *ProjectService) ChangeStatus(ctx context.Context, session *models.Session, id string, req *models.ChangeStatusRequest) (*models.Project, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation.Code, errors.ErrValidation.Status, "invalid status payload")
	}

	project, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !session.Can(models.PermissionProjectsManage) && !project.IsAssigned(session.MemberID) {
		return nil, errors.Clone(errors.ErrForbidden, "only managers or assigned members can change status")
	}
	if project.Status == models.StatusCompleted {
		return nil, errors.Clone(errors.ErrConflict, "project is already completed")
	}
	if req.Status == project.Status {
		return project, nil
	}

	from := project.Status
	project.Status = req.Status

	if req.Status == models.StatusCompleted {
		now := s.now().UTC()
		project.CompletedDate = &now
		project.Grade = req.Grade

		for _, memberID := range project.AssignedMembers {
			if err := s.workload.CompleteProject(ctx, memberID, project.Subject, req.Grade); err != nil {
				s.logger.Warn("workload settle failed", zap.String("member_id", memberID), zap.Error(err))
			}
		}
	}

	if err := s.projects.Update(ctx, *project); err != nil {
		return nil, err
	}

	if req.Status == models.StatusCompleted {
		s.activity.Record(ctx, models.ActionProjectComplete, session.MemberID, map[string]string{
			"project_id": project.ID,
		})
		s.notify(ctx, models.Notification{
			Type:      models.NotificationProjectCompleted,
			Title:     "Project completed",
			Message:   fmt.Sprintf("%q is done", project.Title),
			ProjectID: project.ID,
		})
	} else {
		s.activity.Record(ctx, models.ActionStatusChange, session.MemberID, map[string]string{
			"project_id": project.ID,
			"from":       string(from),
			"to":         string(req.Status),
		})
	}

	return project, nil
}

// Delete removes a project. Leader only. Member counters are not rolled
// back, history stays as it happened.
func (s *ProjectService) Delete(ctx context.Context, session *models.Session, id string) error {
	if session == nil || !session.IsLeader {
		return errors.ErrLeaderOnly
	}

	project, err := s.projects.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}

	if s.files != nil {
		for _, file := range project.Files {
			if err := s.files.Delete(file.Path); err != nil {
				s.logger.Warn("attachment cleanup failed", zap.String("path", file.Path), zap.Error(err))
			}
		}
	}

	s.activity.Record(ctx, models.ActionProjectDelete, session.MemberID, map[string]string{
		"project_id": id,
		"title":      project.Title,
	})
	return nil
}

// AddComment appends a discussion entry. Any authenticated viewer may
// comment.
func (s *ProjectService) AddComment(ctx context.Context, session *models.Session, id string, req *models.AddCommentRequest) (*models.Project, error) {
	if !session.Can(models.PermissionProjectsView) {
		return nil, errors.ErrForbidden
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation.Code, errors.ErrValidation.Status, "comment text is required")
	}

	project, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	project.Comments = append(project.Comments, models.ProjectComment{
		ID:        "cmt_" + uuid.NewString(),
		MemberID:  session.MemberID,
		Text:      req.Text,
		CreatedAt: s.now().UTC(),
	})

	if err := s.projects.Update(ctx, *project); err != nil {
		return nil, err
	}
	return project, nil
}

// AddSubtask appends a checklist item.
func (s *ProjectService) AddSubtask(ctx context.Context, session *models.Session, id string, req *models.AddSubtaskRequest) (*models.Project, error) {
	if !session.Can(models.PermissionProjectsManage) && !s.assigned(ctx, session, id) {
		return nil, errors.ErrForbidden
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation.Code, errors.ErrValidation.Status, "subtask title is required")
	}

	project, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	project.Subtasks = append(project.Subtasks, models.Subtask{
		ID:        "sub_" + uuid.NewString(),
		Title:     req.Title,
		CreatedAt: s.now().UTC(),
	})

	if err := s.projects.Update(ctx, *project); err != nil {
		return nil, err
	}
	return project, nil
}

// ToggleSubtask flips a checklist item's done flag.
func (s *ProjectService) ToggleSubtask(ctx context.Context, session *models.Session, id, subtaskID string) (*models.Project, error) {
	if !session.Can(models.PermissionProjectsManage) && !s.assigned(ctx, session, id) {
		return nil, errors.ErrForbidden
	}

	project, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range project.Subtasks {
		if project.Subtasks[i].ID == subtaskID {
			project.Subtasks[i].Done = !project.Subtasks[i].Done
			found = true
			break
		}
	}
	if !found {
		return nil, errors.Clone(errors.ErrNotFound, "subtask not found")
	}

	if err := s.projects.Update(ctx, *project); err != nil {
		return nil, err
	}
	return project, nil
}

// AttachFile stores an uploaded blob and records its metadata on the
// project.
func (s *ProjectService) AttachFile(ctx context.Context, session *models.Session, id, filename string, data []byte) (*models.ProjectFile, error) {
	if !session.Can(models.PermissionProjectsManage) && !s.assigned(ctx, session, id) {
		return nil, errors.ErrForbidden
	}
	if s.files == nil {
		return nil, errors.Clone(errors.ErrValidation, "attachments are disabled")
	}
	if filename == "" || len(data) == 0 {
		return nil, errors.Clone(errors.ErrValidation, "a non-empty file is required")
	}

	project, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fileID := "file_" + uuid.NewString()
	relPath := filepath.Join(project.ID, fileID+"_"+filepath.Base(filename))
	if _, err := s.files.Save(relPath, data); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal.Code, errors.ErrInternal.Status, "failed to store attachment")
	}

	file := models.ProjectFile{
		ID:         fileID,
		Name:       filepath.Base(filename),
		Path:       relPath,
		Size:       int64(len(data)),
		UploadedBy: session.MemberID,
		UploadedAt: s.now().UTC(),
	}
	project.Files = append(project.Files, file)

	if err := s.projects.Update(ctx, *project); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, models.ActionFileUpload, session.MemberID, map[string]string{
		"project_id": project.ID,
		"file":       file.Name,
	})
	s.notify(ctx, models.Notification{
		Type:      models.NotificationFileUploaded,
		Title:     "File uploaded",
		Message:   fmt.Sprintf("%s was added to %q", file.Name, project.Title),
		ProjectID: project.ID,
	})

	return &file, nil
}

// FileURL returns a signed, expiring download token for an attachment.
func (s *ProjectService) FileURL(ctx context.Context, session *models.Session, id, fileID string) (string, time.Time, error) {
	if !session.Can(models.PermissionProjectsView) {
		return "", time.Time{}, errors.ErrForbidden
	}
	if s.signer == nil {
		return "", time.Time{}, errors.Clone(errors.ErrValidation, "attachments are disabled")
	}

	project, err := s.projects.Get(ctx, id)
	if err != nil {
		return "", time.Time{}, err
	}

	for _, file := range project.Files {
		if file.ID == fileID {
			token, expiresAt, err := s.signer.Generate(file.ID, file.Path)
			if err != nil {
				return "", time.Time{}, errors.Wrap(err, errors.ErrInternal.Code, errors.ErrInternal.Status, "failed to sign download link")
			}
			return token, expiresAt, nil
		}
	}
	return "", time.Time{}, errors.Clone(errors.ErrNotFound, "attachment not found")
}

// OpenFile resolves a signed token to a readable attachment.
func (s *ProjectService) OpenFile(token string) (*os.File, string, error) {
	if s.signer == nil || s.files == nil {
		return nil, "", errors.Clone(errors.ErrValidation, "attachments are disabled")
	}

	_, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", errors.Wrap(err, errors.ErrInvalidToken.Code, errors.ErrInvalidToken.Status, "invalid download token")
	}

	file, err := s.files.Open(relPath)
	if err != nil {
		return nil, "", errors.Clone(errors.ErrNotFound, "attachment not found")
	}
	return file, filepath.Base(relPath), nil
}

// Stats summarises the project collection for the dashboard.
func (s *ProjectService) Stats(ctx context.Context) (*models.ProjectStats, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.ProjectStats{
		Total:     len(projects),
		ByStatus:  make(map[models.ProjectStatus]int),
		BySubject: make(map[string]int),
	}
	for _, p := range projects {
		stats.ByStatus[p.Status]++
		stats.BySubject[p.Subject]++
	}
	return stats, nil
}

// DueWithin returns open projects whose deadline falls inside the lookahead
// window, plus those already past due.
func (s *ProjectService) DueWithin(ctx context.Context, lookahead time.Duration) (approaching, overdue []models.Project, err error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, nil, err
	}

	now := s.now().UTC()
	horizon := now.Add(lookahead)
	for _, p := range projects {
		if p.Status == models.StatusCompleted || p.Deadline.IsZero() {
			continue
		}
		switch {
		case p.Deadline.Before(now):
			overdue = append(overdue, p)
		case p.Deadline.Before(horizon):
			approaching = append(approaching, p)
		}
	}
	return approaching, overdue, nil
}

func (s *ProjectService) checkSubject(ctx context.Context, subjectID string) error {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return err
	}
	if _, ok := settings.SubjectByID(subjectID); !ok {
		return errors.Clone(errors.ErrValidation, "unknown subject")
	}
	return nil
}

func (s *ProjectService) assigned(ctx context.Context, session *models.Session, projectID string) bool {
	if session == nil {
		return false
	}
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return false
	}
	return project.IsAssigned(session.MemberID)
}

func (s *ProjectService) notify(ctx context.Context, n models.Notification) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, n)
}
