package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MASTFAX12/MAKERS/internal/models"
	"github.com/MASTFAX12/MAKERS/pkg/errors"
)

type fakeProjectStorage struct {
	projects []models.Project
}

func (f *fakeProjectStorage) List(ctx context.Context) ([]models.Project, error) {
	out := make([]models.Project, len(f.projects))
	copy(out, f.projects)
	return out, nil
}

func (f *fakeProjectStorage) Get(ctx context.Context, id string) (*models.Project, error) {
	for i := range f.projects {
		if f.projects[i].ID == id {
			p := f.projects[i]
			return &p, nil
		}
	}
	return nil, errors.Clone(errors.ErrNotFound, "project not found")
}

func (f *fakeProjectStorage) Insert(ctx context.Context, project models.Project) error {
	f.projects = append(f.projects, project)
	return nil
}

func (f *fakeProjectStorage) Update(ctx context.Context, project models.Project) error {
	for i := range f.projects {
		if f.projects[i].ID == project.ID {
			f.projects[i] = project
			return nil
		}
	}
	return errors.Clone(errors.ErrNotFound, "project not found")
}

func (f *fakeProjectStorage) Delete(ctx context.Context, id string) error {
	for i := range f.projects {
		if f.projects[i].ID == id {
			f.projects = append(f.projects[:i], f.projects[i+1:]...)
			return nil
		}
	}
	return errors.Clone(errors.ErrNotFound, "project not found")
}

type fakeSettingsCatalog struct{}

func (f *fakeSettingsCatalog) Get(ctx context.Context) (*models.Settings, error) {
	return models.DefaultSettings(), nil
}

type fakeNotifier struct {
	sent []models.Notification
}

func (f *fakeNotifier) Notify(ctx context.Context, n models.Notification) {
	f.sent = append(f.sent, n)
}

func (f *fakeNotifier) typesSent() []string {
	types := make([]string, 0, len(f.sent))
	for _, n := range f.sent {
		types = append(types, n.Type)
	}
	return types
}

type projectFixture struct {
	svc      *ProjectService
	projects *fakeProjectStorage
	members  *fakeMemberRepo
	activity *fakeActivity
	notifier *fakeNotifier
}

func newProjectFixture(members ...models.Member) *projectFixture {
	projects := &fakeProjectStorage{}
	memberRepo := &fakeMemberRepo{members: members}
	activity := &fakeActivity{}
	notifier := &fakeNotifier{}
	scoring := NewScoringService(memberRepo, nil)

	svc := NewProjectService(projects, &fakeSettingsCatalog{}, scoring, activity, notifier, nil, nil, nil)
	return &projectFixture{svc: svc, projects: projects, members: memberRepo, activity: activity, notifier: notifier}
}

func managerSession() *models.Session {
	return &models.Session{
		MemberID: "member_001",
		IsLeader: true,
	}
}

func validCreateRequest() *models.CreateProjectRequest {
	return &models.CreateProjectRequest{
		Title:           "Line Follower Robot",
		Subject:         "programming",
		TeamSize:        2,
		AssignedMembers: []string{"member_002"},
		Deadline:        time.Now().Add(7 * 24 * time.Hour),
	}
}

func TestCreateProjectAssignsWorkload(t *testing.T) {
	fx := newProjectFixture(testMember("member_002", 0, models.AvailabilityAvailable, 3))

	project, err := fx.svc.Create(context.Background(), managerSession(), validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, project.Status)
	assert.Equal(t, models.PriorityNormal, project.Priority)

	member := fx.members.members[0]
	assert.Equal(t, 1, member.Stats.ActiveProjects)
	assert.Equal(t, 1, member.Stats.TotalProjects)
	require.NotNil(t, member.Stats.LastProjectDate)

	assert.Contains(t, fx.activity.actions, models.ActionProjectCreate)
	assert.Contains(t, fx.notifier.typesSent(), models.NotificationProjectCreated)
	assert.Contains(t, fx.notifier.typesSent(), models.NotificationMemberAssigned)
}

func TestCreateProjectValidation(t *testing.T) {
	fx := newProjectFixture()
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, &models.Session{MemberID: "member_002", Permissions: []string{models.PermissionProjectsView}}, validCreateRequest())
	require.Error(t, err, "missing create permission")

	req := validCreateRequest()
	req.Subject = "astrology"
	_, err = fx.svc.Create(ctx, managerSession(), req)
	require.Error(t, err)
	assert.Equal(t, "unknown subject", errors.FromError(err).Message)

	req = validCreateRequest()
	req.Title = ""
	_, err = fx.svc.Create(ctx, managerSession(), req)
	require.Error(t, err)
}

func TestUpdateProjectAssignsOnlyNewMembers(t *testing.T) {
	fx := newProjectFixture(
		testMember("member_002", 0, models.AvailabilityAvailable, 3),
		testMember("member_003", 0, models.AvailabilityAvailable, 3),
	)
	ctx := context.Background()

	project, err := fx.svc.Create(ctx, managerSession(), validCreateRequest())
	require.NoError(t, err)

	team := []string{"member_002", "member_003"}
	_, err = fx.svc.Update(ctx, managerSession(), project.ID, &models.UpdateProjectRequest{AssignedMembers: &team})
	require.NoError(t, err)

	// member_002 was already assigned, its counters must not double.
	assert.Equal(t, 1, fx.members.members[0].Stats.ActiveProjects)
	assert.Equal(t, 1, fx.members.members[1].Stats.ActiveProjects)
}

func TestChangeStatusToCompletedSettlesTeam(t *testing.T) {
	fx := newProjectFixture(testMember("member_002", 0, models.AvailabilityAvailable, 3))
	ctx := context.Background()

	project, err := fx.svc.Create(ctx, managerSession(), validCreateRequest())
	require.NoError(t, err)

	grade := 95.0
	completed, err := fx.svc.ChangeStatus(ctx, managerSession(), project.ID, &models.ChangeStatusRequest{
		Status: models.StatusCompleted,
		Grade:  &grade,
	})
	require.NoError(t, err)
	require.NotNil(t, completed.CompletedDate)
	require.NotNil(t, completed.Grade)

	member := fx.members.members[0]
	assert.Equal(t, 0, member.Stats.ActiveProjects)
	assert.Equal(t, 1, member.Stats.CompletedProjects)
	assert.Equal(t, models.DefaultContributionScore+10, member.Stats.ContributionScore)
	assert.Equal(t, 3.5, member.Stats.SubjectExpertise["programming"])

	assert.Contains(t, fx.activity.actions, models.ActionProjectComplete)
	assert.Contains(t, fx.notifier.typesSent(), models.NotificationProjectCompleted)

	// Completion is terminal, a second attempt is rejected.
	_, err = fx.svc.ChangeStatus(ctx, managerSession(), project.ID, &models.ChangeStatusRequest{Status: models.StatusCompleted})
	require.Error(t, err)
	assert.Equal(t, 1, fx.members.members[0].Stats.CompletedProjects)
}

func TestChangeStatusByAssignedMember(t *testing.T) {
	fx := newProjectFixture(testMember("member_002", 0, models.AvailabilityAvailable, 3))
	ctx := context.Background()

	project, err := fx.svc.Create(ctx, managerSession(), validCreateRequest())
	require.NoError(t, err)

	assigned := &models.Session{MemberID: "member_002", Permissions: []string{models.PermissionProjectsView}}
	_, err = fx.svc.ChangeStatus(ctx, assigned, project.ID, &models.ChangeStatusRequest{Status: models.StatusInProgress})
	require.NoError(t, err)

	outsider := &models.Session{MemberID: "member_009", Permissions: []string{models.PermissionProjectsView}}
	_, err = fx.svc.ChangeStatus(ctx, outsider, project.ID, &models.ChangeStatusRequest{Status: models.StatusReview})
	require.Error(t, err)
}

func TestDeleteProjectLeaderOnly(t *testing.T) {
	fx := newProjectFixture(testMember("member_002", 0, models.AvailabilityAvailable, 3))
	ctx := context.Background()

	project, err := fx.svc.Create(ctx, managerSession(), validCreateRequest())
	require.NoError(t, err)

	err = fx.svc.Delete(ctx, &models.Session{MemberID: "member_002", Permissions: models.AllPermissions()}, project.ID)
	require.Error(t, err)

	require.NoError(t, fx.svc.Delete(ctx, managerSession(), project.ID))
	assert.Empty(t, fx.projects.projects)
	assert.Contains(t, fx.activity.actions, models.ActionProjectDelete)
}

func TestCommentsAndSubtasks(t *testing.T) {
	fx := newProjectFixture(testMember("member_002", 0, models.AvailabilityAvailable, 3))
	ctx := context.Background()

	project, err := fx.svc.Create(ctx, managerSession(), validCreateRequest())
	require.NoError(t, err)

	viewer := &models.Session{MemberID: "member_002", Permissions: []string{models.PermissionProjectsView}}
	withComment, err := fx.svc.AddComment(ctx, viewer, project.ID, &models.AddCommentRequest{Text: "looking good"})
	require.NoError(t, err)
	require.Len(t, withComment.Comments, 1)
	assert.Equal(t, "member_002", withComment.Comments[0].MemberID)

	withSubtask, err := fx.svc.AddSubtask(ctx, managerSession(), project.ID, &models.AddSubtaskRequest{Title: "build chassis"})
	require.NoError(t, err)
	require.Len(t, withSubtask.Subtasks, 1)
	assert.False(t, withSubtask.Subtasks[0].Done)

	toggled, err := fx.svc.ToggleSubtask(ctx, managerSession(), project.ID, withSubtask.Subtasks[0].ID)
	require.NoError(t, err)
	assert.True(t, toggled.Subtasks[0].Done)

	_, err = fx.svc.ToggleSubtask(ctx, managerSession(), project.ID, "sub_missing")
	require.Error(t, err)
}

func TestProjectStats(t *testing.T) {
	fx := newProjectFixture(testMember("member_002", 0, models.AvailabilityAvailable, 3))
	ctx := context.Background()

	first, err := fx.svc.Create(ctx, managerSession(), validCreateRequest())
	require.NoError(t, err)

	second := validCreateRequest()
	second.Subject = "math"
	second.AssignedMembers = nil
	_, err = fx.svc.Create(ctx, managerSession(), second)
	require.NoError(t, err)

	_, err = fx.svc.ChangeStatus(ctx, managerSession(), first.ID, &models.ChangeStatusRequest{Status: models.StatusCompleted})
	require.NoError(t, err)

	stats, err := fx.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[models.StatusCompleted])
	assert.Equal(t, 1, stats.ByStatus[models.StatusNew])
	assert.Equal(t, 1, stats.BySubject["programming"])
	assert.Equal(t, 1, stats.BySubject["math"])
}

func TestDueWithinSplitsWindows(t *testing.T) {
	fx := newProjectFixture()
	now := time.Now().UTC()

	fx.projects.projects = []models.Project{
		{ID: "p1", Title: "soon", Status: models.StatusInProgress, Deadline: now.Add(12 * time.Hour)},
		{ID: "p2", Title: "late", Status: models.StatusInProgress, Deadline: now.Add(-2 * time.Hour)},
		{ID: "p3", Title: "far", Status: models.StatusInProgress, Deadline: now.Add(100 * time.Hour)},
		{ID: "p4", Title: "done", Status: models.StatusCompleted, Deadline: now.Add(-2 * time.Hour)},
	}

	approaching, overdue, err := fx.svc.DueWithin(context.Background(), 48*time.Hour)
	require.NoError(t, err)
	require.Len(t, approaching, 1)
	require.Len(t, overdue, 1)
	assert.Equal(t, "p1", approaching[0].ID)
	assert.Equal(t, "p2", overdue[0].ID)
}
