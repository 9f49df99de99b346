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

type fakeNotificationStorage struct {
	items []models.Notification
}

func (f *fakeNotificationStorage) List(ctx context.Context, memberID string) ([]models.Notification, error) {
	if memberID == "" {
		return f.items, nil
	}
	out := make([]models.Notification, 0, len(f.items))
	for _, n := range f.items {
		if n.TargetMember == "" || n.TargetMember == memberID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationStorage) Push(ctx context.Context, n models.Notification) error {
	f.items = append([]models.Notification{n}, f.items...)
	return nil
}

func (f *fakeNotificationStorage) MarkRead(ctx context.Context, id string) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Read = true
			return nil
		}
	}
	return errors.Clone(errors.ErrNotFound, "notification not found")
}

func TestNotifyStampsIDAndTime(t *testing.T) {
	repo := &fakeNotificationStorage{}
	svc := NewNotificationService(repo, nil)

	svc.Notify(context.Background(), models.Notification{Type: models.NotificationSystem, Message: "hello"})

	require.Len(t, repo.items, 1)
	assert.NotEmpty(t, repo.items[0].ID)
	assert.False(t, repo.items[0].CreatedAt.IsZero())
}

func TestNotificationListScopesToMember(t *testing.T) {
	repo := &fakeNotificationStorage{}
	svc := NewNotificationService(repo, nil)
	ctx := context.Background()

	svc.Notify(ctx, models.Notification{Type: models.NotificationSystem})
	svc.Notify(ctx, models.Notification{Type: models.NotificationMemberAssigned, TargetMember: "member_002"})
	svc.Notify(ctx, models.Notification{Type: models.NotificationMemberAssigned, TargetMember: "member_003"})

	member, err := svc.List(ctx, &models.Session{MemberID: "member_002"})
	require.NoError(t, err)
	assert.Len(t, member, 2)

	leader, err := svc.List(ctx, &models.Session{MemberID: "member_001", IsLeader: true})
	require.NoError(t, err)
	assert.Len(t, leader, 3, "the leader sees everything")
}

type staticDeadlineSource struct {
	approaching []models.Project
	overdue     []models.Project
}

func (s *staticDeadlineSource) DueWithin(ctx context.Context, lookahead time.Duration) ([]models.Project, []models.Project, error) {
	return s.approaching, s.overdue, nil
}

func TestDeadlineWatcherRaisesOncePerProject(t *testing.T) {
	source := &staticDeadlineSource{
		approaching: []models.Project{{ID: "p1", Title: "soon", Deadline: time.Now().Add(time.Hour)}},
		overdue:     []models.Project{{ID: "p2", Title: "late", Deadline: time.Now().Add(-time.Hour)}},
	}
	notifier := &fakeNotifier{}
	w := NewDeadlineWatcher(source, notifier, time.Minute, 48*time.Hour, nil)

	ctx := context.Background()
	w.scan(ctx)
	w.scan(ctx)
	w.scan(ctx)

	require.Len(t, notifier.sent, 2, "repeat scans must not duplicate notifications")
	assert.ElementsMatch(t,
		[]string{models.NotificationDeadlineApproaching, models.NotificationDeadlinePassed},
		notifier.typesSent())
}

func TestDeadlineWatcherReNotifiesNextDay(t *testing.T) {
	source := &staticDeadlineSource{
		overdue: []models.Project{{ID: "p1", Title: "late", Deadline: time.Now().Add(-time.Hour)}},
	}
	notifier := &fakeNotifier{}
	w := NewDeadlineWatcher(source, notifier, time.Minute, 48*time.Hour, nil)

	today := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return today }

	ctx := context.Background()
	w.scan(ctx)
	w.scan(ctx)
	require.Len(t, notifier.sent, 1, "same-day rescans stay quiet")

	w.now = func() time.Time { return today.Add(24 * time.Hour) }
	w.scan(ctx)
	assert.Len(t, notifier.sent, 2, "a still-overdue project nags again the next day")
}
