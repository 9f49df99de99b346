package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MASTFAX12/MAKERS/internal/models"
)

// NotificationStorage is the notification feed contract.
type NotificationStorage interface {
	List(ctx context.Context, memberID string) ([]models.Notification, error)
	Push(ctx context.Context, n models.Notification) error
	MarkRead(ctx context.Context, id string) error
}

// NotificationService maintains the recent notification feed. Delivery is
// best effort; a failed push never fails the operation that raised it.
type NotificationService struct {
	repo   NotificationStorage
	logger *zap.Logger
	now    func() time.Time
}

// NewNotificationService creates a notification service.
func NewNotificationService(repo NotificationStorage, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, logger: logger, now: time.Now}
}

// Notify records a notification, stamping id and time.
func (s *NotificationService) Notify(ctx context.Context, n models.Notification) {
	if n.ID == "" {
		n.ID = "ntf_" + uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now().UTC()
	}
	if err := s.repo.Push(ctx, n); err != nil {
		s.logger.Warn("notification dropped", zap.String("type", n.Type), zap.Error(err))
	}
}

// List returns the feed visible to the session's member.
func (s *NotificationService) List(ctx context.Context, session *models.Session) ([]models.Notification, error) {
	memberID := ""
	if session != nil && !session.IsLeader {
		memberID = session.MemberID
	}
	return s.repo.List(ctx, memberID)
}

// MarkRead flags one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	return s.repo.MarkRead(ctx, id)
}

// DeadlineSource lists projects near or past their deadline. Satisfied by
// ProjectService.
type DeadlineSource interface {
	DueWithin(ctx context.Context, lookahead time.Duration) (approaching, overdue []models.Project, err error)
}

// DeadlineWatcher periodically scans deadlines and raises notifications.
// Each project triggers each notification type at most once per calendar
// day (UTC); the dedupe state lives in memory, so a restart may re-notify
// within the same day.
type DeadlineWatcher struct {
	source    DeadlineSource
	notifier  Notifier
	interval  time.Duration
	lookahead time.Duration
	logger    *zap.Logger
	now       func() time.Time

	mu     sync.Mutex
	seen   map[string]struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDeadlineWatcher creates a watcher.
func NewDeadlineWatcher(source DeadlineSource, notifier Notifier, interval, lookahead time.Duration, logger *zap.Logger) *DeadlineWatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if lookahead <= 0 {
		lookahead = 48 * time.Hour
	}
	return &DeadlineWatcher{
		source:    source,
		notifier:  notifier,
		interval:  interval,
		lookahead: lookahead,
		logger:    logger,
		now:       time.Now,
		seen:      make(map[string]struct{}),
	}
}

// Start launches the polling loop. An immediate first scan runs before the
// ticker takes over.
func (w *DeadlineWatcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		w.scan(ctx)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.scan(ctx)
			}
		}
	}()
}

// Stop halts the loop and waits for the current scan.
func (w *DeadlineWatcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *DeadlineWatcher) scan(ctx context.Context) {
	approaching, overdue, err := w.source.DueWithin(ctx, w.lookahead)
	if err != nil {
		w.logger.Warn("deadline scan failed", zap.Error(err))
		return
	}

	for _, p := range approaching {
		w.raise(ctx, p, models.NotificationDeadlineApproaching,
			fmt.Sprintf("%q is due %s", p.Title, p.Deadline.Format("Jan 2 15:04")))
	}
	for _, p := range overdue {
		w.raise(ctx, p, models.NotificationDeadlinePassed,
			fmt.Sprintf("%q missed its deadline", p.Title))
	}
}

func (w *DeadlineWatcher) raise(ctx context.Context, p models.Project, kind, message string) {
	day := w.now().UTC().Format("2006-01-02")
	key := p.ID + ":" + kind + ":" + day

	w.mu.Lock()
	if _, done := w.seen[key]; done {
		w.mu.Unlock()
		return
	}
	w.seen[key] = struct{}{}
	w.mu.Unlock()

	title := "Deadline approaching"
	if kind == models.NotificationDeadlinePassed {
		title = "Deadline passed"
	}
	w.notifier.Notify(ctx, models.Notification{
		Type:      kind,
		Title:     title,
		Message:   message,
		ProjectID: p.ID,
	})
}
