package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MASTFAX12/MAKERS/internal/models"
)

// ActivityLogRepository is the audit log storage contract.
type ActivityLogRepository interface {
	List(ctx context.Context, limit int) ([]models.ActivityEntry, error)
	Append(ctx context.Context, entry models.ActivityEntry) error
	Clear(ctx context.Context) error
}

// ActivityService appends audit entries for every state-changing operation.
// Recording is best effort: a failed append is logged and swallowed so it
// never fails the operation being audited.
type ActivityService struct {
	repo   ActivityLogRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewActivityService creates an audit log service.
func NewActivityService(repo ActivityLogRepository, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{repo: repo, logger: logger, now: time.Now}
}

// Record appends one audit entry.
func (s *ActivityService) Record(ctx context.Context, action, memberID string, details map[string]string) {
	entry := models.ActivityEntry{
		ID:        "act_" + uuid.NewString(),
		Timestamp: s.now().UTC(),
		Action:    action,
		MemberID:  memberID,
		Details:   details,
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		s.logger.Warn("audit entry dropped",
			zap.String("action", action),
			zap.String("member_id", memberID),
			zap.Error(err))
	}
}

// List returns recent entries, newest first.
func (s *ActivityService) List(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	if limit <= 0 || limit > models.MaxActivityEntries {
		limit = models.MaxActivityEntries
	}
	return s.repo.List(ctx, limit)
}

// Clear empties the log.
func (s *ActivityService) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}
