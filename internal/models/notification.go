package models

import "time"

// Notification types raised by the platform.
const (
	NotificationProjectCreated      = "project_created"
	NotificationProjectCompleted    = "project_completed"
	NotificationDeadlineApproaching = "deadline_approaching"
	NotificationDeadlinePassed      = "deadline_passed"
	NotificationMemberAssigned      = "member_assigned"
	NotificationFileUploaded        = "file_uploaded"
	NotificationSystem              = "system"
)

// MaxRecentNotifications caps the per-consumer notification feed.
const MaxRecentNotifications = 50

// Notification is a broadcast or member-targeted event pushed through the
// remote mirror. TargetMember empty means broadcast.
type Notification struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	TargetMember string    `json:"target_member,omitempty"`
	ProjectID    string    `json:"project_id,omitempty"`
	Read         bool      `json:"read"`
	CreatedAt    time.Time `json:"created_at"`
}
