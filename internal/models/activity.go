package models

import "time"

// Activity actions recorded in the audit log.
const (
	ActionLeaderLogin     = "leader_login"
	ActionLogout          = "logout"
	ActionInviteCreate    = "invite_create"
	ActionInviteAccept    = "invite_accept"
	ActionInviteRevoke    = "invite_revoke"
	ActionTokenRotate     = "token_rotate"
	ActionProjectCreate   = "project_create"
	ActionProjectUpdate   = "project_update"
	ActionProjectComplete = "project_complete"
	ActionProjectDelete   = "project_delete"
	ActionStatusChange    = "status_change"
	ActionFileUpload      = "file_upload"
	ActionDataExport      = "data_export"
)

// MaxActivityEntries caps the audit log. The log is a bounded FIFO, not an
// archive: once full, the oldest entry is silently evicted.
const MaxActivityEntries = 500

// ActivityEntry is one append-only audit record.
type ActivityEntry struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Action    string            `json:"action"`
	MemberID  string            `json:"member_id"`
	Details   map[string]string `json:"details,omitempty"`
}
