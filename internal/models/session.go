package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthType records which credential created a session.
type AuthType string

const (
	AuthTypeLeaderLink AuthType = "leader_link"
	AuthTypeInviteLink AuthType = "invite_link"
)

// Permission catalog. The catalog is closed: unknown keys are silently
// dropped when permission lists are normalized.
const (
	PermissionProjectsView   = "projects_view"
	PermissionProjectsCreate = "projects_create"
	PermissionProjectsManage = "projects_manage"
	PermissionMembersView    = "members_view"
	PermissionActivityView   = "activity_view"
	PermissionSettingsView   = "settings_view"
	PermissionAnalyticsView  = "analytics_view"
)

// PermissionInfo describes a catalog entry for API consumers.
type PermissionInfo struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// PermissionCatalog returns the closed capability catalog.
func PermissionCatalog() []PermissionInfo {
	return []PermissionInfo{
		{Key: PermissionProjectsView, Label: "View projects"},
		{Key: PermissionProjectsCreate, Label: "Create projects"},
		{Key: PermissionProjectsManage, Label: "Manage projects"},
		{Key: PermissionMembersView, Label: "View members"},
		{Key: PermissionActivityView, Label: "View activity log"},
		{Key: PermissionSettingsView, Label: "Access settings"},
		{Key: PermissionAnalyticsView, Label: "Access analytics"},
	}
}

// AllPermissions lists every catalog key.
func AllPermissions() []string {
	catalog := PermissionCatalog()
	keys := make([]string, 0, len(catalog))
	for _, p := range catalog {
		keys = append(keys, p.Key)
	}
	return keys
}

// DefaultMemberPermissions is the view-only allow-list granted when an
// invite requests nothing explicit.
func DefaultMemberPermissions() []string {
	return []string{PermissionProjectsView}
}

// NormalizePermissions filters the list against the catalog and removes
// duplicates, preserving catalog order of first appearance.
func NormalizePermissions(permissions []string) []string {
	allowed := make(map[string]struct{}, 8)
	for _, key := range AllPermissions() {
		allowed[key] = struct{}{}
	}

	out := make([]string, 0, len(permissions))
	seen := make(map[string]struct{}, len(permissions))
	for _, p := range permissions {
		if _, ok := allowed[p]; !ok {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Session is the authenticated identity handed to API consumers.
// Permissions are resolved once at creation and baked in; they do not
// live-update when the member record changes.
type Session struct {
	MemberID    string    `json:"member_id"`
	Name        string    `json:"name"`
	Avatar      string    `json:"avatar"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions"`
	IsLeader    bool      `json:"is_leader"`
	AuthType    AuthType  `json:"auth_type"`
	LoginTime   time.Time `json:"login_time"`
}

// Can reports whether the session allows the given capability. A leader
// session passes every check; an empty permission string only requires a
// session to exist.
func (s *Session) Can(permission string) bool {
	if s == nil {
		return false
	}
	if permission == "" {
		return true
	}
	if s.IsLeader {
		return true
	}
	for _, p := range s.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// SessionClaims is the JWT payload for session tokens.
type SessionClaims struct {
	MemberID    string   `json:"member_id"`
	Name        string   `json:"name"`
	Avatar      string   `json:"avatar"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	IsLeader    bool     `json:"is_leader"`
	AuthType    AuthType `json:"auth_type"`
	jwt.RegisteredClaims
}

// Session converts claims back into the session view.
func (c *SessionClaims) Session() *Session {
	loginTime := time.Time{}
	if c.IssuedAt != nil {
		loginTime = c.IssuedAt.Time
	}
	return &Session{
		MemberID:    c.MemberID,
		Name:        c.Name,
		Avatar:      c.Avatar,
		Role:        c.Role,
		Permissions: c.Permissions,
		IsLeader:    c.IsLeader,
		AuthType:    c.AuthType,
		LoginTime:   loginTime,
	}
}
