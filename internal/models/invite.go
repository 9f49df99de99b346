package models

import "time"

// Invite is a single-use, time-limited credential that provisions or
// updates a specific non-leader member identity. Once used or revoked it is
// immutable.
type Invite struct {
	ID             string     `json:"id"`
	Token          string     `json:"token"`
	MemberID       string     `json:"member_id"`
	Name           string     `json:"name"`
	Role           string     `json:"role"`
	Avatar         string     `json:"avatar"`
	Permissions    []string   `json:"permissions"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      time.Time  `json:"expires_at"`
	Used           bool       `json:"used"`
	UsedAt         *time.Time `json:"used_at,omitempty"`
	UsedByMemberID string     `json:"used_by_member_id,omitempty"`
	Revoked        bool       `json:"revoked"`
	RevokedAt      *time.Time `json:"revoked_at,omitempty"`
	RevokedBy      string     `json:"revoked_by,omitempty"`
	CreatedBy      string     `json:"created_by"`
}

// Expired reports whether the invite's deadline has passed at the given
// instant. The boundary itself counts as expired.
func (i *Invite) Expired(now time.Time) bool {
	return !i.ExpiresAt.After(now)
}

// LeaderLoginRequest carries a raw leader token.
type LeaderLoginRequest struct {
	Token string `json:"token" validate:"required"`
}

// CreateInviteRequest is the leader's invite payload. Unknown permission
// keys are dropped, not rejected.
type CreateInviteRequest struct {
	Name             string   `json:"name"`
	Role             string   `json:"role"`
	Avatar           string   `json:"avatar"`
	MemberID         string   `json:"member_id"`
	Permissions      []string `json:"permissions"`
	ExpiresInMinutes int      `json:"expires_in_minutes"`
}

// ConsumeInviteRequest redeems an invite link.
type ConsumeInviteRequest struct {
	ID    string `json:"id" validate:"required"`
	Token string `json:"token" validate:"required"`
}

// LoginResult is returned by every successful login path.
type LoginResult struct {
	AccessToken string   `json:"access_token"`
	ExpiresIn   int64    `json:"expires_in"`
	Session     *Session `json:"session"`
}

// InviteResult is returned when an invite is created.
type InviteResult struct {
	Invite *Invite `json:"invite"`
	Link   string  `json:"link"`
}

// LeaderTokenResult carries the one-time disclosure of a freshly minted
// leader token. The raw token is never retrievable again.
type LeaderTokenResult struct {
	Token   string `json:"token,omitempty"`
	Hash    string `json:"-"`
	Link    string `json:"link,omitempty"`
	Created bool   `json:"created"`
}
