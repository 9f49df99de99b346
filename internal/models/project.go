package models

import "time"

// ProjectStatus tracks the lifecycle of a project.
type ProjectStatus string

const (
	StatusNew        ProjectStatus = "new"
	StatusInProgress ProjectStatus = "in_progress"
	StatusReview     ProjectStatus = "review"
	StatusCompleted  ProjectStatus = "completed"
)

// ProjectPriority is a display hint, not a scheduling input.
type ProjectPriority string

const (
	PriorityLow    ProjectPriority = "low"
	PriorityNormal ProjectPriority = "normal"
	PriorityHigh   ProjectPriority = "high"
	PriorityUrgent ProjectPriority = "urgent"
)

// ProjectFile is attachment metadata; the blob lives in local storage.
type ProjectFile struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	UploadedBy string    `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// ProjectComment is a discussion entry on a project.
type ProjectComment struct {
	ID        string    `json:"id"`
	MemberID  string    `json:"member_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Subtask is a lightweight checklist item.
type Subtask struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
}

// Project is the central tracked entity. AssignedMembers may exceed TeamSize;
// the size is a suggestion, not an enforced cap.
type Project struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Subject         string           `json:"subject"`
	TeamSize        int              `json:"team_size"`
	AssignedMembers []string         `json:"assigned_members"`
	CreatedDate     time.Time        `json:"created_date"`
	Deadline        time.Time        `json:"deadline"`
	CompletedDate   *time.Time       `json:"completed_date,omitempty"`
	Status          ProjectStatus    `json:"status"`
	Priority        ProjectPriority  `json:"priority"`
	Files           []ProjectFile    `json:"files"`
	Grade           *float64         `json:"grade,omitempty"`
	Feedback        string           `json:"feedback"`
	Comments        []ProjectComment `json:"comments"`
	Subtasks        []Subtask        `json:"subtasks"`
	DemoURL         string           `json:"demo_url"`
	RepoURL         string           `json:"repo_url"`
}

// Normalize fills nil slices after deserialization.
func (p *Project) Normalize() {
	if p.AssignedMembers == nil {
		p.AssignedMembers = []string{}
	}
	if p.Files == nil {
		p.Files = []ProjectFile{}
	}
	if p.Comments == nil {
		p.Comments = []ProjectComment{}
	}
	if p.Subtasks == nil {
		p.Subtasks = []Subtask{}
	}
	if p.Status == "" {
		p.Status = StatusNew
	}
	if p.Priority == "" {
		p.Priority = PriorityNormal
	}
}

// IsAssigned reports whether the member is on the project team.
func (p *Project) IsAssigned(memberID string) bool {
	for _, id := range p.AssignedMembers {
		if id == memberID {
			return true
		}
	}
	return false
}

// CreateProjectRequest is the payload for opening a new project.
type CreateProjectRequest struct {
	Title           string          `json:"title" validate:"required"`
	Description     string          `json:"description"`
	Subject         string          `json:"subject" validate:"required"`
	TeamSize        int             `json:"team_size"`
	AssignedMembers []string        `json:"assigned_members"`
	Deadline        time.Time       `json:"deadline" validate:"required"`
	Priority        ProjectPriority `json:"priority"`
}

// UpdateProjectRequest edits project metadata. Nil pointers mean "leave
// unchanged". Status changes go through their own endpoint.
type UpdateProjectRequest struct {
	Title           *string          `json:"title,omitempty"`
	Description     *string          `json:"description,omitempty"`
	TeamSize        *int             `json:"team_size,omitempty"`
	AssignedMembers *[]string        `json:"assigned_members,omitempty"`
	Deadline        *time.Time       `json:"deadline,omitempty"`
	Priority        *ProjectPriority `json:"priority,omitempty"`
	Feedback        *string          `json:"feedback,omitempty"`
	DemoURL         *string          `json:"demo_url,omitempty"`
	RepoURL         *string          `json:"repo_url,omitempty"`
}

// ChangeStatusRequest moves a project through its lifecycle. Grade is only
// honored on the transition to completed.
type ChangeStatusRequest struct {
	Status ProjectStatus `json:"status" validate:"required,oneof=new in_progress review completed"`
	Grade  *float64      `json:"grade,omitempty" validate:"omitempty,min=0,max=100"`
}

// AddCommentRequest appends a discussion entry.
type AddCommentRequest struct {
	Text string `json:"text" validate:"required"`
}

// AddSubtaskRequest appends a checklist item.
type AddSubtaskRequest struct {
	Title string `json:"title" validate:"required"`
}

// ProjectStats summarises the project collection.
type ProjectStats struct {
	Total     int                   `json:"total"`
	ByStatus  map[ProjectStatus]int `json:"by_status"`
	BySubject map[string]int        `json:"by_subject"`
}
