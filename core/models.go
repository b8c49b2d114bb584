package core

import "time"

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

func isValidPriority(p Priority) bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Task mirrors the server record. TaskID and CreatedAt are server-assigned
// and never change; CompletedAt is non-nil exactly while IsDone is true.
type Task struct {
	TaskID      string     `json:"task_id"`
	Title       string     `json:"title"`
	Deadline    string     `json:"deadline"` // YYYY-MM-DD
	Priority    Priority   `json:"priority"`
	IsDone      bool       `json:"is_done"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

type User struct {
	UserID   string `json:"userId"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// NewTask is the create payload; the server assigns id and timestamps.
type NewTask struct {
	Title    string   `json:"title"`
	Deadline string   `json:"deadline"`
	Priority Priority `json:"priority"`
}

// Validate runs the required-field checks that must fail before any
// network call is made.
func (n NewTask) Validate() error {
	if isBlank(n.Title) {
		return wrap(ErrValidation, "title is required")
	}
	if isBlank(n.Deadline) {
		return wrap(ErrValidation, "deadline is required")
	}
	if _, err := time.Parse("2006-01-02", n.Deadline); err != nil {
		return wrap(ErrValidation, "deadline must be YYYY-MM-DD")
	}
	if n.Priority == "" {
		return wrap(ErrValidation, "priority is required")
	}
	if !isValidPriority(n.Priority) {
		return wrap(ErrValidation, "priority must be High, Medium or Low")
	}
	return nil
}

// TaskPatch carries the fields of a partial task update. Nil means
// "not sent" so responses that omit a field leave the cached value alone.
type TaskPatch struct {
	Title       *string    `json:"title,omitempty"`
	Deadline    *string    `json:"deadline,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	IsDone      *bool      `json:"is_done,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// apply merges the patch into t, field by field.
func (p TaskPatch) apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Deadline != nil {
		t.Deadline = *p.Deadline
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.IsDone != nil {
		t.IsDone = *p.IsDone
		if !t.IsDone {
			t.CompletedAt = nil
		}
	}
	if p.CompletedAt != nil {
		t.CompletedAt = p.CompletedAt
	}
	return t
}

type UserPatch struct {
	FullName *string `json:"fullName,omitempty"`
	Email    *string `json:"email,omitempty"`
}

func (p UserPatch) apply(u User) User {
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	return u
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c Credentials) Validate() error {
	if isBlank(c.Email) {
		return wrap(ErrValidation, "email is required")
	}
	if c.Password == "" {
		return wrap(ErrValidation, "password is required")
	}
	return nil
}

type Registration struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r Registration) Validate() error {
	if isBlank(r.FullName) {
		return wrap(ErrValidation, "full name is required")
	}
	if isBlank(r.Email) {
		return wrap(ErrValidation, "email is required")
	}
	if r.Password == "" {
		return wrap(ErrValidation, "password is required")
	}
	return nil
}

// LoginResult is the payload of a successful login.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// SessionState is the persisted subset of the session. Transient fields
// (loading, error) never end up here.
type SessionState struct {
	Token       string `json:"token"`
	CurrentUser *User  `json:"currentUser"`
	IsLogin     bool   `json:"isLogin"`
}
