package core

import "context"

type TasksAPI interface {
	ListTasks(ctx context.Context, f TaskFilters) ([]Task, error)
	GetTask(ctx context.Context, id string) (Task, error)
	CreateTask(ctx context.Context, payload NewTask) (Task, error)
	UpdateTask(ctx context.Context, id string, p TaskPatch) (TaskPatch, error)
	UpdateTaskStatus(ctx context.Context, id string, isDone bool) (Task, error)
	DeleteTask(ctx context.Context, id string) error
}

type UsersAPI interface {
	Login(ctx context.Context, c Credentials) (LoginResult, string, error)
	Register(ctx context.Context, r Registration) (string, error)
	GetMe(ctx context.Context) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	UpdateUser(ctx context.Context, id string, p UserPatch) (UserPatch, error)
	DeleteUser(ctx context.Context, id string) error
}

// TokenCarrier is the transport-side credential slot the session store
// fills on login and empties on logout.
type TokenCarrier interface {
	SetToken(token string)
	ClearToken()
}

// SessionStorage persists the session subset across process restarts.
// Load returns ok=false when nothing has been persisted yet.
type SessionStorage interface {
	Save(s SessionState) error
	Load() (state SessionState, ok bool, err error)
	Clear() error
}

// TaskInvalidator is the cross-store invalidation hook: logging out must
// wipe the task cache so the next user never sees residual data.
type TaskInvalidator interface {
	ClearStore()
}
