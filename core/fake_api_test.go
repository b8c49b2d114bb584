package core_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"task-tracker-client/core"
)

// fakeTasksAPI is an in-memory stand-in for the remote task API. The server
// owns ids, creation timestamps and the authoritative completed_at value.
type fakeTasksAPI struct {
	mu    sync.Mutex
	tasks []core.Task

	listErr   error
	getErr    error
	createErr error
	updateErr error
	statusErr error
	deleteErr error

	listCalls   int
	createCalls int

	// onList and onUpdateStatus run at the start of the call, letting a
	// test observe store state while the request is "in flight".
	onList         func(f core.TaskFilters)
	onUpdateStatus func()

	// serverCompletedAt is what the server stamps on a done task,
	// deliberately distinct from the client's optimistic guess.
	serverCompletedAt time.Time
}

func newFakeTasksAPI() *fakeTasksAPI {
	return &fakeTasksAPI{
		serverCompletedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func (f *fakeTasksAPI) seed(titles ...string) []core.Task {
	f.mu.Lock()
	defer f.mu.Unlock()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range titles {
		f.tasks = append(f.tasks, core.Task{
			TaskID:    uuid.NewString(),
			Title:     title,
			Deadline:  "2025-06-01",
			Priority:  core.PriorityMedium,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	out := make([]core.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

func (f *fakeTasksAPI) ListTasks(_ context.Context, filters core.TaskFilters) ([]core.Task, error) {
	if f.onList != nil {
		f.onList(filters)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}

	out := make([]core.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		if filters.Priority != "" && t.Priority != filters.Priority {
			continue
		}
		if filters.Search != "" && !strings.Contains(t.Title, filters.Search) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if filters.SortOrder == core.SortAsc {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeTasksAPI) GetTask(_ context.Context, id string) (core.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return core.Task{}, f.getErr
	}
	for _, t := range f.tasks {
		if t.TaskID == id {
			return t, nil
		}
	}
	return core.Task{}, core.ErrNotFound
}

func (f *fakeTasksAPI) CreateTask(_ context.Context, payload core.NewTask) (core.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createCalls++
	if f.createErr != nil {
		return core.Task{}, f.createErr
	}

	task := core.Task{
		TaskID:    uuid.NewString(),
		Title:     payload.Title,
		Deadline:  payload.Deadline,
		Priority:  payload.Priority,
		CreatedAt: time.Now().UTC(),
	}
	f.tasks = append(f.tasks, task)
	return task, nil
}

func (f *fakeTasksAPI) UpdateTask(_ context.Context, id string, p core.TaskPatch) (core.TaskPatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return core.TaskPatch{}, f.updateErr
	}
	for i := range f.tasks {
		if f.tasks[i].TaskID != id {
			continue
		}
		if p.Title != nil {
			f.tasks[i].Title = *p.Title
		}
		if p.Deadline != nil {
			f.tasks[i].Deadline = *p.Deadline
		}
		if p.Priority != nil {
			f.tasks[i].Priority = *p.Priority
		}
		// Echo back only what was sent, like the real endpoint.
		return p, nil
	}
	return core.TaskPatch{}, core.ErrNotFound
}

func (f *fakeTasksAPI) UpdateTaskStatus(_ context.Context, id string, isDone bool) (core.Task, error) {
	if f.onUpdateStatus != nil {
		f.onUpdateStatus()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.statusErr != nil {
		return core.Task{}, f.statusErr
	}
	for i := range f.tasks {
		if f.tasks[i].TaskID != id {
			continue
		}
		f.tasks[i].IsDone = isDone
		if isDone {
			at := f.serverCompletedAt
			f.tasks[i].CompletedAt = &at
		} else {
			f.tasks[i].CompletedAt = nil
		}
		return f.tasks[i], nil
	}
	return core.Task{}, core.ErrNotFound
}

func (f *fakeTasksAPI) DeleteTask(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.tasks {
		if f.tasks[i].TaskID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

var _ core.TasksAPI = (*fakeTasksAPI)(nil)

// ---- session-side fakes

type fakeUsersAPI struct {
	mu sync.Mutex

	loginResult  core.LoginResult
	loginMessage string
	loginErr     error

	registerMessage string
	registerErr     error

	meUser core.User
	meErr  error

	getUserResult core.User
	getUserErr    error

	updateResp core.UserPatch
	updateErr  error

	deleteErr error

	meCalls int
}

func (f *fakeUsersAPI) Login(context.Context, core.Credentials) (core.LoginResult, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return core.LoginResult{}, "", f.loginErr
	}
	return f.loginResult, f.loginMessage, nil
}

func (f *fakeUsersAPI) Register(context.Context, core.Registration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.registerErr != nil {
		return "", f.registerErr
	}
	return f.registerMessage, nil
}

func (f *fakeUsersAPI) GetMe(context.Context) (core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meCalls++
	if f.meErr != nil {
		return core.User{}, f.meErr
	}
	return f.meUser, nil
}

func (f *fakeUsersAPI) GetUser(context.Context, string) (core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getUserErr != nil {
		return core.User{}, f.getUserErr
	}
	return f.getUserResult, nil
}

func (f *fakeUsersAPI) UpdateUser(context.Context, string, core.UserPatch) (core.UserPatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return core.UserPatch{}, f.updateErr
	}
	return f.updateResp, nil
}

func (f *fakeUsersAPI) DeleteUser(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteErr
}

var _ core.UsersAPI = (*fakeUsersAPI)(nil)

type fakeCarrier struct {
	mu     sync.Mutex
	token  string
	sets   int
	clears int
}

func (f *fakeCarrier) SetToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
	f.sets++
}

func (f *fakeCarrier) ClearToken() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.clears++
}

func (f *fakeCarrier) current() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

type fakeStorage struct {
	mu     sync.Mutex
	state  core.SessionState
	stored bool

	saveErr error
	loadErr error
}

func (f *fakeStorage) Save(s core.SessionState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.state = s
	f.stored = true
	return nil
}

func (f *fakeStorage) Load() (core.SessionState, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return core.SessionState{}, false, f.loadErr
	}
	return f.state, f.stored, nil
}

func (f *fakeStorage) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = core.SessionState{}
	f.stored = false
	return nil
}

func (f *fakeStorage) snapshot() (core.SessionState, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, f.stored
}

type fakeInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeInvalidator) ClearStore() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
}

func (f *fakeInvalidator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
