package core

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// TaskStore owns the in-memory task collection, the active filter set and
// the request lifecycle flags. All mutations go through its methods; readers
// get copies. The collection always reflects the last successful fetch under
// the active filters, except for the client-side prepend on create.
type TaskStore struct {
	log *slog.Logger
	api TasksAPI

	mu         sync.Mutex
	tasks      []Task
	taskDetail *Task
	filters    TaskFilters
	isLoading  bool
	isError    bool
	errMsg     string

	// fetchSeq fences overlapping list fetches: a fetch that has been
	// superseded discards its result instead of clobbering a newer one.
	fetchSeq uint64
}

func NewTaskStore(api TasksAPI, log *slog.Logger) *TaskStore {
	return &TaskStore{
		log:     log,
		api:     api,
		filters: DefaultFilters(),
	}
}

// ---- observable state

func (s *TaskStore) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *TaskStore) TaskDetail() (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.taskDetail == nil {
		return Task{}, false
	}
	return *s.taskDetail, true
}

func (s *TaskStore) Filters() TaskFilters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

func (s *TaskStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoading
}

func (s *TaskStore) IsError() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isError
}

func (s *TaskStore) ErrMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// ---- operations

// SetFilters merges the patch into the active filter set. It does not
// trigger a fetch; reacting to filter changes is the caller's job.
func (s *TaskStore) SetFilters(p FilterPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = p.apply(s.filters)
}

// FetchTasks lists tasks under the given filters (nil means the store's
// current filter set) and replaces the collection wholesale with the server
// result. On failure the previous collection stays visible.
func (s *TaskStore) FetchTasks(ctx context.Context, custom *TaskFilters) error {
	s.mu.Lock()
	f := s.filters
	if custom != nil {
		f = *custom
	}
	s.isLoading = true
	s.isError = false
	s.errMsg = ""
	s.fetchSeq++
	seq := s.fetchSeq
	s.mu.Unlock()

	tasks, err := s.api.ListTasks(ctx, f)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.fetchSeq {
		// Superseded by a newer fetch or a store reset; drop the result.
		s.log.Debug("stale task fetch discarded")
		return nil
	}
	s.isLoading = false
	if err != nil {
		s.isError = true
		s.errMsg = messageOr(err, "failed to fetch tasks")
		s.log.Error("fetch tasks", "error", err)
		return err
	}
	s.tasks = tasks
	return nil
}

// FetchTaskByID loads a single task into the detail slot. The error is
// returned to the caller so it can drive navigation, not just displayed.
func (s *TaskStore) FetchTaskByID(ctx context.Context, id string) (Task, error) {
	s.beginOp()

	task, err := s.api.GetTask(ctx, id)
	if err != nil {
		s.failOp(err, "failed to fetch task")
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskDetail = &task
	s.isLoading = false
	return task, nil
}

// CreateTask validates the payload, creates the task and prepends the
// server record to the collection. The prepend ignores the active
// filter/sort; the next authoritative fetch reconciles ordering.
func (s *TaskStore) CreateTask(ctx context.Context, payload NewTask) (Task, error) {
	if err := payload.Validate(); err != nil {
		s.failOp(err, "invalid task")
		return Task{}, err
	}

	s.beginOp()

	task, err := s.api.CreateTask(ctx, payload)
	if err != nil {
		s.failOp(err, "failed to create task")
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append([]Task{task}, s.tasks...)
	s.isLoading = false
	return task, nil
}

// UpdateTask patches a task and shallow-merges the server's response into
// the cached record, so fields the response omits are preserved. The detail
// slot is patched too when it refers to the same task.
func (s *TaskStore) UpdateTask(ctx context.Context, id string, p TaskPatch) (Task, error) {
	s.beginOp()

	resp, err := s.api.UpdateTask(ctx, id, p)
	if err != nil {
		s.failOp(err, "failed to update task")
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := resp.apply(Task{TaskID: id})
	for i := range s.tasks {
		if s.tasks[i].TaskID == id {
			s.tasks[i] = resp.apply(s.tasks[i])
			merged = s.tasks[i]
			break
		}
	}
	if s.taskDetail != nil && s.taskDetail.TaskID == id {
		patched := resp.apply(*s.taskDetail)
		s.taskDetail = &patched
		merged = patched
	}
	s.isLoading = false
	return merged, nil
}

// UpdateTaskStatus toggles is_done with an optimistic local mutation:
// the cached task flips before the network round-trip, the server record
// replaces it on success, and a failure triggers a full refetch instead of
// an inverse mutation (resync-based rollback).
func (s *TaskStore) UpdateTaskStatus(ctx context.Context, id string, isDone bool) (Task, error) {
	s.mu.Lock()
	for i := range s.tasks {
		if s.tasks[i].TaskID != id {
			continue
		}
		s.tasks[i].IsDone = isDone
		if isDone {
			now := time.Now().UTC()
			s.tasks[i].CompletedAt = &now
		} else {
			s.tasks[i].CompletedAt = nil
		}
		break
	}
	s.mu.Unlock()

	updated, err := s.api.UpdateTaskStatus(ctx, id, isDone)
	if err != nil {
		s.log.Error("update task status", "task_id", id, "error", err)

		// Refetch to converge on the server's view of the collection,
		// then record the failure so it stays observable after the resync.
		if ferr := s.FetchTasks(ctx, nil); ferr != nil {
			s.log.Error("resync after failed status update", "error", ferr)
		}
		s.mu.Lock()
		s.isError = true
		s.errMsg = messageOr(err, "failed to update status")
		s.mu.Unlock()
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].TaskID == updated.TaskID {
			// Server value wins over the optimistic guess.
			s.tasks[i] = updated
			break
		}
	}
	return updated, nil
}

// DeleteTask removes a task from the collection only after the server has
// confirmed the delete; there is no optimistic removal.
func (s *TaskStore) DeleteTask(ctx context.Context, id string) error {
	s.beginOp()

	if err := s.api.DeleteTask(ctx, id); err != nil {
		s.failOp(err, "failed to delete task")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.tasks[:0]
	for _, t := range s.tasks {
		if t.TaskID != id {
			out = append(out, t)
		}
	}
	s.tasks = out
	s.isLoading = false
	return nil
}

func (s *TaskStore) ClearTaskDetail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskDetail = nil
}

func (s *TaskStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isError = false
	s.errMsg = ""
}

// ClearStore resets the whole store to its initial state. It is the
// cross-store invalidation hook: the session store calls it on logout and
// the view layer calls it whenever the authenticated identity changes.
func (s *TaskStore) ClearStore() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = nil
	s.taskDetail = nil
	s.isLoading = false
	s.isError = false
	s.errMsg = ""
	s.filters = DefaultFilters()
	// Invalidate any in-flight fetch so it cannot resurrect stale data.
	s.fetchSeq++
}

// ---- shared flag transitions

func (s *TaskStore) beginOp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLoading = true
	s.isError = false
	s.errMsg = ""
}

func (s *TaskStore) failOp(err error, fallback string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLoading = false
	s.isError = true
	s.errMsg = messageOr(err, fallback)
}

func messageOr(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
