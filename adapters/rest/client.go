package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"task-tracker-client/core"
)

// Client is the API gateway client: one method per remote operation,
// each unwrapping the response envelope and translating failures into
// core sentinels. It carries the bearer token between requests and never
// retries; retry policy belongs to callers.
type Client struct {
	log  *slog.Logger
	base string
	http *http.Client

	mu    sync.RWMutex
	token string
}

func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		log:  log,
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

var (
	_ core.TasksAPI     = (*Client)(nil)
	_ core.UsersAPI     = (*Client)(nil)
	_ core.TokenCarrier = (*Client)(nil)
)

// ---- TokenCarrier

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) ClearToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// ---- Tasks

func (c *Client) ListTasks(ctx context.Context, f core.TaskFilters) ([]core.Task, error) {
	env, err := c.do(ctx, http.MethodGet, "/task", f.Values(), nil)
	if err != nil {
		return nil, err
	}

	var out []core.Task
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return nil, fmt.Errorf("%w: decode task list: %v", core.ErrServer, err)
	}
	return out, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (core.Task, error) {
	env, err := c.do(ctx, http.MethodGet, "/task/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return core.Task{}, err
	}

	var out core.Task
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return core.Task{}, fmt.Errorf("%w: decode task: %v", core.ErrServer, err)
	}
	return out, nil
}

func (c *Client) CreateTask(ctx context.Context, payload core.NewTask) (core.Task, error) {
	env, err := c.do(ctx, http.MethodPost, "/task", nil, payload)
	if err != nil {
		return core.Task{}, err
	}

	var out core.Task
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return core.Task{}, fmt.Errorf("%w: decode created task: %v", core.ErrServer, err)
	}
	return out, nil
}

// UpdateTask returns the server's echo as a patch so the caller can merge
// it without losing fields the response omitted.
func (c *Client) UpdateTask(ctx context.Context, id string, p core.TaskPatch) (core.TaskPatch, error) {
	env, err := c.do(ctx, http.MethodPatch, "/task/"+url.PathEscape(id), nil, p)
	if err != nil {
		return core.TaskPatch{}, err
	}

	var out core.TaskPatch
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return core.TaskPatch{}, fmt.Errorf("%w: decode updated task: %v", core.ErrServer, err)
	}
	return out, nil
}

func (c *Client) UpdateTaskStatus(ctx context.Context, id string, isDone bool) (core.Task, error) {
	env, err := c.do(ctx, http.MethodPatch, "/status/"+url.PathEscape(id), nil, statusUpdateIn{IsDone: isDone})
	if err != nil {
		return core.Task{}, err
	}

	var out statusUpdateOut
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return core.Task{}, fmt.Errorf("%w: decode status update: %v", core.ErrServer, err)
	}
	if len(out.UpdatedData) == 0 {
		return core.Task{}, fmt.Errorf("%w: status update returned no record", core.ErrServer)
	}
	return out.UpdatedData[0], nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/task/"+url.PathEscape(id), nil, nil)
	return err
}

// ---- Users

func (c *Client) Login(ctx context.Context, cred core.Credentials) (core.LoginResult, string, error) {
	env, err := c.do(ctx, http.MethodPost, "/login", nil, cred)
	if err != nil {
		return core.LoginResult{}, "", err
	}
	if !env.ok() {
		return core.LoginResult{}, "", authErr(env.Message, "invalid credentials")
	}

	var out core.LoginResult
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return core.LoginResult{}, "", fmt.Errorf("%w: decode login: %v", core.ErrServer, err)
	}
	return out, env.Message, nil
}

func (c *Client) Register(ctx context.Context, r core.Registration) (string, error) {
	env, err := c.do(ctx, http.MethodPost, "/register", nil, r)
	if err != nil {
		return "", err
	}
	if !env.ok() {
		return "", serverErr(env.Message, "registration rejected")
	}
	return env.Message, nil
}

func (c *Client) GetMe(ctx context.Context) (core.User, error) {
	env, err := c.do(ctx, http.MethodGet, "/me", nil, nil)
	if err != nil {
		return core.User{}, err
	}
	if !env.ok() {
		return core.User{}, serverErr(env.Message, "failed to fetch user")
	}

	var out core.User
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return core.User{}, fmt.Errorf("%w: decode user: %v", core.ErrServer, err)
	}
	return out, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (core.User, error) {
	env, err := c.do(ctx, http.MethodGet, "/user/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return core.User{}, err
	}
	if !env.ok() {
		return core.User{}, serverErr(env.Message, "failed to fetch user")
	}

	var out core.User
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return core.User{}, fmt.Errorf("%w: decode user: %v", core.ErrServer, err)
	}
	return out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, p core.UserPatch) (core.UserPatch, error) {
	env, err := c.do(ctx, http.MethodPut, "/user/"+url.PathEscape(id), nil, p)
	if err != nil {
		return core.UserPatch{}, err
	}
	if !env.ok() {
		return core.UserPatch{}, serverErr(env.Message, "failed to update user")
	}

	var out core.UserPatch
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return core.UserPatch{}, fmt.Errorf("%w: decode updated user: %v", core.ErrServer, err)
	}
	return out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	env, err := c.do(ctx, http.MethodDelete, "/user/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return err
	}
	if !env.ok() {
		return serverErr(env.Message, "failed to delete user")
	}
	return nil
}

// ---- transport

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (envelope, error) {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return envelope{}, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return envelope{}, fmt.Errorf("new request %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return envelope{}, fmt.Errorf("%w: %v", core.ErrServer, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return envelope{}, fmt.Errorf("%w: read response: %v", core.ErrServer, err)
	}

	var env envelope
	if len(raw) > 0 {
		// A malformed body on an error status must not mask the status.
		_ = json.Unmarshal(raw, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Debug("request failed", "method", method, "path", path, "status", resp.StatusCode)
		return envelope{}, mapHTTPErr(resp.StatusCode, env.Message)
	}
	return env, nil
}

func mapHTTPErr(status int, message string) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return authErr(message, "unauthorized")
	case http.StatusNotFound:
		return notFoundErr(message)
	default:
		return serverErr(message, fmt.Sprintf("request failed with status %d", status))
	}
}

func authErr(message, fallback string) error {
	if message == "" {
		message = fallback
	}
	return fmt.Errorf("%w: %s", core.ErrAuth, message)
}

func notFoundErr(message string) error {
	if message == "" {
		return core.ErrNotFound
	}
	return fmt.Errorf("%w: %s", core.ErrNotFound, message)
}

func serverErr(message, fallback string) error {
	if message == "" {
		message = fallback
	}
	return fmt.Errorf("%w: %s", core.ErrServer, message)
}
