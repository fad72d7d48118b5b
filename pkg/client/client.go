// Package client is a Go client for the task-tracker API. The session token
// lives in an HTTP-only cookie managed by the server; this client only
// carries the cookie jar and mirrors authentication state the way the web
// frontend does.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"
)

// Routes the server exposes, relative to the base URL.
const (
	LoginRoute  = "/auth/login"
	SignupRoute = "/auth/signup"
)

// SessionCookieName is the cookie the server stores the session token under.
const SessionCookieName = "access_token"

// Response is the uniform envelope every endpoint answers with.
type Response struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// User is the resolved identity returned by the status endpoint.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Task struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	CreatedBy string `json:"created_by"`
}

type Project struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedBy string `json:"created_by"`
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A cookie jar is
// attached if the given client has none.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithRedirect installs the hook fired when an auth check fails away from a
// public route. The web frontend navigates to the login page here.
func WithRedirect(fn func(route string)) Option {
	return func(c *Client) {
		c.onRedirect = fn
	}
}

type Client struct {
	baseURL    string
	http       *http.Client
	onRedirect func(route string)
	mirror     authMirror
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{baseURL: baseURL}
	c.mirror.state.IsLoading = true
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 15 * time.Second}
	}
	if c.http.Jar == nil {
		jar, _ := cookiejar.New(nil)
		c.http.Jar = jar
	}
	return c
}

// Signup registers a new account. It does not log the account in.
func (c *Client) Signup(ctx context.Context, email, password string) (Response, error) {
	return c.do(ctx, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Login authenticates and stores the resulting session cookie in the jar.
func (c *Client) Login(ctx context.Context, email, password string) (Response, error) {
	return c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Logout clears the session. Always succeeds from the caller's perspective.
func (c *Client) Logout(ctx context.Context) (Response, error) {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil)
}

// Status asks the server who the current session belongs to. A missing or
// invalid session is a success:false envelope, not a transport error.
func (c *Client) Status(ctx context.Context) (Response, error) {
	return c.do(ctx, http.MethodGet, "/api/auth/status", nil)
}

func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/tasks", nil)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("list tasks: %s", resp.Message)
	}
	var out []Task
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTask(ctx context.Context, title string) (Task, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/tasks", map[string]any{"title": title})
	if err != nil {
		return Task{}, err
	}
	if !resp.Success {
		return Task{}, fmt.Errorf("create task: %s", resp.Message)
	}
	var out Task
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return Task{}, err
	}
	return out, nil
}

func (c *Client) CompleteTask(ctx context.Context, id string) error {
	resp, err := c.do(ctx, http.MethodPut, "/api/tasks/"+id, map[string]any{"completed": true})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("complete task: %s", resp.Message)
	}
	return nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/api/tasks/"+id, nil)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("delete task: %s", resp.Message)
	}
	return nil
}

func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/projects", nil)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("list projects: %s", resp.Message)
	}
	var out []Project
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SessionToken returns the session cookie value currently held in the jar
// for the given base URL, or "" when no session is stored.
func (c *Client) SessionToken(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || c.http.Jar == nil {
		return ""
	}
	for _, ck := range c.http.Jar.Cookies(u) {
		if ck.Name == SessionCookieName {
			return ck.Value
		}
	}
	return ""
}

func (c *Client) do(ctx context.Context, method, path string, body any) (Response, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return Response{}, err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	var envelope Response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return Response{}, fmt.Errorf("%s %s: unexpected response (%d)", method, path, resp.StatusCode)
	}
	return envelope, nil
}
