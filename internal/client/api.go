package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"todo_webapp/internal/domain"
)

// User is the public part of an account as returned by the server
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// APIError is a non-2xx answer. It unwraps to the matching domain error kind.
type APIError struct {
	Status  int
	Message string
	kind    error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.kind }

// API talks JSON to the todo backend
type API struct {
	baseURL string
	http    *http.Client
}

// NewAPI builds a client for baseURL (e.g. http://localhost:5000). httpClient may be nil.
func NewAPI(baseURL string, httpClient *http.Client) *API {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &API{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (a *API) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	var res AuthResponse
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := a.do(ctx, http.MethodPost, "/api/auth/register", "", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (a *API) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var res AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := a.do(ctx, http.MethodPost, "/api/auth/login", "", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (a *API) Me(ctx context.Context, token string) (*User, error) {
	var u User
	if err := a.do(ctx, http.MethodGet, "/api/auth/me", token, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Activity returns the session user's newest audit entries
func (a *API) Activity(ctx context.Context, token string, limit int) ([]*domain.AuditLog, error) {
	logs := make([]*domain.AuditLog, 0)
	path := "/api/auth/activity?limit=" + strconv.Itoa(limit)
	if err := a.do(ctx, http.MethodGet, path, token, nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (a *API) ListTodos(ctx context.Context, token string) ([]*domain.Todo, error) {
	todos := make([]*domain.Todo, 0)
	if err := a.do(ctx, http.MethodGet, "/api/todos", token, nil, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

func (a *API) CreateTodo(ctx context.Context, token, text string) (*domain.Todo, error) {
	var t domain.Todo
	if err := a.do(ctx, http.MethodPost, "/api/todos", token, map[string]string{"text": text}, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (a *API) UpdateTodo(ctx context.Context, token string, id int64, completed bool) (*domain.Todo, error) {
	var t domain.Todo
	path := "/api/todos/" + strconv.FormatInt(id, 10)
	if err := a.do(ctx, http.MethodPut, path, token, map[string]bool{"completed": completed}, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (a *API) DeleteTodo(ctx context.Context, token string, id int64) error {
	path := "/api/todos/" + strconv.FormatInt(id, 10)
	return a.do(ctx, http.MethodDelete, path, token, nil, nil)
}

func (a *API) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, path, raw)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func newAPIError(status int, path string, raw []byte) *APIError {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(raw, &payload)

	e := &APIError{Status: status, Message: payload.Error}
	switch {
	case status == http.StatusUnauthorized && strings.HasPrefix(path, "/api/auth/log"):
		e.kind = domain.ErrInvalidCredentials
	case status == http.StatusUnauthorized:
		e.kind = domain.ErrUnauthorized
	case status == http.StatusNotFound:
		e.kind = domain.ErrNotFound
	case status == http.StatusBadRequest && payload.Error == domain.ErrDuplicateEmail.Error():
		e.kind = domain.ErrDuplicateEmail
	case status == http.StatusBadRequest:
		e.kind = domain.ErrInvalidInput
	}
	return e
}
