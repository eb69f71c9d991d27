package client

import (
	"context"
	"errors"
	"strings"
	"sync"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"
)

var (
	// ErrNotLoggedIn is returned by todo operations when no token is held
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrSessionExpired is returned when the server rejected the token and the session was dropped
	ErrSessionExpired = errors.New("session expired, please log in again")
)

// Backend is the remote side of the controller; *API implements it
type Backend interface {
	Register(ctx context.Context, name, email, password string) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Activity(ctx context.Context, token string, limit int) ([]*domain.AuditLog, error)
	ListTodos(ctx context.Context, token string) ([]*domain.Todo, error)
	CreateTodo(ctx context.Context, token, text string) (*domain.Todo, error)
	UpdateTodo(ctx context.Context, token string, id int64, completed bool) (*domain.Todo, error)
	DeleteTodo(ctx context.Context, token string, id int64) error
}

// State is an immutable snapshot of the controller
type State struct {
	LoggedIn bool
	User     *User
	Todos    []domain.Todo
	Filter   string
	Pending  bool
	// Version is the sequence number of the refresh that produced Todos
	Version uint64
}

// Controller owns the client's view of the todo list. The server is the source
// of truth: every mutation is one remote call followed by a full refetch, and
// the local list is only ever replaced wholesale by a refetch result.
type Controller struct {
	api    Backend
	tokens TokenStore

	mu       sync.Mutex
	token    string
	user     *User
	todos    []*domain.Todo
	filter   string
	inflight int
	// issued is the last refresh sequence handed out, applied the last one whose result was kept
	issued  uint64
	applied uint64

	// notifyMu serialises snapshot-and-deliver so listeners see states in order
	notifyMu  sync.Mutex
	listeners []func(State)
}

// NewController restores a previously saved token from tokens, if any
func NewController(api Backend, tokens TokenStore) *Controller {
	if tokens == nil {
		tokens = &MemoryTokenStore{}
	}
	c := &Controller{api: api, tokens: tokens}
	if token, err := tokens.Load(); err != nil {
		logger.Warn("failed to load saved token", "error", err)
	} else {
		c.token = token
	}
	return c
}

// Subscribe registers fn to receive a snapshot after every state change.
// Snapshots arrive one at a time, oldest first. fn must not call back into
// methods that change state.
func (c *Controller) Subscribe(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() State {
	todos := make([]domain.Todo, 0, len(c.todos))
	for _, t := range c.todos {
		todos = append(todos, *t)
	}
	var user *User
	if c.user != nil {
		u := *c.user
		user = &u
	}
	return State{
		LoggedIn: c.token != "",
		User:     user,
		Todos:    todos,
		Filter:   c.filter,
		Pending:  c.inflight > 0,
		Version:  c.applied,
	}
}

func (c *Controller) notify() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	state := c.snapshotLocked()
	listeners := append(([]func(State))(nil), c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}

func (c *Controller) currentToken() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" {
		return "", ErrNotLoggedIn
	}
	return c.token, nil
}

func (c *Controller) Register(ctx context.Context, name, email, password string) error {
	res, err := c.api.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	return c.startSession(res)
}

func (c *Controller) Login(ctx context.Context, email, password string) error {
	res, err := c.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return c.startSession(res)
}

func (c *Controller) startSession(res *AuthResponse) error {
	if err := c.tokens.Save(res.Token); err != nil {
		return err
	}
	c.mu.Lock()
	c.token = res.Token
	user := res.User
	c.user = &user
	c.todos = nil
	c.mu.Unlock()
	c.notify()
	return nil
}

// Logout discards the token and every piece of session state
func (c *Controller) Logout() error {
	c.mu.Lock()
	c.dropSessionLocked()
	c.mu.Unlock()
	c.notify()
	return c.tokens.Clear()
}

func (c *Controller) dropSessionLocked() {
	c.token = ""
	c.user = nil
	c.todos = nil
	c.filter = ""
}

// handleRemoteError turns a 401 into a forced logout. token is the one the failed
// call used, so a late 401 cannot end a newer session.
func (c *Controller) handleRemoteError(token string, err error) error {
	if !errors.Is(err, domain.ErrUnauthorized) {
		return err
	}
	c.mu.Lock()
	current := c.token == token
	if current {
		c.dropSessionLocked()
	}
	c.mu.Unlock()

	if current {
		if clearErr := c.tokens.Clear(); clearErr != nil {
			logger.Warn("failed to clear saved token", "error", clearErr)
		}
		c.notify()
	}
	return ErrSessionExpired
}

// Activity fetches the account's recent audit trail. The todo list is left alone.
func (c *Controller) Activity(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
	token, err := c.currentToken()
	if err != nil {
		return nil, err
	}
	logs, err := c.api.Activity(ctx, token, limit)
	if err != nil {
		return nil, c.handleRemoteError(token, err)
	}
	return logs, nil
}

// Refresh fetches the full list and replaces the local one. A result that
// arrives after a newer refresh has already been applied is discarded.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.token == "" {
		c.mu.Unlock()
		return ErrNotLoggedIn
	}
	token := c.token
	c.issued++
	seq := c.issued
	c.inflight++
	c.mu.Unlock()
	c.notify()

	todos, err := c.api.ListTodos(ctx, token)

	c.mu.Lock()
	c.inflight--
	if err == nil {
		if seq > c.applied && c.token == token {
			c.applied = seq
			c.todos = todos
		} else {
			logger.Debug("discarding stale refresh", "seq", seq, "applied", c.applied)
		}
	}
	c.mu.Unlock()

	if err != nil {
		if !errors.Is(err, domain.ErrUnauthorized) {
			logger.Warn("refresh failed", "error", err)
		}
		err = c.handleRemoteError(token, err)
	}
	c.notify()
	return err
}

// mutate runs one remote call and then refetches. The refetch happens even when
// the call was rejected, so the view always ends on server state.
func (c *Controller) mutate(ctx context.Context, call func(token string) error) error {
	token, err := c.currentToken()
	if err != nil {
		return err
	}

	if callErr := call(token); callErr != nil {
		callErr = c.handleRemoteError(token, callErr)
		if errors.Is(callErr, ErrSessionExpired) {
			return callErr
		}
		logger.Warn("todo mutation failed", "error", callErr)
		_ = c.Refresh(ctx)
		return callErr
	}
	return c.Refresh(ctx)
}

// Add creates a todo. Blank text is refused locally without a remote call.
func (c *Controller) Add(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return domain.ErrInvalidInput
	}
	return c.mutate(ctx, func(token string) error {
		_, err := c.api.CreateTodo(ctx, token, text)
		return err
	})
}

// Toggle flips the completion flag of a todo in the current list
func (c *Controller) Toggle(ctx context.Context, id int64) error {
	c.mu.Lock()
	var completed, found bool
	for _, t := range c.todos {
		if t.ID == id {
			completed, found = t.Completed, true
			break
		}
	}
	c.mu.Unlock()
	if !found {
		return domain.ErrNotFound
	}

	return c.mutate(ctx, func(token string) error {
		_, err := c.api.UpdateTodo(ctx, token, id, !completed)
		return err
	})
}

func (c *Controller) Remove(ctx context.Context, id int64) error {
	return c.mutate(ctx, func(token string) error {
		return c.api.DeleteTodo(ctx, token, id)
	})
}

func (c *Controller) SetFilter(text string) {
	c.mu.Lock()
	c.filter = text
	c.mu.Unlock()
	c.notify()
}

// VisibleTodos is the list narrowed by a case-insensitive substring match on the filter
func (c *Controller) VisibleTodos() []domain.Todo {
	state := c.Snapshot()
	return FilterTodos(state.Todos, state.Filter)
}

// FilterTodos keeps todos whose text contains filter, ignoring case
func FilterTodos(todos []domain.Todo, filter string) []domain.Todo {
	needle := strings.ToLower(filter)
	res := make([]domain.Todo, 0, len(todos))
	for _, t := range todos {
		if strings.Contains(strings.ToLower(t.Text), needle) {
			res = append(res, t)
		}
	}
	return res
}

// Stats counts the whole local list, not the filtered view
func (c *Controller) Stats() domain.TodoStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.CountTodos(c.todos)
}
