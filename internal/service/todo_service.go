package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/metrics"
)

// TodoStore is the persistent todo store; all calls are scoped to an owner
type TodoStore interface {
	List(ctx context.Context, ownerID int64) ([]*domain.Todo, error)
	Create(ctx context.Context, t *domain.Todo) error
	SetCompleted(ctx context.Context, ownerID, id int64, completed bool) (*domain.Todo, error)
	Delete(ctx context.Context, ownerID, id int64) error
}

// TodoCache is a best-effort cache of one owner's list.
// Invalidate bumps the owner's generation; Set must drop a fill whose
// generation is no longer current, so a list read before a write can never
// land in the cache after that write.
type TodoCache interface {
	Get(ctx context.Context, ownerID int64) ([]*domain.Todo, bool)
	Generation(ctx context.Context, ownerID int64) (int64, bool)
	Set(ctx context.Context, ownerID, gen int64, todos []*domain.Todo)
	Invalidate(ctx context.Context, ownerID int64)
}

type noCache struct{}

func (noCache) Get(context.Context, int64) ([]*domain.Todo, bool) { return nil, false }
func (noCache) Generation(context.Context, int64) (int64, bool)    { return 0, false }
func (noCache) Set(context.Context, int64, int64, []*domain.Todo)  {}
func (noCache) Invalidate(context.Context, int64)                  {}

type TodoService struct {
	store TodoStore
	cache TodoCache
	audit *AuditService
}

// NewTodoService builds the service. cache may be nil.
func NewTodoService(store TodoStore, cache TodoCache, audit *AuditService) *TodoService {
	if cache == nil {
		cache = noCache{}
	}
	return &TodoService{store: store, cache: cache, audit: audit}
}

func (s *TodoService) List(ctx context.Context, ownerID int64) ([]*domain.Todo, error) {
	if todos, ok := s.cache.Get(ctx, ownerID); ok {
		return todos, nil
	}

	// generation first: a write that lands after this point invalidates the fill
	gen, cacheable := s.cache.Generation(ctx, ownerID)

	todos, err := s.store.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.cache.Set(ctx, ownerID, gen, todos)
	}
	return todos, nil
}

func (s *TodoService) Create(ctx context.Context, ownerID int64, text string) (*domain.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(text) > domain.MaxTodoTextLength {
		return nil, fmt.Errorf("%w: text is longer than %d characters", domain.ErrInvalidInput, domain.MaxTodoTextLength)
	}

	todo := &domain.Todo{UserID: ownerID, Text: text}
	if err := s.store.Create(ctx, todo); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, ownerID, "create")
	s.audit.LogTodo(ctx, ownerID, domain.AuditActionTodoCreate, todo.ID, nil)
	return todo, nil
}

// Update sets the completion flag only
func (s *TodoService) Update(ctx context.Context, ownerID, id int64, completed bool) (*domain.Todo, error) {
	todo, err := s.store.SetCompleted(ctx, ownerID, id, completed)
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, ownerID, "update")
	s.audit.LogTodo(ctx, ownerID, domain.AuditActionTodoToggle, id, map[string]interface{}{"completed": completed})
	return todo, nil
}

// Delete removes a todo; a missing (or foreign) id is ErrNotFound every time
func (s *TodoService) Delete(ctx context.Context, ownerID, id int64) error {
	if err := s.store.Delete(ctx, ownerID, id); err != nil {
		return err
	}

	s.afterWrite(ctx, ownerID, "delete")
	s.audit.LogTodo(ctx, ownerID, domain.AuditActionTodoDelete, id, nil)
	return nil
}

func (s *TodoService) Stats(ctx context.Context, ownerID int64) (domain.TodoStats, error) {
	todos, err := s.List(ctx, ownerID)
	if err != nil {
		return domain.TodoStats{}, err
	}
	return domain.CountTodos(todos), nil
}

func (s *TodoService) afterWrite(ctx context.Context, ownerID int64, op string) {
	s.cache.Invalidate(ctx, ownerID)
	metrics.TodoMutations.WithLabelValues(op).Inc()
	logger.WithContext(ctx).Debug("todo written", "op", op, "user_id", ownerID)
}
