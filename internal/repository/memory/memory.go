// Package memory holds mutex-guarded in-process stores with the same contracts
// as the Postgres repositories. Used by STORAGE_DRIVER=memory and by tests.
package memory

import (
	"context"
	"sync"
	"time"

	"todo_webapp/internal/domain"
)

type UserStore struct {
	mu      sync.RWMutex
	seq     int64
	byID    map[int64]*domain.User
	byEmail map[string]int64
}

func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[int64]*domain.User),
		byEmail: make(map[string]int64),
	}
}

func (s *UserStore) Create(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	s.seq++
	u.ID = s.seq
	u.CreatedAt = time.Now().UTC()

	cp := *u
	s.byID[u.ID] = &cp
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *UserStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// TodoStore keeps todos in insertion order. Writes are serialised; last writer wins.
type TodoStore struct {
	mu    sync.RWMutex
	seq   int64
	todos []*domain.Todo
}

func NewTodoStore() *TodoStore {
	return &TodoStore{}
}

func (s *TodoStore) List(_ context.Context, ownerID int64) ([]*domain.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]*domain.Todo, 0)
	for _, t := range s.todos {
		if t.UserID == ownerID {
			cp := *t
			res = append(res, &cp)
		}
	}
	return res, nil
}

func (s *TodoStore) Create(_ context.Context, t *domain.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t.ID = s.seq
	t.CreatedAt = time.Now().UTC()
	cp := *t
	s.todos = append(s.todos, &cp)
	return nil
}

func (s *TodoStore) SetCompleted(_ context.Context, ownerID, id int64, completed bool) (*domain.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.todos {
		if t.ID == id && t.UserID == ownerID {
			t.Completed = completed
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *TodoStore) Delete(_ context.Context, ownerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.todos {
		if t.ID == id && t.UserID == ownerID {
			s.todos = append(s.todos[:i], s.todos[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// AuditStore appends entries to a slice
type AuditStore struct {
	mu   sync.Mutex
	seq  int64
	logs []*domain.AuditLog
}

func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

func (s *AuditStore) Create(_ context.Context, log *domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	cp := *log
	cp.ID = s.seq
	cp.CreatedAt = time.Now().UTC()
	s.logs = append(s.logs, &cp)
	return nil
}

// Recent returns newest first, optionally filtered by user and category
func (s *AuditStore) Recent(_ context.Context, userID int64, category string, limit int) ([]*domain.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res []*domain.AuditLog
	for i := len(s.logs) - 1; i >= 0; i-- {
		l := s.logs[i]
		if userID != 0 && l.UserID != userID {
			continue
		}
		if category != "" && l.Category != category {
			continue
		}
		cp := *l
		res = append(res, &cp)
		if limit > 0 && len(res) == limit {
			break
		}
	}
	return res, nil
}
