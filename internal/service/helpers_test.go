package service

import (
	"context"
	"testing"
	"time"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/repository/memory"

	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	users  *memory.UserStore
	todos  *memory.TodoStore
	audits *memory.AuditStore
	jwt    *JWTManager
	auth   *AuthService
	todo   *TodoService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:  memory.NewUserStore(),
		todos:  memory.NewTodoStore(),
		audits: memory.NewAuditStore(),
		jwt:    NewJWTManager("test-secret", time.Hour),
	}
	audit := NewAuditService(f.audits)
	f.auth = NewAuthService(f.users, &BcryptHasher{Cost: bcrypt.MinCost}, f.jwt, audit)
	f.todo = NewTodoService(f.todos, nil, audit)
	return f
}

// fakeCache records calls and serves whatever was last Set at the current generation
type fakeCache struct {
	lists       map[int64][]*domain.Todo
	gens        map[int64]int64
	gets        int
	hits        int
	invalidates int
	staleSets   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{lists: make(map[int64][]*domain.Todo), gens: make(map[int64]int64)}
}

func (c *fakeCache) Generation(_ context.Context, ownerID int64) (int64, bool) {
	return c.gens[ownerID], true
}

func (c *fakeCache) Get(_ context.Context, ownerID int64) ([]*domain.Todo, bool) {
	c.gets++
	l, ok := c.lists[ownerID]
	if ok {
		c.hits++
	}
	return l, ok
}

func (c *fakeCache) Set(_ context.Context, ownerID, gen int64, todos []*domain.Todo) {
	if gen != c.gens[ownerID] {
		c.staleSets++
		return
	}
	c.lists[ownerID] = todos
}

func (c *fakeCache) Invalidate(_ context.Context, ownerID int64) {
	c.invalidates++
	c.gens[ownerID]++
	delete(c.lists, ownerID)
}
