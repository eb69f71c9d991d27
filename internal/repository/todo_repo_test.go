package repository

import (
	"testing"

	"todo_webapp/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTodosQuery(t *testing.T) {
	query, args, err := listTodosQuery(7)
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, user_id, text, completed, created_at FROM todos WHERE user_id = $1 ORDER BY id", query)
	assert.Equal(t, []interface{}{int64(7)}, args)
}

func TestInsertTodoQuery(t *testing.T) {
	query, args, err := insertTodoQuery(&domain.Todo{UserID: 3, Text: "Buy milk"})
	require.NoError(t, err)
	assert.Contains(t, query, "INSERT INTO todos")
	assert.Contains(t, query, "RETURNING id, created_at")
	assert.Equal(t, []interface{}{int64(3), "Buy milk", false}, args)
}

func TestSetCompletedQueryScopedToOwner(t *testing.T) {
	query, args, err := setCompletedQuery(3, 42, true)
	require.NoError(t, err)
	assert.Contains(t, query, "UPDATE todos SET completed = $1")
	assert.Contains(t, query, "id = $2")
	assert.Contains(t, query, "user_id = $3")
	assert.Equal(t, []interface{}{true, int64(42), int64(3)}, args)
}

func TestDeleteTodoQueryScopedToOwner(t *testing.T) {
	query, args, err := deleteTodoQuery(3, 42)
	require.NoError(t, err)
	assert.Contains(t, query, "DELETE FROM todos WHERE")
	assert.Contains(t, query, "user_id = $2")
	assert.Equal(t, []interface{}{int64(42), int64(3)}, args)
}
