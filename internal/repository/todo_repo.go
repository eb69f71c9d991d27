package repository

import (
	"context"
	"errors"
	"fmt"

	"todo_webapp/internal/domain"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var todoColumns = []string{"id", "user_id", "text", "completed", "created_at"}

// TodoRepository is the Postgres todo store. Every statement is scoped to the owner.
type TodoRepository struct {
	db *pgxpool.Pool
}

func NewTodoRepository(db *pgxpool.Pool) *TodoRepository {
	return &TodoRepository{db: db}
}

func listTodosQuery(ownerID int64) (string, []interface{}, error) {
	return psql.Select(todoColumns...).
		From("todos").
		Where(sq.Eq{"user_id": ownerID}).
		OrderBy("id").
		ToSql()
}

func insertTodoQuery(t *domain.Todo) (string, []interface{}, error) {
	return psql.Insert("todos").
		Columns("user_id", "text", "completed").
		Values(t.UserID, t.Text, t.Completed).
		Suffix("RETURNING id, created_at").
		ToSql()
}

func setCompletedQuery(ownerID, id int64, completed bool) (string, []interface{}, error) {
	return psql.Update("todos").
		Set("completed", completed).
		Where(sq.Eq{"id": id, "user_id": ownerID}).
		Suffix("RETURNING id, user_id, text, completed, created_at").
		ToSql()
}

func deleteTodoQuery(ownerID, id int64) (string, []interface{}, error) {
	return psql.Delete("todos").
		Where(sq.Eq{"id": id, "user_id": ownerID}).
		ToSql()
}

func (r *TodoRepository) List(ctx context.Context, ownerID int64) ([]*domain.Todo, error) {
	query, args, err := listTodosQuery(ownerID)
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	res := make([]*domain.Todo, 0)
	for rows.Next() {
		var t domain.Todo
		if err := rows.Scan(&t.ID, &t.UserID, &t.Text, &t.Completed, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		res = append(res, &t)
	}
	return res, rows.Err()
}

func (r *TodoRepository) Create(ctx context.Context, t *domain.Todo) error {
	query, args, err := insertTodoQuery(t)
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&t.ID, &t.CreatedAt); err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	return nil
}

func (r *TodoRepository) SetCompleted(ctx context.Context, ownerID, id int64, completed bool) (*domain.Todo, error) {
	query, args, err := setCompletedQuery(ownerID, id, completed)
	if err != nil {
		return nil, fmt.Errorf("build update query: %w", err)
	}

	var t domain.Todo
	err = r.db.QueryRow(ctx, query, args...).Scan(&t.ID, &t.UserID, &t.Text, &t.Completed, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}
	return &t, nil
}

func (r *TodoRepository) Delete(ctx context.Context, ownerID, id int64) error {
	query, args, err := deleteTodoQuery(ownerID, id)
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
