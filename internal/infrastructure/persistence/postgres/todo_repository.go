package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rezkam/todos/internal/domain"
)

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, domain.NewValidationError("id", id, domain.ErrInvalidID)
	}
	return parsed, nil
}

// FindTodoByID retrieves a single todo.
func (s *Store) FindTodoByID(ctx context.Context, id string) (*domain.Todo, error) {
	todoUUID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	row := s.pool.QueryRow(ctx, selectTodos+" WHERE id = $1", todoUUID)

	var t domain.Todo
	if err := row.Scan(&t.ID, &t.Owner, &t.Status, &t.Body, &t.Category); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTodoNotFound, id)
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}
	return &t, nil
}

// FindTodos returns the todos matching filter ordered by sort.
func (s *Store) FindTodos(ctx context.Context, filter domain.Filter, sort domain.Sort) ([]domain.Todo, error) {
	sql, args := buildFindQuery(filter, sort)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find todos: %w", err)
	}

	todos, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Todo, error) {
		var t domain.Todo
		err := row.Scan(&t.ID, &t.Owner, &t.Status, &t.Body, &t.Category)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan todos: %w", err)
	}
	return todos, nil
}

// GroupTodos partitions todos by q.Dimension.
func (s *Store) GroupTodos(ctx context.Context, q domain.GroupQuery) ([]domain.Summary, error) {
	sql, err := buildGroupQuery(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to group todos: %w", err)
	}

	summaries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Summary, error) {
		var (
			sum    domain.Summary
			count  int64
			ids    []string
			owners []string
		)
		if err := row.Scan(&sum.Key, &count, &ids, &owners); err != nil {
			return sum, err
		}
		if len(ids) != len(owners) {
			return sum, fmt.Errorf("group %q: %d ids but %d owners", sum.Key, len(ids), len(owners))
		}
		sum.Count = int(count)
		sum.Members = make([]domain.Member, len(ids))
		for i := range ids {
			sum.Members[i] = domain.Member{ID: ids[i], Owner: owners[i]}
		}
		return sum, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan groups: %w", err)
	}
	return summaries, nil
}

// CreateTodo inserts t under a new UUIDv7.
func (s *Store) CreateTodo(ctx context.Context, t *domain.Todo) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO todos (id, owner, status, body, category) VALUES ($1, $2, $3, $4, $5)`,
		id, t.Owner, t.Status, t.Body, t.Category)
	if err != nil {
		return "", fmt.Errorf("failed to create todo: %w", err)
	}
	return id.String(), nil
}

// DeleteTodo deletes by ID and reports the number of rows removed.
func (s *Store) DeleteTodo(ctx context.Context, id string) (int64, error) {
	todoUUID, err := parseID(id)
	if err != nil {
		return 0, err
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1`, todoUUID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete todo: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CountTodos returns the number of stored todos.
func (s *Store) CountTodos(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM todos`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count todos: %w", err)
	}
	return n, nil
}
