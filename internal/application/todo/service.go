package todo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rezkam/todos/internal/domain"
	"github.com/rezkam/todos/internal/query"
)

// Service provides business logic for todo management.
// It orchestrates operations using the Repository interface.
type Service struct {
	repo Repository
}

// NewService creates a new todo service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateTodoInput carries the caller-supplied fields of a new todo.
type CreateTodoInput struct {
	Owner    string
	Status   bool
	Body     string
	Category string
}

// GetTodo retrieves a single todo by ID.
func (s *Service) GetTodo(ctx context.Context, id string) (*domain.Todo, error) {
	if id == "" {
		return nil, domain.ErrTodoNotFound
	}

	todo, err := s.repo.FindTodoByID(ctx, id)
	if err != nil {
		return nil, err // Repository returns domain errors
	}

	return todo, nil
}

// ListTodos returns the todos matching q.Filter ordered by q.Sort.
//
// The limit is applied after retrieval by dropping the tail of the sorted result,
// so the returned slice is always a prefix of the full filtered result.
// Without an explicit limit the current number of stored todos is used.
func (s *Service) ListTodos(ctx context.Context, q domain.ListQuery) ([]domain.Todo, error) {
	if q.HasLimit && q.Limit <= 0 {
		return nil, domain.NewValidationError(query.ParamLimit, fmt.Sprint(q.Limit), domain.ErrInvalidLimit)
	}

	todos, err := s.repo.FindTodos(ctx, q.Filter, q.Sort)
	if err != nil {
		return nil, fmt.Errorf("failed to find todos: %w", err)
	}

	limit := q.Limit
	if !q.HasLimit {
		total, err := s.repo.CountTodos(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count todos: %w", err)
		}
		limit = int(total)
	}

	return query.Truncate(todos, limit), nil
}

// GroupTodos returns one summary per distinct value of q.Dimension.
func (s *Service) GroupTodos(ctx context.Context, q domain.GroupQuery) ([]domain.Summary, error) {
	if _, err := domain.ParseDimension(string(q.Dimension)); err != nil {
		return nil, err
	}

	summaries, err := s.repo.GroupTodos(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to group todos by %s: %w", q.Dimension, err)
	}

	return summaries, nil
}

// CreateTodo validates the input and stores a new todo.
// Returns the identity assigned by the store. Nothing is stored when validation fails.
func (s *Service) CreateTodo(ctx context.Context, in CreateTodoInput) (string, error) {
	todo, err := domain.NewTodo(in.Owner, in.Status, in.Body, in.Category)
	if err != nil {
		return "", err
	}

	id, err := s.repo.CreateTodo(ctx, todo)
	if err != nil {
		return "", fmt.Errorf("failed to create todo: %w", err)
	}

	slog.InfoContext(ctx, "todo created",
		"todo_id", id,
		"owner", todo.Owner)

	return id, nil
}

// DeleteTodo deletes the todo with the given ID.
// Returns domain.ErrTodoNotFound when nothing was deleted.
func (s *Service) DeleteTodo(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrTodoNotFound
	}

	deleted, err := s.repo.DeleteTodo(ctx, id)
	if err != nil {
		return err // Repository returns domain errors
	}
	if deleted != 1 {
		return fmt.Errorf("%w: %s", domain.ErrTodoNotFound, id)
	}

	slog.InfoContext(ctx, "todo deleted", "todo_id", id)
	return nil
}
