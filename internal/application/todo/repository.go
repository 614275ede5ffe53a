package todo

import (
	"context"

	"github.com/rezkam/todos/internal/domain"
)

// Repository defines storage operations for todo records.
// Implementations hold one goroutine-safe store handle and keep no per-call state.
type Repository interface {
	// FindTodoByID retrieves a single todo.
	// Returns domain.ErrInvalidID if id is not a well-formed identity for the store.
	// Returns domain.ErrTodoNotFound if no todo has that ID.
	FindTodoByID(ctx context.Context, id string) (*domain.Todo, error)

	// FindTodos returns every todo matching filter, ordered by sort with ties broken by ID.
	FindTodos(ctx context.Context, filter domain.Filter, sort domain.Sort) ([]domain.Todo, error)

	// GroupTodos partitions all todos by q.Dimension and returns one summary per value present,
	// ordered by q.Sort. Members are listed in store retrieval order.
	GroupTodos(ctx context.Context, q domain.GroupQuery) ([]domain.Summary, error)

	// CreateTodo inserts todo and returns the identity assigned by the store.
	CreateTodo(ctx context.Context, todo *domain.Todo) (string, error)

	// DeleteTodo removes the todo with the given ID and returns the number of deleted records.
	// Returns domain.ErrInvalidID if id is not a well-formed identity for the store.
	DeleteTodo(ctx context.Context, id string) (int64, error)

	// CountTodos returns the total number of stored todos.
	CountTodos(ctx context.Context) (int64, error)
}
