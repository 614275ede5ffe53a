package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/todos/internal/application/todo"
	"github.com/rezkam/todos/internal/domain"
)

// TodoHandler adapts HTTP requests to todo service calls.
type TodoHandler struct {
	todoService *todo.Service
}

// NewTodoHandler creates a new HTTP API handler.
func NewTodoHandler(todoService *todo.Service) *TodoHandler {
	return &TodoHandler{todoService: todoService}
}

// NewRouter creates the API router with every todo route mounted.
// Both production code and tests should use this function to ensure identical behavior.
func NewRouter(todoService *todo.Service) http.Handler {
	h := NewTodoHandler(todoService)

	r := chi.NewRouter()
	r.Route("/todos", func(r chi.Router) {
		r.Get("/", h.ListTodos)
		r.Post("/", h.CreateTodo)
		r.Get("/groups/{dimension}", h.GroupTodos)
		r.Get("/{id}", h.GetTodo)
		r.Delete("/{id}", h.DeleteTodo)
	})

	// Fixed-dimension grouping routes.
	r.Get("/TodoByOwner", h.groupBy(domain.DimensionOwner))
	r.Get("/TodoByStatus", h.groupBy(domain.DimensionStatus))
	r.Get("/TodoByCategory", h.groupBy(domain.DimensionCategory))

	return r
}
