package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/todos/internal/domain"
	"github.com/rezkam/todos/internal/infrastructure/http/response"
	"github.com/rezkam/todos/internal/query"
)

// GetTodo handles GET /api/todos/{id}.
func (h *TodoHandler) GetTodo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	t, err := h.todoService.GetTodo(r.Context(), id)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, MapTodoToDTO(*t))
}

// ListTodos handles GET /api/todos.
// Query parameters are validated before any store access.
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	q, err := query.BuildListQuery(query.FromValues(r.URL.Query()))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	todos, err := h.todoService.ListTodos(r.Context(), q)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, MapTodosToDTO(todos))
}

// GroupTodos handles GET /api/todos/groups/{dimension}.
func (h *TodoHandler) GroupTodos(w http.ResponseWriter, r *http.Request) {
	dim, err := domain.ParseDimension(chi.URLParam(r, "dimension"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	h.writeGroups(w, r, dim)
}

func (h *TodoHandler) groupBy(dim domain.Dimension) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.writeGroups(w, r, dim)
	}
}

func (h *TodoHandler) writeGroups(w http.ResponseWriter, r *http.Request, dim domain.Dimension) {
	q := query.BuildGroupQuery(query.FromValues(r.URL.Query()), dim)

	summaries, err := h.todoService.GroupTodos(r.Context(), q)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, MapSummariesToDTO(summaries, dim))
}

// CreateTodo handles POST /api/todos.
// Fields are checked in order owner, status, body, category; the first failure is reported.
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var req CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			response.BadRequest(w, "request body is required")
			return
		}
		response.BadRequest(w, "invalid JSON")
		return
	}

	in, err := req.input()
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	id, err := h.todoService.CreateTodo(r.Context(), in)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to create todo via HTTP",
			"owner", in.Owner,
			"error", err)
		response.FromDomainError(w, r, err)
		return
	}

	response.Created(w, CreateTodoResponse{ID: id})
}

// DeleteTodo handles DELETE /api/todos/{id}.
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.todoService.DeleteTodo(r.Context(), id); err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.NoContent(w)
}
