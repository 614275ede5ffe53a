package handler

import (
	"bytes"
	"encoding/json"

	"github.com/rezkam/todos/internal/application/todo"
	"github.com/rezkam/todos/internal/domain"
)

// TodoDTO is the wire form of a todo.
type TodoDTO struct {
	ID       string `json:"_id"`
	Owner    string `json:"owner"`
	Status   bool   `json:"status"`
	Body     string `json:"body"`
	Category string `json:"category"`
}

// MemberDTO is the wire form of a todo inside a grouped summary.
type MemberDTO struct {
	ID    string `json:"_id"`
	Owner string `json:"owner"`
}

// SummaryDTO is the wire form of a grouped summary.
// Key is a JSON boolean for the status dimension and a string otherwise.
type SummaryDTO struct {
	Key   any         `json:"_id"`
	Count int         `json:"count"`
	Todos []MemberDTO `json:"todos"`
}

// CreateTodoRequest is the body of POST /api/todos.
// Fields are kept raw so a value of the wrong JSON type is reported against its
// field, in the same order as the other validation failures.
type CreateTodoRequest struct {
	Owner    json.RawMessage `json:"owner"`
	Status   json.RawMessage `json:"status"`
	Body     json.RawMessage `json:"body"`
	Category json.RawMessage `json:"category"`
}

// CreateTodoResponse carries the identity assigned to a new todo.
type CreateTodoResponse struct {
	ID string `json:"id"`
}

var jsonNull = []byte("null")

// input decodes and validates the request in order owner, status, body, category
// and returns the first failure.
func (req CreateTodoRequest) input() (todo.CreateTodoInput, error) {
	var in todo.CreateTodoInput
	var err error

	if in.Owner, err = stringField(domain.FieldOwner, req.Owner); err != nil {
		return in, err
	}
	if _, err := domain.NewOwner(in.Owner); err != nil {
		return in, err
	}

	if in.Status, err = req.status(); err != nil {
		return in, err
	}

	if in.Body, err = stringField(domain.FieldBody, req.Body); err != nil {
		return in, err
	}
	if _, err := domain.NewBody(in.Body); err != nil {
		return in, err
	}

	if in.Category, err = stringField(domain.FieldCategory, req.Category); err != nil {
		return in, err
	}
	if _, err := domain.NewCategory(in.Category); err != nil {
		return in, err
	}
	return in, nil
}

// stringField decodes a string field. Absent and null both read as empty.
func stringField(name string, raw json.RawMessage) (string, error) {
	if len(raw) == 0 || bytes.Equal(raw, jsonNull) {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", domain.NewValidationError(name, string(raw), domain.ErrNotString)
	}
	return s, nil
}

// status decodes the status field. An absent field means incomplete.
func (req CreateTodoRequest) status() (bool, error) {
	if len(req.Status) == 0 {
		return false, nil
	}

	var b bool
	if bytes.Equal(req.Status, jsonNull) || json.Unmarshal(req.Status, &b) != nil {
		return false, domain.NewValidationError(domain.FieldStatus, string(req.Status), domain.ErrStatusNotBoolean)
	}
	return b, nil
}

// MapTodoToDTO converts domain.Todo to its wire form.
func MapTodoToDTO(t domain.Todo) TodoDTO {
	return TodoDTO{
		ID:       t.ID,
		Owner:    t.Owner,
		Status:   t.Status,
		Body:     t.Body,
		Category: t.Category,
	}
}

// MapTodosToDTO converts a todo slice. The result is never nil so it encodes as [].
func MapTodosToDTO(todos []domain.Todo) []TodoDTO {
	out := make([]TodoDTO, 0, len(todos))
	for _, t := range todos {
		out = append(out, MapTodoToDTO(t))
	}
	return out
}

// MapSummariesToDTO converts grouped summaries for dim.
func MapSummariesToDTO(summaries []domain.Summary, dim domain.Dimension) []SummaryDTO {
	out := make([]SummaryDTO, 0, len(summaries))
	for _, s := range summaries {
		members := make([]MemberDTO, 0, len(s.Members))
		for _, m := range s.Members {
			members = append(members, MemberDTO{ID: m.ID, Owner: m.Owner})
		}
		out = append(out, SummaryDTO{
			Key:   summaryKey(s.Key, dim),
			Count: s.Count,
			Todos: members,
		})
	}
	return out
}

func summaryKey(key string, dim domain.Dimension) any {
	if dim == domain.DimensionStatus {
		return key == domain.StatusKey(true)
	}
	return key
}
