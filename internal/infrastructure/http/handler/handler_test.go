package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rezkam/todos/internal/application/todo"
	"github.com/rezkam/todos/internal/infrastructure/http/response"
	"github.com/rezkam/todos/internal/infrastructure/persistence/fs"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	router http.Handler
	svc    *todo.Service
	ids    map[string]string // owner -> id
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := fs.NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc := todo.NewService(store)
	f := &fixture{router: NewRouter(svc), svc: svc, ids: map[string]string{}}

	for _, in := range []todo.CreateTodoInput{
		{Owner: "Chris", Status: false, Body: "software design", Category: "software design"},
		{Owner: "Fry", Status: true, Body: "homework", Category: "homework"},
		{Owner: "Jill", Status: false, Body: "this is a potatoman", Category: "beat villans"},
		{Owner: "Jimmy", Status: false, Body: "Jimmy shall climb Mt. Everest and make a delicious pie", Category: "jimmy things"},
	} {
		id, err := svc.CreateTodo(context.Background(), in)
		require.NoError(t, err)
		f.ids[in.Owner] = id
	}
	return f
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func owners(todos []TodoDTO) []string {
	out := make([]string, 0, len(todos))
	for _, t := range todos {
		out = append(out, t.Owner)
	}
	return out
}

func TestListTodos(t *testing.T) {
	f := newFixture(t)

	testCases := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "no parameters returns everything by owner", query: "", want: []string{"Chris", "Fry", "Jill", "Jimmy"}},
		{name: "owner", query: "?owner=Jill", want: []string{"Jill"}},
		{name: "status complete", query: "?status=complete", want: []string{"Fry"}},
		{name: "status is case-insensitive", query: "?status=InComplete", want: []string{"Chris", "Jill", "Jimmy"}},
		{name: "category", query: "?category=homework", want: []string{"Fry"}},
		{name: "contains is case-insensitive", query: "?contains=POTATO", want: []string{"Jill"}},
		{name: "contains treats dot literally", query: "?contains=Mt.", want: []string{"Jimmy"}},
		{name: "no match", query: "?owner=Nobody", want: []string{}},
		{name: "filters combine", query: "?status=incomplete&category=homework", want: []string{}},
		{name: "descending", query: "?sortBy=owner&sortOrder=desc", want: []string{"Jimmy", "Jill", "Fry", "Chris"}},
		{name: "lowercase aliases", query: "?sortby=category&sortorder=asc", want: []string{"Jill", "Fry", "Jimmy", "Chris"}},
		{name: "unknown sort field falls back to owner", query: "?sortBy=priority", want: []string{"Chris", "Fry", "Jill", "Jimmy"}},
		{name: "limit keeps the prefix", query: "?limit=2", want: []string{"Chris", "Fry"}},
		{name: "limit above total", query: "?limit=40", want: []string{"Chris", "Fry", "Jill", "Jimmy"}},
		{name: "limit after sort and filter", query: "?status=incomplete&sortOrder=desc&limit=2", want: []string{"Jimmy", "Jill"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := f.do(t, http.MethodGet, "/todos"+tc.query, "")

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tc.want, owners(decode[[]TodoDTO](t, w)))
		})
	}
}

func TestListTodos_RejectsBadParameters(t *testing.T) {
	f := newFixture(t)

	testCases := []struct {
		name  string
		query string
		field string
	}{
		{name: "status", query: "?status=done", field: "status"},
		{name: "zero limit", query: "?limit=0", field: "limit"},
		{name: "negative limit", query: "?limit=-1", field: "limit"},
		{name: "non-numeric limit", query: "?limit=abc", field: "limit"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := f.do(t, http.MethodGet, "/todos"+tc.query, "")

			require.Equal(t, http.StatusBadRequest, w.Code)
			resp := decode[response.ErrorResponse](t, w)
			assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
			require.Len(t, resp.Error.Details, 1)
			assert.Equal(t, tc.field, resp.Error.Details[0].Field)
		})
	}
}

func TestGetTodo(t *testing.T) {
	f := newFixture(t)

	t.Run("found", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/todos/"+f.ids["Jill"], "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, TodoDTO{
			ID:       f.ids["Jill"],
			Owner:    "Jill",
			Status:   false,
			Body:     "this is a potatoman",
			Category: "beat villans",
		}, decode[TodoDTO](t, w))
	})

	t.Run("missing", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/todos/"+uuid.NewString(), "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/todos/not-an-id", "")

		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode[response.ErrorResponse](t, w)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "id", resp.Error.Details[0].Field)
		assert.Equal(t, `invalid ID format (got "not-an-id")`, resp.Error.Details[0].Issue)
	})
}

func TestGroupTodos(t *testing.T) {
	f := newFixture(t)

	t.Run("status keys are booleans", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/TodoByStatus", "")

		require.Equal(t, http.StatusOK, w.Code)
		want := `[
			{"_id": false, "count": 3, "todos": [
				{"_id": "` + f.ids["Chris"] + `", "owner": "Chris"},
				{"_id": "` + f.ids["Jill"] + `", "owner": "Jill"},
				{"_id": "` + f.ids["Jimmy"] + `", "owner": "Jimmy"}]},
			{"_id": true, "count": 1, "todos": [
				{"_id": "` + f.ids["Fry"] + `", "owner": "Fry"}]}
		]`
		assert.JSONEq(t, want, w.Body.String())
	})

	t.Run("by count descending", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/TodoByStatus?sortBy=count&sortOrder=desc", "")

		require.Equal(t, http.StatusOK, w.Code)
		groups := decode[[]SummaryDTO](t, w)
		require.Len(t, groups, 2)
		assert.Equal(t, false, groups[0].Key)
		assert.Equal(t, 3, groups[0].Count)
	})

	t.Run("owner descending", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/TodoByOwner?sortOrder=desc", "")

		require.Equal(t, http.StatusOK, w.Code)
		var keys []any
		for _, g := range decode[[]SummaryDTO](t, w) {
			keys = append(keys, g.Key)
			assert.Equal(t, g.Count, len(g.Todos))
		}
		assert.Equal(t, []any{"Jimmy", "Jill", "Fry", "Chris"}, keys)
	})

	t.Run("category", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/TodoByCategory", "")

		require.Equal(t, http.StatusOK, w.Code)
		var keys []any
		for _, g := range decode[[]SummaryDTO](t, w) {
			keys = append(keys, g.Key)
		}
		assert.Equal(t, []any{"beat villans", "homework", "jimmy things", "software design"}, keys)
	})

	t.Run("generic route matches fixed route", func(t *testing.T) {
		fixed := f.do(t, http.MethodGet, "/TodoByCategory?sortOrder=desc", "")
		generic := f.do(t, http.MethodGet, "/todos/groups/category?sortOrder=desc", "")

		require.Equal(t, http.StatusOK, generic.Code)
		assert.JSONEq(t, fixed.Body.String(), generic.Body.String())
	})

	t.Run("unknown dimension", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/todos/groups/body", "")

		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode[response.ErrorResponse](t, w)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "dimension", resp.Error.Details[0].Field)
	})
}

func TestCreateTodo(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/todos", `{"owner":"Ana","status":true,"body":"write tests","category":"work"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[CreateTodoResponse](t, w)
	require.NotEmpty(t, created.ID)

	got := f.do(t, http.MethodGet, "/todos/"+created.ID, "")
	require.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, TodoDTO{
		ID:       created.ID,
		Owner:    "Ana",
		Status:   true,
		Body:     "write tests",
		Category: "work",
	}, decode[TodoDTO](t, got))
}

func TestCreateTodo_MissingStatusIsIncomplete(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/todos", `{"owner":"Ana","body":"b","category":"c"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	got := f.do(t, http.MethodGet, "/todos/"+decode[CreateTodoResponse](t, w).ID, "")
	assert.False(t, decode[TodoDTO](t, got).Status)
}

func TestCreateTodo_Validation(t *testing.T) {
	f := newFixture(t)

	testCases := []struct {
		name  string
		body  string
		field string
	}{
		{name: "empty owner", body: `{"owner":"","status":false,"body":"b","category":"c"}`, field: "owner"},
		{name: "owner checked before status", body: `{"owner":" ","status":"yes","body":"b","category":"c"}`, field: "owner"},
		{name: "string status", body: `{"owner":"Ana","status":"true","body":"b","category":"c"}`, field: "status"},
		{name: "null status", body: `{"owner":"Ana","status":null,"body":"b","category":"c"}`, field: "status"},
		{name: "status checked before body", body: `{"owner":"Ana","status":1,"body":"","category":"c"}`, field: "status"},
		{name: "empty body", body: `{"owner":"Ana","status":false,"body":"","category":"c"}`, field: "body"},
		{name: "body checked before category", body: `{"owner":"Ana","status":false,"body":"","category":""}`, field: "body"},
		{name: "empty category", body: `{"owner":"Ana","status":false,"body":"b","category":"  "}`, field: "category"},
		{name: "numeric owner", body: `{"owner":5,"status":false,"body":"b","category":"c"}`, field: "owner"},
		{name: "null owner", body: `{"owner":null,"status":false,"body":"b","category":"c"}`, field: "owner"},
		{name: "array body", body: `{"owner":"Ana","status":false,"body":["b"],"category":"c"}`, field: "body"},
		{name: "empty body before mistyped category", body: `{"category":7,"owner":"Ana","status":false,"body":""}`, field: "body"},
		{name: "object category", body: `{"owner":"Ana","status":false,"body":"b","category":{}}`, field: "category"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/todos", tc.body)

			require.Equal(t, http.StatusBadRequest, w.Code)
			resp := decode[response.ErrorResponse](t, w)
			require.Len(t, resp.Error.Details, 1)
			assert.Equal(t, tc.field, resp.Error.Details[0].Field)
		})
	}

	// Nothing was stored by any rejected request.
	list := f.do(t, http.MethodGet, "/todos", "")
	assert.Len(t, decode[[]TodoDTO](t, list), 4)
}

func TestCreateTodo_MistypedFieldNamesValue(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/todos", `{"owner":5,"status":false,"body":"b","category":"c"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[response.ErrorResponse](t, w)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, response.ErrorField{Field: "owner", Issue: `value must be a string (got "5")`}, resp.Error.Details[0])
}

func TestCreateTodo_InvalidJSON(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/todos", `{"owner":`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decode[response.ErrorResponse](t, w).Error.Code)
}

func TestDeleteTodo(t *testing.T) {
	f := newFixture(t)
	id := f.ids["Fry"]

	w := f.do(t, http.MethodDelete, "/todos/"+id, "")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	t.Run("gone afterwards", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/todos/"+id, "").Code)
		assert.Equal(t, []string{"Chris", "Jill", "Jimmy"}, owners(decode[[]TodoDTO](t, f.do(t, http.MethodGet, "/todos", ""))))
	})

	t.Run("second delete is not found and names the id", func(t *testing.T) {
		w := f.do(t, http.MethodDelete, "/todos/"+id, "")

		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, decode[response.ErrorResponse](t, w).Error.Message, id)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := f.do(t, http.MethodDelete, "/todos/xyz", "")

		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode[response.ErrorResponse](t, w)
		require.Len(t, resp.Error.Details, 1)
		assert.Contains(t, resp.Error.Details[0].Issue, `"xyz"`)
	})
}
