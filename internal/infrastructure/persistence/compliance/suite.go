// Package compliance holds the behavioral test suite every todo store must pass.
package compliance

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/todos/internal/application/todo"
	"github.com/rezkam/todos/internal/domain"
)

// Harness describes a store under test.
type Harness struct {
	// Setup returns a fresh, empty store and a teardown func.
	Setup func(t *testing.T) (todo.Repository, func())

	// MissingID returns a well-formed identity that no stored todo has.
	MissingID func() string

	// MalformedID is an identity the store must reject as ErrInvalidID.
	MalformedID string
}

// Seed is the four-record data set shared by the scenario tests.
var Seed = []domain.Todo{
	{Owner: "Chris", Status: false, Body: "In sunt ex non tempor cillum commodo amet incididunt anim qui commodo quis.", Category: "software design"},
	{Owner: "Fry", Status: true, Body: "Ullamco irure laborum magna dolor non. Anim occaecat adipisicing cillum eu magna in.", Category: "homework"},
	{Owner: "Jill", Status: false, Body: "this is a potatoman", Category: "beat villans"},
	{Owner: "Jimmy", Status: false, Body: "Jimmy shall climb Mt. Everest and make a delicious pie", Category: "jimmy things"},
}

// seed inserts Seed in order and returns the assigned IDs keyed by owner.
func seed(t *testing.T, ctx context.Context, repo todo.Repository) map[string]string {
	t.Helper()

	ids := make(map[string]string, len(Seed))
	for _, s := range Seed {
		rec := s
		id, err := repo.CreateTodo(ctx, &rec)
		require.NoError(t, err)
		require.NotEmpty(t, id)
		ids[s.Owner] = id
	}
	return ids
}

func owners(todos []domain.Todo) []string {
	out := make([]string, len(todos))
	for i, t := range todos {
		out[i] = t.Owner
	}
	return out
}

func keys(summaries []domain.Summary) []string {
	out := make([]string, len(summaries))
	for i, s := range summaries {
		out[i] = s.Key
	}
	return out
}

func byOwner(dir domain.SortDirection) domain.Sort {
	return domain.Sort{Field: domain.FieldOwner, Direction: dir}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// Run runs the standard set of store tests against h.
func Run(t *testing.T, h Harness) {
	t.Run("CreateAndFind", func(t *testing.T) {
		repo, teardown := h.Setup(t)
		defer teardown()
		ctx := context.Background()

		in := &domain.Todo{Owner: "Ana", Status: true, Body: "write report", Category: "work"}
		id, err := repo.CreateTodo(ctx, in)
		require.NoError(t, err)
		require.NotEmpty(t, id)

		got, err := repo.FindTodoByID(ctx, id)
		require.NoError(t, err)
		want := &domain.Todo{ID: id, Owner: "Ana", Status: true, Body: "write report", Category: "work"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("FindTodoByID() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("CreateAssignsDistinctIDs", func(t *testing.T) {
		repo, teardown := h.Setup(t)
		defer teardown()
		ctx := context.Background()

		ids := seed(t, ctx, repo)
		seen := make(map[string]bool)
		for _, id := range ids {
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	})

	t.Run("FindMissing", func(t *testing.T) {
		repo, teardown := h.Setup(t)
		defer teardown()

		_, err := repo.FindTodoByID(context.Background(), h.MissingID())
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrTodoNotFound)
	})

	t.Run("FindMalformedID", func(t *testing.T) {
		repo, teardown := h.Setup(t)
		defer teardown()

		_, err := repo.FindTodoByID(context.Background(), h.MalformedID)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidID)
		assert.NotErrorIs(t, err, domain.ErrNotFound)

		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "id", ve.Param)
		assert.Equal(t, h.MalformedID, ve.Value)
	})

	t.Run("EmptyStore", func(t *testing.T) {
		repo, teardown := h.Setup(t)
		defer teardown()
		ctx := context.Background()

		todos, err := repo.FindTodos(ctx, domain.Filter{}, byOwner(domain.SortAsc))
		require.NoError(t, err)
		assert.Empty(t, todos)

		for _, dim := range domain.Dimensions {
			summaries, err := repo.GroupTodos(ctx, domain.GroupQuery{Dimension: dim})
			require.NoError(t, err)
			assert.Empty(t, summaries)
		}

		n, err := repo.CountTodos(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("Filter", func(t *testing.T) {
		repo, teardown := h.Setup(t)
		defer teardown()
		ctx := context.Background()
		seed(t, ctx, repo)

		testCases := []struct {
			name     string
			filter   domain.Filter
			expected []string
		}{
			{"no clauses", domain.Filter{}, []string{"Chris", "Fry", "Jill", "Jimmy"}},
			{"owner", domain.Filter{Owner: strPtr("Jimmy")}, []string{"Jimmy"}},
			{"owner is not a prefix match", domain.Filter{Owner: strPtr("Jim")}, []string{}},
			{"complete", domain.Filter{Status: boolPtr(true)}, []string{"Fry"}},
			{"incomplete", domain.Filter{Status: boolPtr(false)}, []string{"Chris", "Jill", "Jimmy"}},
			{"category", domain.Filter{Category: strPtr("homework")}, []string{"Fry"}},
			{"contains ignores case", domain.Filter{BodyContains: strPtr("POTATO")}, []string{"Jill"}},
			{"contains literal dot", domain.Filter{BodyContains: strPtr("Mt. Everest")}, []string{"Jimmy"}},
			{"contains regex is not a pattern", domain.Filter{BodyContains: strPtr("Mt.*pie")}, []string{}},
			{"contains anchors are literal", domain.Filter{BodyContains: strPtr("^this")}, []string{}},
			{"clauses combine", domain.Filter{Status: boolPtr(false), BodyContains: strPtr("a")}, []string{"Chris", "Jill", "Jimmy"}},
			{"no match", domain.Filter{Status: boolPtr(true), Owner: strPtr("Jill")}, []string{}},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				todos, err := repo.FindTodos(ctx, tc.filter, byOwner(domain.SortAsc))
				require.NoError(t, err)
				if diff := cmp.Diff(tc.expected, owners(todos)); diff != "" {
					t.Errorf("FindTodos() mismatch (-want +got):\n%s", diff)
				}
			})
		}
	})

	t.Run("ContainsFoldsUnicode", func(t *testing.T) {
		repo, teardown := h.Setup(t)
		defer teardown()
		ctx := context.Background()

		for _, rec := range []domain.Todo{
			{Owner: "Anna", Body: "ÄPFEL kaufen", Category: "errands"},
			{Owner: "Bea", Body: "Grüße an Émile", Category: "errands"},
		} {
			_, err := repo.CreateTodo(ctx, &rec)
			require.NoError(t, err)
		}

		testCases := []struct {
			name     string
			contains string
			expected []string
		}{
			{"lower query, upper body", "äpfel", []string{"ÄPFEL kaufen"}},
			{"upper query, lower body", "GRÜ", []string{"Grüße an Émile"}},
			{"accented capital", "émile", []string{"Grüße an Émile"}},
			{"folding does not strip accents", "apfel", []string{}},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				todos, err := repo.FindTodos(ctx, domain.Filter{BodyContains: strPtr(tc.contains)}, byOwner(domain.SortAsc))
				require.NoError(t, err)
				bodies := make([]string, 0, len(todos))
				for _, todo := range todos {
					bodies = append(bodies, todo.Body)
				}
				if diff := cmp.Diff(tc.expected, bodies); diff != "" {
					t.Errorf("FindTodos() mismatch (-want +got):\n%s", diff)
				}
			})
		}
	})

	t.Run("Sort", func(t *testing.T) {
		repo, teardown := h.Setup(t)
		defer teardown()
		ctx := context.Background()
		seed(t, ctx, repo)

		testCases := []struct {
			name     string
			sort     domain.Sort
			expected []string
		}{
			{"owner asc", byOwner(domain.SortAsc), []string{"Chris", "Fry", "Jill", "Jimmy"}},
			{"owner desc", byOwner(domain.SortDesc), []string{"Jimmy", "Jill", "Fry", "Chris"}},
			{"category asc", domain.Sort{Field: domain.FieldCategory, Direction: domain.SortAsc}, []string{"Jill", "Fry", "Jimmy", "Chris"}},
			{"status asc ties by insertion", domain.Sort{Field: domain.FieldStatus, Direction: domain.SortAsc}, []string{"Chris", "Jill", "Jimmy", "Fry"}},
			{"status desc", domain.Sort{Field: domain.FieldStatus, Direction: domain.SortDesc}, []string{"Fry", "Chris", "Jill", "Jimmy"}},
			{"identity", domain.Sort{Field: domain.FieldID, Direction: domain.SortAsc}, []string{"Chris", "Fry", "Jill", "Jimmy"}},
			{"identity desc", domain.Sort{Field: domain.FieldID, Direction: domain.SortDesc}, []string{"Jimmy", "Jill", "Fry", "Chris"}},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				todos, err := repo.FindTodos(ctx, domain.Filter{}, tc.sort)
				require.NoError(t, err)
				if diff := cmp.Diff(tc.expected, owners(todos)); diff != "" {
					t.Errorf("FindTodos() mismatch (-want +got):\n%s", diff)
				}
			})
		}
	})

	t.Run("GroupByStatus", func(t *testing.T) {
		repo, teardown := h.Setup(t)
		defer teardown()
		ctx := context.Background()
		ids := seed(t, ctx, repo)

		summaries, err := repo.GroupTodos(ctx, domain.GroupQuery{
			Dimension: domain.DimensionStatus,
			Sort:      domain.GroupSort{By: domain.GroupSortByKey, Direction: domain.SortAsc},
		})
		require.NoError(t, err)

		want := []domain.Summary{
			{Key: "false", Count: 3, Members: []domain.Member{
				{ID: ids["Chris"], Owner: "Chris"},
				{ID: ids["Jill"], Owner: "Jill"},
				{ID: ids["Jimmy"], Owner: "Jimmy"},
			}},
			{Key: "true", Count: 1, Members: []domain.Member{{ID: ids["Fry"], Owner: "Fry"}}},
		}
		if diff := cmp.Diff(want, summaries); diff != "" {
			t.Errorf("GroupTodos() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("GroupOrdering", func(t *testing.T) {
		repo, teardown := h.Setup(t)
		defer teardown()
		ctx := context.Background()
		seed(t, ctx, repo)
		extra := &domain.Todo{Owner: "Fry", Status: false, Body: "second", Category: "homework"}
		_, err := repo.CreateTodo(ctx, extra)
		require.NoError(t, err)

		testCases := []struct {
			name     string
			q        domain.GroupQuery
			expected []string
		}{
			{"owner by key desc", domain.GroupQuery{Dimension: domain.DimensionOwner, Sort: domain.GroupSort{By: domain.GroupSortByKey, Direction: domain.SortDesc}}, []string{"Jimmy", "Jill", "Fry", "Chris"}},
			{"owner by count desc", domain.GroupQuery{Dimension: domain.DimensionOwner, Sort: domain.GroupSort{By: domain.GroupSortByCount, Direction: domain.SortDesc}}, []string{"Fry", "Chris", "Jill", "Jimmy"}},
			{"category by key asc", domain.GroupQuery{Dimension: domain.DimensionCategory, Sort: domain.GroupSort{By: domain.GroupSortByKey, Direction: domain.SortAsc}}, []string{"beat villans", "homework", "jimmy things", "software design"}},
			{"category by count asc", domain.GroupQuery{Dimension: domain.DimensionCategory, Sort: domain.GroupSort{By: domain.GroupSortByCount, Direction: domain.SortAsc}}, []string{"beat villans", "jimmy things", "software design", "homework"}},
			{"status by key desc", domain.GroupQuery{Dimension: domain.DimensionStatus, Sort: domain.GroupSort{By: domain.GroupSortByKey, Direction: domain.SortDesc}}, []string{"true", "false"}},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				summaries, err := repo.GroupTodos(ctx, tc.q)
				require.NoError(t, err)
				if diff := cmp.Diff(tc.expected, keys(summaries)); diff != "" {
					t.Errorf("GroupTodos() mismatch (-want +got):\n%s", diff)
				}
			})
		}
	})

	t.Run("GroupPartitionsEveryTodo", func(t *testing.T) {
		repo, teardown := h.Setup(t)
		defer teardown()
		ctx := context.Background()
		ids := seed(t, ctx, repo)

		for _, dim := range domain.Dimensions {
			t.Run(string(dim), func(t *testing.T) {
				summaries, err := repo.GroupTodos(ctx, domain.GroupQuery{Dimension: dim})
				require.NoError(t, err)

				seen := make(map[string]int)
				total := 0
				for _, s := range summaries {
					assert.Equal(t, s.Count, len(s.Members))
					total += s.Count
					for _, m := range s.Members {
						seen[m.ID]++
					}
				}
				assert.Equal(t, len(ids), total)
				for owner, id := range ids {
					assert.Equal(t, 1, seen[id], "todo of %s must be in exactly one group", owner)
				}
			})
		}
	})

	t.Run("Count", func(t *testing.T) {
		repo, teardown := h.Setup(t)
		defer teardown()
		ctx := context.Background()
		seed(t, ctx, repo)

		n, err := repo.CountTodos(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(len(Seed)), n)
	})

	t.Run("Delete", func(t *testing.T) {
		repo, teardown := h.Setup(t)
		defer teardown()
		ctx := context.Background()
		ids := seed(t, ctx, repo)

		deleted, err := repo.DeleteTodo(ctx, ids["Jill"])
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		_, err = repo.FindTodoByID(ctx, ids["Jill"])
		assert.ErrorIs(t, err, domain.ErrTodoNotFound)

		deleted, err = repo.DeleteTodo(ctx, ids["Jill"])
		require.NoError(t, err)
		assert.Zero(t, deleted)

		n, err := repo.CountTodos(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(len(Seed)-1), n)

		todos, err := repo.FindTodos(ctx, domain.Filter{}, byOwner(domain.SortAsc))
		require.NoError(t, err)
		assert.Equal(t, []string{"Chris", "Fry", "Jimmy"}, owners(todos))
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		repo, teardown := h.Setup(t)
		defer teardown()

		deleted, err := repo.DeleteTodo(context.Background(), h.MissingID())
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})

	t.Run("DeleteMalformedID", func(t *testing.T) {
		repo, teardown := h.Setup(t)
		defer teardown()

		_, err := repo.DeleteTodo(context.Background(), h.MalformedID)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidID)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}
