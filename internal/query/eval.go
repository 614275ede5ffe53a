package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/rezkam/todos/internal/domain"
)

// Match reports whether t satisfies every clause of f.
func Match(t domain.Todo, f domain.Filter) bool {
	if f.Owner != nil && t.Owner != *f.Owner {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Category != nil && t.Category != *f.Category {
		return false
	}
	if f.BodyContains != nil && !containsFold(t.Body, *f.BodyContains) {
		return false
	}
	return true
}

// containsFold is a case-insensitive literal substring test.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Apply returns the todos matching f ordered by s. The input slice is not modified.
func Apply(todos []domain.Todo, f domain.Filter, s domain.Sort) []domain.Todo {
	out := make([]domain.Todo, 0, len(todos))
	for _, t := range todos {
		if Match(t, f) {
			out = append(out, t)
		}
	}
	SortTodos(out, s)
	return out
}

// SortTodos orders todos in place by s, breaking ties by ID ascending.
func SortTodos(todos []domain.Todo, s domain.Sort) {
	slices.SortStableFunc(todos, func(a, b domain.Todo) int {
		c := compareField(a, b, s.Field)
		if s.Direction.Descending() {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func compareField(a, b domain.Todo, field string) int {
	switch field {
	case domain.FieldOwner:
		return cmp.Compare(a.Owner, b.Owner)
	case domain.FieldStatus:
		return compareBool(a.Status, b.Status)
	case domain.FieldBody:
		return cmp.Compare(a.Body, b.Body)
	case domain.FieldCategory:
		return cmp.Compare(a.Category, b.Category)
	default:
		return cmp.Compare(a.ID, b.ID)
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// GroupKey returns the value of dim for t, rendered as a summary key.
func GroupKey(t domain.Todo, dim domain.Dimension) string {
	switch dim {
	case domain.DimensionStatus:
		return domain.StatusKey(t.Status)
	case domain.DimensionCategory:
		return t.Category
	default:
		return t.Owner
	}
}

// Group partitions todos by dim and orders the partitions by s.
// Members keep the order of the input slice; only values present in todos produce a summary.
func Group(todos []domain.Todo, dim domain.Dimension, s domain.GroupSort) []domain.Summary {
	index := make(map[string]int)
	summaries := make([]domain.Summary, 0)

	for _, t := range todos {
		key := GroupKey(t, dim)
		i, ok := index[key]
		if !ok {
			i = len(summaries)
			index[key] = i
			summaries = append(summaries, domain.Summary{Key: key})
		}
		summaries[i].Count++
		summaries[i].Members = append(summaries[i].Members, domain.Member{ID: t.ID, Owner: t.Owner})
	}

	SortSummaries(summaries, s)
	return summaries
}

// SortSummaries orders summaries in place by s. Count ties are broken by key ascending.
func SortSummaries(summaries []domain.Summary, s domain.GroupSort) {
	slices.SortStableFunc(summaries, func(a, b domain.Summary) int {
		var c int
		if s.By == domain.GroupSortByCount {
			c = cmp.Compare(a.Count, b.Count)
		} else {
			c = cmp.Compare(a.Key, b.Key)
		}
		if s.Direction.Descending() {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
}

// Truncate drops the tail of todos so at most limit remain.
func Truncate(todos []domain.Todo, limit int) []domain.Todo {
	if limit < 0 {
		limit = 0
	}
	if len(todos) > limit {
		return todos[:limit]
	}
	return todos
}
