package query

import (
	"log/slog"

	"github.com/rezkam/todos/internal/domain"
)

// Lowercase spellings accepted for the list endpoint's sort parameters.
const (
	paramSortByAlias    = "sortby"
	paramSortOrderAlias = "sortorder"
)

// DefaultSortField is the field lists are ordered by when sortBy is absent or unknown.
const DefaultSortField = domain.FieldOwner

var sortableFields = map[string]bool{
	domain.FieldID:       true,
	domain.FieldOwner:    true,
	domain.FieldStatus:   true,
	domain.FieldBody:     true,
	domain.FieldCategory: true,
}

// ResolveSort resolves sortBy and sortOrder into a record ordering.
// Unknown fields and directions fall back to the defaults instead of failing.
func ResolveSort(p Params) domain.Sort {
	field, _ := lookup(p, ParamSortBy, paramSortByAlias)
	if !sortableFields[field] {
		field = DefaultSortField
	}
	return domain.Sort{
		Field:     field,
		Direction: resolveDirection(p),
	}
}

// ResolveGroupSort resolves sortBy and sortOrder for summaries grouped by dim.
//
// Summaries only carry a key and a count, so the dimension's own field name and the
// identity names address the key, and sortBy=count addresses the count. Any other
// field no longer exists after grouping and falls back to the key.
func ResolveGroupSort(p Params, dim domain.Dimension) domain.GroupSort {
	sortBy, _ := lookup(p, ParamSortBy, paramSortByAlias)

	var by domain.GroupSortKey
	switch sortBy {
	case string(domain.GroupSortByCount):
		by = domain.GroupSortByCount
	case "", domain.FieldID, "id", string(domain.GroupSortByKey), dim.Field():
		by = domain.GroupSortByKey
	default:
		slog.Debug("sort field not addressable after grouping, ordering by key",
			"sort_by", sortBy,
			"dimension", dim)
		by = domain.GroupSortByKey
	}
	return domain.GroupSort{
		By:        by,
		Direction: resolveDirection(p),
	}
}

func resolveDirection(p Params) domain.SortDirection {
	order, _ := lookup(p, ParamSortOrder, paramSortOrderAlias)
	if order == string(domain.SortDesc) {
		return domain.SortDesc
	}
	return domain.SortAsc
}
