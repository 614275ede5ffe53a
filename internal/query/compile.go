package query

import (
	"strconv"

	"github.com/rezkam/todos/internal/domain"
)

// ParseLimit reads the limit parameter. present is false when the caller gave none.
// A present limit must be a positive integer.
func ParseLimit(p Params) (limit int, present bool, err error) {
	if !p.Has(ParamLimit) {
		return 0, false, nil
	}

	raw := p.Get(ParamLimit)
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, true, domain.NewValidationError(ParamLimit, raw, domain.ErrInvalidLimit)
	}
	return n, true, nil
}

// BuildListQuery compiles filter, sort and limit parameters for a list request.
// Validation failures are returned before any store is queried.
func BuildListQuery(p Params) (domain.ListQuery, error) {
	filter, err := CompileFilter(p)
	if err != nil {
		return domain.ListQuery{}, err
	}

	limit, hasLimit, err := ParseLimit(p)
	if err != nil {
		return domain.ListQuery{}, err
	}

	return domain.ListQuery{
		Filter:   filter,
		Sort:     ResolveSort(p),
		Limit:    limit,
		HasLimit: hasLimit,
	}, nil
}

// BuildGroupQuery compiles sort parameters for a request grouped by dim.
func BuildGroupQuery(p Params, dim domain.Dimension) domain.GroupQuery {
	return domain.GroupQuery{
		Dimension: dim,
		Sort:      ResolveGroupSort(p, dim),
	}
}
