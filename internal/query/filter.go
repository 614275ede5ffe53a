package query

import "github.com/rezkam/todos/internal/domain"

// filterRule compiles one recognized parameter into a clause of the filter.
type filterRule struct {
	key   string
	apply func(raw string, f *domain.Filter) error
}

// filterRules is the table CompileFilter walks. Adding a filter means adding a row.
var filterRules = []filterRule{
	{
		key: ParamOwner,
		apply: func(raw string, f *domain.Filter) error {
			f.Owner = &raw
			return nil
		},
	},
	{
		key: ParamStatus,
		apply: func(raw string, f *domain.Filter) error {
			status, err := domain.ParseStatus(raw)
			if err != nil {
				return err
			}
			f.Status = &status
			return nil
		},
	},
	{
		key: ParamCategory,
		apply: func(raw string, f *domain.Filter) error {
			f.Category = &raw
			return nil
		},
	},
	{
		key: ParamContains,
		apply: func(raw string, f *domain.Filter) error {
			f.BodyContains = &raw
			return nil
		},
	},
}

// CompileFilter builds a Filter from the recognized parameters present in p.
// Unrecognized parameters are ignored; no recognized parameter yields the match-all filter.
func CompileFilter(p Params) (domain.Filter, error) {
	var f domain.Filter
	for _, rule := range filterRules {
		if !p.Has(rule.key) {
			continue
		}
		if err := rule.apply(p.Get(rule.key), &f); err != nil {
			return domain.Filter{}, err
		}
	}
	return f, nil
}
