// Package query compiles caller-supplied request parameters into domain queries
// and evaluates those queries in process for stores without a native query engine.
package query

import "net/url"

// Request parameter names.
const (
	ParamOwner     = "owner"
	ParamStatus    = "status"
	ParamCategory  = "category"
	ParamContains  = "contains"
	ParamLimit     = "limit"
	ParamSortBy    = "sortBy"
	ParamSortOrder = "sortOrder"
)

// Params is a source of named string parameters.
type Params interface {
	// Has reports whether the parameter was supplied, even if empty.
	Has(key string) bool
	// Get returns the parameter value, or "" when absent.
	Get(key string) string
}

// Values adapts url.Values. Only the first value of a repeated key is used.
type Values url.Values

// FromValues wraps HTTP query values as Params.
func FromValues(v url.Values) Values {
	return Values(v)
}

func (v Values) Has(key string) bool {
	_, ok := v[key]
	return ok
}

func (v Values) Get(key string) string {
	return url.Values(v).Get(key)
}

// Map is a Params backed by a plain map, handy for CLIs and tests.
type Map map[string]string

func (m Map) Has(key string) bool {
	_, ok := m[key]
	return ok
}

func (m Map) Get(key string) string {
	return m[key]
}

// lookup returns the first present key among aliases.
func lookup(p Params, keys ...string) (string, bool) {
	for _, k := range keys {
		if p.Has(k) {
			return p.Get(k), true
		}
	}
	return "", false
}
