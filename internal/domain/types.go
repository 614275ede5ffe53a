package domain

import "fmt"

// Record field names. They double as document keys and sortable field names.
const (
	FieldID       = "_id"
	FieldOwner    = "owner"
	FieldStatus   = "status"
	FieldBody     = "body"
	FieldCategory = "category"
)

// Dimension is a field todos can be grouped by.
type Dimension string

const (
	DimensionOwner    Dimension = FieldOwner
	DimensionStatus   Dimension = FieldStatus
	DimensionCategory Dimension = FieldCategory
)

// Dimensions lists every supported grouping dimension.
var Dimensions = []Dimension{DimensionOwner, DimensionStatus, DimensionCategory}

// ParseDimension validates a grouping dimension name.
func ParseDimension(s string) (Dimension, error) {
	switch d := Dimension(s); d {
	case DimensionOwner, DimensionStatus, DimensionCategory:
		return d, nil
	default:
		return "", NewValidationError("dimension", s, fmt.Errorf("must be one of owner, status or category"))
	}
}

// Field returns the record field the dimension partitions on.
func (d Dimension) Field() string {
	return string(d)
}

// SortDirection is the order applied to a sort field.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Descending reports whether d orders from largest to smallest.
func (d SortDirection) Descending() bool {
	return d == SortDesc
}

// Sort is a resolved record ordering. Ties are broken by ID ascending.
type Sort struct {
	Field     string // one of the Field* constants
	Direction SortDirection
}

// GroupSortKey selects the summary attribute grouped results are ordered by.
type GroupSortKey string

const (
	GroupSortByKey   GroupSortKey = "key"
	GroupSortByCount GroupSortKey = "count"
)

// GroupSort is a resolved summary ordering. Count ties are broken by key ascending.
type GroupSort struct {
	By        GroupSortKey
	Direction SortDirection
}

// Filter selects todos. Nil fields are absent; present fields combine with AND.
// The zero Filter matches every todo.
type Filter struct {
	Owner        *string // exact match
	Status       *bool
	Category     *string // exact match
	BodyContains *string // case-insensitive literal substring of Body
}

// ListQuery contains the compiled parameters of a list request.
//
// Limit is only meaningful when HasLimit is true; otherwise every matching todo is returned.
type ListQuery struct {
	Filter   Filter
	Sort     Sort
	Limit    int
	HasLimit bool
}

// GroupQuery contains the compiled parameters of a grouped request.
type GroupQuery struct {
	Dimension Dimension
	Sort      GroupSort
}
