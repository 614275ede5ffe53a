package domain

// Todo is a single stored todo record.
// ID is assigned by the store on insert and never changes afterwards.
type Todo struct {
	ID       string
	Owner    string
	Status   bool // true = complete
	Body     string
	Category string
}

// NewTodo validates the fields of a candidate record, in order owner, body, category.
// The first failing field is reported; the returned Todo has no ID yet.
func NewTodo(owner string, status bool, body, category string) (*Todo, error) {
	o, err := NewOwner(owner)
	if err != nil {
		return nil, err
	}
	b, err := NewBody(body)
	if err != nil {
		return nil, err
	}
	c, err := NewCategory(category)
	if err != nil {
		return nil, err
	}

	return &Todo{
		Owner:    o.String(),
		Status:   status,
		Body:     b.String(),
		Category: c.String(),
	}, nil
}

// Member is the projection of a todo kept inside a grouped summary.
type Member struct {
	ID    string
	Owner string
}

// Summary is the per-value aggregate of a grouping dimension.
//
// Key is the dimension value as text. For DimensionStatus it is "false" or "true",
// whose textual order matches boolean order.
type Summary struct {
	Key     string
	Count   int
	Members []Member
}
