package domain

import (
	"strconv"
	"strings"
)

// Owner is a validated, non-empty owner name.
type Owner struct {
	value string
}

// NewOwner creates a new Owner, validating the input.
func NewOwner(s string) (Owner, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return Owner{}, NewValidationError(FieldOwner, s, ErrOwnerRequired)
	}
	return Owner{value: v}, nil
}

// String returns the owner value.
func (o Owner) String() string {
	return o.value
}

// Body is validated, non-empty free text.
type Body struct {
	value string
}

// NewBody creates a new Body, validating the input.
func NewBody(s string) (Body, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return Body{}, NewValidationError(FieldBody, s, ErrBodyRequired)
	}
	return Body{value: v}, nil
}

// String returns the body value.
func (b Body) String() string {
	return b.value
}

// Category is a validated, non-empty category name.
type Category struct {
	value string
}

// NewCategory creates a new Category, validating the input.
func NewCategory(s string) (Category, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return Category{}, NewValidationError(FieldCategory, s, ErrCategoryRequired)
	}
	return Category{value: v}, nil
}

// String returns the category value.
func (c Category) String() string {
	return c.value
}

// Status query tokens.
const (
	StatusComplete   = "complete"
	StatusIncomplete = "incomplete"
)

// ParseStatus maps the case-insensitive tokens "complete" and "incomplete" to the status flag.
func ParseStatus(s string) (bool, error) {
	switch strings.ToLower(s) {
	case StatusComplete:
		return true, nil
	case StatusIncomplete:
		return false, nil
	default:
		return false, NewValidationError(FieldStatus, s, ErrInvalidStatus)
	}
}

// StatusKey renders a status flag as a group key.
func StatusKey(status bool) string {
	return strconv.FormatBool(status)
}
