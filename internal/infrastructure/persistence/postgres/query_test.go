package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/todos/internal/domain"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestBuildWhere(t *testing.T) {
	testCases := []struct {
		name      string
		filter    domain.Filter
		wantWhere string
		wantArgs  []any
	}{
		{"no clauses", domain.Filter{}, "", nil},
		{"owner", domain.Filter{Owner: strPtr("Jimmy")}, " WHERE owner = $1", []any{"Jimmy"}},
		{
			"all clauses in order",
			domain.Filter{Owner: strPtr("Fry"), Status: boolPtr(true), Category: strPtr("homework"), BodyContains: strPtr("50%_off")},
			" WHERE owner = $1 AND status = $2 AND category = $3 AND strpos(lower(body), lower($4)) > 0",
			[]any{"Fry", true, "homework", "50%_off"},
		},
		{"status only", domain.Filter{Status: boolPtr(false)}, " WHERE status = $1", []any{false}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			where, args := buildWhere(tc.filter)
			assert.Equal(t, tc.wantWhere, where)
			assert.Equal(t, tc.wantArgs, args)
		})
	}
}

func TestBuildOrderBy(t *testing.T) {
	assert.Equal(t, ` ORDER BY owner COLLATE "C" ASC, id ASC`, buildOrderBy(domain.Sort{Field: domain.FieldOwner, Direction: domain.SortAsc}))
	assert.Equal(t, ` ORDER BY status DESC, id ASC`, buildOrderBy(domain.Sort{Field: domain.FieldStatus, Direction: domain.SortDesc}))
	assert.Equal(t, ` ORDER BY id DESC`, buildOrderBy(domain.Sort{Field: domain.FieldID, Direction: domain.SortDesc}))
	assert.Equal(t, ` ORDER BY id ASC`, buildOrderBy(domain.Sort{Field: "owner; DROP TABLE todos"}))
}

func TestBuildGroupQuery(t *testing.T) {
	sql, err := buildGroupQuery(domain.GroupQuery{
		Dimension: domain.DimensionStatus,
		Sort:      domain.GroupSort{By: domain.GroupSortByCount, Direction: domain.SortDesc},
	})
	require.NoError(t, err)
	assert.Contains(t, sql, "CASE WHEN status THEN 'true' ELSE 'false' END AS key")
	assert.Contains(t, sql, `ORDER BY count(*) DESC, key COLLATE "C" ASC`)

	sql, err = buildGroupQuery(domain.GroupQuery{Dimension: domain.DimensionCategory})
	require.NoError(t, err)
	assert.Contains(t, sql, "SELECT category AS key")
	assert.Contains(t, sql, `ORDER BY key COLLATE "C" ASC`)

	_, err = buildGroupQuery(domain.GroupQuery{Dimension: "body"})
	assert.Error(t, err)
}
