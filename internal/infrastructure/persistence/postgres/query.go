package postgres

import (
	"fmt"
	"strings"

	"github.com/rezkam/todos/internal/domain"
)

const selectTodos = `SELECT id::text, owner, status, body, category FROM todos`

// sortColumns maps record fields to ORDER BY expressions.
// Text columns compare bytewise so ordering does not depend on the database locale.
var sortColumns = map[string]string{
	domain.FieldID:       "id",
	domain.FieldOwner:    `owner COLLATE "C"`,
	domain.FieldStatus:   "status",
	domain.FieldBody:     `body COLLATE "C"`,
	domain.FieldCategory: `category COLLATE "C"`,
}

// groupKeys maps dimensions to the projected group key expression.
var groupKeys = map[domain.Dimension]string{
	domain.DimensionOwner:    "owner",
	domain.DimensionStatus:   "CASE WHEN status THEN 'true' ELSE 'false' END",
	domain.DimensionCategory: "category",
}

func sqlDirection(d domain.SortDirection) string {
	if d.Descending() {
		return "DESC"
	}
	return "ASC"
}

// buildWhere renders the present clauses of f as an AND-joined WHERE clause.
// The body clause matches a literal substring: strpos does no pattern interpretation.
func buildWhere(f domain.Filter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Owner != nil {
		add("owner = $%d", *f.Owner)
	}
	if f.Status != nil {
		add("status = $%d", *f.Status)
	}
	if f.Category != nil {
		add("category = $%d", *f.Category)
	}
	if f.BodyContains != nil {
		add("strpos(lower(body), lower($%d)) > 0", *f.BodyContains)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// buildOrderBy orders by s.Field then by id. Unknown fields order by id.
func buildOrderBy(s domain.Sort) string {
	col, ok := sortColumns[s.Field]
	if !ok || s.Field == domain.FieldID {
		return " ORDER BY id " + sqlDirection(s.Direction)
	}
	return fmt.Sprintf(" ORDER BY %s %s, id ASC", col, sqlDirection(s.Direction))
}

func buildFindQuery(f domain.Filter, s domain.Sort) (string, []any) {
	where, args := buildWhere(f)
	return selectTodos + where + buildOrderBy(s), args
}

// buildGroupQuery groups by the dimension key. Members aggregate in id order.
func buildGroupQuery(q domain.GroupQuery) (string, error) {
	key, ok := groupKeys[q.Dimension]
	if !ok {
		return "", fmt.Errorf("unsupported dimension %q", q.Dimension)
	}

	var order string
	if q.Sort.By == domain.GroupSortByCount {
		order = fmt.Sprintf(`count(*) %s, key COLLATE "C" ASC`, sqlDirection(q.Sort.Direction))
	} else {
		order = fmt.Sprintf(`key COLLATE "C" %s`, sqlDirection(q.Sort.Direction))
	}

	return fmt.Sprintf(`SELECT key, count(*), array_agg(id::text ORDER BY id), array_agg(owner ORDER BY id)
FROM (SELECT %s AS key, id, owner FROM todos) grouped
GROUP BY key
ORDER BY %s`, key, order), nil
}
