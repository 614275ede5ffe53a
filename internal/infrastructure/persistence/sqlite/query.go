package sqlite

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rezkam/todos/internal/domain"
)

const selectTodos = `SELECT id, owner, status, body, category FROM todos`

var sortColumns = map[string]string{
	domain.FieldID:       "id",
	domain.FieldOwner:    "owner",
	domain.FieldStatus:   "status",
	domain.FieldBody:     "body",
	domain.FieldCategory: "category",
}

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

// buildWhere renders the present clauses of f. instr matches the body literally
// after both sides are folded with foldFunc.
func buildWhere(f domain.Filter) (string, []any) {
	var conds []string
	var args []any

	if f.Owner != nil {
		conds = append(conds, "owner = ?")
		args = append(args, *f.Owner)
	}
	if f.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, *f.Status)
	}
	if f.Category != nil {
		conds = append(conds, "category = ?")
		args = append(args, *f.Category)
	}
	if f.BodyContains != nil {
		conds = append(conds, fmt.Sprintf("instr(%[1]s(body), %[1]s(?)) > 0", foldFunc))
		args = append(args, *f.BodyContains)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func buildOrderBy(s domain.Sort) string {
	col, ok := sortColumns[s.Field]
	if !ok || col == "id" {
		return " ORDER BY id " + sqlDirection(s.Direction)
	}
	return fmt.Sprintf(" ORDER BY %s %s, id ASC", col, sqlDirection(s.Direction))
}

func buildFindQuery(f domain.Filter, s domain.Sort) (string, []any) {
	where, args := buildWhere(f)
	return selectTodos + where + buildOrderBy(s), args
}

// buildGroupQuery aggregates members as a JSON array in id order.
func buildGroupQuery(q domain.GroupQuery) (string, error) {
	key, ok := groupKeys[q.Dimension]
	if !ok {
		return "", fmt.Errorf("unsupported dimension %q", q.Dimension)
	}

	var order string
	if q.Sort.By == domain.GroupSortByCount {
		order = fmt.Sprintf("count(*) %s, key ASC", sqlDirection(q.Sort.Direction))
	} else {
		order = "key " + sqlDirection(q.Sort.Direction)
	}

	return fmt.Sprintf(`SELECT key, count(*), json_group_array(json_object('id', id, 'owner', owner) ORDER BY id)
FROM (SELECT %s AS key, id, owner FROM todos)
GROUP BY key
ORDER BY %s`, key, order), nil
}

type memberRow struct {
	ID    string `json:"id"`
	Owner string `json:"owner"`
}

func decodeMembers(raw string) ([]domain.Member, error) {
	var rows []memberRow
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil, fmt.Errorf("failed to decode members: %w", err)
	}
	members := make([]domain.Member, len(rows))
	for i, r := range rows {
		members[i] = domain.Member{ID: r.ID, Owner: r.Owner}
	}
	return members, nil
}
