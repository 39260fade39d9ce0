package postgres

import (
	"strconv"
	"strings"
)

// query accumulates WHERE conditions and their positional arguments.
type query struct {
	conds []string
	args  []any
}

// arg appends a value and returns its placeholder.
func (q *query) arg(v any) string {
	q.args = append(q.args, v)
	return "$" + strconv.Itoa(len(q.args))
}

// where adds a condition built from placeholder-returning calls.
func (q *query) where(cond string) {
	q.conds = append(q.conds, cond)
}

// inList adds "col IN (...)" for a non-empty list.
func inList[T any](q *query, col string, values []T, negate bool) {
	if len(values) == 0 {
		return
	}
	ph := make([]string, len(values))
	for i, v := range values {
		ph[i] = q.arg(v)
	}
	op := " IN ("
	if negate {
		op = " NOT IN ("
	}
	q.where(col + op + strings.Join(ph, ", ") + ")")
}

func (q *query) clause() string {
	if len(q.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.conds, " AND ")
}

// page renders LIMIT and OFFSET.
func (q *query) page(offset, limit int) string {
	var b strings.Builder
	if limit > 0 {
		b.WriteString(" LIMIT " + q.arg(limit))
	}
	if offset > 0 {
		b.WriteString(" OFFSET " + q.arg(offset))
	}
	return b.String()
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func direction(desc bool) string {
	if desc {
		return " DESC"
	}
	return " ASC"
}
