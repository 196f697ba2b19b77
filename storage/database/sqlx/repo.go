package sqlxrepos

import (
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/classtrack/classtrack/core"
)

type baseRepository struct {
	exec core.DBExecutor
}

// whereClause accumulates AND-ed conditions written with `?` placeholders.
type whereClause struct {
	conds []string
	args  []interface{}
	err   error
}

func (w *whereClause) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

// addIn adds a `col IN (...)` condition, expanded with sqlx.In.
func (w *whereClause) addIn(cond string, values []string) {
	if w.err != nil {
		return
	}
	q, args, err := sqlx.In(cond, values)
	if err != nil {
		w.err = err
		return
	}
	w.add(q, args...)
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func likeContains(s string) string {
	s = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(strings.ToLower(s))
	return "%" + s + "%"
}

// orderBy renders ordering with the columns allowed by cols; unknown fields are skipped.
func orderBy(ordering []core.DBOrdering, cols map[string]string, fallback string) string {
	parts := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		if col, ok := cols[ord.Field]; ok {
			parts = append(parts, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
		}
	}
	parts = append(parts, fallback)
	return " ORDER BY " + strings.Join(parts, ", ")
}
