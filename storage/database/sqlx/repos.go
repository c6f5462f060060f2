// Package sqlxrepos implements the domain repositories against PostgreSQL
// with hand-written SQL.
package sqlxrepos

import (
	"strings"

	"github.com/samsedu/rise/core"
)

// orderBy renders an ORDER BY clause from the requested orderings, keeping
// only fields present in the allowed whitelist. Falls back to the given
// default clause.
func orderBy(ordering []core.DBOrdering, allowed map[string]string, deflt string) string {
	clauses := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		col, ok := allowed[ord.Field]
		if !ok {
			continue
		}
		clauses = append(clauses, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
	}
	if len(clauses) == 0 {
		return " ORDER BY " + deflt
	}
	return " ORDER BY " + strings.Join(clauses, ", ")
}
