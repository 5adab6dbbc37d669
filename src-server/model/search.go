package model

import (
	"strings"
	"unicode"

	"github.com/uptrace/bun"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Whitespace and commas separate search terms.
func SearchTerms(search string) []string {
	return strings.FieldsFunc(search, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
}

// Every term has to appear as a substring of at least one of the fields.
// SQLite's LIKE folds ASCII case only; other letters must match exactly.
func applySearch(q *bun.SelectQuery, search string, fields ...string) *bun.SelectQuery {
	for _, term := range SearchTerms(search) {
		pattern := "%" + likeEscaper.Replace(term) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			for _, field := range fields {
				q = q.WhereOr(`?TableAlias.? LIKE ? ESCAPE '\'`, bun.Ident(field), pattern)
			}
			return q
		})
	}
	return q
}
