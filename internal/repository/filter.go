package repository

import (
	"fmt"
	"strings"
)

// filter accumulates WHERE conditions with pgx positional placeholders.
// Each condition uses "?" for its single argument.
type filter struct {
	where []string
	args  []any
}

func (f *filter) add(cond string, arg any) {
	f.args = append(f.args, arg)
	f.where = append(f.where, strings.Replace(cond, "?", fmt.Sprintf("$%d", len(f.args)), 1))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// addSearch matches the term literally against every column with ILIKE,
// sharing one placeholder.
func (f *filter) addSearch(term string, columns ...string) {
	f.args = append(f.args, "%"+likeEscaper.Replace(term)+"%")
	ph := fmt.Sprintf("$%d", len(f.args))
	ors := make([]string, len(columns))
	for i, col := range columns {
		ors[i] = col + " ILIKE " + ph + ` ESCAPE '\'`
	}
	f.where = append(f.where, "("+strings.Join(ors, " OR ")+")")
}

func (f *filter) clause() string {
	if len(f.where) == 0 {
		return "1=1"
	}
	return strings.Join(f.where, " AND ")
}

// page appends LIMIT/OFFSET placeholders and returns the SQL suffix with its args.
func (f *filter) page(limit, offset int) (string, []any) {
	args := append(append([]any{}, f.args...), limit, offset)
	n := len(f.args)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2), args
}
