// Package query builds the parameterized statements run against the todos table.
//
// Statement text is assembled only from fixed fragments and the closed column
// allow-list; every client value travels in Args, bound to $n placeholders in order.
package query

import (
	"strconv"
	"strings"

	"todoTracker/internal/models/todo"
)

const Table = "todos"

// Columns is the select list shared by every read.
const Columns = "id, task, description, status, due_date, priority, created_at, updated_at"

type Statement struct {
	SQL  string
	Args []any
}

type builder struct {
	args []any
}

// bind appends a value and returns its placeholder.
func (b *builder) bind(value any) string {
	b.args = append(b.args, value)
	return "$" + strconv.Itoa(len(b.args))
}

// BuildSelect turns the list filters into a SELECT ordered newest first.
func BuildSelect(f todo.Filter) Statement {
	b := &builder{}
	var predicates []string

	if f.Status != nil && *f.Status != "" {
		predicates = append(predicates, "status = "+b.bind(*f.Status))
	}
	if f.Priority != nil && *f.Priority != "" {
		predicates = append(predicates, "priority = "+b.bind(*f.Priority))
	}
	if f.Search != nil && *f.Search != "" {
		pattern := "%" + escapeLike(*f.Search) + "%"
		predicates = append(predicates, "(task ILIKE "+b.bind(pattern)+" OR description ILIKE "+b.bind(pattern)+")")
	}

	var sql strings.Builder
	sql.WriteString("SELECT " + Columns + " FROM " + Table)
	if len(predicates) > 0 {
		sql.WriteString(" WHERE ")
		sql.WriteString(strings.Join(predicates, " AND "))
	}
	sql.WriteString(" ORDER BY created_at DESC, id DESC")

	return Statement{SQL: sql.String(), Args: b.argsOrEmpty()}
}

// BuildGetByID is the point lookup used for existence checks and re-reads.
func BuildGetByID(id int64) Statement {
	return Statement{
		SQL:  "SELECT " + Columns + " FROM " + Table + " WHERE id = $1",
		Args: []any{id},
	}
}

func BuildDelete(id int64) Statement {
	return Statement{
		SQL:  "DELETE FROM " + Table + " WHERE id = $1",
		Args: []any{id},
	}
}

func (b *builder) argsOrEmpty() []any {
	if b.args == nil {
		return []any{}
	}
	return b.args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes wildcard characters in user input match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
