package query

import (
	"strings"

	"todoTracker/internal/models/todo"
)

type column struct {
	name  string
	value any
}

// present lists the provided slots in fixed column order.
func present(f todo.Fields) []column {
	var cols []column
	if f.Task != nil {
		cols = append(cols, column{"task", *f.Task})
	}
	if f.Description != nil {
		cols = append(cols, column{"description", *f.Description})
	}
	if f.Status != nil {
		cols = append(cols, column{"status", string(*f.Status)})
	}
	if f.DueDate != nil {
		cols = append(cols, column{"due_date", *f.DueDate})
	}
	if f.Priority != nil {
		cols = append(cols, column{"priority", string(*f.Priority)})
	}
	return cols
}

// BuildInsert returns an INSERT ... RETURNING id with only the provided columns,
// leaving the rest to the table defaults.
func BuildInsert(f todo.Fields) (Statement, error) {
	if err := f.ValidateForInsert(); err != nil {
		return Statement{}, err
	}

	b := &builder{}
	cols := present(f)
	names := make([]string, 0, len(cols))
	placeholders := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.name)
		placeholders = append(placeholders, b.bind(c.value))
	}

	sql := "INSERT INTO " + Table + " (" + strings.Join(names, ", ") + ") VALUES (" +
		strings.Join(placeholders, ", ") + ") RETURNING id"

	return Statement{SQL: sql, Args: b.args}, nil
}

// BuildUpdate returns an UPDATE touching only the provided columns plus updated_at.
// The id is always the last argument and only ever appears in the WHERE clause.
func BuildUpdate(id int64, f todo.Fields) (Statement, error) {
	if err := f.ValidateForUpdate(); err != nil {
		return Statement{}, err
	}

	b := &builder{}
	cols := present(f)
	assignments := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		assignments = append(assignments, c.name+" = "+b.bind(c.value))
	}
	assignments = append(assignments, "updated_at = NOW()")

	sql := "UPDATE " + Table + " SET " + strings.Join(assignments, ", ") + " WHERE id = " + b.bind(id)

	return Statement{SQL: sql, Args: b.args}, nil
}
