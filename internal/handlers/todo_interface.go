package handlers

import (
	"context"
	"io"

	"todoTracker/internal/models/todo"
	"todoTracker/internal/service"
)

type TodoService interface {
	HealthCheck(ctx context.Context) error
	ListTodos(ctx context.Context, filter todo.Filter) ([]*todo.Todo, error)
	GetTodo(ctx context.Context, id int64) (*todo.Todo, error)
	CreateTodo(ctx context.Context, opts ...todo.Option) (*todo.Todo, error)
	UpdateTodo(ctx context.Context, id int64, opts ...todo.Option) (*todo.Todo, error)
	DeleteTodo(ctx context.Context, id int64) error
}

type UploadService interface {
	Store(ctx context.Context, body io.Reader, filename string) (*service.UploadResult, error)
}
