package service

import (
	"context"
	"io"

	"todoTracker/internal/models/todo"
)

type TodoRepository interface {
	HealthCheck(ctx context.Context) error
	List(ctx context.Context, filter todo.Filter) ([]*todo.Todo, error)
	GetByID(ctx context.Context, id int64) (*todo.Todo, error)
	Create(ctx context.Context, fields todo.Fields) (int64, error)
	Update(ctx context.Context, id int64, fields todo.Fields) error
	Delete(ctx context.Context, id int64) error
}

// ObjectStore is a bucket or container based blob store.
type ObjectStore interface {
	Put(ctx context.Context, container, key string, body io.Reader, contentType string) error
	URL(container, key string) string
}
