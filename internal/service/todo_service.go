package service

import (
	"context"
	"errors"
	"fmt"

	"todoTracker/internal/logger"
	"todoTracker/internal/models/todo"
	rep "todoTracker/internal/repository"

	"go.uber.org/zap"
)

type RepoType string

const (
	DBType       RepoType = "postgres"
	InMemoryType RepoType = "inmemory"
)

const resourceTodo = "Todo"

type TodoService struct {
	repo     TodoRepository
	repoType RepoType
}

func NewTodoService(repo TodoRepository, repoType RepoType) *TodoService {
	return &TodoService{
		repo:     repo,
		repoType: repoType,
	}
}

func (s *TodoService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		logger.Error("Service: health check failed", err, zap.String("repo_type", string(s.repoType)))
		return fmt.Errorf("service health check: %w", err)
	}
	return nil
}

func (s *TodoService) ListTodos(ctx context.Context, filter todo.Filter) ([]*todo.Todo, error) {
	todos, err := s.repo.List(ctx, filter)
	if err != nil {
		logger.Error("Service: failed to list todos", err, zap.String("repo_type", string(s.repoType)))
		return nil, NewPersistenceError("list todos", err)
	}
	return todos, nil
}

func (s *TodoService) GetTodo(ctx context.Context, id int64) (*todo.Todo, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.translate("get todo", id, err)
	}
	return t, nil
}

// CreateTodo inserts a todo and returns it as stored, with defaults and timestamps filled in.
func (s *TodoService) CreateTodo(ctx context.Context, opts ...todo.Option) (*todo.Todo, error) {
	fields := todo.NewFields(opts...)
	if err := fields.ValidateForInsert(); err != nil {
		return nil, toValidationError(err)
	}

	id, err := s.repo.Create(ctx, fields)
	if err != nil {
		return nil, s.translate("create todo", 0, err)
	}

	created, err := s.repo.GetByID(ctx, id)
	if err != nil {
		logger.Error("Service: created todo could not be read back", err, zap.Int64("todo_id", id))
		return nil, NewPersistenceError("read created todo", err, ToDetail("id", id))
	}

	logger.Info("Service: todo created", zap.Int64("todo_id", id))
	return created, nil
}

// UpdateTodo merges the provided fields into an existing todo. The existence
// check and the write are separate statements; a row deleted in between
// surfaces as NOT_FOUND.
func (s *TodoService) UpdateTodo(ctx context.Context, id int64, opts ...todo.Option) (*todo.Todo, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, s.translate("get todo", id, err)
	}

	fields := todo.NewFields(opts...)
	if err := fields.ValidateForUpdate(); err != nil {
		return nil, toValidationError(err)
	}

	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, s.translate("update todo", id, err)
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.translate("read updated todo", id, err)
	}

	logger.Info("Service: todo updated", zap.Int64("todo_id", id))
	return updated, nil
}

func (s *TodoService) DeleteTodo(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return s.translate("get todo", id, err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translate("delete todo", id, err)
	}

	logger.Info("Service: todo deleted", zap.Int64("todo_id", id))
	return nil
}

// translate turns repository errors into business errors.
func (s *TodoService) translate(operation string, id int64, err error) error {
	if errors.Is(err, rep.ErrNotFound) {
		logger.Info("Service: todo not found", zap.Int64("todo_id", id), zap.String("operation", operation))
		return NewNotFound(resourceTodo, id)
	}

	var vErr *todo.ValidationError
	if errors.As(err, &vErr) {
		return toValidationError(vErr)
	}

	logger.Error("Service: repository failure", err,
		zap.String("operation", operation),
		zap.Int64("todo_id", id),
		zap.String("repo_type", string(s.repoType)))
	if id == 0 {
		return NewPersistenceError(operation, err)
	}
	return NewPersistenceError(operation, err, ToDetail("id", id))
}

func toValidationError(err error) error {
	var vErr *todo.ValidationError
	if errors.As(err, &vErr) {
		return NewValidationError(vErr.Field, vErr.Reason)
	}
	return NewBusinessError(CodeValidation, err.Error())
}
