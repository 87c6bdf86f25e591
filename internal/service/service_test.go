package service_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"todoTracker/internal/models/todo"
	"todoTracker/internal/repository"
	"todoTracker/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTodoRepository struct {
	mock.Mock
}

func (m *MockTodoRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTodoRepository) List(ctx context.Context, filter todo.Filter) ([]*todo.Todo, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*todo.Todo), args.Error(1)
}

func (m *MockTodoRepository) GetByID(ctx context.Context, id int64) (*todo.Todo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*todo.Todo), args.Error(1)
}

func (m *MockTodoRepository) Create(ctx context.Context, fields todo.Fields) (int64, error) {
	args := m.Called(ctx, fields)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTodoRepository) Update(ctx context.Context, id int64, fields todo.Fields) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockTodoRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ service.TodoRepository = (*MockTodoRepository)(nil)

type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Put(ctx context.Context, container, key string, body io.Reader, contentType string) error {
	data, _ := io.ReadAll(body)
	args := m.Called(ctx, container, key, string(data), contentType)
	return args.Error(0)
}

func (m *MockObjectStore) URL(container, key string) string {
	args := m.Called(container, key)
	return args.String(0)
}

var _ service.ObjectStore = (*MockObjectStore)(nil)

func sampleTodo(id int64, task string) *todo.Todo {
	now := time.Now()
	return &todo.Todo{
		ID:        id,
		Task:      task,
		Status:    todo.StatusPending,
		Priority:  todo.PriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestTodoService_HealthCheck(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(*MockTodoRepository)
		expectError bool
	}{
		{
			name: "success - health check passes",
			setupMock: func(m *MockTodoRepository) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
		},
		{
			name: "error - health check fails",
			setupMock: func(m *MockTodoRepository) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("db connection failed"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTodoRepository)
			tt.setupMock(mockRepo)

			svc := service.NewTodoService(mockRepo, service.DBType)
			err := svc.HealthCheck(context.Background())

			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "service health check")
			} else {
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTodoService_ListTodos(t *testing.T) {
	ctx := context.Background()

	t.Run("success - passes filter through", func(t *testing.T) {
		mockRepo := new(MockTodoRepository)
		status := "pending"
		filter := todo.Filter{Status: &status}
		mockRepo.On("List", mock.Anything, filter).Return([]*todo.Todo{sampleTodo(2, "b"), sampleTodo(1, "a")}, nil)

		svc := service.NewTodoService(mockRepo, service.DBType)
		todos, err := svc.ListTodos(ctx, filter)

		require.NoError(t, err)
		assert.Len(t, todos, 2)
		mockRepo.AssertExpectations(t)
	})

	t.Run("success - empty result", func(t *testing.T) {
		mockRepo := new(MockTodoRepository)
		mockRepo.On("List", mock.Anything, todo.Filter{}).Return([]*todo.Todo{}, nil)

		svc := service.NewTodoService(mockRepo, service.DBType)
		todos, err := svc.ListTodos(ctx, todo.Filter{})

		require.NoError(t, err)
		assert.NotNil(t, todos)
		assert.Empty(t, todos)
	})

	t.Run("error - persistence failure hides driver message", func(t *testing.T) {
		mockRepo := new(MockTodoRepository)
		mockRepo.On("List", mock.Anything, todo.Filter{}).Return(nil, errors.New("pq: connection refused"))

		svc := service.NewTodoService(mockRepo, service.DBType)
		_, err := svc.ListTodos(ctx, todo.Filter{})

		var busErr *service.BusinessError
		require.ErrorAs(t, err, &busErr)
		assert.Equal(t, service.CodePersistence, busErr.Code)
		assert.NotContains(t, busErr.Message, "connection refused")
	})
}

func TestTodoService_GetTodo(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockRepo := new(MockTodoRepository)
		mockRepo.On("GetByID", mock.Anything, int64(1)).Return(sampleTodo(1, "Buy milk"), nil)

		svc := service.NewTodoService(mockRepo, service.InMemoryType)
		got, err := svc.GetTodo(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, "Buy milk", got.Task)
	})

	t.Run("error - not found", func(t *testing.T) {
		mockRepo := new(MockTodoRepository)
		mockRepo.On("GetByID", mock.Anything, int64(42)).Return(nil, repository.ErrNotFound)

		svc := service.NewTodoService(mockRepo, service.DBType)
		_, err := svc.GetTodo(ctx, 42)

		assert.True(t, service.IsCode(err, service.CodeNotFound))
		assert.Contains(t, err.Error(), "Todo 42 not found")
	})

	t.Run("error - driver failure", func(t *testing.T) {
		mockRepo := new(MockTodoRepository)
		mockRepo.On("GetByID", mock.Anything, int64(1)).Return(nil, errors.New("timeout"))

		svc := service.NewTodoService(mockRepo, service.DBType)
		_, err := svc.GetTodo(ctx, 1)

		assert.True(t, service.IsCode(err, service.CodePersistence))
	})
}

func TestTodoService_CreateTodo(t *testing.T) {
	ctx := context.Background()

	t.Run("success - buy milk gets defaults", func(t *testing.T) {
		mockRepo := new(MockTodoRepository)
		mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(f todo.Fields) bool {
			return f.Task != nil && *f.Task == "Buy milk" && f.Status == nil && f.Priority == nil
		})).Return(int64(1), nil)
		mockRepo.On("GetByID", mock.Anything, int64(1)).Return(sampleTodo(1, "Buy milk"), nil)

		svc := service.NewTodoService(mockRepo, service.DBType)
		created, err := svc.CreateTodo(ctx, todo.WithTask("Buy milk"))

		require.NoError(t, err)
		assert.Equal(t, int64(1), created.ID)
		assert.Equal(t, todo.StatusPending, created.Status)
		assert.Equal(t, todo.PriorityMedium, created.Priority)
		mockRepo.AssertExpectations(t)
	})

	tests := []struct {
		name  string
		opts  []todo.Option
		field string
	}{
		{name: "missing task", opts: []todo.Option{todo.WithPriority(todo.PriorityLow)}, field: "task"},
		{name: "blank task", opts: []todo.Option{todo.WithTask("   ")}, field: "task"},
		{name: "task too long", opts: []todo.Option{todo.WithTask(strings.Repeat("a", 256))}, field: "task"},
		{name: "unknown status", opts: []todo.Option{todo.WithTask("x"), todo.WithStatus("done")}, field: "status"},
		{name: "unknown priority", opts: []todo.Option{todo.WithTask("x"), todo.WithPriority("urgent")}, field: "priority"},
	}

	for _, tt := range tests {
		t.Run("error - "+tt.name, func(t *testing.T) {
			mockRepo := new(MockTodoRepository)

			svc := service.NewTodoService(mockRepo, service.DBType)
			_, err := svc.CreateTodo(ctx, tt.opts...)

			var busErr *service.BusinessError
			require.ErrorAs(t, err, &busErr)
			assert.Equal(t, service.CodeValidation, busErr.Code)
			assert.Equal(t, tt.field, busErr.Details["field"])
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}

	t.Run("error - insert fails", func(t *testing.T) {
		mockRepo := new(MockTodoRepository)
		mockRepo.On("Create", mock.Anything, mock.Anything).Return(int64(0), errors.New("disk full"))

		svc := service.NewTodoService(mockRepo, service.DBType)
		_, err := svc.CreateTodo(ctx, todo.WithTask("x"))

		assert.True(t, service.IsCode(err, service.CodePersistence))
		assert.ErrorContains(t, err, "disk full")
	})
}

func TestTodoService_UpdateTodo(t *testing.T) {
	ctx := context.Background()

	t.Run("success - merges and re-reads", func(t *testing.T) {
		mockRepo := new(MockTodoRepository)
		existing := sampleTodo(1, "Buy milk")
		updated := sampleTodo(1, "Buy milk")
		updated.Status = todo.StatusCompleted

		mockRepo.On("GetByID", mock.Anything, int64(1)).Return(existing, nil).Once()
		mockRepo.On("Update", mock.Anything, int64(1), mock.MatchedBy(func(f todo.Fields) bool {
			return f.Status != nil && *f.Status == todo.StatusCompleted && f.Task == nil
		})).Return(nil)
		mockRepo.On("GetByID", mock.Anything, int64(1)).Return(updated, nil).Once()

		svc := service.NewTodoService(mockRepo, service.DBType)
		result, err := svc.UpdateTodo(ctx, 1, todo.WithStatus(todo.StatusCompleted))

		require.NoError(t, err)
		assert.Equal(t, todo.StatusCompleted, result.Status)
		assert.Equal(t, "Buy milk", result.Task)
		mockRepo.AssertExpectations(t)
	})

	t.Run("error - missing todo wins over invalid fields", func(t *testing.T) {
		mockRepo := new(MockTodoRepository)
		mockRepo.On("GetByID", mock.Anything, int64(9)).Return(nil, repository.ErrNotFound)

		svc := service.NewTodoService(mockRepo, service.DBType)
		_, err := svc.UpdateTodo(ctx, 9, todo.WithStatus("bogus"))

		assert.True(t, service.IsCode(err, service.CodeNotFound))
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("error - missing todo wins over undecodable due date", func(t *testing.T) {
		mockRepo := new(MockTodoRepository)
		mockRepo.On("GetByID", mock.Anything, int64(9)).Return(nil, repository.ErrNotFound)

		svc := service.NewTodoService(mockRepo, service.DBType)
		_, err := svc.UpdateTodo(ctx, 9, todo.WithInvalid("due_date", "expected format YYYY-MM-DD"))

		assert.True(t, service.IsCode(err, service.CodeNotFound))
	})

	t.Run("error - undecodable due date on existing todo", func(t *testing.T) {
		mockRepo := new(MockTodoRepository)
		mockRepo.On("GetByID", mock.Anything, int64(1)).Return(sampleTodo(1, "x"), nil)

		svc := service.NewTodoService(mockRepo, service.DBType)
		_, err := svc.UpdateTodo(ctx, 1, todo.WithInvalid("due_date", "expected format YYYY-MM-DD"))

		var busErr *service.BusinessError
		require.ErrorAs(t, err, &busErr)
		assert.Equal(t, service.CodeValidation, busErr.Code)
		assert.Equal(t, "Invalid value for field 'due_date': expected format YYYY-MM-DD", busErr.Message)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("error - no fields", func(t *testing.T) {
		mockRepo := new(MockTodoRepository)
		mockRepo.On("GetByID", mock.Anything, int64(1)).Return(sampleTodo(1, "x"), nil)

		svc := service.NewTodoService(mockRepo, service.DBType)
		_, err := svc.UpdateTodo(ctx, 1)

		var busErr *service.BusinessError
		require.ErrorAs(t, err, &busErr)
		assert.Equal(t, service.CodeValidation, busErr.Code)
		assert.Equal(t, "no valid fields to update", busErr.Message)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("error - row vanished before update", func(t *testing.T) {
		mockRepo := new(MockTodoRepository)
		mockRepo.On("GetByID", mock.Anything, int64(1)).Return(sampleTodo(1, "x"), nil)
		mockRepo.On("Update", mock.Anything, int64(1), mock.Anything).Return(repository.ErrNotFound)

		svc := service.NewTodoService(mockRepo, service.DBType)
		_, err := svc.UpdateTodo(ctx, 1, todo.WithTask("y"))

		assert.True(t, service.IsCode(err, service.CodeNotFound))
	})
}

func TestTodoService_DeleteTodo(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		setupMock func(*MockTodoRepository)
		code      string
	}{
		{
			name: "success",
			setupMock: func(m *MockTodoRepository) {
				m.On("GetByID", mock.Anything, int64(1)).Return(sampleTodo(1, "x"), nil)
				m.On("Delete", mock.Anything, int64(1)).Return(nil)
			},
		},
		{
			name: "error - not found",
			setupMock: func(m *MockTodoRepository) {
				m.On("GetByID", mock.Anything, int64(1)).Return(nil, repository.ErrNotFound)
			},
			code: service.CodeNotFound,
		},
		{
			name: "error - delete fails",
			setupMock: func(m *MockTodoRepository) {
				m.On("GetByID", mock.Anything, int64(1)).Return(sampleTodo(1, "x"), nil)
				m.On("Delete", mock.Anything, int64(1)).Return(errors.New("locked"))
			},
			code: service.CodePersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTodoRepository)
			tt.setupMock(mockRepo)

			svc := service.NewTodoService(mockRepo, service.DBType)
			err := svc.DeleteTodo(ctx, 1)

			if tt.code == "" {
				assert.NoError(t, err)
			} else {
				assert.True(t, service.IsCode(err, tt.code))
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUploadService_Store(t *testing.T) {
	ctx := context.Background()
	keyPattern := `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`

	t.Run("success - key keeps extension", func(t *testing.T) {
		store := new(MockObjectStore)
		png := "\x89PNG\r\n\x1a\n" + strings.Repeat("\x00", 16)
		store.On("Put", mock.Anything, "uploads", mock.MatchedBy(func(key string) bool {
			return strings.HasSuffix(key, ".png")
		}), png, "image/png").Return(nil)
		store.On("URL", "uploads", mock.Anything).Return("https://uploads.s3.amazonaws.com/k.png")

		svc := service.NewUploadService(store, "uploads")
		res, err := svc.Store(ctx, strings.NewReader(png), "photo.png")

		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, res.Status)
		assert.Regexp(t, keyPattern+`\.png$`, res.Key)
		assert.Equal(t, "https://uploads.s3.amazonaws.com/k.png", res.URL)
		store.AssertExpectations(t)
	})

	t.Run("success - no extension, no suffix", func(t *testing.T) {
		store := new(MockObjectStore)
		store.On("Put", mock.Anything, "uploads", mock.Anything, "hello", mock.Anything).Return(nil)
		store.On("URL", "uploads", mock.Anything).Return("u")

		svc := service.NewUploadService(store, "uploads")
		res, err := svc.Store(ctx, strings.NewReader("hello"), "README")

		require.NoError(t, err)
		assert.Regexp(t, keyPattern+`$`, res.Key)
	})

	t.Run("error - empty filename", func(t *testing.T) {
		store := new(MockObjectStore)

		svc := service.NewUploadService(store, "uploads")
		_, err := svc.Store(ctx, strings.NewReader("data"), "")

		assert.True(t, service.IsCode(err, service.CodeValidation))
		store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("error - nil body", func(t *testing.T) {
		store := new(MockObjectStore)

		svc := service.NewUploadService(store, "uploads")
		_, err := svc.Store(ctx, nil, "a.txt")

		assert.True(t, service.IsCode(err, service.CodeValidation))
		store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("error - store failure", func(t *testing.T) {
		store := new(MockObjectStore)
		store.On("Put", mock.Anything, "uploads", mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("access denied"))

		svc := service.NewUploadService(store, "uploads")
		_, err := svc.Store(ctx, strings.NewReader("data"), "a.txt")

		var busErr *service.BusinessError
		require.ErrorAs(t, err, &busErr)
		assert.Equal(t, service.CodeStorage, busErr.Code)
		assert.Equal(t, "uploads", busErr.Details["container"])
		assert.Equal(t, "a.txt", busErr.Details["filename"])
		store.AssertNotCalled(t, "URL", mock.Anything, mock.Anything)
	})
}

func TestObjectKey_Unique(t *testing.T) {
	a := service.ObjectKey("report.pdf")
	b := service.ObjectKey("report.pdf")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, ".pdf"))
}

func TestObjectKey_Extension(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{filename: "report.pdf", want: ".pdf"},
		{filename: "archive.tar.gz", want: ".gz"},
		{filename: ".bashrc", want: ""},
		{filename: "README", want: ""},
		{filename: "dir/.env", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			key := service.ObjectKey(tt.filename)
			assert.Len(t, key, 36+len(tt.want))
			assert.True(t, strings.HasSuffix(key, tt.want))
		})
	}
}

func TestBusinessError(t *testing.T) {
	cause := errors.New("boom")
	err := service.NewPersistenceError("list todos", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[PERSISTENCE_ERROR] failed to list todos: boom", err.Error())

	v := service.NewValidationError("task", "must not be empty")
	assert.Equal(t, "Invalid value for field 'task': must not be empty", v.Message)
	assert.Equal(t, "[VALIDATION_ERROR] Invalid value for field 'task': must not be empty", v.Error())

	assert.False(t, service.IsCode(cause, service.CodeNotFound))
}
