package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"todoTracker/internal/logger"
	"todoTracker/internal/models/todo"
	repo "todoTracker/internal/repository"
)

type TodoStorage struct {
	storage map[int64]*todo.Todo
	mtx     *sync.RWMutex
	nextID  int64
	now     func() time.Time
}

func NewTodoStorage() *TodoStorage {
	return &TodoStorage{
		storage: make(map[int64]*todo.Todo),
		mtx:     &sync.RWMutex{},
		nextID:  1,
		now:     time.Now,
	}
}

func (s *TodoStorage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: in-memory storage is available")
	return nil
}

func (s *TodoStorage) Create(ctx context.Context, fields todo.Fields) (int64, error) {
	if err := fields.ValidateForInsert(); err != nil {
		return 0, err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := s.now()
	t := &todo.Todo{
		ID:        s.nextID,
		Status:    todo.DefaultStatus,
		Priority:  todo.DefaultPriority,
		CreatedAt: now,
		UpdatedAt: now,
	}
	apply(t, fields)

	s.storage[t.ID] = t
	s.nextID++
	return t.ID, nil
}

func (s *TodoStorage) GetByID(ctx context.Context, id int64) (*todo.Todo, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	t, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return clone(t), nil
}

func (s *TodoStorage) List(ctx context.Context, filter todo.Filter) ([]*todo.Todo, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*todo.Todo{}
	for _, t := range s.storage {
		if matches(t, filter) {
			res = append(res, clone(t))
		}
	}

	sort.Slice(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.After(res[j].CreatedAt)
		}
		return res[i].ID > res[j].ID
	})
	return res, nil
}

func (s *TodoStorage) Update(ctx context.Context, id int64, fields todo.Fields) error {
	if err := fields.ValidateForUpdate(); err != nil {
		return err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	t, ok := s.storage[id]
	if !ok {
		return repo.ErrNotFound
	}
	apply(t, fields)
	t.UpdatedAt = s.now()
	return nil
}

func (s *TodoStorage) Delete(ctx context.Context, id int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.storage, id)
	return nil
}

func apply(t *todo.Todo, f todo.Fields) {
	if f.Task != nil {
		t.Task = *f.Task
	}
	if f.Description != nil {
		d := *f.Description
		t.Description = &d
	}
	if f.Status != nil {
		t.Status = *f.Status
	}
	if f.DueDate != nil {
		d := *f.DueDate
		t.DueDate = &d
	}
	if f.Priority != nil {
		t.Priority = *f.Priority
	}
}

// matches mirrors the SQL predicates: exact status/priority, and a
// case-insensitive substring of task or description.
func matches(t *todo.Todo, f todo.Filter) bool {
	if f.Status != nil && *f.Status != "" && string(t.Status) != *f.Status {
		return false
	}
	if f.Priority != nil && *f.Priority != "" && string(t.Priority) != *f.Priority {
		return false
	}
	if f.Search != nil && *f.Search != "" {
		needle := strings.ToLower(*f.Search)
		inTask := strings.Contains(strings.ToLower(t.Task), needle)
		inDesc := t.Description != nil && strings.Contains(strings.ToLower(*t.Description), needle)
		if !inTask && !inDesc {
			return false
		}
	}
	return true
}

func clone(t *todo.Todo) *todo.Todo {
	c := *t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	return &c
}
