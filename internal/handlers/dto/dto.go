package dto

import (
	"encoding/json"
	"time"

	"todoTracker/internal/models/todo"
)

// TodoRequest is the body of create and update calls, kept as raw values per key.
// Unknown keys are ignored and null counts as not provided.
type TodoRequest map[string]json.RawMessage

type CreateTodoRequest = TodoRequest

type UpdateTodoRequest = TodoRequest

// Options converts the provided keys into field options. Values of the wrong
// shape become todo.WithInvalid and surface at validation time.
func (r TodoRequest) Options() []todo.Option {
	opts := make([]todo.Option, 0, 5)

	if v, ok := r.text("task", &opts); ok {
		opts = append(opts, todo.WithTask(v))
	}
	if v, ok := r.text("description", &opts); ok {
		opts = append(opts, todo.WithDescription(v))
	}
	if v, ok := r.text("status", &opts); ok {
		opts = append(opts, todo.WithStatus(todo.Status(v)))
	}
	if v, ok := r.text("due_date", &opts); ok {
		due, err := todo.ParseDate(v)
		if err != nil {
			opts = append(opts, todo.WithInvalid("due_date", "expected format YYYY-MM-DD"))
		} else {
			opts = append(opts, todo.WithDueDate(due))
		}
	}
	if v, ok := r.text("priority", &opts); ok {
		opts = append(opts, todo.WithPriority(todo.Priority(v)))
	}

	return opts
}

func (r TodoRequest) text(key string, opts *[]todo.Option) (string, bool) {
	raw, ok := r[key]
	if !ok || string(raw) == "null" {
		return "", false
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		*opts = append(*opts, todo.WithInvalid(key, "must be a string"))
		return "", false
	}
	return v, true
}

type TodoResponse struct {
	ID          int64     `json:"id"`
	Task        string    `json:"task"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	DueDate     *string   `json:"due_date"`
	Priority    string    `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func FromTodo(t *todo.Todo) TodoResponse {
	resp := TodoResponse{
		ID:          t.ID,
		Task:        t.Task,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.DueDate != nil {
		d := t.DueDate.Format(todo.DateLayout)
		resp.DueDate = &d
	}
	return resp
}

func FromTodoList(todos []*todo.Todo) []TodoResponse {
	result := make([]TodoResponse, len(todos))
	for i, t := range todos {
		result[i] = FromTodo(t)
	}
	return result
}

type UploadResponse struct {
	FileURL string `json:"file_url"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
