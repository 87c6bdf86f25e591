package todo

import (
	"fmt"
	"strings"
	"time"
)

// Fields is the closed set of client-writable columns. A nil slot is "not provided".
type Fields struct {
	Task        *string
	Description *string
	Status      *Status
	DueDate     *time.Time
	Priority    *Priority

	// first value that could not be decoded; reported by Validate*
	invalid *ValidationError
}

type Option func(*Fields)

func WithTask(task string) Option {
	return func(f *Fields) {
		f.Task = &task
	}
}

func WithDescription(description string) Option {
	return func(f *Fields) {
		f.Description = &description
	}
}

func WithStatus(status Status) Option {
	return func(f *Fields) {
		f.Status = &status
	}
}

func WithDueDate(dueDate time.Time) Option {
	return func(f *Fields) {
		f.DueDate = &dueDate
	}
}

func WithPriority(priority Priority) Option {
	return func(f *Fields) {
		f.Priority = &priority
	}
}

// WithInvalid records a value the client sent in an unusable shape. It is
// reported by validation, so a caller can check existence first.
func WithInvalid(field, reason string) Option {
	return func(f *Fields) {
		if f.invalid == nil {
			f.invalid = &ValidationError{Field: field, Reason: reason}
		}
	}
}

func NewFields(opts ...Option) Fields {
	var f Fields
	for _, opt := range opts {
		if opt != nil {
			opt(&f)
		}
	}
	return f
}

func (f Fields) IsEmpty() bool {
	return f.Task == nil && f.Description == nil && f.Status == nil && f.DueDate == nil && f.Priority == nil
}

// ValidateForInsert requires task and checks every provided slot.
func (f Fields) ValidateForInsert() error {
	if f.invalid != nil {
		return f.invalid
	}
	if f.Task == nil {
		return &ValidationError{Field: "task", Reason: "missing required field"}
	}
	return f.validateValues()
}

// ValidateForUpdate rejects an empty change set and checks every provided slot.
func (f Fields) ValidateForUpdate() error {
	if f.invalid != nil {
		return f.invalid
	}
	if f.IsEmpty() {
		return &ValidationError{Reason: "no valid fields to update"}
	}
	return f.validateValues()
}

func (f Fields) validateValues() error {
	if f.Task != nil {
		if strings.TrimSpace(*f.Task) == "" {
			return &ValidationError{Field: "task", Reason: "must not be empty"}
		}
		if len([]rune(*f.Task)) > MaxTaskLength {
			return &ValidationError{Field: "task", Reason: fmt.Sprintf("must be at most %d characters", MaxTaskLength)}
		}
	}
	if f.Status != nil && !f.Status.Valid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown value %q", string(*f.Status))}
	}
	if f.Priority != nil && !f.Priority.Valid() {
		return &ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown value %q", string(*f.Priority))}
	}
	return nil
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid field '%s': %s", e.Field, e.Reason)
}
