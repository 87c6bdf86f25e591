package todo

import (
	"time"
)

type Todo struct {
	ID          int64      `json:"id" db:"id"`
	Task        string     `json:"task" db:"task"`
	Description *string    `json:"description" db:"description"`
	Status      Status     `json:"status" db:"status"`
	DueDate     *time.Time `json:"due_date" db:"due_date"`
	Priority    Priority   `json:"priority" db:"priority"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

type Status string
type Priority string

const StatusPending Status = "pending"
const StatusInProgress Status = "in_progress"
const StatusCompleted Status = "completed"

const PriorityLow Priority = "low"
const PriorityMedium Priority = "medium"
const PriorityHigh Priority = "high"

// column defaults applied by the store
const DefaultStatus = StatusPending
const DefaultPriority = PriorityMedium

const MaxTaskLength = 255

// DateLayout is the wire format of due_date.
const DateLayout = "2006-01-02"

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Filter holds the optional list filters; nil or empty means "not set".
type Filter struct {
	Status   *string
	Priority *string
	Search   *string
}

// ParseDate parses a due date in DateLayout.
func ParseDate(value string) (time.Time, error) {
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "due_date", Reason: "expected format YYYY-MM-DD"}
	}
	return d, nil
}
