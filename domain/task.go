package domain

import "time"

// Task statuses. StatusDone is terminal: done tasks drop out of reminder
// classification regardless of their due date.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task represents a study task or assignment.
type Task struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Course   string `json:"course"`
	TaskType string `json:"task_type,omitempty"`
	DueDate  string `json:"due_date"`
	Priority string `json:"priority"`
	Status   string `json:"status"`
	Notes    string `json:"notes,omitempty"`
}

func (t Task) RecordID() string { return t.ID }

// WithID returns a copy of the task carrying the given identifier.
func (t Task) WithID(id string) Task {
	t.ID = id
	return t
}

func (t Task) Due() (time.Time, bool) { return parseDate(t.DueDate) }

func (t Task) Terminal() bool { return t.Status == StatusDone }

// Validate checks required fields before the task touches the store.
func (t Task) Validate() error {
	if t.Title == "" {
		return invalid("title", "must not be empty")
	}
	if t.Course == "" {
		return invalid("course", "must not be empty")
	}
	if _, ok := parseDate(t.DueDate); !ok {
		return invalid("due_date", "must be a date in the form "+DateLayout)
	}
	switch t.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		return invalid("priority", "must be low, medium or high")
	}
	switch t.Status {
	case StatusTodo, StatusInProgress, StatusDone:
	default:
		return invalid("status", "must be todo, in_progress or done")
	}
	return nil
}
