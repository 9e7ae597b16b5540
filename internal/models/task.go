package models

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Status is the board column a task sits in.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Priority is an urgency level, 1 being the most urgent.
type Priority int

const (
	PriorityCritical Priority = 1
	PriorityHigh     Priority = 2
	PriorityMedium   Priority = 3
	PriorityLow      Priority = 4
)

// Priorities lists every level in ascending order.
var Priorities = []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}

// Valid reports whether p is one of the four levels.
func (p Priority) Valid() bool {
	return p >= PriorityCritical && p <= PriorityLow
}

// Resolve maps absent or out-of-range values to PriorityLow.
func (p Priority) Resolve() Priority {
	if !p.Valid() {
		return PriorityLow
	}
	return p
}

// UnmarshalJSON accepts any whole JSON number, so 2 and 2.0 are the same level.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return fmt.Errorf("priority %s is not a whole number", data)
	}
	*p = Priority(f)
	return nil
}

func (p Priority) String() string {
	switch p.Resolve() {
	case PriorityCritical:
		return "Critical"
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	default:
		return "Low"
	}
}

// DateLayout is the format of task deadlines.
const DateLayout = "2006-01-02"

// Task is a single item on a user's board.
type Task struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	Deadline    string    `json:"deadline,omitempty"` // YYYY-MM-DD, empty when unset
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewTask carries the fields a client may supply when creating a task.
type NewTask struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Deadline    string             `json:"deadline"`
	Priority    Optional[Priority] `json:"priority"`
}

// TaskUpdate is a partial update. Only fields present in the request are applied.
type TaskUpdate struct {
	Title       Optional[string]   `json:"title"`
	Description Optional[string]   `json:"description"`
	Status      Optional[Status]   `json:"status"`
	Deadline    Optional[string]   `json:"deadline"`
	Priority    Optional[Priority] `json:"priority"`
}
