// Package task provides the task record and the file-backed task store.
package task

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Statuses returns every valid status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusDone}
}

// Valid reports whether s is a member of the status enumeration.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus converts raw user input into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", &InvalidStatusError{Value: raw}
	}
	return s, nil
}

// Task describes a task record.
type Task struct {
	ID          int       `json:"id"          yaml:"id"`
	Description string    `json:"description" yaml:"description"`
	Status      Status    `json:"status"      yaml:"status"`
	CreatedAt   time.Time `json:"createdAt"   yaml:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"   yaml:"updatedAt"`
}

func (t Task) String() string {
	return fmt.Sprintf("%d\t%s\t%s", t.ID, t.Status, t.Description)
}

// Transition is the outcome of a status change.
type Transition struct {
	Task Task
	From Status
	To   Status
}
