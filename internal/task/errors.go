package task

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = errors.New("task not found")
	// ErrInvalidStatus matches every *InvalidStatusError.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrNoTasks is returned by reads against an empty store. Mutations on an
	// empty store return a *NotFoundError that also matches it.
	ErrNoTasks = errors.New("no tasks")
	// ErrCorrupt marks persisted data that does not match the task schema.
	ErrCorrupt = errors.New("corrupt task data")
	// ErrIDExhausted is returned by Add once no larger id can be assigned.
	ErrIDExhausted = errors.New("task ids exhausted")
)

// IOError reports a failure to read or write persisted state.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s tasks: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s tasks %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a missing task id.
type NotFoundError struct {
	ID int
	// Empty is set when the store held no tasks at all.
	Empty bool
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no task found with ID %d", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	if target == ErrNotFound {
		return true
	}
	return e.Empty && target == ErrNoTasks
}

// InvalidStatusError reports a status outside the enumeration.
type InvalidStatusError struct {
	Value string
}

func (e *InvalidStatusError) Error() string {
	names := make([]string, 0, len(Statuses()))
	for _, s := range Statuses() {
		names = append(names, s.String())
	}
	return fmt.Sprintf("invalid status %q, use one of: %s", e.Value, strings.Join(names, ", "))
}

func (e *InvalidStatusError) Is(target error) bool {
	return target == ErrInvalidStatus
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, args...))
}
