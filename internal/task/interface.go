package task

import (
	"context"
)

// State is the full persisted content of a store.
type State struct {
	Tasks []Task
	// NextID is the id high-water mark. It only grows, so deleting the task
	// with the highest id never frees that id for reuse.
	NextID int
}

// Backend persists the task state. Load creates an empty persisted store
// when none exists yet.
type Backend interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, state State) error
	Path() string
}

// Locker serializes load-mutate-save cycles across processes.
type Locker interface {
	Lock(ctx context.Context) (unlock func() error, err error)
}

type nopLocker struct{}

func (nopLocker) Lock(context.Context) (func() error, error) {
	return func() error { return nil }, nil
}
