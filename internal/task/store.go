package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Store manages task persistence. Every operation loads the persisted state,
// applies its change and writes the full state back before returning.
type Store struct {
	backend Backend
	locker  Locker
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLocker sets the locker held around each operation.
func WithLocker(l Locker) Option {
	return func(s *Store) {
		if l != nil {
			s.locker = l
		}
	}
}

// NewStore creates a task store over backend.
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		locker:  nopLocker{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the location of the persisted state.
func (s *Store) Path() string {
	return s.backend.Path()
}

// Load reads the persisted task sequence.
func (s *Store) Load(ctx context.Context) ([]Task, error) {
	var tasks []Task
	err := s.read(ctx, func(st State) error {
		tasks = st.Tasks
		return nil
	})
	return tasks, err
}

// Save overwrites the persisted task sequence.
func (s *Store) Save(ctx context.Context, tasks []Task) error {
	if err := checkOrder(tasks); err != nil {
		return &IOError{Op: "save", Path: s.backend.Path(), Err: err}
	}
	return s.mutate(ctx, func(st *State) error {
		st.Tasks = tasks
		return nil
	})
}

// Add appends a new todo task.
func (s *Store) Add(ctx context.Context, description string) (Task, error) {
	var created Task
	err := s.mutate(ctx, func(st *State) error {
		id, err := nextFree(*st)
		if err != nil {
			return &IOError{Op: "add", Path: s.backend.Path(), Err: err}
		}
		now := s.timestamp()
		created = Task{
			ID:          id,
			Description: description,
			Status:      StatusTodo,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		st.Tasks = append(st.Tasks, created)
		return nil
	})
	if err != nil {
		return Task{}, err
	}
	log.Debug().Int("task_id", created.ID).Msg("task added")
	return created, nil
}

// Get returns the task with the given id.
func (s *Store) Get(ctx context.Context, id int) (Task, error) {
	var found Task
	err := s.read(ctx, func(st State) error {
		i, err := locate(st.Tasks, id)
		if err != nil {
			return err
		}
		found = st.Tasks[i]
		return nil
	})
	return found, err
}

// Update replaces the description of a task.
func (s *Store) Update(ctx context.Context, id int, description string) (Task, error) {
	var updated Task
	err := s.mutate(ctx, func(st *State) error {
		i, err := locate(st.Tasks, id)
		if err != nil {
			return err
		}
		st.Tasks[i].Description = description
		st.Tasks[i].UpdatedAt = s.timestamp()
		updated = st.Tasks[i]
		return nil
	})
	if err != nil {
		return Task{}, err
	}
	log.Debug().Int("task_id", id).Msg("task updated")
	return updated, nil
}

// Delete removes a task and returns the removed record.
func (s *Store) Delete(ctx context.Context, id int) (Task, error) {
	var removed Task
	err := s.mutate(ctx, func(st *State) error {
		i, err := locate(st.Tasks, id)
		if err != nil {
			return err
		}
		removed = st.Tasks[i]
		st.Tasks = append(st.Tasks[:i], st.Tasks[i+1:]...)
		return nil
	})
	if err != nil {
		return Task{}, err
	}
	log.Debug().Int("task_id", id).Msg("task deleted")
	return removed, nil
}

// SetStatus moves a task to a new status. The status is validated before the
// task is looked up.
func (s *Store) SetStatus(ctx context.Context, id int, status string) (Transition, error) {
	to, err := ParseStatus(status)
	if err != nil {
		return Transition{}, err
	}
	var tr Transition
	err = s.mutate(ctx, func(st *State) error {
		i, err := locate(st.Tasks, id)
		if err != nil {
			return err
		}
		tr.From = st.Tasks[i].Status
		tr.To = to
		st.Tasks[i].Status = to
		st.Tasks[i].UpdatedAt = s.timestamp()
		tr.Task = st.Tasks[i]
		return nil
	})
	if err != nil {
		return Transition{}, err
	}
	log.Debug().Int("task_id", id).Str("from", tr.From.String()).Str("to", tr.To.String()).Msg("task status changed")
	return tr, nil
}

// ListByStatus returns all tasks, or only those with the given status when
// filter is not empty. It returns ErrNoTasks when the store is empty, so an
// empty store can be told apart from a filter that matched nothing.
func (s *Store) ListByStatus(ctx context.Context, filter string) ([]Task, error) {
	var want Status
	if filter != "" {
		st, err := ParseStatus(filter)
		if err != nil {
			return nil, err
		}
		want = st
	}
	var out []Task
	err := s.read(ctx, func(st State) error {
		if len(st.Tasks) == 0 {
			return ErrNoTasks
		}
		out = make([]Task, 0, len(st.Tasks))
		for _, t := range st.Tasks {
			if want == "" || t.Status == want {
				out = append(out, t)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// nextFree returns the id Add assigns next. It never wraps around: ids are
// exhausted once the next id would exceed MaxID.
func nextFree(st State) (int, error) {
	id := st.NextID
	if n := len(st.Tasks); n > 0 {
		last := st.Tasks[n-1].ID
		if last >= MaxID {
			return 0, ErrIDExhausted
		}
		id = max(id, last+1)
	}
	if id < 0 || id > MaxID {
		return 0, ErrIDExhausted
	}
	return id, nil
}

func locate(tasks []Task, id int) (int, error) {
	if len(tasks) == 0 {
		return -1, &NotFoundError{ID: id, Empty: true}
	}
	i, ok := FindByID(tasks, id)
	if !ok {
		return -1, &NotFoundError{ID: id}
	}
	return i, nil
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

func (s *Store) read(ctx context.Context, fn func(State) error) error {
	return s.withLock(ctx, func() error {
		st, err := s.load(ctx)
		if err != nil {
			return err
		}
		return fn(st)
	})
}

func (s *Store) mutate(ctx context.Context, fn func(*State) error) error {
	return s.withLock(ctx, func() error {
		st, err := s.load(ctx)
		if err != nil {
			return err
		}
		if err := fn(&st); err != nil {
			return err
		}
		st.NextID = max(st.NextID, NextID(st.Tasks))
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.backend.Save(ctx, st); err != nil {
			return asIOError("save", s.backend.Path(), err)
		}
		return nil
	})
}

func (s *Store) load(ctx context.Context) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	st, err := s.backend.Load(ctx)
	if err != nil {
		return State{}, asIOError("load", s.backend.Path(), err)
	}
	return st, nil
}

func (s *Store) withLock(ctx context.Context, fn func() error) (err error) {
	unlock, err := s.locker.Lock(ctx)
	if err != nil {
		return asIOError("lock", s.backend.Path(), err)
	}
	defer func() {
		if uerr := unlock(); uerr != nil && err == nil {
			err = fmt.Errorf("release lock: %w", uerr)
		}
	}()
	return fn()
}

func asIOError(op, path string, err error) error {
	var ioErr *IOError
	if errors.As(err, &ioErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &IOError{Op: op, Path: path, Err: err}
}
