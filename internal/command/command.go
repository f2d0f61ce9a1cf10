// Package command translates task-cli invocations into task store calls.
package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/metalagman/taskcli/internal/task"
)

// Names of the supported commands.
const (
	Add            = "add"
	Update         = "update"
	Delete         = "delete"
	MarkTodo       = "mark-todo"
	MarkInProgress = "mark-in-progress"
	MarkDone       = "mark-done"
	List           = "list"
	Show           = "show"
)

// Store is the subset of the task store the dispatcher calls.
type Store interface {
	Add(ctx context.Context, description string) (task.Task, error)
	Update(ctx context.Context, id int, description string) (task.Task, error)
	Delete(ctx context.Context, id int) (task.Task, error)
	SetStatus(ctx context.Context, id int, status string) (task.Transition, error)
	ListByStatus(ctx context.Context, filter string) ([]task.Task, error)
	Get(ctx context.Context, id int) (task.Task, error)
}

// Spec documents one command.
type Spec struct {
	Name  string
	Args  string
	Short string
}

// Specs lists every command in help order.
func Specs() []Spec {
	return []Spec{
		{Name: Add, Args: "<description>", Short: "Add a new task"},
		{Name: Update, Args: "<id> <description>", Short: "Update a task description"},
		{Name: Delete, Args: "<id>", Short: "Delete a task"},
		{Name: MarkTodo, Args: "<id>", Short: "Mark a task as todo"},
		{Name: MarkInProgress, Args: "<id>", Short: "Mark a task as in-progress"},
		{Name: MarkDone, Args: "<id>", Short: "Mark a task as done"},
		{Name: List, Args: "[status]", Short: "List tasks, optionally filtered by status"},
		{Name: Show, Args: "<id>", Short: "Show a single task"},
	}
}

// Result is the outcome of one command.
type Result struct {
	Command    string
	Task       task.Task
	Transition task.Transition
	Tasks      []task.Task
	Filter     string
}

// UsageError reports a malformed invocation.
type UsageError struct {
	Command string
	Msg     string
}

func (e *UsageError) Error() string {
	if e.Command == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Command, e.Msg)
}

// Dispatcher runs commands against a store, one store call per command.
type Dispatcher struct {
	store Store
}

// New creates a dispatcher.
func New(store Store) *Dispatcher {
	return &Dispatcher{store: store}
}

// RunLine splits a command line and runs it. An empty line lists all tasks.
func (d *Dispatcher) RunLine(ctx context.Context, line string) (Result, error) {
	args, err := SplitLine(line)
	if err != nil {
		return Result{}, &UsageError{Msg: err.Error()}
	}
	if len(args) == 0 {
		args = []string{List}
	}
	return d.Run(ctx, args)
}

// Run executes args, where args[0] is the command name.
func (d *Dispatcher) Run(ctx context.Context, args []string) (Result, error) {
	if len(args) == 0 {
		return Result{}, &UsageError{Msg: "missing command"}
	}
	name, rest := args[0], args[1:]
	res := Result{Command: name}

	switch name {
	case Add:
		description, err := joinDescription(name, rest)
		if err != nil {
			return Result{}, err
		}
		res.Task, err = d.store.Add(ctx, description)
		return res, err

	case Update:
		if len(rest) < 2 {
			return Result{}, &UsageError{Command: name, Msg: "usage: update <id> <description>"}
		}
		id, err := parseID(name, rest[0])
		if err != nil {
			return Result{}, err
		}
		description, err := joinDescription(name, rest[1:])
		if err != nil {
			return Result{}, err
		}
		res.Task, err = d.store.Update(ctx, id, description)
		return res, err

	case Delete, Show:
		id, err := singleID(name, rest)
		if err != nil {
			return Result{}, err
		}
		if name == Delete {
			res.Task, err = d.store.Delete(ctx, id)
		} else {
			res.Task, err = d.store.Get(ctx, id)
		}
		return res, err

	case MarkTodo, MarkInProgress, MarkDone:
		id, err := singleID(name, rest)
		if err != nil {
			return Result{}, err
		}
		res.Transition, err = d.store.SetStatus(ctx, id, strings.TrimPrefix(name, "mark-"))
		res.Task = res.Transition.Task
		return res, err

	case List:
		if len(rest) > 1 {
			return Result{}, &UsageError{Command: name, Msg: "usage: list [status]"}
		}
		if len(rest) == 1 {
			res.Filter = strings.TrimSpace(rest[0])
		}
		var err error
		res.Tasks, err = d.store.ListByStatus(ctx, res.Filter)
		return res, err
	}
	return Result{}, &UsageError{Msg: fmt.Sprintf("unknown command %q", name)}
}

func joinDescription(name string, args []string) (string, error) {
	description := strings.TrimSpace(strings.Join(args, " "))
	if description == "" {
		return "", &UsageError{Command: name, Msg: "description is required"}
	}
	return description, nil
}

func singleID(name string, args []string) (int, error) {
	if len(args) != 1 {
		return 0, &UsageError{Command: name, Msg: fmt.Sprintf("usage: %s <id>", name)}
	}
	return parseID(name, args[0])
}

func parseID(name, raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id < 0 {
		return 0, &UsageError{Command: name, Msg: fmt.Sprintf("invalid task id %q", raw)}
	}
	return id, nil
}
