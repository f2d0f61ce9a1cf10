package command

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/metalagman/taskcli/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	path := filepath.Join(t.TempDir(), task.DefaultFileName)
	return New(task.NewStore(task.NewJSONBackend(path)))
}

func TestDispatcher_Scenario(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d := newDispatcher(t)

	res, err := d.Run(ctx, []string{Add, "buy", "milk"})
	require.NoError(t, err)
	assert.Equal(t, Add, res.Command)
	assert.Equal(t, 0, res.Task.ID)
	assert.Equal(t, "buy milk", res.Task.Description)

	res, err = d.Run(ctx, []string{MarkInProgress, "0"})
	require.NoError(t, err)
	assert.Equal(t, task.StatusTodo, res.Transition.From)
	assert.Equal(t, task.StatusInProgress, res.Transition.To)
	assert.Equal(t, task.StatusInProgress, res.Task.Status)

	res, err = d.RunLine(ctx, `update 0 "buy milk and eggs"`)
	require.NoError(t, err)
	assert.Equal(t, "buy milk and eggs", res.Task.Description)

	res, err = d.Run(ctx, []string{MarkDone, "0"})
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, res.Transition.From)

	res, err = d.RunLine(ctx, "list done")
	require.NoError(t, err)
	assert.Equal(t, "done", res.Filter)
	require.Len(t, res.Tasks, 1)

	res, err = d.Run(ctx, []string{MarkTodo, "0"})
	require.NoError(t, err)
	assert.Equal(t, task.StatusTodo, res.Task.Status)

	res, err = d.Run(ctx, []string{Show, "0"})
	require.NoError(t, err)
	assert.Equal(t, "buy milk and eggs", res.Task.Description)

	res, err = d.RunLine(ctx, "delete 0")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Task.ID)

	_, err = d.RunLine(ctx, "")
	assert.ErrorIs(t, err, task.ErrNoTasks)
}

func TestDispatcher_UsageErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d := newDispatcher(t)

	cases := [][]string{
		{},
		{"frobnicate"},
		{Add},
		{Add, "   "},
		{Update, "0"},
		{Update, "x", "desc"},
		{Delete},
		{Delete, "-1"},
		{Delete, "1", "2"},
		{MarkDone, "abc"},
		{List, "todo", "done"},
	}
	for _, args := range cases {
		_, err := d.Run(ctx, args)
		var usage *UsageError
		assert.ErrorAs(t, err, &usage, "args %q", args)
	}

	_, err := d.RunLine(ctx, `add "unterminated`)
	var usage *UsageError
	assert.ErrorAs(t, err, &usage)
}

func TestDispatcher_ForwardsStoreErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d := newDispatcher(t)

	_, err := d.Run(ctx, []string{Add, "a"})
	require.NoError(t, err)

	_, err = d.Run(ctx, []string{Delete, "9"})
	assert.ErrorIs(t, err, task.ErrNotFound)

	_, err = d.Run(ctx, []string{List, "blocked"})
	assert.ErrorIs(t, err, task.ErrInvalidStatus)
}

type recordingStore struct {
	Store
	calls []string
}

func (s *recordingStore) SetStatus(_ context.Context, id int, status string) (task.Transition, error) {
	s.calls = append(s.calls, status)
	return task.Transition{Task: task.Task{ID: id}, To: task.Status(status)}, nil
}

func TestDispatcher_MarkCommandsMapToStatuses(t *testing.T) {
	t.Parallel()
	store := &recordingStore{}
	d := New(store)

	for _, name := range []string{MarkTodo, MarkInProgress, MarkDone} {
		_, err := d.Run(context.Background(), []string{name, "3"})
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"todo", "in-progress", "done"}, store.calls)
}

func TestSplitLine(t *testing.T) {
	t.Parallel()

	cases := map[string][]string{
		``:                            nil,
		`   `:                         nil,
		`list`:                        {"list"},
		`add "buy milk"`:              {"add", "buy milk"},
		`add 'single quoted'`:         {"add", "single quoted"},
		`update 3   "say \"hi\""`:     {"update", "3", `say "hi"`},
		`add ""`:                      {"add", ""},
		`add half"quoted words" tail`: {"add", "halfquoted words", "tail"},
		"mark-done\t7":                {"mark-done", "7"},
		`add "it's fine"`:             {"add", "it's fine"},
	}
	for line, want := range cases {
		got, err := SplitLine(line)
		require.NoError(t, err, "line %q", line)
		assert.Equal(t, want, got, "line %q", line)
	}

	_, err := SplitLine(`add "open`)
	assert.Error(t, err)
	_, err = SplitLine(`add "trailing\`)
	assert.Error(t, err)
}
