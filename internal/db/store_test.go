package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/metalagman/taskcli/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.db")
	database, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return NewStore(database, path), path
}

func TestStore_EmptyDatabase(t *testing.T) {
	t.Parallel()
	backend, _ := openTestStore(t)

	st, err := backend.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, st.Tasks)
	assert.Equal(t, 0, st.NextID)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend, _ := openTestStore(t)

	at := time.Date(2026, 3, 4, 5, 6, 7, 890, time.UTC)
	want := task.State{
		Tasks: []task.Task{
			{ID: 1, Description: "a", Status: task.StatusTodo, CreatedAt: at, UpdatedAt: at},
			{ID: 4, Description: "b", Status: task.StatusDone, CreatedAt: at, UpdatedAt: at.Add(time.Minute)},
		},
		NextID: 7,
	}
	require.NoError(t, backend.Save(ctx, want))

	got, err := backend.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// A second save replaces rather than appends.
	want.Tasks = want.Tasks[:1]
	require.NoError(t, backend.Save(ctx, want))
	got, err = backend.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStore_BacksTaskStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend, path := openTestStore(t)
	store := task.NewStore(backend)
	assert.Equal(t, path, store.Path())

	a, err := store.Add(ctx, "a")
	require.NoError(t, err)
	b, err := store.Add(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 0, a.ID)
	assert.Equal(t, 1, b.ID)

	_, err = store.Delete(ctx, 1)
	require.NoError(t, err)
	c, err := store.Add(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 2, c.ID)

	tr, err := store.SetStatus(ctx, 2, "done")
	require.NoError(t, err)
	assert.Equal(t, task.StatusTodo, tr.From)

	done, err := store.ListByStatus(ctx, "done")
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "c", done[0].Description)

	_, err = store.Update(ctx, 1, "gone")
	assert.ErrorIs(t, err, task.ErrNotFound)
}

func TestStore_RejectsInvalidStatusRows(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend, _ := openTestStore(t)

	// The CHECK constraint keeps bad statuses out of the table.
	_, err := backend.DB().ExecContext(ctx, `INSERT INTO tasks(id, description, status, created_at, updated_at) VALUES(0, 'a', 'blocked', '2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z')`)
	require.Error(t, err)

	_, err = backend.DB().ExecContext(ctx, `INSERT INTO tasks(id, description, status, created_at, updated_at) VALUES(0, 'a', 'todo', 'yesterday', '2024-01-01T00:00:00Z')`)
	require.NoError(t, err)
	_, err = backend.Load(ctx)
	assert.ErrorIs(t, err, task.ErrCorrupt)
}
