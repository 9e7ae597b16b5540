package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/isdelr/pulse-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends returns a fresh instance of every Store implementation.
func backends(t *testing.T) map[string]Store {
	t.Helper()

	js, err := NewJSONStore(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)

	ss, err := NewSQLStore(filepath.Join(t.TempDir(), "pulse.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	return map[string]Store{"json": js, "sqlite": ss}
}

var stamp = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func seedUser(t *testing.T, s Store, id, email string) models.User {
	t.Helper()
	u := models.User{ID: id, Email: email, PasswordHash: "hash-" + id, CreatedAt: stamp}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func newTask(id, userID, title string) models.Task {
	return models.Task{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Status:    models.StatusPending,
		Priority:  models.PriorityMedium,
		CreatedAt: stamp,
		UpdatedAt: stamp,
	}
}

func TestStore_Users(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedUser(t, s, "u1", "ada@example.com")

			got, err := s.FindUserByEmail(ctx, "ada@example.com")
			require.NoError(t, err)
			assert.Equal(t, "u1", got.ID)
			assert.Equal(t, "hash-u1", got.PasswordHash)
			assert.True(t, stamp.Equal(got.CreatedAt))

			got, err = s.FindUserByID(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, "ada@example.com", got.Email)

			// Email matching is exact, including case.
			_, err = s.FindUserByEmail(ctx, "Ada@example.com")
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = s.FindUserByID(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			err = s.CreateUser(ctx, models.User{ID: "u2", Email: "ada@example.com", PasswordHash: "x", CreatedAt: stamp})
			assert.ErrorIs(t, err, ErrDuplicate)
		})
	}
}

func TestStore_TaskLifecycle(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedUser(t, s, "u1", "ada@example.com")
			seedUser(t, s, "u2", "bob@example.com")

			t1 := newTask("t1", "u1", "Write report")
			t1.Deadline = "2024-01-01"
			t1.Description = "quarterly"
			require.NoError(t, s.CreateTask(ctx, t1))
			require.NoError(t, s.CreateTask(ctx, newTask("t2", "u2", "Review PR")))
			require.NoError(t, s.CreateTask(ctx, newTask("t3", "u1", "Plan sprint")))

			mine, err := s.ListTasksByUser(ctx, "u1")
			require.NoError(t, err)
			require.Len(t, mine, 2)
			assert.Equal(t, "t1", mine[0].ID)
			assert.Equal(t, "2024-01-01", mine[0].Deadline)
			assert.Equal(t, "quarterly", mine[0].Description)
			assert.Equal(t, "t3", mine[1].ID)

			all, err := s.ListTasks(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 3)

			none, err := s.ListTasksByUser(ctx, "nobody")
			require.NoError(t, err)
			assert.NotNil(t, none)
			assert.Empty(t, none)

			updated := t1
			updated.Status = models.StatusCompleted
			updated.Deadline = ""
			updated.UpdatedAt = stamp.Add(time.Hour)
			require.NoError(t, s.UpdateTask(ctx, updated))

			got, err := s.GetTask(ctx, "t1")
			require.NoError(t, err)
			assert.Equal(t, models.StatusCompleted, got.Status)
			assert.Empty(t, got.Deadline)
			assert.True(t, stamp.Add(time.Hour).Equal(got.UpdatedAt))
			assert.True(t, stamp.Equal(got.CreatedAt))

			assert.ErrorIs(t, s.UpdateTask(ctx, newTask("ghost", "u1", "x")), ErrNotFound)

			require.NoError(t, s.DeleteTask(ctx, "t1"))
			_, err = s.GetTask(ctx, "t1")
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, s.DeleteTask(ctx, "t1"), ErrNotFound)
		})
	}
}

func TestJSONStore_CreatesMissingFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	s, err := NewJSONStore(dir)
	require.NoError(t, err)

	tasks, err := s.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)

	data, err := os.ReadFile(filepath.Join(dir, tasksFile))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestJSONStore_PersistedShape(t *testing.T) {
	dir := t.TempDir()
	s, err := NewJSONStore(dir)
	require.NoError(t, err)
	seedUser(t, s, "u1", "ada@example.com")

	data, err := os.ReadFile(filepath.Join(dir, usersFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"password": "hash-u1"`)
	assert.Contains(t, string(data), "\n  {\n")
}

func TestJSONStore_ReadsLegacyRecords(t *testing.T) {
	dir := t.TempDir()
	// Records written before priorities existed have no priority field.
	require.NoError(t, os.WriteFile(filepath.Join(dir, tasksFile), []byte(`[
  {"id":"old","userId":"u1","title":"Legacy","description":"","status":"pending","createdAt":"2023-05-01T10:00:00.000Z","updatedAt":"2023-05-01T10:00:00.000Z"}
]`), 0o644))

	s, err := NewJSONStore(dir)
	require.NoError(t, err)

	got, err := s.GetTask(context.Background(), "old")
	require.NoError(t, err)
	assert.Equal(t, models.Priority(0), got.Priority)
	assert.Equal(t, models.PriorityLow, got.Priority.Resolve())
}

func TestJSONStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, tasksFile), []byte(`{not json`), 0o644))

	s, err := NewJSONStore(dir)
	require.NoError(t, err)

	_, err = s.ListTasks(context.Background())
	assert.Error(t, err)
}

func TestJSONStore_ConcurrentCreates(t *testing.T) {
	s, err := NewJSONStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.CreateTask(ctx, newTask(fmt.Sprintf("t%d", i), "u1", "Task")))
		}(i)
	}
	wg.Wait()

	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, n)
}
