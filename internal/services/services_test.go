package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/isdelr/pulse-be/internal/auth"
	"github.com/isdelr/pulse-be/internal/models"
	"github.com/isdelr/pulse-be/internal/store"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fixedClock returns a clock that reports t and can be moved forward.
type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time          { return c.t }
func (c *fixedClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newJSONStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewJSONStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func newUserService(t *testing.T, s store.Store) *UserService {
	t.Helper()
	return NewUserService(s, auth.NewTokenManager("test-secret", time.Hour), bcrypt.MinCost)
}

func newTaskService(s store.Store, clock *fixedClock) *TaskService {
	svc := NewTaskService(s)
	svc.now = clock.Now
	return svc
}

// brokenStore fails every call with err.
type brokenStore struct{ err error }

func (b brokenStore) FindUserByEmail(context.Context, string) (models.User, error) {
	return models.User{}, b.err
}
func (b brokenStore) FindUserByID(context.Context, string) (models.User, error) {
	return models.User{}, b.err
}
func (b brokenStore) CreateUser(context.Context, models.User) error { return b.err }
func (b brokenStore) ListTasksByUser(context.Context, string) ([]models.Task, error) {
	return nil, b.err
}
func (b brokenStore) ListTasks(context.Context) ([]models.Task, error)     { return nil, b.err }
func (b brokenStore) GetTask(context.Context, string) (models.Task, error) { return models.Task{}, b.err }
func (b brokenStore) CreateTask(context.Context, models.Task) error        { return b.err }
func (b brokenStore) UpdateTask(context.Context, models.Task) error        { return b.err }
func (b brokenStore) DeleteTask(context.Context, string) error             { return b.err }
func (b brokenStore) Close() error                                         { return nil }

var errDisk = errors.New("tasks.json: input/output error")
