package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/isdelr/pulse-be/internal/models"
)

const (
	usersFile = "users.json"
	tasksFile = "tasks.json"
)

// userRecord is the persisted shape of a user. The hash is kept under "password".
type userRecord struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r userRecord) toModel() models.User {
	return models.User{ID: r.ID, Email: r.Email, PasswordHash: r.Password, CreatedAt: r.CreatedAt}
}

// JSONStore keeps users and tasks as two JSON arrays in a directory.
// Every read loads the whole collection; every mutation rewrites it.
// mu serializes read-modify-write cycles within the process.
type JSONStore struct {
	mu        sync.Mutex
	usersPath string
	tasksPath string
}

// NewJSONStore creates the data directory if needed.
func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &JSONStore{
		usersPath: filepath.Join(dir, usersFile),
		tasksPath: filepath.Join(dir, tasksFile),
	}, nil
}

func (s *JSONStore) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := readCollection[userRecord](s.usersPath)
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if u.Email == email {
			return u.toModel(), nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *JSONStore) FindUserByID(ctx context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := readCollection[userRecord](s.usersPath)
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u.toModel(), nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *JSONStore) CreateUser(ctx context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := readCollection[userRecord](s.usersPath)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Email == user.Email {
			return ErrDuplicate
		}
	}
	users = append(users, userRecord{
		ID:        user.ID,
		Email:     user.Email,
		Password:  user.PasswordHash,
		CreatedAt: user.CreatedAt,
	})
	return writeCollection(s.usersPath, users)
}

func (s *JSONStore) ListTasksByUser(ctx context.Context, userID string) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := readCollection[models.Task](s.tasksPath)
	if err != nil {
		return nil, err
	}
	owned := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.UserID == userID {
			owned = append(owned, t)
		}
	}
	return owned, nil
}

func (s *JSONStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return readCollection[models.Task](s.tasksPath)
}

func (s *JSONStore) GetTask(ctx context.Context, id string) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := readCollection[models.Task](s.tasksPath)
	if err != nil {
		return models.Task{}, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Task{}, ErrNotFound
}

func (s *JSONStore) CreateTask(ctx context.Context, task models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := readCollection[models.Task](s.tasksPath)
	if err != nil {
		return err
	}
	return writeCollection(s.tasksPath, append(tasks, task))
}

func (s *JSONStore) UpdateTask(ctx context.Context, task models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := readCollection[models.Task](s.tasksPath)
	if err != nil {
		return err
	}
	for i := range tasks {
		if tasks[i].ID == task.ID {
			tasks[i] = task
			return writeCollection(s.tasksPath, tasks)
		}
	}
	return ErrNotFound
}

func (s *JSONStore) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := readCollection[models.Task](s.tasksPath)
	if err != nil {
		return err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			tasks = append(tasks[:i], tasks[i+1:]...)
			return writeCollection(s.tasksPath, tasks)
		}
	}
	return ErrNotFound
}

// Close is a no-op; files are not held open between calls.
func (s *JSONStore) Close() error { return nil }

// readCollection loads a whole collection. A missing file is created empty.
func readCollection[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		records := []T{}
		if err := writeCollection(path, records); err != nil {
			return nil, err
		}
		return records, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}

	var records []T
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
		}
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// writeCollection replaces the file with the indented encoding of records.
// The data goes to a temp file first so readers never see a partial write.
func writeCollection[T any](path string, records []T) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
