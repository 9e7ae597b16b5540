// Package store provides the record store for users and tasks.
//
// Two backends implement Store: JSONStore keeps each collection in a flat
// JSON file and rewrites the whole file on every mutation; SQLStore keeps
// them in SQLite. Neither coordinates concurrent writers beyond what the
// backend itself offers, so the contract is last write wins.
package store

import (
	"context"
	"errors"

	"github.com/isdelr/pulse-be/internal/models"
)

var (
	// ErrNotFound is returned when no record matches the lookup key.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique field is already taken.
	ErrDuplicate = errors.New("duplicate record")
)

// Store is the record access contract used by the services.
type Store interface {
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	FindUserByID(ctx context.Context, id string) (models.User, error)
	CreateUser(ctx context.Context, user models.User) error

	ListTasksByUser(ctx context.Context, userID string) ([]models.Task, error)
	ListTasks(ctx context.Context) ([]models.Task, error)
	GetTask(ctx context.Context, id string) (models.Task, error)
	CreateTask(ctx context.Context, task models.Task) error
	// UpdateTask replaces the stored task with the same ID.
	UpdateTask(ctx context.Context, task models.Task) error
	DeleteTask(ctx context.Context, id string) error

	Close() error
}
