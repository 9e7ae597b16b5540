package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/pulse-be/internal/apperr"
	"github.com/isdelr/pulse-be/internal/models"
	"github.com/isdelr/pulse-be/internal/store"
)

const (
	msgTitleRequired   = "Title is required"
	msgInvalidPriority = "Priority must be 1 (Critical), 2 (High), 3 (Medium), or 4 (Low)"
	msgInvalidStatus   = `Status must be "pending", "in-progress", or "completed"`
	msgInvalidDeadline = "Deadline must be a date in YYYY-MM-DD format"
	msgInvalidDesc     = "Description must be a string"
	msgTaskNotFound    = "Task not found"
)

// TaskServiceProvider defines the interface for task services.
type TaskServiceProvider interface {
	ListTasks(ctx context.Context, userID string) ([]models.Task, error)
	CreateTask(ctx context.Context, userID string, in models.NewTask) (models.Task, error)
	UpdateTask(ctx context.Context, userID, taskID string, in models.TaskUpdate) (models.Task, error)
	DeleteTask(ctx context.Context, userID, taskID string) error
}

// TaskService provides business logic for task management.
// Every operation is scoped to the owning user.
type TaskService struct {
	store store.Store
	now   func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(s store.Store) *TaskService {
	return &TaskService{store: s, now: time.Now}
}

// ListTasks returns every task owned by userID, in store order.
func (s *TaskService) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	tasks, err := s.store.ListTasksByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	for i := range tasks {
		tasks[i].Priority = tasks[i].Priority.Resolve()
	}
	return tasks, nil
}

// CreateTask validates the input and stores a new pending task.
func (s *TaskService) CreateTask(ctx context.Context, userID string, in models.NewTask) (models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Task{}, apperr.Validation(msgTitleRequired)
	}

	priority := models.PriorityLow
	if in.Priority.Present && !in.Priority.Null {
		if in.Priority.Err() != nil || !in.Priority.Value.Valid() {
			return models.Task{}, apperr.Validation(msgInvalidPriority)
		}
		priority = in.Priority.Value
	}

	if !validDate(in.Deadline) {
		return models.Task{}, apperr.Validation(msgInvalidDeadline)
	}

	now := s.now().UTC()
	task := models.Task{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		Description: in.Description,
		Status:      models.StatusPending,
		Priority:    priority,
		Deadline:    in.Deadline,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		return models.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// UpdateTask applies the fields present in the update. The ownership check
// runs before any field is validated.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID string, in models.TaskUpdate) (models.Task, error) {
	task, err := s.ownedTask(ctx, userID, taskID, "update")
	if err != nil {
		return models.Task{}, err
	}

	if err := validateUpdate(in); err != nil {
		return models.Task{}, err
	}

	task.Priority = task.Priority.Resolve()
	if in.Title.Present {
		task.Title = strings.TrimSpace(in.Title.Value)
	}
	if in.Description.Present {
		task.Description = in.Description.Value // null clears
	}
	if in.Status.Present {
		task.Status = in.Status.Value
	}
	if in.Deadline.Present {
		task.Deadline = in.Deadline.Value // null clears
	}
	if in.Priority.Present {
		task.Priority = in.Priority.Value
	}
	task.UpdatedAt = s.now().UTC()

	if err := s.store.UpdateTask(ctx, task); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Task{}, apperr.NotFound(msgTaskNotFound)
		}
		return models.Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

// DeleteTask permanently removes a task owned by userID.
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID string) error {
	if _, err := s.ownedTask(ctx, userID, taskID, "delete"); err != nil {
		return err
	}
	if err := s.store.DeleteTask(ctx, taskID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound(msgTaskNotFound)
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// ownedTask loads taskID and checks that userID owns it.
func (s *TaskService) ownedTask(ctx context.Context, userID, taskID, verb string) (models.Task, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Task{}, apperr.NotFound(msgTaskNotFound)
		}
		return models.Task{}, fmt.Errorf("loading task: %w", err)
	}
	if task.UserID != userID {
		return models.Task{}, apperr.Forbidden("You do not have permission to " + verb + " this task")
	}
	return task, nil
}

func validateUpdate(in models.TaskUpdate) error {
	if in.Status.Present && (!in.Status.Set() || !in.Status.Value.Valid()) {
		return apperr.Validation(msgInvalidStatus)
	}
	if in.Priority.Present && (!in.Priority.Set() || !in.Priority.Value.Valid()) {
		return apperr.Validation(msgInvalidPriority)
	}
	if in.Title.Present && (!in.Title.Set() || strings.TrimSpace(in.Title.Value) == "") {
		return apperr.Validation(msgTitleRequired)
	}
	if in.Description.Present && in.Description.Err() != nil {
		return apperr.Validation(msgInvalidDesc)
	}
	if in.Deadline.Present && (in.Deadline.Err() != nil || !validDate(in.Deadline.Value)) {
		return apperr.Validation(msgInvalidDeadline)
	}
	return nil
}

// validDate accepts the empty string (no deadline) or a YYYY-MM-DD date.
func validDate(d string) bool {
	if d == "" {
		return true
	}
	_, err := time.Parse(models.DateLayout, d)
	return err == nil
}
