package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/pulse-be/internal/api/respond"
	"github.com/isdelr/pulse-be/internal/auth"
	"github.com/isdelr/pulse-be/internal/models"
	"github.com/isdelr/pulse-be/internal/services"
	"github.com/rs/zerolog/log"
)

const msgInvalidBody = "Invalid request body"

// TaskHandler handles HTTP requests related to tasks.
type TaskHandler struct {
	service services.TaskServiceProvider
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service services.TaskServiceProvider) *TaskHandler {
	return &TaskHandler{service: service}
}

// GetAll handles the request to list the caller's tasks.
func (h *TaskHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	tasks, err := h.service.ListTasks(r.Context(), id.UserID)
	if err != nil {
		respond.Err(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	respond.Data(w, http.StatusOK, tasks)
}

// Create handles the request to create a new task.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var payload models.NewTask
	if err := decodeBody(r, &payload); err != nil {
		respond.Fail(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	task, err := h.service.CreateTask(r.Context(), id.UserID, payload)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	log.Info().Str("user_id", id.UserID).Str("task_id", task.ID).Msg("Task created")
	respond.Data(w, http.StatusCreated, task)
}

// Update handles the request to partially update a task.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	taskID := chi.URLParam(r, "id")

	var payload models.TaskUpdate
	if err := decodeBody(r, &payload); err != nil {
		respond.Fail(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	task, err := h.service.UpdateTask(r.Context(), id.UserID, taskID, payload)
	if err != nil {
		log.Debug().Err(err).Str("user_id", id.UserID).Str("task_id", taskID).Msg("Task update rejected")
		respond.Err(w, r, err)
		return
	}
	respond.Data(w, http.StatusOK, task)
}

// Delete handles the request to delete a task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	taskID := chi.URLParam(r, "id")

	if err := h.service.DeleteTask(r.Context(), id.UserID, taskID); err != nil {
		respond.Err(w, r, err)
		return
	}

	log.Info().Str("user_id", id.UserID).Str("task_id", taskID).Msg("Task deleted")
	w.WriteHeader(http.StatusNoContent)
}

// decodeBody decodes a JSON request body into v. An empty body decodes as {}.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// identity pulls the caller from the request context, answering 401 when absent.
func identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		log.Error().Str("path", r.URL.Path).Msg("Could not retrieve identity from context")
		respond.Fail(w, http.StatusUnauthorized, "Not authenticated")
	}
	return id, ok
}
