package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Satyam216/todo-collab/internal/hub"
	"github.com/Satyam216/todo-collab/internal/metrics"
	"github.com/Satyam216/todo-collab/internal/models"
)

// AddTaskRequest represents the task creation request.
type AddTaskRequest struct {
	Task string `json:"task"`
}

// EditTaskRequest represents the text edit request.
type EditTaskRequest struct {
	Task string `json:"task"`
}

// ToggleTaskRequest carries the caller-computed completion flag. The
// server writes it as-is: concurrent toggles race and the last write
// wins, matching the collaboration model of the room view.
type ToggleTaskRequest struct {
	Completed bool `json:"completed"`
}

// TaskListResponse represents the room's full task collection.
type TaskListResponse struct {
	RoomID string        `json:"room_id"`
	Tasks  []models.Task `json:"tasks"`
}

// AddTask creates a task in the room.
func (h *Handler) AddTask(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	var req AddTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	task, err := h.store.AddTask(r.Context(), roomID, req.Task)
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	metrics.TaskOperations.WithLabelValues("add").Inc()
	h.broadcast(hub.Event{Type: hub.TaskAdded, RoomID: roomID, Task: task})
	h.JSON(w, http.StatusCreated, task)
}

// ListTasks returns every task in the room. An empty room is an empty
// list with status 200; a failed fetch is an explicit error, never
// disguised as an empty result.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	tasks, err := h.store.ListTasks(r.Context(), roomID)
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	h.JSON(w, http.StatusOK, TaskListResponse{RoomID: roomID, Tasks: tasks})
}

// EditTask overwrites the task text. Blank text is rejected without
// mutating the stored task.
func (h *Handler) EditTask(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	taskID := chi.URLParam(r, "taskID")

	var req EditTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.store.UpdateTaskText(r.Context(), roomID, taskID, req.Task); err != nil {
		h.storeError(w, r, err)
		return
	}

	metrics.TaskOperations.WithLabelValues("edit").Inc()
	h.broadcast(hub.Event{Type: hub.TaskEdited, RoomID: roomID, TaskID: taskID})
	h.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// ToggleTask sets the completion flag to the caller-supplied value.
// Idempotent under repeated identical calls.
func (h *Handler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	taskID := chi.URLParam(r, "taskID")

	var req ToggleTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.store.SetTaskCompleted(r.Context(), roomID, taskID, req.Completed); err != nil {
		h.storeError(w, r, err)
		return
	}

	metrics.TaskOperations.WithLabelValues("toggle").Inc()
	h.broadcast(hub.Event{Type: hub.TaskToggled, RoomID: roomID, TaskID: taskID})
	h.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteTask removes the task permanently. No tombstone, no undo.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	taskID := chi.URLParam(r, "taskID")

	if err := h.store.DeleteTask(r.Context(), roomID, taskID); err != nil {
		h.storeError(w, r, err)
		return
	}

	metrics.TaskOperations.WithLabelValues("delete").Inc()
	h.broadcast(hub.Event{Type: hub.TaskDeleted, RoomID: roomID, TaskID: taskID})
	h.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
