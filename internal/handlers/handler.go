package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Satyam216/todo-collab/internal/auth"
	"github.com/Satyam216/todo-collab/internal/hub"
	"github.com/Satyam216/todo-collab/internal/store"
)

// Notifier receives task-change events for live room views. *hub.Hub
// satisfies it; tests use a recording stub.
type Notifier interface {
	Broadcast(ev hub.Event)
}

// Pinger is anything with a health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	store    store.DataStore
	auth     *auth.Service
	notifier Notifier
	cache    Pinger // Redis when configured, nil otherwise
	logger   zerolog.Logger
}

// NewHandler creates a new Handler. notifier and cache may be nil.
func NewHandler(dataStore store.DataStore, authService *auth.Service, notifier Notifier, cache Pinger, logger zerolog.Logger) *Handler {
	return &Handler{
		store:    dataStore,
		auth:     authService,
		notifier: notifier,
		cache:    cache,
		logger:   logger,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// storeError maps store sentinels to HTTP responses; anything
// unrecognized is logged and reported as a generic failure.
func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrRoomExists):
		h.Error(w, http.StatusConflict, "room id already exists, choose another")
	case errors.Is(err, store.ErrRoomNotFound):
		h.Error(w, http.StatusNotFound, "room not found")
	case errors.Is(err, store.ErrTaskNotFound):
		h.Error(w, http.StatusNotFound, "task not found")
	case errors.Is(err, store.ErrEmptyText):
		h.Error(w, http.StatusBadRequest, "task text is required")
	case errors.Is(err, store.ErrEmptyRoomID), errors.Is(err, store.ErrEmptyTaskID):
		h.Error(w, http.StatusBadRequest, "missing identifier")
	default:
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("store operation failed")
		h.Error(w, http.StatusInternalServerError, "operation failed")
	}
}

// broadcast publishes a task event when a notifier is attached.
func (h *Handler) broadcast(ev hub.Event) {
	if h.notifier != nil {
		h.notifier.Broadcast(ev)
	}
}
