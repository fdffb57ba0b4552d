package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Satyam216/todo-collab/internal/metrics"
	"github.com/Satyam216/todo-collab/internal/store"
)

// Room id validation: alphanumeric, hyphens, underscores, 1-50 chars.
// The id is user-chosen and appears in URLs, so it is kept strict.
var roomIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,50}$`)

// CreateRoomRequest represents the room creation request.
type CreateRoomRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateRoom creates a room keyed by the caller-chosen id. Taken ids
// answer 409; the existing room is never overwritten.
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" {
		h.Error(w, http.StatusBadRequest, "room id is required")
		return
	}
	if !roomIDRegex.MatchString(req.ID) {
		h.Error(w, http.StatusBadRequest, "room id must be 1-50 characters, alphanumeric with hyphens and underscores only")
		return
	}

	room, err := h.store.CreateRoom(r.Context(), req.ID, req.Name)
	if err != nil {
		if errors.Is(err, store.ErrRoomExists) {
			metrics.RoomCreateConflicts.Inc()
		}
		h.storeError(w, r, err)
		return
	}

	metrics.RoomsCreated.Inc()
	h.JSON(w, http.StatusCreated, room)
}

// GetRoom returns the room record for the room view header.
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	room, err := h.store.GetRoom(r.Context(), roomID)
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	h.JSON(w, http.StatusOK, room)
}
