package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/Satyam216/todo-collab/internal/api/middleware"
	"github.com/Satyam216/todo-collab/internal/hub"
	"github.com/Satyam216/todo-collab/internal/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin is already handled at the CORS layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WatchRoom upgrades the connection and streams the room's task-change
// events until the client disconnects or its session is revoked.
func (h *Handler) WatchRoom(w http.ResponseWriter, r *http.Request) {
	liveHub, ok := h.notifier.(*hub.Hub)
	if !ok || liveHub == nil {
		h.Error(w, http.StatusServiceUnavailable, "live updates not available")
		return
	}

	ident := middleware.IdentityFromContext(r.Context())
	if ident == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	roomID := chi.URLParam(r, "roomID")
	if _, err := h.store.GetRoom(r.Context(), roomID); err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			h.Error(w, http.StatusNotFound, "room not found")
			return
		}
		h.storeError(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the response.
		h.logger.Warn().Err(err).Str("room_id", roomID).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(conn, roomID, ident.SessionID)
	client.Serve(liveHub)
}
