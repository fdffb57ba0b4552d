package models

import "time"

// Room is a shared task list. The ID is chosen by the creating user and
// doubles as the document key; rooms are never renamed or deleted.
type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultRoomName is used when a room is created without a display name.
const DefaultRoomName = "Untitled Room"
