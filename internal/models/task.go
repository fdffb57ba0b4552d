package models

import "time"

// Task is a single to-do item belonging to exactly one room. IDs are
// server-assigned ULIDs, unique within the owning room.
type Task struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"-"`
	Text      string    `json:"task"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}
