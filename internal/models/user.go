package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated identity. The application keeps only the
// handle needed to attribute sessions; there is no profile beyond this.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
