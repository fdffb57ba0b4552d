package store

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/Satyam216/todo-collab/internal/models"
)

// Sentinel errors returned by DataStore implementations. Handlers map
// these to HTTP status codes; everything else is a 500.
var (
	ErrRoomExists   = errors.New("store: room id already exists")
	ErrRoomNotFound = errors.New("store: room not found")
	ErrTaskNotFound = errors.New("store: task not found")
	ErrEmptyRoomID  = errors.New("store: room id is required")
	ErrEmptyTaskID  = errors.New("store: task id is required")
	ErrEmptyText    = errors.New("store: task text is required")
)

// DataStore defines persistent storage for users, rooms and their tasks.
// Both PostgresStore and SQLiteStore implement this interface.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// User operations
	UpsertUser(ctx context.Context, name, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// Room operations. CreateRoom fails with ErrRoomExists when the id is
	// taken; existing room data is never overwritten.
	CreateRoom(ctx context.Context, id, name string) (*models.Room, error)
	GetRoom(ctx context.Context, id string) (*models.Room, error)

	// Task operations, all scoped by room id. ListTasks distinguishes an
	// empty room (empty slice, nil error) from a failed fetch (non-nil
	// error). SetTaskCompleted writes the caller's value blindly: no
	// read-before-write, last writer wins.
	AddTask(ctx context.Context, roomID, text string) (*models.Task, error)
	ListTasks(ctx context.Context, roomID string) ([]models.Task, error)
	UpdateTaskText(ctx context.Context, roomID, taskID, text string) error
	SetTaskCompleted(ctx context.Context, roomID, taskID string, completed bool) error
	DeleteTask(ctx context.Context, roomID, taskID string) error
}

// validateRoomID rejects blank room ids before any storage call.
func validateRoomID(roomID string) error {
	if strings.TrimSpace(roomID) == "" {
		return ErrEmptyRoomID
	}
	return nil
}

// validateTaskRef rejects blank room or task ids before any storage call.
func validateTaskRef(roomID, taskID string) error {
	if err := validateRoomID(roomID); err != nil {
		return err
	}
	if strings.TrimSpace(taskID) == "" {
		return ErrEmptyTaskID
	}
	return nil
}

// normalizeText trims task text; a result of "" means the input was
// blank and must be rejected.
func normalizeText(text string) string {
	return strings.TrimSpace(text)
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// newTaskID returns a ULID for a task created now. ULIDs are opaque to
// callers but sort by creation time, which keeps listing stable.
func newTaskID(now time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}

func newTaskIDNow() string {
	return newTaskID(time.Now().UTC())
}
