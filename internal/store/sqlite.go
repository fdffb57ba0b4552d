package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/Satyam216/todo-collab/internal/models"
)

// SQLiteStore handles SQLite database operations. It is the default
// backend when no DATABASE_URL is configured and the backend used by
// the store tests.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/todocollab.db".
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/todocollab.db"
	}

	// Ensure directory exists (skip for in-memory databases)
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if dbPath == ":memory:" {
		// Every pooled connection would otherwise see its own empty
		// in-memory database.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT DEFAULT '',
		email TEXT UNIQUE NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS rooms (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT 'Untitled Room',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		room_id TEXT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		task TEXT DEFAULT '',
		completed INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_room ON tasks(room_id);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// UpsertUser creates a user for the email or refreshes the name of an
// existing one, returning the stored record either way.
func (s *SQLiteStore) UpsertUser(ctx context.Context, name, email string) (*models.User, error) {
	id := uuid.New()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at
	`, id.String(), name, email, now, now)
	if err != nil {
		return nil, err
	}

	user := &models.User{}
	var rawID string
	err = s.db.QueryRowContext(ctx, `
		SELECT id, name, email, created_at, updated_at FROM users WHERE email = ?
	`, email).Scan(&rawID, &user.Name, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	user.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by ID. Returns nil, nil when not found.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{ID: id}
	err := s.db.QueryRowContext(ctx, `
		SELECT name, email, created_at, updated_at FROM users WHERE id = ?
	`, id.String()).Scan(&user.Name, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// CreateRoom creates a room keyed by the caller-chosen id. A taken id
// fails with ErrRoomExists; the existing record is left untouched.
func (s *SQLiteStore) CreateRoom(ctx context.Context, id, name string) (*models.Room, error) {
	if err := validateRoomID(id); err != nil {
		return nil, err
	}
	if normalizeText(name) == "" {
		name = models.DefaultRoomName
	}
	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO rooms (id, name, created_at) VALUES (?, ?, ?)
	`, id, name, now)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrRoomExists
	}

	return &models.Room{ID: id, Name: name, CreatedAt: now}, nil
}

// GetRoom retrieves a room by id.
func (s *SQLiteStore) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	if err := validateRoomID(id); err != nil {
		return nil, err
	}
	room := &models.Room{ID: id}
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(name, ''), created_at FROM rooms WHERE id = ?
	`, id).Scan(&room.Name, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

// AddTask creates a task under the room with completed=false and a
// server-assigned id and timestamp.
func (s *SQLiteStore) AddTask(ctx context.Context, roomID, text string) (*models.Task, error) {
	if err := validateRoomID(roomID); err != nil {
		return nil, err
	}
	text = normalizeText(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:        newTaskID(now),
		RoomID:    roomID,
		Text:      text,
		Completed: false,
		CreatedAt: now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, room_id, task, completed, created_at)
		VALUES (?, ?, ?, 0, ?)
	`, task.ID, roomID, text, now)
	if err != nil {
		if isSQLiteFKViolation(err) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return task, nil
}

// ListTasks returns every task in the room. Stored nulls normalize to
// "" and false. An empty room yields an empty slice and nil error.
func (s *SQLiteStore) ListTasks(ctx context.Context, roomID string) ([]models.Task, error) {
	if err := validateRoomID(roomID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(task, ''), COALESCE(completed, 0), created_at
		FROM tasks WHERE room_id = ? ORDER BY id
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		task := models.Task{RoomID: roomID}
		if err := rows.Scan(&task.ID, &task.Text, &task.Completed, &task.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// UpdateTaskText overwrites the task text only. Blank text is rejected
// before touching storage; completed and created_at are untouched.
func (s *SQLiteStore) UpdateTaskText(ctx context.Context, roomID, taskID, text string) error {
	if err := validateTaskRef(roomID, taskID); err != nil {
		return err
	}
	text = normalizeText(text)
	if text == "" {
		return ErrEmptyText
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET task = ? WHERE id = ? AND room_id = ?
	`, text, taskID, roomID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// SetTaskCompleted writes the caller-supplied completion flag.
func (s *SQLiteStore) SetTaskCompleted(ctx context.Context, roomID, taskID string, completed bool) error {
	if err := validateTaskRef(roomID, taskID); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET completed = ? WHERE id = ? AND room_id = ?
	`, completed, taskID, roomID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// DeleteTask removes the task permanently.
func (s *SQLiteStore) DeleteTask(ctx context.Context, roomID, taskID string) error {
	if err := validateTaskRef(roomID, taskID); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM tasks WHERE id = ? AND room_id = ?
	`, taskID, roomID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// requireRowAffected maps a zero-row mutation to ErrTaskNotFound.
func requireRowAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// isSQLiteFKViolation reports whether err is a foreign key constraint
// failure (task inserted under a room that does not exist).
func isSQLiteFKViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}
