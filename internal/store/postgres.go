package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Satyam216/todo-collab/internal/models"
)

// pgFKViolation is the PostgreSQL error code for foreign key violations.
const pgFKViolation = "23503"

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// UpsertUser creates a user for the email or refreshes the name of an
// existing one.
func (s *PostgresStore) UpsertUser(ctx context.Context, name, email string) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (name, email)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, updated_at = NOW()
		RETURNING id, name, email, created_at, updated_at
	`, name, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by ID. Returns nil, nil when not found.
func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, email, created_at, updated_at
		FROM users WHERE id = $1
	`, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// CreateRoom creates a room keyed by the caller-chosen id. A taken id
// fails with ErrRoomExists; the existing record is left untouched.
func (s *PostgresStore) CreateRoom(ctx context.Context, id, name string) (*models.Room, error) {
	if err := validateRoomID(id); err != nil {
		return nil, err
	}
	if normalizeText(name) == "" {
		name = models.DefaultRoomName
	}

	room := &models.Room{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO rooms (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
		RETURNING id, name, created_at
	`, id, name).Scan(&room.ID, &room.Name, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// DO NOTHING swallowed the insert: the id is taken.
			return nil, ErrRoomExists
		}
		return nil, err
	}
	return room, nil
}

// GetRoom retrieves a room by id.
func (s *PostgresStore) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	if err := validateRoomID(id); err != nil {
		return nil, err
	}
	room := &models.Room{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, COALESCE(name, ''), created_at FROM rooms WHERE id = $1
	`, id).Scan(&room.ID, &room.Name, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

// AddTask creates a task under the room with completed=false and a
// server-assigned id and timestamp.
func (s *PostgresStore) AddTask(ctx context.Context, roomID, text string) (*models.Task, error) {
	if err := validateRoomID(roomID); err != nil {
		return nil, err
	}
	text = normalizeText(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	task := &models.Task{RoomID: roomID}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, room_id, task, completed)
		VALUES ($1, $2, $3, FALSE)
		RETURNING id, task, completed, created_at
	`, newTaskIDNow(), roomID, text).Scan(
		&task.ID,
		&task.Text,
		&task.Completed,
		&task.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgFKViolation {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return task, nil
}

// ListTasks returns every task in the room. Stored nulls normalize to
// "" and false. An empty room yields an empty slice and nil error.
func (s *PostgresStore) ListTasks(ctx context.Context, roomID string) ([]models.Task, error) {
	if err := validateRoomID(roomID); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, COALESCE(task, ''), COALESCE(completed, FALSE), created_at
		FROM tasks WHERE room_id = $1 ORDER BY id
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
func (s *PostgresStore) UpdateTaskText(ctx context.Context, roomID, taskID, text string) error {
	if err := validateTaskRef(roomID, taskID); err != nil {
		return err
	}
	text = normalizeText(text)
	if text == "" {
		return ErrEmptyText
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE tasks SET task = $1 WHERE id = $2 AND room_id = $3
	`, text, taskID, roomID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// SetTaskCompleted writes the caller-supplied completion flag.
func (s *PostgresStore) SetTaskCompleted(ctx context.Context, roomID, taskID string, completed bool) error {
	if err := validateTaskRef(roomID, taskID); err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE tasks SET completed = $1 WHERE id = $2 AND room_id = $3
	`, completed, taskID, roomID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// DeleteTask removes the task permanently.
func (s *PostgresStore) DeleteTask(ctx context.Context, roomID, taskID string) error {
	if err := validateTaskRef(roomID, taskID); err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `
		DELETE FROM tasks WHERE id = $1 AND room_id = $2
	`, taskID, roomID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}
