package store

import (
	"context"
	"errors"
	"testing"

	"github.com/Satyam216/todo-collab/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestCreateRoom(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	room, err := s.CreateRoom(ctx, "team-x", "Team X")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if room.ID != "team-x" || room.Name != "Team X" {
		t.Fatalf("unexpected room: %+v", room)
	}

	got, err := s.GetRoom(ctx, "team-x")
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if got.Name != "Team X" {
		t.Fatalf("expected name Team X, got %q", got.Name)
	}
}

func TestCreateRoomDefaultName(t *testing.T) {
	s := newTestStore(t)

	room, err := s.CreateRoom(context.Background(), "blank-name", "   ")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if room.Name != models.DefaultRoomName {
		t.Fatalf("expected default name, got %q", room.Name)
	}
}

func TestCreateRoomConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateRoom(ctx, "taken", "First"); err != nil {
		t.Fatalf("create room: %v", err)
	}

	_, err := s.CreateRoom(ctx, "taken", "Second")
	if !errors.Is(err, ErrRoomExists) {
		t.Fatalf("expected ErrRoomExists, got %v", err)
	}

	// The original record must survive the conflicting attempt.
	room, err := s.GetRoom(ctx, "taken")
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if room.Name != "First" {
		t.Fatalf("conflict overwrote room name: %q", room.Name)
	}
}

func TestCreateRoomEmptyID(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateRoom(context.Background(), "  ", "Name")
	if !errors.Is(err, ErrEmptyRoomID) {
		t.Fatalf("expected ErrEmptyRoomID, got %v", err)
	}
}

func TestGetRoomNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetRoom(context.Background(), "nope")
	if !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestAddTaskThenList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateRoom(ctx, "room", ""); err != nil {
		t.Fatalf("create room: %v", err)
	}

	task, err := s.AddTask(ctx, "room", "  write spec  ")
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	if task.ID == "" {
		t.Fatal("expected server-assigned task id")
	}
	if task.Text != "write spec" {
		t.Fatalf("expected trimmed text, got %q", task.Text)
	}
	if task.Completed {
		t.Fatal("new task must start incomplete")
	}

	tasks, err := s.ListTasks(ctx, "room")
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].ID != task.ID || tasks[0].Text != "write spec" || tasks[0].Completed {
		t.Fatalf("unexpected task: %+v", tasks[0])
	}
}

func TestAddTaskEmptyText(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateRoom(ctx, "room", ""); err != nil {
		t.Fatalf("create room: %v", err)
	}

	if _, err := s.AddTask(ctx, "room", "   "); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}

func TestAddTaskMissingRoom(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddTask(context.Background(), "ghost", "task")
	if !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestListTasksEmptyRoom(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateRoom(ctx, "empty", ""); err != nil {
		t.Fatalf("create room: %v", err)
	}

	tasks, err := s.ListTasks(ctx, "empty")
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", tasks)
	}
}

func TestToggleIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateRoom(ctx, "room", ""); err != nil {
		t.Fatalf("create room: %v", err)
	}
	task, err := s.AddTask(ctx, "room", "toggle me")
	if err != nil {
		t.Fatalf("add task: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := s.SetTaskCompleted(ctx, "room", task.ID, true); err != nil {
			t.Fatalf("toggle true: %v", err)
		}
	}
	if got := listOne(t, s, "room", task.ID); !got.Completed {
		t.Fatal("expected completed=true")
	}

	if err := s.SetTaskCompleted(ctx, "room", task.ID, false); err != nil {
		t.Fatalf("toggle false: %v", err)
	}
	if got := listOne(t, s, "room", task.ID); got.Completed {
		t.Fatal("expected completed=false after toggling back")
	}
}

func TestEditTaskBlankTextRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateRoom(ctx, "room", ""); err != nil {
		t.Fatalf("create room: %v", err)
	}
	task, err := s.AddTask(ctx, "room", "keep me")
	if err != nil {
		t.Fatalf("add task: %v", err)
	}

	if err := s.UpdateTaskText(ctx, "room", task.ID, "   "); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}

	// Round-trip: stored text must be untouched.
	if got := listOne(t, s, "room", task.ID); got.Text != "keep me" {
		t.Fatalf("blank edit mutated stored text: %q", got.Text)
	}
}

func TestEditTaskPreservesCompletion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateRoom(ctx, "room", ""); err != nil {
		t.Fatalf("create room: %v", err)
	}
	task, err := s.AddTask(ctx, "room", "v1")
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	if err := s.SetTaskCompleted(ctx, "room", task.ID, true); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if err := s.UpdateTaskText(ctx, "room", task.ID, "v2"); err != nil {
		t.Fatalf("edit: %v", err)
	}

	got := listOne(t, s, "room", task.ID)
	if got.Text != "v2" || !got.Completed {
		t.Fatalf("edit disturbed other fields: %+v", got)
	}
	if !got.CreatedAt.Equal(task.CreatedAt) {
		t.Fatalf("edit changed created_at: %v != %v", got.CreatedAt, task.CreatedAt)
	}
}

func TestDeleteTask(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateRoom(ctx, "room", ""); err != nil {
		t.Fatalf("create room: %v", err)
	}
	task, err := s.AddTask(ctx, "room", "doomed")
	if err != nil {
		t.Fatalf("add task: %v", err)
	}

	if err := s.DeleteTask(ctx, "room", task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	tasks, err := s.ListTasks(ctx, "room")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, got := range tasks {
		if got.ID == task.ID {
			t.Fatal("deleted task still listed")
		}
	}

	if err := s.DeleteTask(ctx, "room", task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound on repeat delete, got %v", err)
	}
}

func TestTaskRefValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpdateTaskText(ctx, "", "id", "text"); !errors.Is(err, ErrEmptyRoomID) {
		t.Fatalf("expected ErrEmptyRoomID, got %v", err)
	}
	if err := s.SetTaskCompleted(ctx, "room", " ", true); !errors.Is(err, ErrEmptyTaskID) {
		t.Fatalf("expected ErrEmptyTaskID, got %v", err)
	}
	if err := s.DeleteTask(ctx, "room", ""); !errors.Is(err, ErrEmptyTaskID) {
		t.Fatalf("expected ErrEmptyTaskID, got %v", err)
	}
}

func TestTasksScopedToRoom(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		if _, err := s.CreateRoom(ctx, id, ""); err != nil {
			t.Fatalf("create room %s: %v", id, err)
		}
	}
	taskA, err := s.AddTask(ctx, "a", "only in a")
	if err != nil {
		t.Fatalf("add task: %v", err)
	}

	// Operating on a's task through room b must not find it.
	if err := s.UpdateTaskText(ctx, "b", taskA.ID, "hijack"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}

	tasksB, err := s.ListTasks(ctx, "b")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasksB) != 0 {
		t.Fatalf("room b should be empty, got %d tasks", len(tasksB))
	}
}

// TestRoomScenario walks the full collaboration path: create "team-x",
// add a task, complete it, rename it, and verify the final listing.
func TestRoomScenario(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateRoom(ctx, "team-x", "Team X"); err != nil {
		t.Fatalf("create room: %v", err)
	}
	task, err := s.AddTask(ctx, "team-x", "write spec")
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	if err := s.SetTaskCompleted(ctx, "team-x", task.ID, true); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := s.UpdateTaskText(ctx, "team-x", task.ID, "write spec v2"); err != nil {
		t.Fatalf("edit: %v", err)
	}

	tasks, err := s.ListTasks(ctx, "team-x")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Text != "write spec v2" || !tasks[0].Completed {
		t.Fatalf("unexpected final task: %+v", tasks[0])
	}
}

func TestUpsertUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.UpsertUser(ctx, "Satyam", "satyam@example.com")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	second, err := s.UpsertUser(ctx, "Satyam J", "satyam@example.com")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("upsert created a second user: %s != %s", second.ID, first.ID)
	}
	if second.Name != "Satyam J" {
		t.Fatalf("expected refreshed name, got %q", second.Name)
	}

	got, err := s.GetUserByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got == nil || got.Email != "satyam@example.com" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func listOne(t *testing.T, s *SQLiteStore, roomID, taskID string) models.Task {
	t.Helper()
	tasks, err := s.ListTasks(context.Background(), roomID)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	for _, task := range tasks {
		if task.ID == taskID {
			return task
		}
	}
	t.Fatalf("task %s not found in room %s", taskID, roomID)
	return models.Task{}
}
