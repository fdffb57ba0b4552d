// Package todocollab provides a client for the todo-collab API: room
// creation, the task operations of a room view, and session handling.
package todocollab

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a todo-collab API client. Token is set by SignIn and sent
// as a bearer credential on every subsequent call.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient creates a new todo-collab client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("todo-collab error %d: %s", e.StatusCode, e.Message)
}

// IsConflict reports whether the error is a room-id conflict.
func IsConflict(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == http.StatusConflict
}

// IsNotFound reports whether the error is a missing room or task.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == http.StatusNotFound
}

// doRequest performs an HTTP request, decoding errors into APIError.
func (c *Client) doRequest(method, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequest(method, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.Unmarshal(respBody, &errResp)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
	}

	return respBody, nil
}

// User is the authenticated identity echoed back by the server.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// Session is the result of signing in.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

// SignIn establishes a session and stores the token on the client.
func (c *Client) SignIn(name, email string) (*Session, error) {
	body, _ := json.Marshal(map[string]string{"name": name, "email": email})
	respBody, err := c.doRequest("POST", "/auth/signin", body)
	if err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(respBody, &session); err != nil {
		return nil, err
	}
	c.Token = session.Token
	return &session, nil
}

// SignOut terminates the session and clears the stored token.
func (c *Client) SignOut() error {
	_, err := c.doRequest("POST", "/auth/signout", nil)
	if err != nil {
		return err
	}
	c.Token = ""
	return nil
}

// Room is a shared task list.
type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Task is one to-do item in a room.
type Task struct {
	ID        string    `json:"id"`
	Text      string    `json:"task"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateRoom creates a room with a caller-chosen id. A blank name gets
// the server default. IsConflict distinguishes a taken id.
func (c *Client) CreateRoom(id, name string) (*Room, error) {
	body, _ := json.Marshal(map[string]string{"id": id, "name": name})
	respBody, err := c.doRequest("POST", "/rooms", body)
	if err != nil {
		return nil, err
	}

	var room Room
	if err := json.Unmarshal(respBody, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// GetRoom fetches a room record.
func (c *Client) GetRoom(id string) (*Room, error) {
	respBody, err := c.doRequest("GET", "/rooms/"+id, nil)
	if err != nil {
		return nil, err
	}

	var room Room
	if err := json.Unmarshal(respBody, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// AddTask creates a task in the room.
func (c *Client) AddTask(roomID, text string) (*Task, error) {
	body, _ := json.Marshal(map[string]string{"task": text})
	respBody, err := c.doRequest("POST", "/rooms/"+roomID+"/tasks", body)
	if err != nil {
		return nil, err
	}

	var task Task
	if err := json.Unmarshal(respBody, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// GetTasks returns every task in the room. An empty room is an empty
// slice with a nil error; fetch failures are returned as errors.
func (c *Client) GetTasks(roomID string) ([]Task, error) {
	respBody, err := c.doRequest("GET", "/rooms/"+roomID+"/tasks", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Tasks []Task `json:"tasks"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// EditTask overwrites the task text.
func (c *Client) EditTask(roomID, taskID, text string) error {
	body, _ := json.Marshal(map[string]string{"task": text})
	_, err := c.doRequest("PUT", "/rooms/"+roomID+"/tasks/"+taskID, body)
	return err
}

// ToggleTaskCompletion sets the completion flag. The caller computes
// the new value from its local view of the task.
func (c *Client) ToggleTaskCompletion(roomID, taskID string, completed bool) error {
	body, _ := json.Marshal(map[string]bool{"completed": completed})
	_, err := c.doRequest("PATCH", "/rooms/"+roomID+"/tasks/"+taskID+"/completed", body)
	return err
}

// DeleteTask removes the task permanently.
func (c *Client) DeleteTask(roomID, taskID string) error {
	_, err := c.doRequest("DELETE", "/rooms/"+roomID+"/tasks/"+taskID, nil)
	return err
}
