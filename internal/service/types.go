// Package service defines the backend-agnostic interface for board operations.
package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ID is an opaque identifier assigned by the server to a note, todo list or
// todo item. The backend emits numbers; IDs made only of digits are sent
// back as JSON numbers, anything else as strings.
type ID string

// UnmarshalJSON accepts a JSON number or string.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON implements json.Marshaler.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) numeric() bool {
	if id == "" || len(id) > 18 {
		return false
	}
	return strings.Trim(string(id), "0123456789") == ""
}

// Note is a persisted free-text note on a board.
type Note struct {
	ID   ID     `json:"id"`
	Text string `json:"text"`
}

// TodoItem is a checkable task inside a todo list.
type TodoItem struct {
	ID        ID     `json:"id"`
	ListID    ID     `json:"list_id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// TodoList is an ordered collection of todo items.
type TodoList struct {
	ID       ID         `json:"id"`
	Title    string     `json:"title"`
	Deadline *time.Time `json:"deadline,omitempty"`
	Items    []TodoItem `json:"items"`
}

// NewTodoList is the request to create a todo list with its first item.
type NewTodoList struct {
	Title       string
	InitialText string
	Deadline    *time.Time
}

// CreatedTodoList carries the identifiers the server assigned on creation.
type CreatedTodoList struct {
	ListID ID
	ItemID ID
}

// TodoItemUpdate replaces an item's text and completion state.
type TodoItemUpdate struct {
	ListID    ID
	ItemID    ID
	Text      string
	Completed bool
}

// Registration is the registration form as submitted to the server.
type Registration struct {
	Email     string
	Username  string
	Password  string
	Password2 string
}
