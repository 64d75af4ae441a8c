package service

import (
	"context"
	"errors"
	"io"
)

// Errors shared by all backends. Implementations wrap these so callers can
// classify failures with errors.Is.
var (
	// ErrUnauthorized means the session token is missing, expired or rejected.
	ErrUnauthorized = errors.New("not logged in or session expired (run: boardctl login)")

	// ErrNotFound means the board, note, list or item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrRejected means the server refused a form submission.
	ErrRejected = errors.New("rejected by server")
)

// Board defines the interface for the board backend.
// The implementation is bound to one board; note and todo operations act on it.
// Commands never talk HTTP directly.
type Board interface {
	// CheckEmail reports whether an account with this email exists.
	CheckEmail(ctx context.Context, email string) (bool, error)

	// Register submits the registration form.
	Register(ctx context.Context, reg Registration) error

	// Login exchanges credentials for a session token.
	Login(ctx context.Context, email, password string) (string, error)

	// CreateBoard creates a board and returns its ID.
	CreateBoard(ctx context.Context, name string) (ID, error)

	// AddText creates a note and returns its ID.
	AddText(ctx context.Context, text string) (ID, error)

	// UpdateText replaces a note's text.
	UpdateText(ctx context.Context, textID ID, text string) error

	// CreateTodoList creates a list together with its first item.
	CreateTodoList(ctx context.Context, req NewTodoList) (CreatedTodoList, error)

	// AddTodoItem appends an item to a list and returns its ID.
	AddTodoItem(ctx context.Context, listID ID, text string) (ID, error)

	// UpdateTodoItem replaces an item's text and completion state.
	UpdateTodoItem(ctx context.Context, upd TodoItemUpdate) error

	// UploadImage uploads a profile photo and returns its URL.
	UploadImage(ctx context.Context, filename string, r io.Reader) (string, error)

	// ChangePassword changes the account password.
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error
}
