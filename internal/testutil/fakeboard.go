// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"boardctl/internal/service"
)

// Call is one recorded backend call.
type Call struct {
	Method string
	ID     service.ID
	ListID service.ID
	Text   string
	Done   bool
}

// FakeBoard is an in-memory implementation of service.Board for testing.
type FakeBoard struct {
	mu       sync.Mutex
	nextID   int
	calls    []Call
	accounts map[string]string // email -> password
	notes    map[service.ID]string
	items    map[service.ID]service.TodoItem
	lists    map[service.ID]string
	deadline map[service.ID]time.Time
	avatar   []byte

	// Token is returned by a successful Login.
	Token string

	// Error injection for testing
	CheckEmailErr     error
	RegisterErr       error
	LoginErr          error
	CreateBoardErr    error
	AddTextErr        error
	UpdateTextErr     error
	CreateTodoListErr error
	AddTodoItemErr    error
	UpdateTodoItemErr error
	UploadImageErr    error
	ChangePasswordErr error

	// BeforeAddText, if set, runs inside AddText before it returns.
	BeforeAddText func()
}

// NewFakeBoard creates an empty FakeBoard. IDs start at 1.
func NewFakeBoard() *FakeBoard {
	return &FakeBoard{
		accounts: make(map[string]string),
		notes:    make(map[service.ID]string),
		items:    make(map[service.ID]service.TodoItem),
		lists:    make(map[service.ID]string),
		deadline: make(map[service.ID]time.Time),
		Token:    "fake-token",
	}
}

func (f *FakeBoard) record(c Call) service.ID {
	f.calls = append(f.calls, c)
	f.nextID++
	return service.ID(strconv.Itoa(f.nextID))
}

// AddAccount registers an existing account.
func (f *FakeBoard) AddAccount(email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[strings.ToLower(email)] = password
}

// AddList registers an existing todo list.
func (f *FakeBoard) AddList(id service.ID, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists[id] = title
}

// Calls returns recorded calls, optionally filtered by method name.
func (f *FakeBoard) Calls(method string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.calls {
		if method == "" || c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// NoteText returns the server-side text of a note.
func (f *FakeBoard) NoteText(id service.ID) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.notes[id]
	return t, ok
}

// Item returns the server-side state of a todo item.
func (f *FakeBoard) Item(id service.ID) (service.TodoItem, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	return it, ok
}

// Deadline returns the deadline a list was created with.
func (f *FakeBoard) Deadline(listID service.ID) (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.deadline[listID]
	return d, ok
}

// Avatar returns the last uploaded image bytes.
func (f *FakeBoard) Avatar() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.avatar
}

// CheckEmail implements service.Board.
func (f *FakeBoard) CheckEmail(ctx context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "CheckEmail", Text: email})
	if f.CheckEmailErr != nil {
		return false, f.CheckEmailErr
	}
	_, ok := f.accounts[strings.ToLower(email)]
	return ok, nil
}

// Register implements service.Board.
func (f *FakeBoard) Register(ctx context.Context, reg service.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "Register", Text: reg.Email})
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	if _, ok := f.accounts[strings.ToLower(reg.Email)]; ok {
		return fmt.Errorf("email already registered: %w", service.ErrRejected)
	}
	f.accounts[strings.ToLower(reg.Email)] = reg.Password
	return nil
}

// Login implements service.Board.
func (f *FakeBoard) Login(ctx context.Context, email, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "Login", Text: email})
	if f.LoginErr != nil {
		return "", f.LoginErr
	}
	if pw, ok := f.accounts[strings.ToLower(email)]; !ok || pw != password {
		return "", fmt.Errorf("invalid email or password: %w", service.ErrRejected)
	}
	return f.Token, nil
}

// CreateBoard implements service.Board.
func (f *FakeBoard) CreateBoard(ctx context.Context, name string) (service.ID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.record(Call{Method: "CreateBoard", Text: name})
	if f.CreateBoardErr != nil {
		return "", f.CreateBoardErr
	}
	return id, nil
}

// AddText implements service.Board.
func (f *FakeBoard) AddText(ctx context.Context, text string) (service.ID, error) {
	if f.BeforeAddText != nil {
		f.BeforeAddText()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.record(Call{Method: "AddText", Text: text})
	if f.AddTextErr != nil {
		return "", f.AddTextErr
	}
	f.notes[id] = text
	return id, nil
}

// UpdateText implements service.Board.
func (f *FakeBoard) UpdateText(ctx context.Context, textID service.ID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "UpdateText", ID: textID, Text: text})
	if f.UpdateTextErr != nil {
		return f.UpdateTextErr
	}
	f.notes[textID] = text
	return nil
}

// CreateTodoList implements service.Board.
func (f *FakeBoard) CreateTodoList(ctx context.Context, req service.NewTodoList) (service.CreatedTodoList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	listID := f.record(Call{Method: "CreateTodoList", Text: req.Title})
	if f.CreateTodoListErr != nil {
		return service.CreatedTodoList{}, f.CreateTodoListErr
	}
	f.nextID++
	itemID := service.ID(strconv.Itoa(f.nextID))
	f.lists[listID] = req.Title
	if req.Deadline != nil {
		f.deadline[listID] = *req.Deadline
	}
	f.items[itemID] = service.TodoItem{ID: itemID, ListID: listID, Text: req.InitialText}
	return service.CreatedTodoList{ListID: listID, ItemID: itemID}, nil
}

// AddTodoItem implements service.Board.
func (f *FakeBoard) AddTodoItem(ctx context.Context, listID service.ID, text string) (service.ID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.record(Call{Method: "AddTodoItem", ListID: listID, Text: text})
	if f.AddTodoItemErr != nil {
		return "", f.AddTodoItemErr
	}
	if _, ok := f.lists[listID]; !ok {
		return "", fmt.Errorf("list %s: %w", listID, service.ErrNotFound)
	}
	f.items[id] = service.TodoItem{ID: id, ListID: listID, Text: text}
	return id, nil
}

// UpdateTodoItem implements service.Board.
func (f *FakeBoard) UpdateTodoItem(ctx context.Context, upd service.TodoItemUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "UpdateTodoItem", ID: upd.ItemID, ListID: upd.ListID, Text: upd.Text, Done: upd.Completed})
	if f.UpdateTodoItemErr != nil {
		return f.UpdateTodoItemErr
	}
	f.items[upd.ItemID] = service.TodoItem{ID: upd.ItemID, ListID: upd.ListID, Text: upd.Text, Completed: upd.Completed}
	return nil
}

// UploadImage implements service.Board.
func (f *FakeBoard) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "UploadImage", Text: filename})
	if f.UploadImageErr != nil {
		return "", f.UploadImageErr
	}
	f.avatar = data
	return "https://images.example.com/" + filename, nil
}

// ChangePassword implements service.Board.
func (f *FakeBoard) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "ChangePassword"})
	return f.ChangePasswordErr
}

var _ service.Board = (*FakeBoard)(nil)
