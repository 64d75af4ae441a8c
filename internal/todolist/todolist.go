// Package todolist synchronises todo lists item by item with the board
// backend.
//
// The Synchronizer's model is the source of truth for rendering. Changes are
// applied locally first; a failed completion toggle or text edit is reverted.
package todolist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"boardctl/internal/service"
)

var (
	// ErrEmptyText is returned, without contacting the server, for blank text.
	ErrEmptyText = errors.New("empty text")

	// ErrNotFound is returned for a list or item the model does not know.
	ErrNotFound = errors.New("not found")
)

// DefaultInitialText is the text of the item created together with a list.
const DefaultInitialText = "New task"

// Remote is the part of the board backend the synchronizer writes to.
type Remote interface {
	CreateTodoList(ctx context.Context, req service.NewTodoList) (service.CreatedTodoList, error)
	AddTodoItem(ctx context.Context, listID service.ID, text string) (service.ID, error)
	UpdateTodoItem(ctx context.Context, upd service.TodoItemUpdate) error
}

// Options configures a Synchronizer.
type Options struct {
	InitialText string
	Logger      *zap.Logger
}

// Synchronizer owns the todo lists of one board.
type Synchronizer struct {
	remote      Remote
	log         *zap.Logger
	initialText string

	mu    sync.Mutex
	order []service.ID
	lists map[service.ID]*service.TodoList
}

// New creates an empty Synchronizer.
func New(remote Remote, opts Options) *Synchronizer {
	if opts.InitialText == "" {
		opts.InitialText = DefaultInitialText
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Synchronizer{
		remote:      remote,
		log:         opts.Logger,
		initialText: opts.InitialText,
		lists:       make(map[service.ID]*service.TodoList),
	}
}

// Load seeds the model with lists already stored on the server.
func (s *Synchronizer) Load(lists []service.TodoList) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range lists {
		if l.ID == "" {
			continue
		}
		if _, ok := s.lists[l.ID]; !ok {
			s.order = append(s.order, l.ID)
		}
		cp := copyList(l)
		for i := range cp.Items {
			cp.Items[i].ListID = l.ID
		}
		s.lists[l.ID] = &cp
	}
}

// Snapshot returns deep copies of all lists in creation order.
func (s *Synchronizer) Snapshot() []service.TodoList {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]service.TodoList, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, copyList(*s.lists[id]))
	}
	return out
}

// List returns a copy of one list.
func (s *Synchronizer) List(id service.ID) (service.TodoList, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lists[id]
	if !ok {
		return service.TodoList{}, false
	}
	return copyList(*l), true
}

// Progress returns the number of completed and total items in a list.
func (s *Synchronizer) Progress(id service.ID) (done, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lists[id]
	if !ok {
		return 0, 0
	}
	for _, it := range l.Items {
		if it.Completed {
			done++
		}
	}
	return done, len(l.Items)
}

// CreateList creates a list with its initial item and adds both to the model.
func (s *Synchronizer) CreateList(ctx context.Context, title string, deadline *time.Time) (service.TodoList, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return service.TodoList{}, ErrEmptyText
	}

	created, err := s.remote.CreateTodoList(ctx, service.NewTodoList{
		Title:       title,
		InitialText: s.initialText,
		Deadline:    deadline,
	})
	if err != nil {
		s.log.Error("create todo list failed", zap.String("title", title), zap.Error(err))
		return service.TodoList{}, fmt.Errorf("create list: %w", err)
	}

	l := service.TodoList{
		ID:       created.ListID,
		Title:    title,
		Deadline: deadline,
	}
	if created.ItemID != "" {
		l.Items = []service.TodoItem{{ID: created.ItemID, ListID: created.ListID, Text: s.initialText}}
	}

	s.mu.Lock()
	if _, ok := s.lists[l.ID]; !ok {
		s.order = append(s.order, l.ID)
	}
	stored := copyList(l)
	s.lists[l.ID] = &stored
	s.mu.Unlock()

	s.log.Debug("todo list created", zap.String("to_do_list_id", string(l.ID)))
	return l, nil
}

// AddTask appends an item to a list. Blank text is ignored with ErrEmptyText.
func (s *Synchronizer) AddTask(ctx context.Context, listID service.ID, text string) (service.TodoItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return service.TodoItem{}, ErrEmptyText
	}
	s.mu.Lock()
	_, ok := s.lists[listID]
	s.mu.Unlock()
	if !ok {
		return service.TodoItem{}, fmt.Errorf("list %s: %w", listID, ErrNotFound)
	}

	id, err := s.remote.AddTodoItem(ctx, listID, text)
	if err != nil {
		s.log.Error("add task failed", zap.String("to_do_list_id", string(listID)), zap.Error(err))
		return service.TodoItem{}, fmt.Errorf("add task: %w", err)
	}

	item := service.TodoItem{ID: id, ListID: listID, Text: text}
	s.mu.Lock()
	if l, ok := s.lists[listID]; ok {
		l.Items = append(l.Items, item)
	}
	s.mu.Unlock()
	return item, nil
}

// Toggle sets an item's completion state, then sends it. On failure the item
// goes back to its previous state. Returns the item as it ends up.
func (s *Synchronizer) Toggle(ctx context.Context, listID, itemID service.ID, completed bool) (service.TodoItem, error) {
	s.mu.Lock()
	it, err := s.itemLocked(listID, itemID)
	if err != nil {
		s.mu.Unlock()
		return service.TodoItem{}, err
	}
	prev := it.Completed
	it.Completed = completed
	upd := service.TodoItemUpdate{ListID: listID, ItemID: itemID, Text: it.Text, Completed: completed}
	s.mu.Unlock()

	if err := s.remote.UpdateTodoItem(ctx, upd); err != nil {
		s.log.Error("update task failed",
			zap.String("to_do_list_id", string(listID)),
			zap.String("to_do_list_item_id", string(itemID)),
			zap.Error(err))
		s.mu.Lock()
		if it, ierr := s.itemLocked(listID, itemID); ierr == nil {
			it.Completed = prev
		}
		s.mu.Unlock()
		cur, _ := s.item(listID, itemID)
		return cur, fmt.Errorf("update task: %w", err)
	}
	return s.item(listID, itemID)
}

// EditText replaces an item's text, keeping its completion state. On failure
// the previous text is restored. Blank text restores nothing and sends
// nothing: it returns ErrEmptyText.
func (s *Synchronizer) EditText(ctx context.Context, listID, itemID service.ID, text string) (service.TodoItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return service.TodoItem{}, ErrEmptyText
	}

	s.mu.Lock()
	it, err := s.itemLocked(listID, itemID)
	if err != nil {
		s.mu.Unlock()
		return service.TodoItem{}, err
	}
	prev := it.Text
	it.Text = text
	upd := service.TodoItemUpdate{ListID: listID, ItemID: itemID, Text: text, Completed: it.Completed}
	s.mu.Unlock()

	if err := s.remote.UpdateTodoItem(ctx, upd); err != nil {
		s.log.Error("update task text failed",
			zap.String("to_do_list_id", string(listID)),
			zap.String("to_do_list_item_id", string(itemID)),
			zap.Error(err))
		s.mu.Lock()
		if it, ierr := s.itemLocked(listID, itemID); ierr == nil {
			it.Text = prev
		}
		s.mu.Unlock()
		cur, _ := s.item(listID, itemID)
		return cur, fmt.Errorf("update task: %w", err)
	}
	return s.item(listID, itemID)
}

func (s *Synchronizer) item(listID, itemID service.ID) (service.TodoItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, err := s.itemLocked(listID, itemID)
	if err != nil {
		return service.TodoItem{}, err
	}
	return *it, nil
}

func (s *Synchronizer) itemLocked(listID, itemID service.ID) (*service.TodoItem, error) {
	l, ok := s.lists[listID]
	if !ok {
		return nil, fmt.Errorf("list %s: %w", listID, ErrNotFound)
	}
	for i := range l.Items {
		if l.Items[i].ID == itemID {
			return &l.Items[i], nil
		}
	}
	return nil, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
}

func copyList(l service.TodoList) service.TodoList {
	cp := l
	if l.Deadline != nil {
		d := *l.Deadline
		cp.Deadline = &d
	}
	cp.Items = append([]service.TodoItem(nil), l.Items...)
	return cp
}
