// Package editor keeps locally edited notes and the server's copy eventually
// consistent without blocking typing on the network.
//
// Every keystroke is applied to the in-memory model at once; each note owns a
// debouncer and only the text present when its quiet period elapses is sent.
// Failed saves are logged and left dirty: there is no retry and no rollback.
// Responses are not ordered against each other, so a slow older save can land
// after a newer one.
package editor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"boardctl/internal/debounce"
	"boardctl/internal/service"
)

// DefaultQuiet is the quiet period before a note is saved.
const DefaultQuiet = 500 * time.Millisecond

// Remote is the part of the board backend the editor writes to.
type Remote interface {
	AddText(ctx context.Context, text string) (service.ID, error)
	UpdateText(ctx context.Context, textID service.ID, text string) error
}

// Note is an editable field bound to a server identifier.
type Note struct {
	ID    service.ID
	Text  string
	Dirty bool // local change not yet confirmed by the server
}

// Options configures an Editor.
type Options struct {
	Quiet    time.Duration
	Clock    debounce.Clock
	Logger   *zap.Logger
	OnChange func() // called after the model changes in the background
}

// Editor owns the notes of one board.
type Editor struct {
	ctx      context.Context
	remote   Remote
	log      *zap.Logger
	quiet    time.Duration
	clock    debounce.Clock
	onChange func()

	mu       sync.Mutex
	order    []service.ID
	notes    map[service.ID]*Note
	saves    map[service.ID]*debounce.Debouncer
	draft    string
	create   *debounce.Debouncer
	creating bool
	closed   bool
}

// New creates an editor. ctx bounds every request the editor sends in the
// background; it is normally the lifetime of the board session.
func New(ctx context.Context, remote Remote, opts Options) *Editor {
	if opts.Quiet <= 0 {
		opts.Quiet = DefaultQuiet
	}
	if opts.Clock == nil {
		opts.Clock = debounce.SystemClock
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	e := &Editor{
		ctx:      ctx,
		remote:   remote,
		log:      opts.Logger,
		quiet:    opts.Quiet,
		clock:    opts.Clock,
		onChange: opts.OnChange,
		notes:    make(map[service.ID]*Note),
		saves:    make(map[service.ID]*debounce.Debouncer),
	}
	e.create = debounce.New(e.quiet, e.createFromDraft, debounce.WithClock(e.clock))
	return e
}

// Load seeds the model with notes already stored on the server.
func (e *Editor) Load(notes []service.Note) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, n := range notes {
		if n.ID == "" {
			continue
		}
		if _, ok := e.notes[n.ID]; !ok {
			e.order = append(e.order, n.ID)
		}
		e.notes[n.ID] = &Note{ID: n.ID, Text: n.Text}
	}
}

// Input records the current text of a note and schedules its save.
// Returns false if id is not a known note or the editor is closed.
func (e *Editor) Input(id service.ID, text string) bool {
	e.mu.Lock()
	n, ok := e.notes[id]
	if !ok || e.closed {
		e.mu.Unlock()
		return false
	}
	n.Text = text
	n.Dirty = true
	d, ok := e.saves[id]
	if !ok {
		d = debounce.New(e.quiet, func() { _ = e.save(e.ctx, id) }, debounce.WithClock(e.clock))
		e.saves[id] = d
	}
	e.mu.Unlock()

	d.Trigger()
	return true
}

// save sends the note's text as it is now, trimmed.
func (e *Editor) save(ctx context.Context, id service.ID) error {
	e.mu.Lock()
	n, ok := e.notes[id]
	if !ok {
		e.mu.Unlock()
		return nil
	}
	text := n.Text
	e.mu.Unlock()

	if err := e.remote.UpdateText(ctx, id, strings.TrimSpace(text)); err != nil {
		e.log.Error("save note failed", zap.String("text_id", string(id)), zap.Error(err))
		return fmt.Errorf("save note %s: %w", id, err)
	}
	e.log.Debug("note saved", zap.String("text_id", string(id)))

	e.mu.Lock()
	if n.Text == text {
		n.Dirty = false
	}
	e.mu.Unlock()
	e.changed()
	return nil
}

// InputNew records the text of the new-note region and schedules creation.
// It does nothing once the editor is closed.
func (e *Editor) InputNew(text string) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.draft = text
	e.mu.Unlock()
	e.create.Trigger()
}

// Draft returns the text of the new-note region.
func (e *Editor) Draft() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

func (e *Editor) createFromDraft() {
	_, _ = e.createNow(e.ctx)
}

// createNow turns the draft into a note. A call made while another create is
// in flight is dropped and returns an empty ID.
func (e *Editor) createNow(ctx context.Context) (service.ID, error) {
	e.mu.Lock()
	if e.creating {
		e.mu.Unlock()
		e.log.Debug("create dropped, another create in flight")
		return "", nil
	}
	text := strings.TrimSpace(e.draft)
	if text == "" {
		e.mu.Unlock()
		return "", nil
	}
	e.creating = true
	e.mu.Unlock()

	id, err := e.remote.AddText(ctx, text)
	if err == nil && id == "" {
		err = fmt.Errorf("server returned no text_id")
	}

	e.mu.Lock()
	e.creating = false
	if err != nil {
		e.mu.Unlock()
		e.log.Error("create note failed", zap.Error(err))
		return "", fmt.Errorf("create note: %w", err)
	}
	if _, ok := e.notes[id]; !ok {
		e.order = append(e.order, id)
	}
	e.notes[id] = &Note{ID: id, Text: text}
	e.draft = ""
	e.mu.Unlock()

	e.log.Debug("note created", zap.String("text_id", string(id)))
	e.changed()
	return id, nil
}

// Create creates a note from text right away, bypassing the quiet period.
func (e *Editor) Create(ctx context.Context, text string) (service.ID, error) {
	e.create.Cancel()
	e.mu.Lock()
	e.draft = text
	e.mu.Unlock()
	return e.createNow(ctx)
}

// Note returns a copy of one note.
func (e *Editor) Note(id service.ID) (Note, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, ok := e.notes[id]
	if !ok {
		return Note{}, false
	}
	return *n, true
}

// Snapshot returns copies of all notes in creation order.
func (e *Editor) Snapshot() []Note {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Note, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, *e.notes[id])
	}
	return out
}

// Notes returns the model in its persisted form.
func (e *Editor) Notes() []service.Note {
	snap := e.Snapshot()
	out := make([]service.Note, len(snap))
	for i, n := range snap {
		out[i] = service.Note{ID: n.ID, Text: n.Text}
	}
	return out
}

// Pending reports how many saves or creates are scheduled.
func (e *Editor) Pending() int {
	e.mu.Lock()
	saves := make([]*debounce.Debouncer, 0, len(e.saves))
	for _, d := range e.saves {
		saves = append(saves, d)
	}
	e.mu.Unlock()

	n := 0
	for _, d := range saves {
		if d.Pending() {
			n++
		}
	}
	if e.create.Pending() {
		n++
	}
	return n
}

// Close sends every scheduled save and create now, concurrently, stops all
// timers and waits for saves whose quiet period had already elapsed. Later
// input is ignored. Returns the first failure of the flushed requests;
// failures of requests already running are only logged.
func (e *Editor) Close(ctx context.Context) error {
	e.mu.Lock()
	e.closed = true
	ids := make([]service.ID, 0, len(e.saves))
	saves := make([]*debounce.Debouncer, 0, len(e.saves))
	for id, d := range e.saves {
		ids = append(ids, id)
		saves = append(saves, d)
	}
	e.mu.Unlock()

	var g errgroup.Group
	g.SetLimit(4)
	for i, d := range saves {
		if !d.Cancel() {
			continue
		}
		id := ids[i]
		g.Go(func() error { return e.save(ctx, id) })
	}
	if e.create.Cancel() {
		g.Go(func() error {
			_, err := e.createNow(ctx)
			return err
		})
	}
	err := g.Wait()

	for _, d := range saves {
		d.Wait()
	}
	e.create.Wait()
	return err
}

func (e *Editor) changed() {
	if e.onChange != nil {
		e.onChange()
	}
}
