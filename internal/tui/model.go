// Package tui is the interactive board editor: a Bubble Tea view derived from
// the note editor and the todo list synchronizer.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"boardctl/internal/editor"
	"boardctl/internal/service"
	"boardctl/internal/todolist"
)

type rowKind int

const (
	rowNote rowKind = iota
	rowDraft
	rowList
	rowItem
)

type row struct {
	kind   rowKind
	id     service.ID
	listID service.ID
}

type mode int

const (
	modeBrowse mode = iota
	modeNote        // typing into an existing note, saved as you type
	modeDraft       // typing a new note, created as you type
	modeItem        // editing a task's text, sent on enter
	modeTask        // adding a task to a list
	modeList        // naming a new list
)

// ChangedMsg tells the model the editor changed in the background.
type ChangedMsg struct{}

type itemMsg struct {
	listID service.ID
	itemID service.ID
	action string
	err    error
}

type listMsg struct {
	list service.TodoList
	err  error
}

// Model is the Bubble Tea model of one board.
type Model struct {
	ctx     context.Context
	boardID string
	ed      *editor.Editor
	lists   *todolist.Synchronizer

	rows   []row
	cursor int

	mode   mode
	target row
	ti     textinput.Model

	// toggles sent but not answered yet, shown optimistically
	toggling map[service.ID]bool

	status    string
	statusErr bool
	width     int
}

// New creates a model over ed and lists.
func New(ctx context.Context, boardID string, ed *editor.Editor, lists *todolist.Synchronizer) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 2000

	m := Model{
		ctx:      ctx,
		boardID:  boardID,
		ed:       ed,
		lists:    lists,
		ti:       ti,
		toggling: make(map[service.ID]bool),
		width:    80,
	}
	m.rebuild()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.ti.Width = max(10, msg.Width-8)
		return m, nil

	case ChangedMsg:
		if m.mode == modeDraft && m.ed.Draft() == "" && m.ti.Value() != "" {
			m.ti.SetValue("")
		}
		m.rebuild()
		return m, nil

	case itemMsg:
		delete(m.toggling, msg.itemID)
		m.report(msg.action, msg.err)
		m.rebuild()
		return m, nil

	case listMsg:
		m.report("create list", msg.err)
		m.rebuild()
		if msg.err == nil {
			m.selectRow(row{kind: rowList, id: msg.list.ID, listID: msg.list.ID})
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.mode != modeBrowse {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cur, ok := m.current()
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "j", "down":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "n":
		m.selectRow(row{kind: rowDraft})
		return m, m.startInput(modeDraft, row{kind: rowDraft}, m.ed.Draft())
	case "L":
		return m, m.startInput(modeList, row{}, "")
	case "a":
		if ok && (cur.kind == rowList || cur.kind == rowItem) {
			return m, m.startInput(modeTask, row{kind: rowList, id: cur.listID}, "")
		}
	case " ", "space":
		if ok && cur.kind == rowItem {
			it, found := m.item(cur.listID, cur.id)
			if !found {
				return m, nil
			}
			next := !m.completed(it)
			m.toggling[it.ID] = next
			return m, m.toggle(cur.listID, cur.id, next)
		}
	case "enter", "e":
		if !ok {
			return m, nil
		}
		switch cur.kind {
		case rowNote:
			note, _ := m.ed.Note(cur.id)
			return m, m.startInput(modeNote, cur, note.Text)
		case rowDraft:
			return m, m.startInput(modeDraft, cur, m.ed.Draft())
		case rowList:
			return m, m.startInput(modeTask, cur, "")
		case rowItem:
			it, _ := m.item(cur.listID, cur.id)
			return m, m.startInput(modeItem, cur, it.Text)
		}
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.stopInput()
		return m, nil
	case "enter":
		value := m.ti.Value()
		target, md := m.target, m.mode
		m.stopInput()
		switch md {
		case modeItem:
			return m, m.editItem(target.listID, target.id, value)
		case modeTask:
			if strings.TrimSpace(value) == "" {
				return m, nil
			}
			return m, m.addTask(target.id, value)
		case modeList:
			if strings.TrimSpace(value) == "" {
				return m, nil
			}
			return m, m.createList(value)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	switch m.mode {
	case modeNote:
		m.ed.Input(m.target.id, m.ti.Value())
	case modeDraft:
		m.ed.InputNew(m.ti.Value())
	}
	m.rebuild()
	return m, cmd
}

func (m *Model) startInput(md mode, target row, value string) tea.Cmd {
	m.mode = md
	m.target = target
	m.ti.Placeholder = placeholders[md]
	m.ti.SetValue(value)
	m.ti.CursorEnd()
	return m.ti.Focus()
}

func (m *Model) stopInput() {
	m.mode = modeBrowse
	m.target = row{}
	m.ti.SetValue("")
	m.ti.Blur()
}

var placeholders = map[mode]string{
	modeNote:  "Note text...",
	modeDraft: "New note...",
	modeItem:  "Task text...",
	modeTask:  "New task...",
	modeList:  "List title...",
}

func (m Model) toggle(listID, itemID service.ID, completed bool) tea.Cmd {
	return func() tea.Msg {
		_, err := m.lists.Toggle(m.ctx, listID, itemID, completed)
		return itemMsg{listID: listID, itemID: itemID, action: "update task", err: err}
	}
}

func (m Model) editItem(listID, itemID service.ID, text string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.lists.EditText(m.ctx, listID, itemID, text)
		if errors.Is(err, todolist.ErrEmptyText) {
			err = nil
		}
		return itemMsg{listID: listID, itemID: itemID, action: "edit task", err: err}
	}
}

func (m Model) addTask(listID service.ID, text string) tea.Cmd {
	return func() tea.Msg {
		it, err := m.lists.AddTask(m.ctx, listID, text)
		return itemMsg{listID: listID, itemID: it.ID, action: "add task", err: err}
	}
}

func (m Model) createList(title string) tea.Cmd {
	return func() tea.Msg {
		l, err := m.lists.CreateList(m.ctx, title, nil)
		return listMsg{list: l, err: err}
	}
}

func (m *Model) report(action string, err error) {
	if err != nil {
		m.status = fmt.Sprintf("%s failed: %v", action, err)
		m.statusErr = true
		return
	}
	m.status = ""
	m.statusErr = false
}

// rebuild derives the rows from the models, keeping the cursor on the same
// row when it still exists.
func (m *Model) rebuild() {
	prev, hadPrev := m.current()

	rows := make([]row, 0, len(m.rows))
	for _, n := range m.ed.Snapshot() {
		rows = append(rows, row{kind: rowNote, id: n.ID})
	}
	rows = append(rows, row{kind: rowDraft})
	for _, l := range m.lists.Snapshot() {
		rows = append(rows, row{kind: rowList, id: l.ID, listID: l.ID})
		for _, it := range l.Items {
			rows = append(rows, row{kind: rowItem, id: it.ID, listID: l.ID})
		}
	}
	m.rows = rows

	if hadPrev && m.selectRow(prev) {
		return
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) selectRow(r row) bool {
	for i, x := range m.rows {
		if x == r {
			m.cursor = i
			return true
		}
	}
	return false
}

func (m Model) current() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

func (m Model) item(listID, itemID service.ID) (service.TodoItem, bool) {
	l, ok := m.lists.List(listID)
	if !ok {
		return service.TodoItem{}, false
	}
	for _, it := range l.Items {
		if it.ID == itemID {
			return it, true
		}
	}
	return service.TodoItem{}, false
}

func (m Model) completed(it service.TodoItem) bool {
	if v, ok := m.toggling[it.ID]; ok {
		return v
	}
	return it.Completed
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	notes := m.ed.Snapshot()
	dirty := 0
	for _, n := range notes {
		if n.Dirty {
			dirty++
		}
	}
	b.WriteString(fmt.Sprintf("%s %s   %s %d",
		titleStyle.Render("Board"), accentStyle.Render(m.boardID),
		mutedStyle.Render("notes"), len(notes)))
	if dirty > 0 {
		b.WriteString("  " + pendingStyle.Render(fmt.Sprintf("• %d unsaved", dirty)))
	}
	b.WriteString("\n\n")

	lists := make(map[service.ID]service.TodoList)
	for _, l := range m.lists.Snapshot() {
		lists[l.ID] = l
	}
	noteByID := make(map[service.ID]editor.Note, len(notes))
	for _, n := range notes {
		noteByID[n.ID] = n
	}

	for i, r := range m.rows {
		b.WriteString(m.renderRow(i, r, noteByID, lists))
		b.WriteString("\n")
	}

	if m.mode != modeBrowse {
		b.WriteString("\n" + panelStyle.Render(inputTitles[m.mode]+"\n"+m.ti.View()))
	}
	if m.status != "" {
		style := successStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString("\n" + style.Render(m.status))
	}
	b.WriteString("\n" + helpStyle.Render(m.help()))
	return panelStyle.Width(max(20, m.width-2)).Render(b.String())
}

var inputTitles = map[mode]string{
	modeNote:  "Edit note (saved as you type, enter/esc to leave)",
	modeDraft: "New note (created as you type, enter/esc to leave)",
	modeItem:  "Edit task (enter to save, esc to cancel)",
	modeTask:  "Add task (enter to add, esc to cancel)",
	modeList:  "New list (enter to create, esc to cancel)",
}

func (m Model) renderRow(i int, r row, notes map[service.ID]editor.Note, lists map[service.ID]service.TodoList) string {
	prefix := "  "
	if i == m.cursor {
		prefix = selectedStyle.Render("> ")
	}

	switch r.kind {
	case rowNote:
		n := notes[r.id]
		line := fmt.Sprintf("%s %s", mutedStyle.Render(string(n.ID)), oneLine(n.Text))
		if n.Dirty {
			line += " " + pendingStyle.Render("•")
		}
		return prefix + line
	case rowDraft:
		draft := m.ed.Draft()
		if draft == "" {
			return prefix + mutedStyle.Render("+ new note")
		}
		return prefix + pendingStyle.Render("+ "+oneLine(draft))
	case rowList:
		l := lists[r.id]
		done, total := m.lists.Progress(r.id)
		line := fmt.Sprintf("%s  %s", titleStyle.Render(l.Title), progressBar(done, total, 12))
		if l.Deadline != nil {
			line += "  " + mutedStyle.Render("due "+l.Deadline.Format("2006-01-02 15:04"))
		}
		return "\n" + prefix + line
	case rowItem:
		it, _ := m.item(r.listID, r.id)
		box, text := mutedStyle.Render(boxUnchecked), oneLine(it.Text)
		if m.completed(it) {
			box, text = successStyle.Render(boxChecked), doneStyle.Render(text)
		}
		return prefix + "   " + box + " " + text
	}
	return ""
}

func (m Model) help() string {
	if m.mode != modeBrowse {
		return "enter confirm • esc leave"
	}
	return "j/k move • e edit • space toggle • n note • a task • L list • q quit"
}

func oneLine(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r", " "), "\n", " ")
}

func progressBar(done, total, width int) string {
	if total == 0 {
		total = 1
	}
	filled := done * width / total
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + fmt.Sprintf("] %d/%d", done, total)
}

// Relay forwards background editor changes to a running program.
type Relay struct {
	mu sync.Mutex
	p  *tea.Program
}

// Notify sends ChangedMsg to the attached program, if any.
func (r *Relay) Notify() {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(ChangedMsg{})
	}
}

func (r *Relay) attach(p *tea.Program) {
	r.mu.Lock()
	r.p = p
	r.mu.Unlock()
}

// Run shows m until the user quits.
func Run(ctx context.Context, m Model, relay *Relay, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	p := tea.NewProgram(m, opts...)
	if relay != nil {
		relay.attach(p)
		defer relay.attach(nil)
	}
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

var _ tea.Model = Model{}
