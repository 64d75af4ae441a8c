package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"boardctl/internal/config"
	"boardctl/internal/exitcode"
	"boardctl/internal/output"
	"boardctl/internal/service"
	"boardctl/internal/store"
	"boardctl/internal/todolist"
)

func init() {
	Register(&CreateListCmd{})
	Register(&AddCmd{})
	Register(&DoneCmd{})
	Register(&DoneCmd{undo: true})
	Register(&EditItemCmd{})
}

// CreateListCmd implements the createlist command.
type CreateListCmd struct {
	deadline string
}

// SetDeadline sets the deadline flag (for testing).
func (c *CreateListCmd) SetDeadline(d string) {
	c.deadline = d
}

func (c *CreateListCmd) Name() string      { return "createlist" }
func (c *CreateListCmd) Aliases() []string { return []string{"addlist"} }
func (c *CreateListCmd) Synopsis() string  { return "Create a todo list with its first task" }
func (c *CreateListCmd) Usage() string {
	return `boardctl createlist [--deadline "YYYY-MM-DD HH:MM"] <title...>`
}
func (c *CreateListCmd) Access() Access { return Auth }

func (c *CreateListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.deadline, "deadline", "", "")
	fs.StringVar(&c.deadline, "d", "", "")
}

func (c *CreateListCmd) Run(ctx context.Context, cfg *config.Config, board service.Board, args []string, out, errOut io.Writer) int {
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	var deadline *time.Time
	if c.deadline != "" {
		d, err := time.ParseInLocation(output.DeadlineLayout, c.deadline, time.Local)
		if err != nil {
			fmt.Fprintf(errOut, "error: invalid deadline %q (want YYYY-MM-DD HH:MM)\n", c.deadline)
			return exitcode.UserError
		}
		deadline = &d
	}

	if !requireBoard(cfg, errOut) {
		return exitcode.UserError
	}
	snap, code := loadSnapshot(cfg, errOut)
	if code != exitcode.Success {
		return code
	}

	sync := newSynchronizer(cfg, board, snap)
	l, err := sync.CreateList(ctx, title, deadline)
	if err != nil {
		return backendFailure(errOut, err)
	}

	snap.Lists = sync.Snapshot()
	if code := saveSnapshot(cfg, snap, errOut); code != exitcode.Success {
		return code
	}
	output.FormatList(out, l)
	return exitcode.Success
}

// AddCmd implements the add command.
type AddCmd struct {
	listID string
}

// SetListID sets the list flag (for testing).
func (c *AddCmd) SetListID(id string) {
	c.listID = id
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return nil }
func (c *AddCmd) Synopsis() string  { return "Add a task to a todo list" }
func (c *AddCmd) Usage() string     { return "boardctl add [--list <list-id>] <text...>" }
func (c *AddCmd) Access() Access    { return Auth }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listID, "list", "", "")
	fs.StringVar(&c.listID, "l", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, board service.Board, args []string, out, errOut io.Writer) int {
	text := strings.Join(args, " ")
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(errOut, "error: text required")
		return exitcode.UserError
	}
	if !requireBoard(cfg, errOut) {
		return exitcode.UserError
	}
	snap, code := loadSnapshot(cfg, errOut)
	if code != exitcode.Success {
		return code
	}

	// Without --list, tasks go to the most recently created list.
	listID := service.ID(c.listID)
	if listID == "" {
		if len(snap.Lists) == 0 {
			fmt.Fprintln(errOut, "error: no todo lists (run: boardctl createlist <title>)")
			return exitcode.UserError
		}
		listID = snap.Lists[len(snap.Lists)-1].ID
	}

	sync := newSynchronizer(cfg, board, snap)
	if _, ok := sync.List(listID); !ok {
		sync.Load([]service.TodoList{{ID: listID}})
	}
	it, err := sync.AddTask(ctx, listID, text)
	if err != nil {
		return backendFailure(errOut, err)
	}

	snap.Lists = sync.Snapshot()
	if code := saveSnapshot(cfg, snap, errOut); code != exitcode.Success {
		return code
	}
	fmt.Fprintln(out, it.ID)
	return exitcode.Success
}

// DoneCmd implements the done and undone commands.
type DoneCmd struct {
	undo bool
}

func (c *DoneCmd) Name() string {
	if c.undo {
		return "undone"
	}
	return "done"
}
func (c *DoneCmd) Aliases() []string { return nil }
func (c *DoneCmd) Synopsis() string {
	if c.undo {
		return "Mark a task not completed"
	}
	return "Mark a task completed"
}
func (c *DoneCmd) Usage() string  { return "boardctl " + c.Name() + " <task-id>" }
func (c *DoneCmd) Access() Access { return Auth }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, board service.Board, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: task id required")
		return exitcode.UserError
	}
	if !requireBoard(cfg, errOut) {
		return exitcode.UserError
	}
	snap, code := loadSnapshot(cfg, errOut)
	if code != exitcode.Success {
		return code
	}
	listID, ok := findItem(snap, service.ID(args[0]))
	if !ok {
		fmt.Fprintf(errOut, "error: unknown task: %s\n", args[0])
		return exitcode.UserError
	}

	sync := newSynchronizer(cfg, board, snap)
	if _, err := sync.Toggle(ctx, listID, service.ID(args[0]), !c.undo); err != nil {
		return backendFailure(errOut, err)
	}

	snap.Lists = sync.Snapshot()
	if code := saveSnapshot(cfg, snap, errOut); code != exitcode.Success {
		return code
	}
	return done(cfg, out)
}

// EditItemCmd replaces the text of a task.
type EditItemCmd struct{}

func (c *EditItemCmd) Name() string      { return "edititem" }
func (c *EditItemCmd) Aliases() []string { return nil }
func (c *EditItemCmd) Synopsis() string  { return "Replace the text of a task" }
func (c *EditItemCmd) Usage() string     { return "boardctl edititem <task-id> <text...>" }
func (c *EditItemCmd) Access() Access    { return Auth }

func (c *EditItemCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *EditItemCmd) Run(ctx context.Context, cfg *config.Config, board service.Board, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: task id required")
		return exitcode.UserError
	}
	if !requireBoard(cfg, errOut) {
		return exitcode.UserError
	}
	snap, code := loadSnapshot(cfg, errOut)
	if code != exitcode.Success {
		return code
	}
	itemID := service.ID(args[0])
	listID, ok := findItem(snap, itemID)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown task: %s\n", args[0])
		return exitcode.UserError
	}

	sync := newSynchronizer(cfg, board, snap)
	_, err := sync.EditText(ctx, listID, itemID, strings.Join(args[1:], " "))
	if errors.Is(err, todolist.ErrEmptyText) {
		fmt.Fprintln(errOut, "error: text required")
		return exitcode.UserError
	}
	if err != nil {
		return backendFailure(errOut, err)
	}

	snap.Lists = sync.Snapshot()
	if code := saveSnapshot(cfg, snap, errOut); code != exitcode.Success {
		return code
	}
	return done(cfg, out)
}

// findItem returns the list holding itemID.
func findItem(snap store.Snapshot, itemID service.ID) (service.ID, bool) {
	for _, l := range snap.Lists {
		for _, it := range l.Items {
			if it.ID == itemID {
				return l.ID, true
			}
		}
	}
	return "", false
}
