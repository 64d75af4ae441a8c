package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"boardctl/internal/config"
	"boardctl/internal/editor"
	"boardctl/internal/exitcode"
	"boardctl/internal/service"
)

func init() {
	Register(&AddNoteCmd{})
	Register(&EditNoteCmd{})
}

func newEditor(ctx context.Context, cfg *config.Config, board service.Board) *editor.Editor {
	return editor.New(ctx, board, editor.Options{
		Quiet:  cfg.Debounce,
		Logger: logger(cfg, "editor"),
	})
}

// AddNoteCmd creates a note on the current board.
type AddNoteCmd struct{}

func (c *AddNoteCmd) Name() string      { return "addnote" }
func (c *AddNoteCmd) Aliases() []string { return []string{"note"} }
func (c *AddNoteCmd) Synopsis() string  { return "Create a note" }
func (c *AddNoteCmd) Usage() string     { return "boardctl addnote <text...>" }
func (c *AddNoteCmd) Access() Access    { return Auth }

func (c *AddNoteCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddNoteCmd) Run(ctx context.Context, cfg *config.Config, board service.Board, args []string, out, errOut io.Writer) int {
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

	ed := newEditor(ctx, cfg, board)
	ed.Load(snap.Notes)
	id, err := ed.Create(ctx, text)
	if err != nil {
		return backendFailure(errOut, err)
	}

	snap.Notes = ed.Notes()
	if code := saveSnapshot(cfg, snap, errOut); code != exitcode.Success {
		return code
	}
	fmt.Fprintln(out, id)
	return exitcode.Success
}

// EditNoteCmd replaces the text of a note.
type EditNoteCmd struct{}

func (c *EditNoteCmd) Name() string      { return "editnote" }
func (c *EditNoteCmd) Aliases() []string { return nil }
func (c *EditNoteCmd) Synopsis() string  { return "Replace the text of a note" }
func (c *EditNoteCmd) Usage() string     { return "boardctl editnote <note-id> <text...>" }
func (c *EditNoteCmd) Access() Access    { return Auth }

func (c *EditNoteCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *EditNoteCmd) Run(ctx context.Context, cfg *config.Config, board service.Board, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: note id required")
		return exitcode.UserError
	}
	id := service.ID(args[0])
	text := strings.Join(args[1:], " ")
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

	ed := newEditor(ctx, cfg, board)
	ed.Load(snap.Notes)
	if _, ok := ed.Note(id); !ok {
		// Notes created elsewhere are not in the snapshot yet.
		ed.Load([]service.Note{{ID: id}})
	}
	ed.Input(id, text)
	if err := ed.Close(ctx); err != nil {
		return backendFailure(errOut, err)
	}

	snap.Notes = ed.Notes()
	if code := saveSnapshot(cfg, snap, errOut); code != exitcode.Success {
		return code
	}
	return done(cfg, out)
}
