package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"boardctl/internal/config"
	"boardctl/internal/editor"
	"boardctl/internal/exitcode"
	"boardctl/internal/logging"
	"boardctl/internal/service"
	"boardctl/internal/tui"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd opens the interactive board editor.
type EditCmd struct{}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"ui"} }
func (c *EditCmd) Synopsis() string  { return "Edit the current board interactively" }
func (c *EditCmd) Usage() string     { return "boardctl edit" }
func (c *EditCmd) Access() Access    { return Auth }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, board service.Board, args []string, out, errOut io.Writer) int {
	if !requireBoard(cfg, errOut) {
		return exitcode.UserError
	}
	snap, code := loadSnapshot(cfg, errOut)
	if code != exitcode.Success {
		return code
	}

	// The terminal belongs to the editor; logs go to a file.
	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.UserError
	}
	logFile, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	defer logFile.Close()
	log := logging.New(cfg.Debug, logFile)
	defer log.Sync()
	cfg.Log = log

	relay := &tui.Relay{}
	ed := editor.New(ctx, board, editor.Options{
		Quiet:    cfg.Debounce,
		Logger:   log.Named("editor"),
		OnChange: relay.Notify,
	})
	ed.Load(snap.Notes)
	lists := newSynchronizer(cfg, board, snap)

	runErr := tui.Run(ctx, tui.New(ctx, cfg.BoardID, ed, lists), relay)

	// Unsaved typing is flushed even when the program failed.
	closeErr := ed.Close(context.WithoutCancel(ctx))
	snap.Notes = ed.Notes()
	snap.Lists = lists.Snapshot()
	if code := saveSnapshot(cfg, snap, errOut); code != exitcode.Success {
		return code
	}

	if runErr != nil {
		fmt.Fprintf(errOut, "error: %v\n", runErr)
		return exitcode.UserError
	}
	if closeErr != nil {
		return backendFailure(errOut, closeErr)
	}
	return exitcode.Success
}
