package commands

import (
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"boardctl/internal/backend/boardapi"
	"boardctl/internal/backend/googletasks"
	"boardctl/internal/config"
	"boardctl/internal/exitcode"
	"boardctl/internal/service"
	"boardctl/internal/store"
	"boardctl/internal/todolist"
)

// loadSnapshot reads the local snapshot of the configured board.
func loadSnapshot(cfg *config.Config, errOut io.Writer) (store.Snapshot, int) {
	snap, err := store.Load(cfg.SnapshotPath(), cfg.BoardID)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return snap, exitcode.UserError
	}
	return snap, exitcode.Success
}

// saveSnapshot writes snap back, stamping the update time.
func saveSnapshot(cfg *config.Config, snap store.Snapshot, errOut io.Writer) int {
	snap.BoardID = cfg.BoardID
	snap.UpdatedAt = time.Now().UTC()
	if err := store.Save(cfg.SnapshotPath(), snap); err != nil {
		fmt.Fprintf(errOut, "error: failed to save snapshot: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}

// requireBoard reports a user error when no board is selected.
func requireBoard(cfg *config.Config, errOut io.Writer) bool {
	if cfg.BoardID == "" {
		fmt.Fprintf(errOut, "error: %v\n", boardapi.ErrNoBoard)
		return false
	}
	return true
}

// newSynchronizer builds a synchronizer seeded from snap.
func newSynchronizer(cfg *config.Config, board service.Board, snap store.Snapshot) *todolist.Synchronizer {
	s := todolist.New(board, todolist.Options{
		InitialText: cfg.InitialTask,
		Logger:      logger(cfg, "todolist"),
	})
	s.Load(snap.Lists)
	return s
}

// backendFailure prints err and maps it to an exit code.
func backendFailure(errOut io.Writer, err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, googletasks.ErrAuth):
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	case errors.Is(err, boardapi.ErrNoBoard),
		errors.Is(err, boardapi.ErrTooLarge),
		errors.Is(err, boardapi.ErrUnsupportedType),
		errors.Is(err, service.ErrRejected),
		errors.Is(err, service.ErrNotFound),
		errors.Is(err, todolist.ErrNotFound),
		errors.Is(err, todolist.ErrEmptyText):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}

// done prints "ok" unless quiet.
func done(cfg *config.Config, out io.Writer) int {
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// logger returns the configured logger, or a no-op one.
func logger(cfg *config.Config, name string) *zap.Logger {
	if cfg.Log == nil {
		return zap.NewNop()
	}
	return cfg.Log.Named(name)
}
