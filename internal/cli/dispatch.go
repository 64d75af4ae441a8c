// Package cli parses the command line and runs the selected command.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"boardctl/internal/commands"
	"boardctl/internal/config"
	"boardctl/internal/exitcode"
	"boardctl/internal/logging"
	"boardctl/internal/service"
)

// DefaultCommand runs when no command is given.
const DefaultCommand = "show"

// BoardFactory creates the board backend for a command. auth reports whether
// the command needs a logged-in session.
type BoardFactory func(ctx context.Context, cfg *config.Config, auth bool) (service.Board, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  BoardFactory
}

// NewDispatcher creates a dispatcher over registry. A nil factory runs
// commands with a nil board after the session pre-flight check.
func NewDispatcher(registry *commands.Registry, factory BoardFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return d.dispatch(ctx, DefaultCommand, nil, out, errOut)
	}

	// Common flags belong after the command name.
	if strings.HasPrefix(args[0], "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
		return exitcode.UserError
	}
	return d.dispatch(ctx, args[0], args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, name string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(name)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		return exitcode.UserError
	}

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var configDir string
	var quiet, debug bool
	fs.StringVar(&configDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", flagError(err))
		return exitcode.UserError
	}
	positional := fs.Args()
	if len(positional) > 0 && strings.HasPrefix(positional[0], "-") && positional[0] != "-" {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positional[0])
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.AuthError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug
	// stderr carries the "error:" lines; logs join them only with --debug.
	if debug {
		cfg.Log = logging.New(true, errOut)
		defer cfg.Log.Sync()
	}

	var board service.Board
	if cmd.Access() != commands.None {
		auth := cmd.Access() == commands.Auth
		if d.factory == nil {
			if auth && !cfg.HasToken() {
				fmt.Fprintln(errOut, "error: not logged in (run: boardctl login)")
				return exitcode.AuthError
			}
		} else {
			board, err = d.factory(ctx, cfg, auth)
			if err != nil {
				if errors.Is(err, service.ErrUnauthorized) {
					fmt.Fprintf(errOut, "error: auth error: %s\n", err)
					return exitcode.AuthError
				}
				fmt.Fprintf(errOut, "error: backend error: %s\n", err)
				return exitcode.BackendError
			}
		}
	}

	start := time.Now()
	code := cmd.Run(ctx, cfg, board, positional, out, errOut)
	cfg.Log.Debug("command finished",
		zap.String("command", cmd.Name()),
		zap.String("result", exitcode.String(code)),
		zap.Duration("elapsed", time.Since(start)))
	return code
}

// flagError rewrites flag package errors into the CLI's wording.
func flagError(err error) string {
	msg := err.Error()
	if name, ok := strings.CutPrefix(msg, "flag provided but not defined: "); ok {
		return "unknown flag: " + name
	}
	return msg
}
