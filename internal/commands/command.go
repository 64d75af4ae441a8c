// Package commands implements the boardctl subcommands.
package commands

import (
	"context"
	"flag"
	"io"

	"boardctl/internal/config"
	"boardctl/internal/service"
)

// Access says what a command needs from the board backend.
type Access int

const (
	// None means the command never talks to the board backend.
	None Access = iota

	// Public means the command uses the backend without a session
	// (register, login).
	Public

	// Auth means the command needs a logged-in session.
	Auth
)

// Command is one boardctl subcommand. Commands register themselves with
// DefaultRegistry from init.
type Command interface {
	Name() string
	Aliases() []string

	// Synopsis and Usage feed the help listing.
	Synopsis() string
	Usage() string

	Access() Access

	// RegisterFlags adds command flags next to the common ones.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command with the positional arguments left after
	// flag parsing and returns the exit code. board is nil for None
	// commands.
	Run(ctx context.Context, cfg *config.Config, board service.Board, args []string, out, errOut io.Writer) int
}
