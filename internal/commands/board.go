package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"boardctl/internal/config"
	"boardctl/internal/exitcode"
	"boardctl/internal/service"
)

func init() {
	Register(&BoardCmd{})
	Register(&NewBoardCmd{})
}

// BoardCmd shows or selects the current board.
type BoardCmd struct{}

func (c *BoardCmd) Name() string      { return "board" }
func (c *BoardCmd) Aliases() []string { return nil }
func (c *BoardCmd) Synopsis() string  { return "Show or select the current board" }
func (c *BoardCmd) Usage() string     { return "boardctl board [<board-id>]" }
func (c *BoardCmd) Access() Access    { return None }

func (c *BoardCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *BoardCmd) Run(ctx context.Context, cfg *config.Config, board service.Board, args []string, out, errOut io.Writer) int {
	switch len(args) {
	case 0:
		if cfg.BoardID == "" {
			fmt.Fprintln(out, "no board selected")
			return exitcode.Success
		}
		fmt.Fprintln(out, cfg.BoardID)
		return exitcode.Success
	case 1:
	default:
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}

	id := strings.TrimSpace(args[0])
	if id == "" {
		fmt.Fprintln(errOut, "error: board id required")
		return exitcode.UserError
	}
	cfg.BoardID = id
	if err := cfg.Save(); err != nil {
		fmt.Fprintf(errOut, "error: failed to save settings: %v\n", err)
		return exitcode.UserError
	}
	return done(cfg, out)
}

// NewBoardCmd creates a board and selects it.
type NewBoardCmd struct{}

func (c *NewBoardCmd) Name() string      { return "newboard" }
func (c *NewBoardCmd) Aliases() []string { return nil }
func (c *NewBoardCmd) Synopsis() string  { return "Create a board and select it" }
func (c *NewBoardCmd) Usage() string     { return "boardctl newboard <name...>" }
func (c *NewBoardCmd) Access() Access    { return Auth }

func (c *NewBoardCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *NewBoardCmd) Run(ctx context.Context, cfg *config.Config, board service.Board, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: board name required")
		return exitcode.UserError
	}

	id, err := board.CreateBoard(ctx, name)
	if err != nil {
		return backendFailure(errOut, err)
	}

	cfg.BoardID = string(id)
	if err := cfg.Save(); err != nil {
		fmt.Fprintf(errOut, "error: failed to save settings: %v\n", err)
		return exitcode.UserError
	}
	fmt.Fprintln(out, id)
	return exitcode.Success
}
