package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"boardctl/internal/config"
	"boardctl/internal/exitcode"
	"boardctl/internal/output"
	"boardctl/internal/service"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd prints the local snapshot of the current board.
type ShowCmd struct{}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return []string{"ls"} }
func (c *ShowCmd) Synopsis() string  { return "Show notes and todo lists of the current board" }
func (c *ShowCmd) Usage() string     { return "boardctl show" }
func (c *ShowCmd) Access() Access    { return None }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, board service.Board, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if !requireBoard(cfg, errOut) {
		return exitcode.UserError
	}
	snap, code := loadSnapshot(cfg, errOut)
	if code != exitcode.Success {
		return code
	}

	output.FormatBoardHeader(out, cfg.BoardID, snap.UpdatedAt)
	if len(snap.Notes) == 0 && len(snap.Lists) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no notes or lists yet")
		}
		return exitcode.Success
	}
	for _, n := range snap.Notes {
		output.FormatNote(out, n)
	}
	for _, l := range snap.Lists {
		output.FormatList(out, l)
	}
	return exitcode.Success
}
