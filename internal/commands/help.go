package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"boardctl/internal/config"
	"boardctl/internal/exitcode"
	"boardctl/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "boardctl help" }
func (c *HelpCmd) Access() Access    { return None }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, board service.Board, args []string, out, errOut io.Writer) int {
	fmt.Fprintln(out, "Usage:")
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	group := Access(-1)
	for _, cmd := range DefaultRegistry.All() {
		if cmd.Access() != group {
			group = cmd.Access()
			fmt.Fprintf(tw, "\n%s\n", groupTitles[group])
		}
		fmt.Fprintf(tw, "  %s\t%s\n", cmd.Usage(), cmd.Synopsis())
	}
	tw.Flush()
	fmt.Fprint(out, commonFlags)
	return exitcode.Success
}

var groupTitles = map[Access]string{
	None:   "Local:",
	Public: "Account:",
	Auth:   "Board (requires login):",
}

const commonFlags = `
Without a command, boardctl runs "show".

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Environment:
  BOARDCTL_URL     Override the server base URL
  BOARDCTL_TOKEN   Use this session token instead of the stored one
`
