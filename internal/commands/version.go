package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"boardctl/internal/config"
	"boardctl/internal/exitcode"
	"boardctl/internal/service"
)

// Version is overridden at build time with -ldflags "-X".
var Version = "0.1.0"

func init() {
	Register(&VersionCmd{})
}

// VersionCmd prints Version.
type VersionCmd struct{}

func (c *VersionCmd) Name() string      { return "version" }
func (c *VersionCmd) Aliases() []string { return nil }
func (c *VersionCmd) Synopsis() string  { return "Print the boardctl version" }
func (c *VersionCmd) Usage() string     { return "boardctl version" }
func (c *VersionCmd) Access() Access    { return None }

func (c *VersionCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *VersionCmd) Run(ctx context.Context, cfg *config.Config, board service.Board, args []string, out, errOut io.Writer) int {
	fmt.Fprintf(out, "boardctl %s\n", Version)
	return exitcode.Success
}
