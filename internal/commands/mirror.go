package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"boardctl/internal/backend/googletasks"
	"boardctl/internal/config"
	"boardctl/internal/exitcode"
	"boardctl/internal/service"
)

func init() {
	Register(&MirrorCmd{})
	Register(&MirrorLoginCmd{})
}

// MirrorCmd copies todo lists from the snapshot to Google Tasks.
type MirrorCmd struct {
	listID string
}

func (c *MirrorCmd) Name() string      { return "mirror" }
func (c *MirrorCmd) Aliases() []string { return nil }
func (c *MirrorCmd) Synopsis() string  { return "Copy todo lists to Google Tasks" }
func (c *MirrorCmd) Usage() string     { return "boardctl mirror [--list <list-id>]" }
func (c *MirrorCmd) Access() Access    { return None }

func (c *MirrorCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listID, "list", "", "")
	fs.StringVar(&c.listID, "l", "", "")
}

func (c *MirrorCmd) Run(ctx context.Context, cfg *config.Config, board service.Board, args []string, out, errOut io.Writer) int {
	if !requireBoard(cfg, errOut) {
		return exitcode.UserError
	}
	snap, code := loadSnapshot(cfg, errOut)
	if code != exitcode.Success {
		return code
	}

	lists := snap.Lists
	if c.listID != "" {
		l, ok := snap.FindList(service.ID(c.listID))
		if !ok {
			fmt.Fprintf(errOut, "error: unknown list: %s\n", c.listID)
			return exitcode.UserError
		}
		lists = []service.TodoList{*l}
	}
	if len(lists) == 0 {
		fmt.Fprintln(errOut, "error: no todo lists to mirror")
		return exitcode.UserError
	}

	if !cfg.HasOAuthClient() {
		fmt.Fprintf(errOut, "error: %s not found in %s (see: boardctl mirror-login)\n", config.OAuthClientFile, cfg.Dir)
		return exitcode.AuthError
	}
	if !cfg.HasGoogleToken() {
		fmt.Fprintln(errOut, "error: not logged in to Google (run: boardctl mirror-login)")
		return exitcode.AuthError
	}
	m, err := googletasks.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	}

	for _, l := range lists {
		res, err := m.Sync(ctx, l)
		if err != nil {
			return backendFailure(errOut, err)
		}
		if !cfg.Quiet {
			fmt.Fprintf(out, "%s: %d created, %d updated, %d unchanged\n",
				l.Title, res.Created, res.Updated, res.Unchanged)
		}
	}
	return exitcode.Success
}

// MirrorLoginCmd authenticates with Google for the mirror command.
type MirrorLoginCmd struct{}

func (c *MirrorLoginCmd) Name() string      { return "mirror-login" }
func (c *MirrorLoginCmd) Aliases() []string { return nil }
func (c *MirrorLoginCmd) Synopsis() string  { return "Authenticate with Google Tasks for mirroring" }
func (c *MirrorLoginCmd) Usage() string     { return "boardctl mirror-login" }
func (c *MirrorLoginCmd) Access() Access    { return None }

func (c *MirrorLoginCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *MirrorLoginCmd) Run(ctx context.Context, cfg *config.Config, board service.Board, args []string, out, errOut io.Writer) int {
	if !cfg.HasOAuthClient() {
		fmt.Fprintf(errOut, "error: %s not found in %s\n\n", config.OAuthClientFile, cfg.Dir)
		fmt.Fprintln(errOut, "To mirror lists into Google Tasks you need OAuth credentials:")
		fmt.Fprintln(errOut, "")
		fmt.Fprintln(errOut, "1. Go to https://console.cloud.google.com/apis/credentials")
		fmt.Fprintln(errOut, "2. Enable the Google Tasks API for your project")
		fmt.Fprintln(errOut, "3. Create an OAuth client ID of type 'Desktop app' and download the JSON")
		fmt.Fprintf(errOut, "4. Save it as %s/%s\n", cfg.Dir, config.OAuthClientFile)
		return exitcode.AuthError
	}

	oc, err := googletasks.OAuthConfig(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	token, err := googletasks.Loopback{}.Authorize(ctx, oc, func(authURL string) {
		fmt.Fprintln(errOut, "Open this URL in your browser:")
		fmt.Fprintln(errOut, authURL)
	})
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	if err := googletasks.SaveToken(cfg, token); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}
	return done(cfg, out)
}
