package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"boardctl/internal/config"
	"boardctl/internal/exitcode"
	"boardctl/internal/form"
	"boardctl/internal/service"
)

func init() {
	Register(&RegisterCmd{})
	Register(&LoginCmd{})
	Register(&LogoutCmd{})
	Register(&PasswdCmd{})
	Register(&AvatarCmd{})
}

// printFieldErrors prints one line per failed form field, in form order.
func printFieldErrors(errOut io.Writer, res form.Result) {
	for _, f := range res.Fields() {
		fmt.Fprintf(errOut, "error: %s: %s\n", f.Field, f.Message)
	}
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	reg form.Registration
}

// SetForm sets the form fields (for testing).
func (c *RegisterCmd) SetForm(reg form.Registration) {
	c.reg = reg
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return nil }
func (c *RegisterCmd) Synopsis() string  { return "Create an account" }
func (c *RegisterCmd) Usage() string {
	return "boardctl register --email <email> --username <name> --password <pw> --password2 <pw>"
}
func (c *RegisterCmd) Access() Access { return Public }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.reg.Email, "email", "", "")
	fs.StringVar(&c.reg.Username, "username", "", "")
	fs.StringVar(&c.reg.Password, "password", "", "")
	fs.StringVar(&c.reg.Password2, "password2", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, board service.Board, args []string, out, errOut io.Writer) int {
	g := form.New(board, form.WithLocale(cfg.Locale), form.WithLogger(logger(cfg, "form")))
	if res := g.ValidateRegistration(ctx, c.reg); !res.OK() {
		printFieldErrors(errOut, res)
		return exitcode.UserError
	}

	err := board.Register(ctx, service.Registration{
		Email:     c.reg.Email,
		Username:  c.reg.Username,
		Password:  c.reg.Password,
		Password2: c.reg.Password2,
	})
	if err != nil {
		return backendFailure(errOut, err)
	}
	return done(cfg, out)
}

// LoginCmd implements the login command.
type LoginCmd struct {
	login form.Login
}

// SetForm sets the form fields (for testing).
func (c *LoginCmd) SetForm(login form.Login) {
	c.login = login
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Log in and store the session token" }
func (c *LoginCmd) Usage() string     { return "boardctl login --email <email> --password <pw>" }
func (c *LoginCmd) Access() Access    { return Public }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.login.Email, "email", "", "")
	fs.StringVar(&c.login.Password, "password", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, board service.Board, args []string, out, errOut io.Writer) int {
	g := form.New(nil, form.WithLocale(cfg.Locale))
	if res := g.ValidateLogin(c.login); !res.OK() {
		printFieldErrors(errOut, res)
		return exitcode.UserError
	}

	token, err := board.Login(ctx, c.login.Email, c.login.Password)
	if errors.Is(err, service.ErrRejected) {
		fmt.Fprintln(errOut, "error: invalid email or password")
		return exitcode.AuthError
	}
	if err != nil {
		return backendFailure(errOut, err)
	}

	if err := cfg.SaveToken(token); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}
	return done(cfg, out)
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Remove the stored session token" }
func (c *LogoutCmd) Usage() string     { return "boardctl logout" }
func (c *LogoutCmd) Access() Access    { return None }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, board service.Board, args []string, out, errOut io.Writer) int {
	if _, err := os.Stat(cfg.TokenPath()); errors.Is(err, os.ErrNotExist) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}
	if err := cfg.RemoveToken(); err != nil {
		fmt.Fprintf(errOut, "error: failed to remove token: %v\n", err)
		return exitcode.AuthError
	}
	return done(cfg, out)
}

// PasswdCmd implements the passwd command.
type PasswdCmd struct {
	oldPassword string
	newPassword string
}

// SetPasswords sets the flags (for testing).
func (c *PasswdCmd) SetPasswords(oldPassword, newPassword string) {
	c.oldPassword, c.newPassword = oldPassword, newPassword
}

func (c *PasswdCmd) Name() string      { return "passwd" }
func (c *PasswdCmd) Aliases() []string { return nil }
func (c *PasswdCmd) Synopsis() string  { return "Change the account password" }
func (c *PasswdCmd) Usage() string     { return "boardctl passwd --old <pw> --new <pw>" }
func (c *PasswdCmd) Access() Access    { return Auth }

func (c *PasswdCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.oldPassword, "old", "", "")
	fs.StringVar(&c.newPassword, "new", "", "")
}

func (c *PasswdCmd) Run(ctx context.Context, cfg *config.Config, board service.Board, args []string, out, errOut io.Writer) int {
	msgs := form.Catalog(cfg.Locale)
	if c.oldPassword == "" {
		fmt.Fprintf(errOut, "error: old: %s\n", msgs.PasswordRequired)
		return exitcode.UserError
	}
	if utf8.RuneCountInString(c.newPassword) < form.MinPasswordLength {
		fmt.Fprintf(errOut, "error: new: %s\n", msgs.PasswordTooShort)
		return exitcode.UserError
	}
	if err := board.ChangePassword(ctx, c.oldPassword, c.newPassword); err != nil {
		return backendFailure(errOut, err)
	}
	return done(cfg, out)
}

// AvatarCmd uploads a profile photo.
type AvatarCmd struct{}

func (c *AvatarCmd) Name() string      { return "avatar" }
func (c *AvatarCmd) Aliases() []string { return nil }
func (c *AvatarCmd) Synopsis() string  { return "Upload a profile photo (JPEG, PNG or GIF, max 5MB)" }
func (c *AvatarCmd) Usage() string     { return "boardctl avatar <image-file>" }
func (c *AvatarCmd) Access() Access    { return Auth }

func (c *AvatarCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AvatarCmd) Run(ctx context.Context, cfg *config.Config, board service.Board, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: image file required")
		return exitcode.UserError
	}
	f, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	defer f.Close()

	u, err := board.UploadImage(ctx, filepath.Base(args[0]), f)
	if err != nil {
		return backendFailure(errOut, err)
	}
	fmt.Fprintln(out, u)
	return exitcode.Success
}
