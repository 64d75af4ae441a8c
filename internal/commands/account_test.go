package commands_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"boardctl/internal/commands"
	"boardctl/internal/exitcode"
	"boardctl/internal/form"
	"boardctl/internal/testutil"
)

func TestRegisterCommand_FieldErrors(t *testing.T) {
	board := testutil.NewFakeBoard()

	cmd := &commands.RegisterCmd{}
	cmd.SetForm(form.Registration{Email: "not-an-email", Username: "ann", Password: "123", Password2: "456"})
	_, stderr, code := runCommand(t, cmd, newConfig(t), board)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	for _, want := range []string{
		"error: email: Please enter a valid email address",
		"error: password: Password must be at least 6 characters",
		"error: password2: Passwords do not match",
	} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr should contain %q, got %q", want, stderr)
		}
	}
	if calls := board.Calls(""); len(calls) != 0 {
		t.Errorf("invalid email must not reach the server, got %+v", calls)
	}
}

func TestRegisterCommand_EmailTaken(t *testing.T) {
	board := testutil.NewFakeBoard()
	board.AddAccount("ann@example.com", "secret1")

	cmd := &commands.RegisterCmd{}
	cmd.SetForm(form.Registration{Email: "ann@example.com", Username: "ann", Password: "secret1", Password2: "secret1"})
	_, stderr, code := runCommand(t, cmd, newConfig(t), board)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: email: This email is already registered\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if n := len(board.Calls("Register")); n != 0 {
		t.Errorf("expected no Register call, got %d", n)
	}
}

func TestRegisterCommand_Russian(t *testing.T) {
	cfg := newConfig(t)
	cfg.Locale = "ru"

	cmd := &commands.RegisterCmd{}
	cmd.SetForm(form.Registration{Email: "ann@example.com", Username: "ann", Password: "secret1", Password2: "secret2"})
	_, stderr, _ := runCommand(t, cmd, cfg, testutil.NewFakeBoard())

	if stderr != "error: password2: Пароли не совпадают\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestRegisterCommand_Success(t *testing.T) {
	board := testutil.NewFakeBoard()

	cmd := &commands.RegisterCmd{}
	cmd.SetForm(form.Registration{Email: "ann@example.com", Username: "ann", Password: "secret1", Password2: "secret1"})
	stdout, _, code := runCommand(t, cmd, newConfig(t), board)

	if code != exitcode.Success || stdout != "ok\n" {
		t.Fatalf("got %q (code %d)", stdout, code)
	}
	if n := len(board.Calls("Register")); n != 1 {
		t.Errorf("expected 1 Register call, got %d", n)
	}
}

func TestLoginCommand_SavesToken(t *testing.T) {
	t.Setenv("BOARDCTL_TOKEN", "")
	cfg := newConfig(t)
	board := testutil.NewFakeBoard()
	board.AddAccount("ann@example.com", "secret1")
	board.Token = "abc123"

	cmd := &commands.LoginCmd{}
	cmd.SetForm(form.Login{Email: "ann@example.com", Password: "secret1"})
	stdout, _, code := runCommand(t, cmd, cfg, board)

	if code != exitcode.Success || stdout != "ok\n" {
		t.Fatalf("got %q (code %d)", stdout, code)
	}
	tok, err := cfg.Token()
	if err != nil || tok != "abc123" {
		t.Errorf("expected stored token, got %q (%v)", tok, err)
	}
	info, err := os.Stat(cfg.TokenPath())
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %o", info.Mode().Perm())
	}
}

func TestLoginCommand_WrongPassword(t *testing.T) {
	cfg := newConfig(t)
	board := testutil.NewFakeBoard()
	board.AddAccount("ann@example.com", "secret1")

	cmd := &commands.LoginCmd{}
	cmd.SetForm(form.Login{Email: "ann@example.com", Password: "nope"})
	_, stderr, code := runCommand(t, cmd, cfg, board)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: invalid email or password\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if _, err := os.Stat(cfg.TokenPath()); !os.IsNotExist(err) {
		t.Error("no token should be stored")
	}
}

func TestLoginCommand_MissingPassword(t *testing.T) {
	board := testutil.NewFakeBoard()

	cmd := &commands.LoginCmd{}
	cmd.SetForm(form.Login{Email: "ann@example.com"})
	_, stderr, code := runCommand(t, cmd, newConfig(t), board)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: password: Enter your password\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if n := len(board.Calls("Login")); n != 0 {
		t.Errorf("expected no Login call, got %d", n)
	}
}

func TestLogoutCommand(t *testing.T) {
	cfg := newConfig(t)

	stdout, _, code := runCommand(t, &commands.LogoutCmd{}, cfg, nil)
	if code != exitcode.Success || stdout != "not logged in\n" {
		t.Fatalf("got %q (code %d)", stdout, code)
	}

	if err := cfg.SaveToken("abc123"); err != nil {
		t.Fatal(err)
	}
	stdout, _, code = runCommand(t, &commands.LogoutCmd{}, cfg, nil)
	if code != exitcode.Success || stdout != "ok\n" {
		t.Fatalf("got %q (code %d)", stdout, code)
	}
	if _, err := os.Stat(cfg.TokenPath()); !os.IsNotExist(err) {
		t.Error("token file should be removed")
	}
}

func TestPasswdCommand(t *testing.T) {
	board := testutil.NewFakeBoard()

	cmd := &commands.PasswdCmd{}
	cmd.SetPasswords("old-secret", "123")
	_, stderr, code := runCommand(t, cmd, newConfig(t), board)
	if code != exitcode.UserError || !strings.Contains(stderr, "at least 6") {
		t.Errorf("short password: got %q (code %d)", stderr, code)
	}

	cmd.SetPasswords("old-secret", "new-secret")
	stdout, _, code := runCommand(t, cmd, newConfig(t), board)
	if code != exitcode.Success || stdout != "ok\n" {
		t.Errorf("got %q (code %d)", stdout, code)
	}
	if n := len(board.Calls("ChangePassword")); n != 1 {
		t.Errorf("expected 1 ChangePassword call, got %d", n)
	}
}

func TestPasswdCommand_CountsCharacters(t *testing.T) {
	board := testutil.NewFakeBoard()

	cmd := &commands.PasswdCmd{}
	cmd.SetPasswords("old-secret", "абвгд")
	_, _, code := runCommand(t, cmd, newConfig(t), board)
	if code != exitcode.UserError {
		t.Errorf("5-character password: expected exit code %d, got %d", exitcode.UserError, code)
	}

	cmd.SetPasswords("old-secret", "пароль")
	_, _, code = runCommand(t, cmd, newConfig(t), board)
	if code != exitcode.Success {
		t.Errorf("6-character password: expected exit code %d, got %d", exitcode.Success, code)
	}
}

func TestAvatarCommand(t *testing.T) {
	board := testutil.NewFakeBoard()
	path := filepath.Join(t.TempDir(), "me.png")
	data := []byte("\x89PNG\r\n\x1a\nfake")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}

	stdout, _, code := runCommand(t, &commands.AvatarCmd{}, newConfig(t), board, path)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "https://images.example.com/me.png\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if string(board.Avatar()) != string(data) {
		t.Error("uploaded bytes differ")
	}
}

func TestAvatarCommand_MissingFile(t *testing.T) {
	board := testutil.NewFakeBoard()

	_, _, code := runCommand(t, &commands.AvatarCmd{}, newConfig(t), board, filepath.Join(t.TempDir(), "nope.png"))

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if n := len(board.Calls("")); n != 0 {
		t.Errorf("expected no backend calls, got %d", n)
	}
}
