package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"boardctl/internal/commands"
	"boardctl/internal/config"
	"boardctl/internal/exitcode"
	"boardctl/internal/service"
	"boardctl/internal/store"
	"boardctl/internal/testutil"
)

// newConfig returns a config with board 7 selected in a temp dir.
func newConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Dir: t.TempDir(),
		Settings: config.Settings{
			BaseURL:     config.DefaultBaseURL,
			BoardID:     "7",
			Locale:      "en",
			Debounce:    config.DefaultDebounce,
			Timeout:     config.DefaultTimeout,
			InitialTask: config.DefaultInitialTask,
		},
		Log: zap.NewNop(),
	}
}

// runCommand runs cmd against board and captures its output.
func runCommand(t *testing.T, cmd commands.Command, cfg *config.Config, board service.Board, args ...string) (stdout, stderr string, code int) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer
	code = cmd.Run(context.Background(), cfg, board, args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func loadSnapshot(t *testing.T, cfg *config.Config) store.Snapshot {
	t.Helper()
	snap, err := store.Load(cfg.SnapshotPath(), cfg.BoardID)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	return snap
}

func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, newConfig(t), nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "boardctl 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

func TestHelpCommand(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.HelpCmd{}, newConfig(t), nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	for _, want := range []string{"Usage:", "boardctl addnote", "boardctl createlist", "--config"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

func TestShowCommand_NoBoard(t *testing.T) {
	cfg := newConfig(t)
	cfg.BoardID = ""

	_, stderr, code := runCommand(t, &commands.ShowCmd{}, cfg, nil)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "no board selected") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestShowCommand_Empty(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.ShowCmd{}, newConfig(t), nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "board 7\nno notes or lists yet\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestShowCommand_Golden(t *testing.T) {
	cfg := newConfig(t)
	snapshot := `{
  "board_id": "7",
  "notes": [
    {"id": 10, "text": "Buy a gift"},
    {"id": 11, "text": "line one\nline two"}
  ],
  "lists": [
    {
      "id": 20,
      "title": "Trip",
      "deadline": "2026-10-20T18:30:00Z",
      "items": [
        {"id": 21, "list_id": 20, "text": "Tickets", "completed": true},
        {"id": 22, "list_id": 20, "text": "Hotel", "completed": false}
      ]
    }
  ],
  "updated_at": "0001-01-01T00:00:00Z"
}`
	if err := os.MkdirAll(filepath.Dir(cfg.SnapshotPath()), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.SnapshotPath(), []byte(snapshot), 0600); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := runCommand(t, &commands.ShowCmd{}, cfg, nil)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	testutil.Golden(t, "show", stdout)
}

func TestBoardCommand(t *testing.T) {
	cfg := newConfig(t)

	stdout, _, code := runCommand(t, &commands.BoardCmd{}, cfg, nil)
	if code != exitcode.Success || stdout != "7\n" {
		t.Fatalf("got %q (code %d)", stdout, code)
	}

	stdout, _, code = runCommand(t, &commands.BoardCmd{}, cfg, nil, "9")
	if code != exitcode.Success || stdout != "ok\n" {
		t.Fatalf("got %q (code %d)", stdout, code)
	}

	reloaded, err := config.New(cfg.Dir)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.BoardID != "9" {
		t.Errorf("expected board 9 saved, got %q", reloaded.BoardID)
	}
}

func TestNewBoardCommand(t *testing.T) {
	cfg := newConfig(t)
	board := testutil.NewFakeBoard()

	stdout, _, code := runCommand(t, &commands.NewBoardCmd{}, cfg, board, "Weekend", "plans")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "1\n" {
		t.Errorf("expected new board id, got %q", stdout)
	}
	calls := board.Calls("CreateBoard")
	if len(calls) != 1 || calls[0].Text != "Weekend plans" {
		t.Errorf("unexpected calls %+v", calls)
	}
	if cfg.BoardID != "1" {
		t.Errorf("expected board 1 selected, got %q", cfg.BoardID)
	}
}

func TestNewBoardCommand_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"unauthorized", service.ErrUnauthorized, exitcode.AuthError, "error: auth error:"},
		{"rejected", service.ErrRejected, exitcode.UserError, "error: rejected"},
		{"other", context.DeadlineExceeded, exitcode.BackendError, "error: backend error:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := testutil.NewFakeBoard()
			board.CreateBoardErr = tt.err

			_, stderr, code := runCommand(t, &commands.NewBoardCmd{}, newConfig(t), board, "x")

			if code != tt.code {
				t.Errorf("expected exit code %d, got %d", tt.code, code)
			}
			if !strings.HasPrefix(stderr, tt.msg) {
				t.Errorf("expected stderr to start with %q, got %q", tt.msg, stderr)
			}
		})
	}
}

func TestEditCommand_NoBoard(t *testing.T) {
	cfg := newConfig(t)
	cfg.BoardID = ""

	_, _, code := runCommand(t, &commands.EditCmd{}, cfg, testutil.NewFakeBoard())

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
}

func TestBoardSwitchKeepsSnapshots(t *testing.T) {
	cfg := newConfig(t)
	board := testutil.NewFakeBoard()

	if _, _, code := runCommand(t, &commands.AddNoteCmd{}, cfg, board, "on seven"); code != exitcode.Success {
		t.Fatalf("addnote on 7: exit code %d", code)
	}
	if _, _, code := runCommand(t, &commands.BoardCmd{}, cfg, nil, "9"); code != exitcode.Success {
		t.Fatalf("board 9: exit code %d", code)
	}
	if _, _, code := runCommand(t, &commands.AddNoteCmd{}, cfg, board, "on nine"); code != exitcode.Success {
		t.Fatalf("addnote on 9: exit code %d", code)
	}
	if _, _, code := runCommand(t, &commands.BoardCmd{}, cfg, nil, "7"); code != exitcode.Success {
		t.Fatalf("board 7: exit code %d", code)
	}

	snap := loadSnapshot(t, cfg)
	if len(snap.Notes) != 1 || snap.Notes[0].Text != "on seven" {
		t.Errorf("board 7 snapshot lost after switching, got %+v", snap.Notes)
	}
}

func TestMirrorCommand_NoLists(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.MirrorCmd{}, newConfig(t), nil)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "no todo lists") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestMirrorCommand_NoCredentials(t *testing.T) {
	cfg := newConfig(t)
	err := store.Save(cfg.SnapshotPath(), store.Snapshot{
		BoardID: "7",
		Lists:   []service.TodoList{{ID: "20", Title: "Trip"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := runCommand(t, &commands.MirrorCmd{}, cfg, nil)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if !strings.Contains(stderr, config.OAuthClientFile) {
		t.Errorf("expected message about %s, got %q", config.OAuthClientFile, stderr)
	}

	// Client present, token missing.
	if err := os.WriteFile(filepath.Join(cfg.Dir, config.OAuthClientFile), []byte(`{}`), 0600); err != nil {
		t.Fatal(err)
	}
	_, stderr, code = runCommand(t, &commands.MirrorCmd{}, cfg, nil)
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.Contains(stderr, "mirror-login") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestMirrorLoginCommand_NoOAuthClient(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.MirrorLoginCmd{}, newConfig(t), nil)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if !strings.Contains(stderr, "Desktop app") {
		t.Errorf("expected setup instructions, got %q", stderr)
	}
}

func TestSnapshotStampedOnSave(t *testing.T) {
	cfg := newConfig(t)
	before := time.Now().UTC().Add(-time.Second)

	_, _, code := runCommand(t, &commands.AddNoteCmd{}, cfg, testutil.NewFakeBoard(), "hello")
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}

	snap := loadSnapshot(t, cfg)
	if snap.UpdatedAt.Before(before) {
		t.Errorf("expected fresh timestamp, got %v", snap.UpdatedAt)
	}
}
