package commands_test

import (
	"errors"
	"strings"
	"testing"

	"boardctl/internal/commands"
	"boardctl/internal/exitcode"
	"boardctl/internal/service"
	"boardctl/internal/store"
	"boardctl/internal/testutil"
)

func TestAddNoteCommand(t *testing.T) {
	cfg := newConfig(t)
	board := testutil.NewFakeBoard()

	stdout, stderr, code := runCommand(t, &commands.AddNoteCmd{}, cfg, board, " buy", "milk ")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "1\n" {
		t.Errorf("expected note id, got %q", stdout)
	}
	if text, _ := board.NoteText("1"); text != "buy milk" {
		t.Errorf("expected trimmed text on server, got %q", text)
	}

	snap := loadSnapshot(t, cfg)
	if len(snap.Notes) != 1 || snap.Notes[0].ID != "1" || snap.Notes[0].Text != "buy milk" {
		t.Errorf("unexpected snapshot notes %+v", snap.Notes)
	}
}

func TestAddNoteCommand_BlankText(t *testing.T) {
	board := testutil.NewFakeBoard()

	_, stderr, code := runCommand(t, &commands.AddNoteCmd{}, newConfig(t), board, "  ")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: text required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if calls := board.Calls(""); len(calls) != 0 {
		t.Errorf("expected no backend calls, got %+v", calls)
	}
}

func TestEditNoteCommand(t *testing.T) {
	cfg := newConfig(t)
	board := testutil.NewFakeBoard()
	err := store.Save(cfg.SnapshotPath(), store.Snapshot{
		BoardID: "7",
		Notes:   []service.Note{{ID: "10", Text: "old"}, {ID: "11", Text: "other"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	stdout, _, code := runCommand(t, &commands.EditNoteCmd{}, cfg, board, "10", "new", "text")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ok\n" {
		t.Errorf("expected ok, got %q", stdout)
	}
	calls := board.Calls("UpdateText")
	if len(calls) != 1 || calls[0].ID != "10" || calls[0].Text != "new text" {
		t.Errorf("unexpected calls %+v", calls)
	}

	snap := loadSnapshot(t, cfg)
	if len(snap.Notes) != 2 || snap.Notes[0].Text != "new text" || snap.Notes[1].Text != "other" {
		t.Errorf("unexpected snapshot notes %+v", snap.Notes)
	}
}

func TestEditNoteCommand_UnknownNote(t *testing.T) {
	cfg := newConfig(t)
	board := testutil.NewFakeBoard()

	_, _, code := runCommand(t, &commands.EditNoteCmd{}, cfg, board, "42", "from elsewhere")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if calls := board.Calls("UpdateText"); len(calls) != 1 || calls[0].ID != "42" {
		t.Errorf("unexpected calls %+v", calls)
	}
	snap := loadSnapshot(t, cfg)
	if len(snap.Notes) != 1 || snap.Notes[0].ID != "42" {
		t.Errorf("expected note 42 remembered, got %+v", snap.Notes)
	}
}

func TestEditNoteCommand_BackendFailure(t *testing.T) {
	board := testutil.NewFakeBoard()
	board.UpdateTextErr = errors.New("connection reset")

	_, stderr, code := runCommand(t, &commands.EditNoteCmd{}, newConfig(t), board, "10", "x")

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if !strings.Contains(stderr, "error: backend error:") || !strings.Contains(stderr, "connection reset") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestEditNoteCommand_MissingArgs(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.EditNoteCmd{}, newConfig(t), testutil.NewFakeBoard(), "10")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: text required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}
