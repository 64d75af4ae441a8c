package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"boardctl/internal/config"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv(config.EnvURL, "")
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.BaseURL != config.DefaultBaseURL {
		t.Errorf("expected %q, got %q", config.DefaultBaseURL, cfg.BaseURL)
	}
	if cfg.Debounce != 500*time.Millisecond {
		t.Errorf("expected 500ms debounce, got %v", cfg.Debounce)
	}
	if cfg.InitialTask != "New task" {
		t.Errorf("expected default initial task, got %q", cfg.InitialTask)
	}
	if cfg.Log == nil {
		t.Error("expected non-nil logger")
	}
}

func TestNew_ReadsSettings(t *testing.T) {
	t.Setenv(config.EnvURL, "")
	dir := t.TempDir()
	yml := "base_url: https://boards.example.com/\nboard_id: \"42\"\nlocale: ru\ndebounce: 250ms\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yml), 0600); err != nil {
		t.Fatalf("failed to write config.yaml: %v", err)
	}

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL != "https://boards.example.com" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.BaseURL)
	}
	if cfg.BoardID != "42" {
		t.Errorf("expected board 42, got %q", cfg.BoardID)
	}
	if cfg.Locale != "ru" {
		t.Errorf("expected locale ru, got %q", cfg.Locale)
	}
	if cfg.Debounce != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", cfg.Debounce)
	}
}

func TestNew_InvalidSettings(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("debounce: [oops"), 0600); err != nil {
		t.Fatalf("failed to write config.yaml: %v", err)
	}
	if _, err := config.New(dir); err == nil {
		t.Error("expected error for malformed config.yaml")
	}
}

func TestSave_RoundTripsBoard(t *testing.T) {
	t.Setenv(config.EnvURL, "")
	dir := t.TempDir()
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.BoardID = "7"
	if err := cfg.Save(); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	again, err := config.New(dir)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if again.BoardID != "7" {
		t.Errorf("expected board 7 after reload, got %q", again.BoardID)
	}
}

func TestToken_FileAndEnv(t *testing.T) {
	t.Setenv(config.EnvToken, "")
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HasToken() {
		t.Fatal("expected no token in a fresh dir")
	}
	if err := cfg.SaveToken("Bearer abc.def"); err != nil {
		t.Fatalf("save token failed: %v", err)
	}
	tok, err := cfg.Token()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "abc.def" {
		t.Errorf("expected bearer prefix stripped, got %q", tok)
	}

	info, err := os.Stat(cfg.TokenPath())
	if err != nil {
		t.Fatalf("stat token: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}

	t.Setenv(config.EnvToken, "from-env")
	tok, _ = cfg.Token()
	if tok != "from-env" {
		t.Errorf("expected env token, got %q", tok)
	}
}

func TestSnapshotPath_PerBoard(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{Dir: dir}

	cfg.BoardID = "7"
	seven := cfg.SnapshotPath()
	cfg.BoardID = "9"
	nine := cfg.SnapshotPath()

	if seven != filepath.Join(dir, "boards", "7.json") {
		t.Errorf("unexpected path %q", seven)
	}
	if seven == nine {
		t.Error("boards must not share a snapshot file")
	}

	cfg.BoardID = "../evil"
	if got := filepath.Dir(cfg.SnapshotPath()); got != filepath.Join(dir, "boards") {
		t.Errorf("board id escaped the snapshot dir: %q", cfg.SnapshotPath())
	}
}

func TestStripBearer(t *testing.T) {
	tests := map[string]string{
		"Bearer x":  "x",
		"bearer  y": "y",
		"z":         "z",
		"Bearer":    "Bearer",
	}
	for in, want := range tests {
		if got := config.StripBearer(in); got != want {
			t.Errorf("StripBearer(%q) = %q, want %q", in, got, want)
		}
	}
}
