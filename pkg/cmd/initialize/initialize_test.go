package initialize

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Paintersrp/knot/internal/config"
)

type fakePrompter struct {
	vault   string
	editor  string
	exec    string
	err     error
	choices []string
}

func (f *fakePrompter) VaultDir(string) (string, error) { return f.vault, f.err }

func (f *fakePrompter) Editor(_ string, choices []string) (string, error) {
	f.choices = choices
	return f.editor, nil
}

func (f *fakePrompter) EditorExec(string) (string, error) { return f.exec, nil }

func TestRunWritesConfigAndVault(t *testing.T) {
	home := t.TempDir()
	vault := filepath.Join(home, "notes")
	p := &fakePrompter{vault: vault, editor: "helix"}

	var out bytes.Buffer
	if err := Run(&out, home, p); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("saved config does not load: %v", err)
	}
	if cfg.VaultDir != vault || cfg.Editor != "helix" {
		t.Fatalf("unexpected config: vault %q editor %q", cfg.VaultDir, cfg.Editor)
	}
	if info, err := os.Stat(vault); err != nil || !info.IsDir() {
		t.Fatalf("expected notes directory to exist, got %v", err)
	}
	if !strings.Contains(out.String(), "helix") {
		t.Fatalf("expected summary to mention editor, got %q", out.String())
	}
	if len(p.choices) == 0 || p.choices[len(p.choices)-1] != "custom" {
		t.Fatalf("expected editor choices to be offered, got %v", p.choices)
	}
}

func TestRunCustomEditorAsksForExecutable(t *testing.T) {
	home := t.TempDir()
	p := &fakePrompter{vault: filepath.Join(home, "notes"), editor: "custom", exec: " emacsclient "}

	if err := Run(&bytes.Buffer{}, home, p); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.EditorTemplate.Exec != "emacsclient" {
		t.Fatalf("expected trimmed exec, got %q", cfg.EditorTemplate.Exec)
	}
}

func TestRunRejectsEmptyCustomExecutable(t *testing.T) {
	home := t.TempDir()
	p := &fakePrompter{vault: filepath.Join(home, "notes"), editor: "custom"}

	if err := Run(&bytes.Buffer{}, home, p); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := os.Stat(config.GetConfigPath(home)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no config to be written, got %v", err)
	}
}

func TestRunReplacesInvalidConfig(t *testing.T) {
	home := t.TempDir()
	path := config.GetConfigPath(home)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("editor: ed\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	p := &fakePrompter{vault: filepath.Join(home, "notes"), editor: "nano"}
	if err := Run(&out, home, p); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), "invalid") {
		t.Fatalf("expected a warning about the old config, got %q", out.String())
	}

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Editor != "nano" {
		t.Fatalf("expected nano, got %q", cfg.Editor)
	}
}

func TestRunPromptError(t *testing.T) {
	home := t.TempDir()
	p := &fakePrompter{err: errors.New("aborted")}

	if err := Run(&bytes.Buffer{}, home, p); err == nil || err.Error() != "aborted" {
		t.Fatalf("expected prompt error to be returned, got %v", err)
	}
}
