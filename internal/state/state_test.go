package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/Paintersrp/knot/internal/config"
	"github.com/Paintersrp/knot/internal/constants"
	"github.com/Paintersrp/knot/internal/storage"
)

func TestNewStateCreatesVaultAndConfig(t *testing.T) {
	home := t.TempDir()

	s, err := NewStateFrom(home, viper.New())
	if err != nil {
		t.Fatalf("NewStateFrom failed: %v", err)
	}
	defer s.Close()

	want := filepath.Join(home, constants.DefaultVaultDir)
	if s.Vault != want {
		t.Fatalf("expected vault %q, got %q", want, s.Vault)
	}
	if info, err := os.Stat(want); err != nil || !info.IsDir() {
		t.Fatalf("vault directory not created: %v", err)
	}
	if _, err := os.Stat(config.GetConfigPath(home)); err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(config.GetConfigDir(home), constants.LogFile)); err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if s.Watcher != nil {
		t.Fatal("watcher should be off by default")
	}
}

func TestNewStateAppliesOverrides(t *testing.T) {
	home := t.TempDir()
	vault := filepath.Join(t.TempDir(), "notes")

	v := viper.New()
	v.Set("vaultdir", vault)
	v.Set("delete_mode", constants.DeleteModeTrash)
	v.Set("watch", true)

	s, err := NewStateFrom(home, v)
	if err != nil {
		t.Fatalf("NewStateFrom failed: %v", err)
	}
	defer s.Close()

	if s.Vault != vault {
		t.Fatalf("expected vault override %q, got %q", vault, s.Vault)
	}
	if s.Watcher == nil {
		t.Fatal("expected watcher when watch is enabled")
	}

	if err := os.MkdirAll(filepath.Join(vault, "Work"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := s.Store.DeleteCategory("Work"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(vault, constants.TrashDir, "Work")); err != nil {
		t.Fatalf("expected category in trash: %v", err)
	}
}

func TestNewStateEnvironmentOverride(t *testing.T) {
	home := t.TempDir()
	vault := filepath.Join(t.TempDir(), "env-notes")
	t.Setenv("KNOT_VAULTDIR", vault)

	s, err := NewStateFrom(home, viper.New())
	if err != nil {
		t.Fatalf("NewStateFrom failed: %v", err)
	}
	defer s.Close()

	if s.Vault != vault {
		t.Fatalf("expected env vault %q, got %q", vault, s.Vault)
	}
}

func TestNewStateRejectsInvalidConfig(t *testing.T) {
	home := t.TempDir()
	v := viper.New()
	v.Set("filter_commit", "never")

	if _, err := NewStateFrom(home, v); err == nil {
		t.Fatal("expected invalid override to fail")
	}
}

func TestNewStateFailsOnUnusableRoot(t *testing.T) {
	home := t.TempDir()
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	v := viper.New()
	v.Set("vaultdir", file)

	_, err := NewStateFrom(home, v)
	if err == nil {
		t.Fatal("expected a file as notes root to fail")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	s, err := NewStateFrom(t.TempDir(), viper.New())
	if err != nil {
		t.Fatalf("NewStateFrom failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	var _ storage.Store = s.Store
}
