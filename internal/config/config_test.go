package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hostup.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.DNS.Sentinel != "100.100.100.100" {
		t.Errorf("default sentinel = %q", cfg.DNS.Sentinel)
	}
	if len(cfg.Packages) == 0 {
		t.Error("defaults should include packages")
	}
	if cfg.Power.Sleep != 0 || cfg.Power.DisplaySleep != 0 {
		t.Error("default sleep timers should be 0 (never)")
	}
	if !cfg.Power.AutoRestart {
		t.Error("autorestart should default to on")
	}
	if cfg.Runtime.SettleSeconds <= 0 {
		t.Error("settle delay should default to a positive value")
	}
}

func TestLoadOverridesLists(t *testing.T) {
	path := writeManifest(t, `
packages:
  - neovim
dns:
  services:
    - Ethernet
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Packages) != 1 || cfg.Packages[0] != "neovim" {
		t.Errorf("Packages = %v, want [neovim]", cfg.Packages)
	}
	if len(cfg.DNS.Services) != 1 || cfg.DNS.Services[0] != "Ethernet" {
		t.Errorf("DNS.Services = %v, want [Ethernet]", cfg.DNS.Services)
	}
	// Untouched sections keep their defaults.
	if cfg.DNS.Sentinel != "100.100.100.100" {
		t.Errorf("sentinel should keep its default, got %q", cfg.DNS.Sentinel)
	}
	if cfg.Tmux.Label != "com.hostup.tmux" {
		t.Errorf("tmux label should keep its default, got %q", cfg.Tmux.Label)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeManifest(t, "packages: [unclosed")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}
