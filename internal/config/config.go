// Package config holds the provisioning manifest. The built-in defaults
// describe a stock headless server; a YAML file can override any section.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level manifest.
type Config struct {
	Packages []string       `yaml:"packages,omitempty"`
	Casks    []string       `yaml:"casks,omitempty"`
	DNS      DNSConfig      `yaml:"dns,omitempty"`
	Firewall FirewallConfig `yaml:"firewall,omitempty"`
	Power    PowerConfig    `yaml:"power,omitempty"`
	Tmux     TmuxConfig     `yaml:"tmux,omitempty"`
	Runtime  RuntimeConfig  `yaml:"runtime,omitempty"`
}

// DNSConfig controls the mesh-VPN resolver integration.
type DNSConfig struct {
	// Sentinel is the resolver address that marks MagicDNS as active. It is
	// prepended to each network service's resolver list, never replacing
	// existing entries.
	Sentinel string `yaml:"sentinel,omitempty"`
	// Services are the network services to configure. Services absent on
	// the host are skipped.
	Services []string `yaml:"services,omitempty"`
	// Fallbacks are used when a service has no resolvers configured at all,
	// so the host is not left resolving through the sentinel alone.
	Fallbacks []string `yaml:"fallbacks,omitempty"`
}

// FirewallConfig lists applications allowed through the application
// firewall. Apps not present on the host are skipped.
type FirewallConfig struct {
	Exceptions []string `yaml:"exceptions,omitempty"`
}

// PowerConfig holds pmset values for headless operation. Zero means "never"
// for the sleep timers, which is the desired state for a server.
type PowerConfig struct {
	Sleep        int  `yaml:"sleep"`
	DisplaySleep int  `yaml:"displaysleep"`
	DiskSleep    int  `yaml:"disksleep"`
	AutoRestart  bool `yaml:"autorestart"`
}

// TmuxConfig names the user LaunchAgent registered for the multiplexer.
type TmuxConfig struct {
	Label string `yaml:"label,omitempty"`
}

// RuntimeConfig controls the container runtime service.
type RuntimeConfig struct {
	// SettleSeconds is the fixed delay after starting the runtime service,
	// allowing asynchronous daemon startup to reach a stable state.
	SettleSeconds int `yaml:"settle_seconds,omitempty"`
}

// Defaults returns the built-in manifest.
func Defaults() Config {
	return Config{
		Packages: []string{"colima", "docker", "git", "htop", "tmux"},
		DNS: DNSConfig{
			Sentinel:  "100.100.100.100",
			Services:  []string{"Wi-Fi", "Ethernet"},
			Fallbacks: []string{"1.1.1.1", "8.8.8.8"},
		},
		Firewall: FirewallConfig{
			Exceptions: []string{
				"/opt/homebrew/bin/tailscaled",
				"/usr/libexec/sshd-keygen-wrapper",
			},
		},
		Power: PowerConfig{
			Sleep:        0,
			DisplaySleep: 0,
			DiskSleep:    0,
			AutoRestart:  true,
		},
		Tmux:    TmuxConfig{Label: "com.hostup.tmux"},
		Runtime: RuntimeConfig{SettleSeconds: 5},
	}
}

// Load reads the manifest at path over the defaults. Lists replace the
// default lists wholesale; scalar zero values keep the default.
func Load(path string) (Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.DNS.Sentinel == "" {
		cfg.DNS.Sentinel = Defaults().DNS.Sentinel
	}
	if cfg.Tmux.Label == "" {
		cfg.Tmux.Label = Defaults().Tmux.Label
	}
	if cfg.Runtime.SettleSeconds <= 0 {
		cfg.Runtime.SettleSeconds = Defaults().Runtime.SettleSeconds
	}
	return cfg, nil
}
