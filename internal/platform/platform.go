// Package platform answers questions about the host: operating system,
// effective user, and the real (pre-sudo) user context that provisioning
// artifacts must be owned by.
package platform

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
)

// Current returns the runtime.GOOS value ("darwin", "linux", …).
func Current() string {
	return runtime.GOOS
}

// IsRoot reports whether the process runs with root privileges.
func IsRoot() bool {
	return os.Geteuid() == 0
}

// RealUser returns the invoking username. Under sudo this is the original
// user, not root.
func RealUser() string {
	if u := os.Getenv("SUDO_USER"); u != "" {
		return u
	}
	return os.Getenv("USER")
}

// RealHome returns the invoking user's home directory. Under sudo this is
// the original user's home, not /var/root.
func RealHome() string {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
		if u, err := user.Lookup(sudoUser); err == nil && u.HomeDir != "" {
			return u.HomeDir
		}
		return filepath.Join("/Users", sudoUser)
	}
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	home, _ := os.UserHomeDir()
	return home
}

// ExpandPath expands a leading "~/" and environment variables in path.
func ExpandPath(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return os.ExpandEnv(path)
}

// Homebrew bin directories: Apple silicon prefix first, then Intel.
var brewBinDirs = []string{"/opt/homebrew/bin", "/usr/local/bin"}

// BrewBin returns the absolute path of the brew executable, or "" when
// Homebrew is not installed in a standard prefix.
func BrewBin() string {
	for _, dir := range brewBinDirs {
		candidate := filepath.Join(dir, "brew")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// PathWithBrew derives a PATH value with the Homebrew bin directories
// prepended to base. The process PATH itself is never mutated; callers pass
// the derived value per command invocation.
func PathWithBrew(base string) string {
	path := base
	for i := len(brewBinDirs) - 1; i >= 0; i-- {
		dir := brewBinDirs[i]
		if containsDir(path, dir) {
			continue
		}
		if path == "" {
			path = dir
		} else {
			path = dir + string(os.PathListSeparator) + path
		}
	}
	return path
}

func containsDir(path, dir string) bool {
	for _, d := range filepath.SplitList(path) {
		if d == dir {
			return true
		}
	}
	return false
}
