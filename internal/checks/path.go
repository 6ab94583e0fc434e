package checks

import (
	"context"
	"os"
	"path/filepath"
)

// PathCheck reports whether the Homebrew bin directory is exported in the
// operator's PATH. Freshly installed tools are otherwise invisible to the
// operator's shell even though provisioning reached them via a per-call
// PATH override.
type PathCheck struct {
	// Path overrides the inspected PATH value in tests.
	Path string
}

func (c *PathCheck) Name() string { return "shell PATH" }

func (c *PathCheck) Run(context.Context) Finding {
	path := c.Path
	if path == "" {
		path = os.Getenv("PATH")
	}
	brewDir := brewDirOnDisk()
	if brewDir == "" {
		return Finding{OK: true, Message: "Homebrew not present; no PATH entry needed"}
	}
	for _, dir := range filepath.SplitList(path) {
		if dir == brewDir {
			return Finding{OK: true, Message: brewDir + " already on PATH"}
		}
	}
	return Finding{Message: "add " + brewDir + " to PATH in your shell profile"}
}

func brewDirOnDisk() string {
	for _, dir := range []string{"/opt/homebrew/bin", "/usr/local/bin"} {
		if info, err := os.Stat(filepath.Join(dir, "brew")); err == nil && !info.IsDir() {
			return dir
		}
	}
	return ""
}
