//go:build linux

package mlfairy

import (
	"fmt"
	"os"
	"path/filepath"
)

// getDefaultDataDir resolves the model cache root on Linux, honoring
// XDG_DATA_HOME before falling back to ~/.local/share.
func getDefaultDataDir(appName string) (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, "models"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: resolving home directory: %v", ErrStorage, err)
	}
	return filepath.Join(home, ".local", "share", appName, "models"), nil
}
