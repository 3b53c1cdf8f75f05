//go:build darwin

package mlfairy

import (
	"fmt"
	"os"
	"path/filepath"
)

// getDefaultDataDir resolves the model cache root on macOS:
// ~/Library/Application Support/<appName>/models.
func getDefaultDataDir(appName string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: resolving home directory: %v", ErrStorage, err)
	}
	return filepath.Join(home, "Library", "Application Support", appName, "models"), nil
}
