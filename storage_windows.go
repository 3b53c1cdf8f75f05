//go:build windows

package mlfairy

import (
	"fmt"
	"os"
	"path/filepath"
)

// getDefaultDataDir resolves the model cache root on Windows:
// %APPDATA%\<appName>\models, falling back to the conventional roaming
// location when APPDATA is unset.
func getDefaultDataDir(appName string) (string, error) {
	appData := os.Getenv("APPDATA")
	if appData == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("%w: resolving home directory: %v", ErrStorage, err)
		}
		appData = filepath.Join(home, "AppData", "Roaming")
	}
	return filepath.Join(appData, appName, "models"), nil
}
