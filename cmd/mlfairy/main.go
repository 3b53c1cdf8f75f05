// Command mlfairy is a CLI harness for the mlfairy package.
//
// Configuration is resolved in order of precedence:
//  1. Environment variables: MLFAIRY_API_URL, MLFAIRY_MODELS_DIR
//  2. An optional YAML config file (MLFAIRY_CONFIG or ~/.mlfairy.yaml)
//
// Supported YAML keys: baseUrl, dataDir, logLevel.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	mlfairy "github.com/mlfairy/mlfairy-go"
	"gopkg.in/yaml.v3"
)

// CLI exit codes for standardized error reporting.
const (
	// ExitSuccess indicates the operation completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError = 1

	// ExitInvalidConfig indicates the configuration is incomplete.
	ExitInvalidConfig = 2

	// ExitNoDownload indicates the server has no model for the token.
	ExitNoDownload = 3

	// ExitNetworkError indicates a network or connection failure.
	ExitNetworkError = 4

	// ExitChecksumError indicates checksum verification failed.
	ExitChecksumError = 5

	// ExitCompileError indicates model compilation failed.
	ExitCompileError = 6
)

// fileConfig mirrors the optional YAML configuration file.
type fileConfig struct {
	BaseURL  string `yaml:"baseUrl"`
	DataDir  string `yaml:"dataDir"`
	LogLevel string `yaml:"logLevel"`
}

// loadFileConfig reads the YAML config file if one exists.
func loadFileConfig() (fileConfig, error) {
	path := os.Getenv("MLFAIRY_CONFIG")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fileConfig{}, nil
		}
		path = filepath.Join(home, ".mlfairy.yaml")
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fileConfig{}, nil
	}
	if err != nil {
		return fileConfig{}, err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return fc, nil
}

func main() {
	fc, err := loadFileConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitInvalidConfig)
	}

	cfg := mlfairy.Config{
		AppName: "mlfairy",
		BaseURL: fc.BaseURL,
		DataDir: fc.DataDir,
	}
	if url := os.Getenv("MLFAIRY_API_URL"); url != "" {
		cfg.BaseURL = url
	}
	if dir := os.Getenv("MLFAIRY_MODELS_DIR"); dir != "" {
		cfg.DataDir = dir
	}
	if cfg.BaseURL == "" {
		fmt.Fprintln(os.Stderr, "Error: MLFAIRY_API_URL or baseUrl is required")
		os.Exit(ExitInvalidConfig)
	}

	var opts []mlfairy.ClientOption
	if level := fc.LogLevel; level != "" {
		logger, err := mlfairy.NewDefaultLogger(level)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(ExitInvalidConfig)
		}
		opts = append(opts, mlfairy.WithLogger(logger))
	}

	cmd := mlfairy.NewCommand(cfg, opts...)
	cmd.Use = "mlfairy"

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
	os.Exit(ExitSuccess)
}

// exitCode maps package errors to CLI exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, mlfairy.ErrInvalidConfig):
		return ExitInvalidConfig
	case errors.Is(err, mlfairy.ErrNoDownloadAvailable):
		return ExitNoDownload
	case errors.Is(err, mlfairy.ErrNetwork), errors.Is(err, mlfairy.ErrServer), errors.Is(err, mlfairy.ErrDownloadFailed):
		return ExitNetworkError
	case errors.Is(err, mlfairy.ErrChecksum), errors.Is(err, mlfairy.ErrChecksumMismatch):
		return ExitChecksumError
	case errors.Is(err, mlfairy.ErrCompilationFailed):
		return ExitCompileError
	}
	return ExitGeneralError
}
