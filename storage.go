package mlfairy

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Storage is the persistence collaborator consumed by the acquisition task.
// It owns metadata persistence, artifact placement, and content digests.
type Storage interface {
	// SaveMetadata persists metadata as the last-known-good record for the
	// token.
	SaveMetadata(token string, md ModelMetadata) error

	// FindCached returns the last-known-good metadata-and-artifact pair
	// for the token. Returns ErrNotCached if either the metadata record or
	// the artifact file is missing.
	FindCached(token string) (CachedModel, error)

	// DestinationPath returns where the artifact described by md should
	// live on disk.
	DestinationPath(md ModelMetadata) string

	// Exists reports whether a regular file exists at path.
	Exists(path string) bool

	// DeleteFile removes the file at path. Missing files are not an error.
	DeleteFile(path string) error

	// Digest computes the MD5 content digest of the file at path.
	Digest(path string) ([]byte, error)
}

// diskStorage handles all local filesystem operations.
// Implements Storage.
type diskStorage struct {
	// baseDir is the base directory for all storage operations.
	baseDir string

	// lockTimeout is the maximum duration to wait for file lock acquisition.
	lockTimeout time.Duration

	// metadataMu protects concurrent in-process access to metadata files.
	metadataMu sync.Mutex
}

// Ensure diskStorage implements Storage.
var _ Storage = (*diskStorage)(nil)

// envVarName constructs an environment variable name from the app name.
// Converts appName to uppercase and appends "_MODELS_DIR".
// Example: envVarName("mlfairy") returns "MLFAIRY_MODELS_DIR".
func envVarName(appName string) string {
	return strings.ToUpper(appName) + "_MODELS_DIR"
}

// newDiskStorage creates a storage instance for the given configuration.
func newDiskStorage(cfg Config) (*diskStorage, error) {
	var baseDir string

	// Priority: env var > Config.DataDir > platform default
	if envDir := os.Getenv(envVarName(cfg.AppName)); envDir != "" {
		baseDir = envDir
	} else if cfg.DataDir != "" {
		baseDir = cfg.DataDir
	} else {
		defaultDir, err := getDefaultDataDir(cfg.AppName)
		if err != nil {
			return nil, err
		}
		baseDir = defaultDir
	}

	s := &diskStorage{baseDir: baseDir, lockTimeout: DefaultLockTimeout}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create storage directory: %v", ErrStorage, err)
	}

	return s, nil
}

// tokenDir returns the directory holding everything for one token.
func (s *diskStorage) tokenDir(token string) string {
	return filepath.Join(s.baseDir, token)
}

// metadataPath returns the path of the persisted metadata record.
func (s *diskStorage) metadataPath(token string) string {
	return filepath.Join(s.tokenDir(token), "metadata.json")
}

// SaveMetadata atomically writes the metadata record for a token.
// Uses cross-process file locking to prevent concurrent writes from
// multiple processes.
func (s *diskStorage) SaveMetadata(token string, md ModelMetadata) error {
	s.metadataMu.Lock()
	defer s.metadataMu.Unlock()

	dir := s.tokenDir(token)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create token directory: %v", ErrStorage, err)
	}

	lockPath := filepath.Join(dir, "metadata.json.lock")
	lock, err := newFileLock(lockPath, s.lockTimeout)
	if err != nil {
		return err
	}
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	data, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to marshal metadata: %v", ErrStorage, err)
	}

	return s.atomicWrite(s.metadataPath(token), data)
}

// loadMetadata reads the persisted metadata record for a token.
func (s *diskStorage) loadMetadata(token string) (ModelMetadata, error) {
	data, err := os.ReadFile(s.metadataPath(token))
	if os.IsNotExist(err) {
		return ModelMetadata{}, ErrNotCached
	}
	if err != nil {
		return ModelMetadata{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	var md ModelMetadata
	if err := json.Unmarshal(data, &md); err != nil {
		return ModelMetadata{}, fmt.Errorf("%w: invalid metadata.json: %v", ErrStorage, err)
	}

	return md, nil
}

// FindCached returns the stored metadata and artifact for a token, provided
// both still exist on disk.
func (s *diskStorage) FindCached(token string) (CachedModel, error) {
	md, err := s.loadMetadata(token)
	if err != nil {
		return CachedModel{}, err
	}

	path := s.DestinationPath(md)
	if !s.Exists(path) {
		return CachedModel{}, ErrNotCached
	}

	return CachedModel{Path: path, Metadata: md}, nil
}

// DestinationPath returns the version-keyed artifact location:
// <base>/<token>/<activeVersion>/<file>. The file name is taken from the
// remote URL; a new active version therefore always resolves to a new path.
func (s *diskStorage) DestinationPath(md ModelMetadata) string {
	return filepath.Join(s.tokenDir(md.Token), md.ActiveVersion, artifactFileName(md.ModelFileURL))
}

// artifactFileName extracts a usable file name from a remote URL.
func artifactFileName(remoteURL string) string {
	if u, err := url.Parse(remoteURL); err == nil {
		if name := filepath.Base(u.Path); name != "." && name != "/" && name != "" {
			return name
		}
	}
	return "model.bin"
}

// Exists reports whether a regular file exists at path.
func (s *diskStorage) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// DeleteFile removes the file at path. Missing files are not an error.
func (s *diskStorage) DeleteFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: failed to delete %s: %v", ErrStorage, path, err)
	}
	return nil
}

// Digest computes the MD5 digest of the file at path, streaming so large
// artifacts are never held in memory.
func (s *diskStorage) Digest(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return h.Sum(nil), nil
}

// RemoveToken deletes everything stored for a token: metadata record,
// artifacts, and compiled forms. Used by the CLI clean command.
func (s *diskStorage) RemoveToken(token string) error {
	if err := os.RemoveAll(s.tokenDir(token)); err != nil {
		return fmt.Errorf("%w: failed to remove token directory: %v", ErrStorage, err)
	}
	return nil
}

// atomicWrite writes data to a file using write-then-rename for atomicity.
func (s *diskStorage) atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory: %v", ErrStorage, err)
	}

	// Write to temp file first
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("%w: failed to write temp file: %v", ErrStorage, err)
	}

	// Atomic rename
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // cleanup on failure
		return fmt.Errorf("%w: failed to rename temp file: %v", ErrStorage, err)
	}

	return nil
}
