package mlfairy

import "errors"

// Sentinel errors for model acquisition.
// Use errors.Is() to check for specific error conditions.
var (
	// ErrDownloadFailed indicates the metadata fetch or artifact transfer
	// failed and no usable cached model existed.
	ErrDownloadFailed = errors.New("mlfairy: model download failed")

	// ErrNoDownloadAvailable indicates the server reported no active
	// version or no file URL for the token.
	ErrNoDownloadAvailable = errors.New("mlfairy: no download available")

	// ErrChecksum indicates the digest computation itself failed.
	// This is an I/O failure, not a mismatch.
	ErrChecksum = errors.New("mlfairy: checksum computation failed")

	// ErrChecksumMismatch indicates the artifact's digest did not match the
	// hash declared in its metadata. The local artifact is deleted as a
	// side effect so a corrupt file cannot poison future runs.
	ErrChecksumMismatch = errors.New("mlfairy: checksum verification failed")

	// ErrCompilationFailed indicates the compiler rejected a verified
	// artifact.
	ErrCompilationFailed = errors.New("mlfairy: model compilation failed")

	// ErrCancelled indicates the task was cancelled before reaching a
	// natural terminal state.
	ErrCancelled = errors.New("mlfairy: task cancelled")

	// ErrNetwork indicates a network or connection failure.
	ErrNetwork = errors.New("mlfairy: network error")

	// ErrServer indicates the server returned an unexpected status or an
	// unparseable response.
	ErrServer = errors.New("mlfairy: invalid server response")

	// ErrStorage indicates a filesystem operation failed.
	ErrStorage = errors.New("mlfairy: storage error")

	// ErrNotCached indicates no cached metadata-and-artifact pair exists
	// for the token.
	ErrNotCached = errors.New("mlfairy: no cached model")

	// ErrInvalidConfig indicates the client configuration is incomplete.
	ErrInvalidConfig = errors.New("mlfairy: invalid configuration")
)
