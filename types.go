package mlfairy

import (
	"os"
	"runtime"
)

// Config configures the mlfairy client.
type Config struct {
	// AppName determines the storage directory name.
	// Example: "mlfairy" → ~/.local/share/mlfairy/models/ on Linux
	AppName string

	// BaseURL is the base URL of the model server.
	// Example: "https://api.mlfairy.com"
	BaseURL string

	// DataDir overrides the default data directory.
	// If empty, uses platform-appropriate default.
	// Can also be set via environment variable: <APPNAME>_MODELS_DIR
	DataDir string
}

// ModelMetadata describes the latest version of a model as reported by the
// server. The acquisition task only reads ActiveVersion, ModelFileURL, Hash
// and Algorithm; the remaining fields are carried for diagnostics.
type ModelMetadata struct {
	// Token identifies which model this metadata belongs to.
	Token string `json:"token"`

	// ModelID is the server-side model identifier.
	ModelID string `json:"modelId,omitempty"`

	// OrganizationID is the server-side organization identifier.
	OrganizationID string `json:"organizationId,omitempty"`

	// ActiveVersion marks the currently published version.
	// Empty means no version is available for download.
	ActiveVersion string `json:"activeVersion,omitempty"`

	// ModelFileURL is the remote location of the model artifact.
	ModelFileURL string `json:"modelFileUrl,omitempty"`

	// Hash is the base64-encoded content digest of the artifact.
	Hash string `json:"hash,omitempty"`

	// Algorithm names the digest algorithm for Hash, e.g. "md5".
	Algorithm string `json:"algorithm,omitempty"`

	// Size is the artifact size in bytes, if the server reports it.
	Size int64 `json:"size,omitempty"`
}

// MetadataRequest is the body sent when fetching model metadata.
type MetadataRequest struct {
	// Token identifies the model being requested.
	Token string `json:"token"`

	// UserID is the optional caller-supplied identifier from Tag.
	UserID string `json:"userId,omitempty"`

	// Device describes the requesting host and SDK build.
	Device DeviceInfo `json:"device"`
}

// DeviceInfo describes the host environment. Sent with metadata requests so
// the server can segment downloads; never interpreted locally.
type DeviceInfo struct {
	OS         string `json:"os"`
	Arch       string `json:"arch"`
	Hostname   string `json:"hostname,omitempty"`
	SDKVersion string `json:"sdkVersion"`
}

// SDKVersion is reported to the server in every metadata request.
const SDKVersion = "0.3.0"

// collectDeviceInfo gathers the host descriptor sent with metadata requests.
func collectDeviceInfo() DeviceInfo {
	hostname, _ := os.Hostname()
	return DeviceInfo{
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		Hostname:   hostname,
		SDKVersion: SDKVersion,
	}
}

// CachedModel is a previously persisted metadata-and-artifact pair.
type CachedModel struct {
	// Path is the absolute path of the cached artifact file.
	Path string

	// Metadata is the metadata that was current when the artifact was
	// stored.
	Metadata ModelMetadata
}

// Model is the runtime-loadable form produced by a Compiler. The concrete
// type depends on the Compiler implementation; callers type-assert it back.
type Model any

// CompiledModel pairs a loadable model with its on-disk location.
type CompiledModel struct {
	// Path is where the compiled form is stored.
	Path string

	// Model is the loadable in-memory form.
	Model Model
}

// CompletionFunc receives a task's terminal result.
// Exactly one of model and err is set: model is non-nil iff err is nil.
type CompletionFunc func(model Model, err error)
