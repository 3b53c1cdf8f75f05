// Package mlfairy acquires ML models from a remote model server: it
// fetches metadata for an opaque token, downloads or reuses a cached model
// artifact, verifies its integrity, compiles it into a runtime-loadable
// form, and publishes the result to any number of subscribers.
//
// The package serves two primary use cases:
//
//  1. Programmatic API via Client - applications call NewClient and then
//     Download per token, driving each returned DownloadTask with Start and
//     Subscribe.
//
//  2. Embeddable CLI via NewCommand - parent CLI tools can attach a
//     complete "models" subcommand tree to their Cobra root command.
//
// # Acquisition pipeline
//
// A DownloadTask runs a single-pass pipeline: fetch metadata → reuse the
// artifact already at its version-keyed destination path, or download it →
// verify the declared checksum → compile. If the metadata fetch fails but a
// previously stored metadata-and-artifact pair exists on disk, the task
// falls back to it and continues as if the fetch had succeeded. Any stage
// failure short-circuits to a terminal error; subscribers always receive
// exactly one (model, error) notification, whether they register before or
// after completion.
//
// # Thread Safety
//
// All exported methods are safe for concurrent use. Task state is a single
// record behind one mutex; pipeline stages run strictly sequentially on a
// per-task work queue, with compilation isolated on its own queue so a slow
// compile never delays network response handling.
//
// # Storage
//
// Artifacts and metadata are stored in platform-appropriate directories:
//   - Linux: $XDG_DATA_HOME/<app>/models/ or ~/.local/share/<app>/models/
//   - macOS: ~/Library/Application Support/<app>/models/
//   - Windows: %APPDATA%\<app>\models\
//
// The storage location can be overridden via Config.DataDir or the
// <APPNAME>_MODELS_DIR environment variable.
package mlfairy
