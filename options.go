package mlfairy

import (
	"net/http"
	"time"
)

// Timeout constants for client operations.
const (
	// DefaultRequestTimeout is the default timeout for metadata requests.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultLockTimeout is the default timeout for acquiring file locks.
	DefaultLockTimeout = 30 * time.Second
)

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

// clientConfig holds configuration for Client construction.
type clientConfig struct {
	// httpClient is used for all HTTP requests to the server.
	httpClient HTTPClient

	// logger receives diagnostic log messages.
	logger Logger

	// network overrides the default HTTP network collaborator.
	network Network

	// storage overrides the default disk storage collaborator.
	storage Storage

	// compiler turns verified artifacts into loadable models.
	compiler Compiler
}

// newClientConfig returns a clientConfig with default values.
func newClientConfig() *clientConfig {
	return &clientConfig{
		httpClient: http.DefaultClient,
	}
}

// WithHTTPClient sets a custom HTTP client for server requests.
// Useful for testing with mock servers or customizing timeouts.
// If not set, http.DefaultClient is used.
func WithHTTPClient(client HTTPClient) ClientOption {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithLogger sets a logger for diagnostic output.
// If not set, logging is disabled.
func WithLogger(logger Logger) ClientOption {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithNetwork replaces the default HTTP-backed network collaborator.
// Mainly an injection seam for tests.
func WithNetwork(n Network) ClientOption {
	return func(c *clientConfig) {
		c.network = n
	}
}

// WithStorage replaces the default disk-backed storage collaborator.
// Mainly an injection seam for tests.
func WithStorage(s Storage) ClientOption {
	return func(c *clientConfig) {
		c.storage = s
	}
}

// WithCompiler sets the compiler used to turn verified artifacts into
// loadable models. If not set, a passthrough compiler is used that copies
// the artifact and returns its compiled path as the model handle.
func WithCompiler(cp Compiler) ClientOption {
	return func(c *clientConfig) {
		c.compiler = cp
	}
}

// HTTPClient is the interface for HTTP operations.
// *http.Client satisfies this interface.
type HTTPClient interface {
	// Do sends an HTTP request and returns an HTTP response.
	Do(req *http.Request) (*http.Response, error)
}
