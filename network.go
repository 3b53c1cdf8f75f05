package mlfairy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Network is the transport collaborator consumed by the acquisition task.
// Both operations issue a single attempt and report exactly one terminal
// result per call; retry policy belongs to the caller.
type Network interface {
	// FetchMetadata requests the latest model metadata for a token.
	FetchMetadata(ctx context.Context, req MetadataRequest) (ModelMetadata, error)

	// DownloadFile transfers remoteURL to destination and returns the
	// destination path. The write is atomic: a partial transfer never
	// leaves a file at destination.
	DownloadFile(ctx context.Context, remoteURL, destination string) (string, error)
}

// httpNetwork is the default HTTP implementation of Network.
type httpNetwork struct {
	// baseURL is the base URL of the model server.
	baseURL string

	// httpClient is used for HTTP requests.
	httpClient HTTPClient

	// logger receives diagnostic messages. May be nil.
	logger Logger
}

// Ensure httpNetwork implements Network.
var _ Network = (*httpNetwork)(nil)

// newHTTPNetwork creates the default network collaborator.
// The baseURL is normalized by removing any trailing slashes.
func newHTTPNetwork(baseURL string, client HTTPClient, logger Logger) *httpNetwork {
	return &httpNetwork{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		logger:     logger,
	}
}

// FetchMetadata posts the token and device descriptor to the download
// endpoint and decodes the returned metadata.
func (n *httpNetwork) FetchMetadata(ctx context.Context, mreq MetadataRequest) (ModelMetadata, error) {
	url := n.baseURL + "/api/v1/download"

	body, err := json.Marshal(mreq)
	if err != nil {
		return ModelMetadata{}, fmt.Errorf("encoding metadata request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return ModelMetadata{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return ModelMetadata{}, fmt.Errorf("fetching metadata for %s: %w", mreq.Token, ErrNetwork)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ModelMetadata{}, fmt.Errorf("fetching metadata for %s: status %d: %w", mreq.Token, resp.StatusCode, ErrServer)
	}

	var md ModelMetadata
	if err := json.NewDecoder(resp.Body).Decode(&md); err != nil {
		return ModelMetadata{}, fmt.Errorf("parsing metadata for %s: %w", mreq.Token, ErrServer)
	}

	if n.logger != nil {
		n.logger.Debug("fetched model metadata", "token", mreq.Token, "activeVersion", md.ActiveVersion)
	}

	return md, nil
}

// DownloadFile streams remoteURL into a temp file next to destination, then
// renames it into place so readers never observe a partial artifact.
func (n *httpNetwork) DownloadFile(ctx context.Context, remoteURL, destination string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remoteURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", remoteURL, ErrNetwork)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading %s: status %d: %w", remoteURL, resp.StatusCode, ErrServer)
	}

	if err := os.MkdirAll(filepath.Dir(destination), 0755); err != nil {
		return "", fmt.Errorf("%w: creating artifact directory: %v", ErrStorage, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destination), ".download-*")
	if err != nil {
		return "", fmt.Errorf("%w: creating temp file: %v", ErrStorage, err)
	}
	tmpPath := tmp.Name()

	written, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("downloading %s: %w", remoteURL, ErrNetwork)
	}

	if err := os.Rename(tmpPath, destination); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: moving artifact into place: %v", ErrStorage, err)
	}

	if n.logger != nil {
		n.logger.Debug("downloaded model artifact", "url", remoteURL, "path", destination, "bytes", written)
	}

	return destination, nil
}
