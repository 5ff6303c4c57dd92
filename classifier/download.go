package classifier

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	downloadTimeout = 10 * time.Minute
	maxRetryCount   = 3
	retryDelay      = 500 * time.Millisecond
)

// ensureArtifact makes sure the file at path exists, downloading it from url
// when missing. Weight retrieval itself is plain HTTP, the file format is
// opaque to this package.
func ensureArtifact(path, url string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	slog.Info("Downloading artifact",
		slog.String("url", url),
		slog.String("path", path))

	client := resty.New().
		SetTimeout(downloadTimeout).
		SetRetryCount(maxRetryCount).
		SetRetryWaitTime(retryDelay)

	resp, err := client.R().SetOutput(path).Get(url)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	if resp.IsError() {
		os.Remove(path)
		return fmt.Errorf("failed to download %s: status %s", url, resp.Status())
	}
	return nil
}
