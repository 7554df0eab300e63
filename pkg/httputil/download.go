package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// Download fetches url with a GET request and writes the body to path.
// Headers are set on the request as given (e.g. Authorization for endpoints
// that are not pre-signed). It returns the number of bytes written.
//
// Non-2xx responses are reported as errors; 5xx responses and transport
// failures are wrapped in [RetryableError].
func Download(ctx context.Context, client *http.Client, url, path string, headers map[string]string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, Retryable(fmt.Errorf("download: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return 0, Retryable(fmt.Errorf("download: status %d", resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return 0, fmt.Errorf("download: status %d", resp.StatusCode)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, err
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("download: write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, err
	}
	return n, nil
}
