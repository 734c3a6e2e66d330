// pkg/download/download.go - fetches a ruleset file over HTTP when the
// driver is configured for DownloadFileToTrim instead of a local read.

package download

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/windowsadmins/winapp2trim/pkg/retry"
)

const (
	Timeout        = 10 * time.Second
	offlineProbe   = "www.winapp2.com:80"
	offlineTimeout = 3 * time.Second
)

// ErrOffline marks a download-mode run on a host that Online reports as
// having no route to the network. File never returns it; the caller wraps
// it after its own Online check.
var ErrOffline = fmt.Errorf("network unreachable")

// Online reports whether the host can reach the network at all, by
// dialing a well-known host with a short timeout. It is not a guarantee
// that SourceURL specifically is reachable, only that the machine isn't
// fully offline.
func Online() bool {
	conn, err := net.DialTimeout("tcp", offlineProbe, offlineTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// File fetches url and writes it to dest, retrying transient failures with
// exponential backoff. The caller is responsible for the offline gate
// (Online) before calling File, matching spec.md §7's "network unreachable
// in download mode" being a fatal, pre-flighted condition rather than a
// retry target.
func File(url, dest string) error {
	if url == "" {
		return fmt.Errorf("download: url cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", dest, err)
	}

	cfg := retry.RetryConfig{MaxRetries: 3, InitialInterval: time.Second, Multiplier: 2.0}
	return retry.Retry(cfg, func() error {
		out, err := os.Create(dest)
		if err != nil {
			return fmt.Errorf("opening destination file %s: %w", dest, err)
		}
		defer out.Close()

		client := &http.Client{Timeout: Timeout}
		resp, err := client.Get(url)
		if err != nil {
			// %v rather than %w: a wrapping error counts as non-retryable
			// to pkg/retry, and a failed fetch is the case to retry.
			return fmt.Errorf("fetching %s: %v", url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected HTTP status %d fetching %s", resp.StatusCode, url)
		}

		if _, err := io.Copy(out, resp.Body); err != nil {
			return fmt.Errorf("writing %s: %v", dest, err)
		}
		return nil
	})
}
