// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transfer downloads remote PDFs over HTTP with retries, backoff
// and progress reporting.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/paperorg/paperorg/pkg/types"
)

// chunkSize is the read size used when streaming response bodies.
const chunkSize = 32 * 1024

// retrySleep waits out a backoff delay or returns early when the context is
// cancelled. Declared as a var so tests can capture the requested delays.
var retrySleep = func(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Result describes a completed download.
type Result struct {
	// Path is the destination the body was written to.
	Path string

	// Bytes is the number of bytes written.
	Bytes int64
}

// Options adjusts a single download.
type Options struct {
	// UserAgent is sent with the request when non-empty.
	UserAgent string

	// Progress, when non-nil, is invoked after every chunk with the
	// cumulative bytes written and the total expected (-1 when the server
	// sent no Content-Length). Panics inside the callback are recovered
	// and never interrupt the download.
	Progress func(written, total int64)

	// Rules controls the retry loop. Zero fields fall back to
	// DefaultRules().
	Rules Rules
}

// StatusError reports a non-success HTTP status from the remote server.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.Status, e.URL)
}

// Download fetches rawURL over HTTP(S) and streams the body to destPath.
// Transport errors, truncated bodies and the configured transient statuses
// are retried with exponential backoff until the attempt budget is spent;
// definitive rejections such as 404 get exactly one attempt. No partial
// file is left behind on failure, whatever the cause.
func Download(ctx context.Context, client *http.Client, rawURL, destPath string, opts Options) (Result, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Result{}, types.NewFault(types.KindValidation, "download", rawURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Result{}, types.NewFault(types.KindValidation, "download", rawURL,
			errors.New("not an absolute http(s) URL"))
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return Result{}, types.NewFault(types.KindFilesystem, "download", destPath, err)
	}

	rules := opts.Rules.withDefaults()

	var lastErr error
	for attempt := 1; attempt <= rules.MaxAttempts; attempt++ {
		res, err := fetchOnce(ctx, client, rawURL, destPath, opts)
		if err == nil {
			return res, nil
		}
		os.Remove(destPath)
		lastErr = err

		// Local I/O problems will not heal between attempts.
		var fault *types.Fault
		if errors.As(err, &fault) && fault.Kind == types.KindFilesystem {
			return Result{}, err
		}

		// Definitive rejections get exactly one attempt.
		var se *StatusError
		if errors.As(err, &se) && !rules.transient(se.Status) {
			return Result{}, types.NewFault(types.KindRemoteRejection, "download", rawURL, err)
		}

		if attempt < rules.MaxAttempts {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * rules.BaseDelay
			if err := retrySleep(ctx, backoff); err != nil {
				return Result{}, types.NewFault(types.KindNetwork, "download", rawURL, lastErr)
			}
		}
	}

	return Result{}, types.NewFault(types.KindNetwork, "download", rawURL, lastErr)
}

// fetchOnce performs a single attempt: request, stream to disk, length
// check. The caller removes destPath on error.
func fetchOnce(ctx context.Context, client *http.Client, rawURL, destPath string, opts Options) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Result{}, fmt.Errorf("building request: %w", err)
	}
	if opts.UserAgent != "" {
		req.Header.Set("User-Agent", opts.UserAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, &StatusError{URL: rawURL, Status: resp.StatusCode}
	}

	out, err := os.Create(destPath)
	if err != nil {
		return Result{}, types.NewFault(types.KindFilesystem, "create", destPath, err)
	}

	total := resp.ContentLength
	var written int64
	buf := make([]byte, chunkSize)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				out.Close()
				return Result{}, types.NewFault(types.KindFilesystem, "write", destPath, werr)
			}
			written += int64(n)
			safeProgress(opts.Progress, written, total)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			out.Close()
			return Result{}, fmt.Errorf("reading body: %w", rerr)
		}
	}

	if err := out.Close(); err != nil {
		return Result{}, types.NewFault(types.KindFilesystem, "close", destPath, err)
	}

	if total >= 0 && written != total {
		return Result{}, fmt.Errorf("incomplete body: got %d bytes, expected %d", written, total)
	}

	return Result{Path: destPath, Bytes: written}, nil
}

// safeProgress shields the download from a misbehaving callback.
func safeProgress(fn func(written, total int64), written, total int64) {
	if fn == nil {
		return
	}
	defer func() { _ = recover() }()
	fn(written, total)
}
