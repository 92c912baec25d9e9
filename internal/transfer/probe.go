// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transfer

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
)

// Info summarizes a HEAD probe of a remote URL.
type Info struct {
	// SuggestedName is the filename offered by the Content-Disposition
	// header, or "" when the server did not send one.
	SuggestedName string

	// IsPDF reports whether the Content-Type declared a PDF body.
	IsPDF bool
}

// Probe issues a HEAD request so callers can pick a fallback filename
// before committing to a download.
func Probe(ctx context.Context, client *http.Client, rawURL, userAgent string) (Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return Info{}, fmt.Errorf("building request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Info{}, fmt.Errorf("probing %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Info{}, &StatusError{URL: rawURL, Status: resp.StatusCode}
	}

	var info Info
	if mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil {
		info.IsPDF = mt == "application/pdf"
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		if fname := params["filename"]; fname != "" {
			// Strip any path components a hostile server might send.
			if base := filepath.Base(fname); base != "." && base != ".." && base != string(filepath.Separator) {
				info.SuggestedName = base
			}
		}
	}

	return info, nil
}
