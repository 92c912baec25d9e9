package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paperorg/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ExtractionConfig holds settings for the metadata extraction stage.
type ExtractionConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxScanPages is the number of leading pages scanned for embedded
	// identifiers (default 5).
	MaxScanPages int `json:"max_scan_pages" yaml:"max_scan_pages"`

	// MaxScanChars caps the total characters collected from the scanned
	// pages (default 5000).
	MaxScanChars int `json:"max_scan_chars" yaml:"max_scan_chars"`
}
