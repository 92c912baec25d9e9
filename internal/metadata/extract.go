// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metadata extracts bibliographic metadata from PDF files. A chain
// of strategies runs in order, each filling fields the previous ones left
// empty; a strategy that fails is logged and skipped, never fatal. The only
// hard errors are input problems: a missing path or something that is not a
// regular file.
package metadata

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/paperorg/paperorg/pkg/types"
)

const (
	defaultScanPages = 5
	defaultScanChars = 5000
)

// strategy is one metadata source. attempt receives the metadata collected
// so far and returns the merged result.
type strategy interface {
	name() string
	attempt(ctx context.Context, meta types.Metadata, path string) (types.Metadata, error)
}

// Extractor runs the strategy chain against PDF files.
type Extractor struct {
	client     *http.Client
	cfg        types.ExtractionConfig
	log        zerolog.Logger
	strategies []strategy
}

// New builds an Extractor with the standard chain: embedded document info
// first, identifier enrichment second, first-page title heuristic last.
func New(client *http.Client, cfg types.ExtractionConfig, log zerolog.Logger) *Extractor {
	if cfg.MaxScanPages <= 0 {
		cfg.MaxScanPages = defaultScanPages
	}
	if cfg.MaxScanChars <= 0 {
		cfg.MaxScanChars = defaultScanChars
	}

	e := &Extractor{client: client, cfg: cfg, log: log}
	e.strategies = []strategy{
		docInfoStrategy{},
		enrichStrategy{e},
		titleHeuristicStrategy{},
	}
	return e
}

// Extract pulls whatever metadata the strategies can find out of the PDF at
// path. An unreadable or malformed PDF yields an empty result, not an
// error; only a missing path or a non-regular file fails.
func (e *Extractor) Extract(ctx context.Context, path string) (types.Metadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return types.Metadata{}, types.NewFault(types.KindValidation, "extract", path, err)
	}
	if !info.Mode().IsRegular() {
		return types.Metadata{}, types.NewFault(types.KindValidation, "extract", path,
			errors.New("not a regular file"))
	}

	var meta types.Metadata
	for _, s := range e.strategies {
		next, err := s.attempt(ctx, meta, path)
		if err != nil {
			e.log.Debug().Err(err).
				Str("strategy", s.name()).
				Str("path", path).
				Msg("extraction strategy contributed nothing")
			continue
		}
		meta = next
	}

	return meta, nil
}

// fillEmpty copies fields of src into dst wherever dst is still empty.
func fillEmpty(dst, src types.Metadata) types.Metadata {
	if dst.Title == "" {
		dst.Title = src.Title
	}
	if len(dst.Authors) == 0 {
		dst.Authors = src.Authors
	}
	if dst.Year == 0 {
		dst.Year = src.Year
	}
	if dst.DOI == "" {
		dst.DOI = src.DOI
	}
	if dst.ArxivID == "" {
		dst.ArxivID = src.ArxivID
	}
	return dst
}

// supersede overwrites title, authors and year with src values when src has
// them. Identifiers stay fill-only: once found they never change.
func supersede(dst, src types.Metadata) types.Metadata {
	if src.Title != "" {
		dst.Title = src.Title
	}
	if len(src.Authors) > 0 {
		dst.Authors = src.Authors
	}
	if src.Year != 0 {
		dst.Year = src.Year
	}
	if dst.DOI == "" {
		dst.DOI = src.DOI
	}
	if dst.ArxivID == "" {
		dst.ArxivID = src.ArxivID
	}
	return dst
}

// plausibleYear drops years outside [1000, next year].
func plausibleYear(y int) int {
	if y < 1000 || y > time.Now().Year()+1 {
		return 0
	}
	return y
}
