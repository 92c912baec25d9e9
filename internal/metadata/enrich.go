// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metadata

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paperorg/paperorg/internal/httputil"
	"github.com/paperorg/paperorg/pkg/types"
)

// Base URLs for the metadata APIs. Declared as vars so tests can substitute
// httptest servers.
var (
	arxivAPIBase    = "https://export.arxiv.org/api/query"
	crossrefAPIBase = "https://api.crossref.org/works/"
)

// enrichStrategy scans page text for identifiers and resolves them against
// the public metadata APIs. CrossRef results fill empty fields only; the
// arXiv feed is authoritative and replaces title, authors and year.
type enrichStrategy struct {
	e *Extractor
}

func (enrichStrategy) name() string { return "identifier-enrichment" }

func (s enrichStrategy) attempt(ctx context.Context, meta types.Metadata, path string) (types.Metadata, error) {
	text, err := pageText(path, s.e.cfg.MaxScanPages, s.e.cfg.MaxScanChars)
	if err != nil {
		return meta, err
	}

	if meta.DOI == "" {
		if dois := FindDOIs(text); len(dois) > 0 {
			meta.DOI = dois[0].Value
		}
	}
	if meta.ArxivID == "" {
		if ids := FindArxivIDs(text); len(ids) > 0 {
			meta.ArxivID = ids[0].Value
		}
	}

	// Lookups run DOI first so the arXiv feed has the last word on the
	// descriptive fields. Network failures degrade to debug logs; the
	// identifiers themselves are already banked.
	if meta.DOI != "" {
		if found, err := s.e.fetchCrossRef(ctx, meta.DOI); err != nil {
			s.e.log.Debug().Err(err).Str("doi", meta.DOI).Msg("crossref lookup failed")
		} else {
			meta = fillEmpty(meta, found)
		}
	}
	if meta.ArxivID != "" {
		if found, err := s.e.fetchArxiv(ctx, meta.ArxivID); err != nil {
			s.e.log.Debug().Err(err).Str("arxiv_id", meta.ArxivID).Msg("arxiv lookup failed")
		} else {
			meta = supersede(meta, found)
		}
	}

	return meta, nil
}

type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	Title     string        `xml:"title"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// fetchArxiv resolves an arXiv ID against the export API.
func (e *Extractor) fetchArxiv(ctx context.Context, id string) (types.Metadata, error) {
	reqURL := fmt.Sprintf("%s?id_list=%s&max_results=1", arxivAPIBase, url.QueryEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return types.Metadata{}, fmt.Errorf("building request: %w", err)
	}
	if e.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", e.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, e.client, req, 0)
	if err != nil {
		return types.Metadata{}, fmt.Errorf("querying arxiv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Metadata{}, fmt.Errorf("arxiv returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return types.Metadata{}, fmt.Errorf("decoding arxiv feed: %w", err)
	}
	if len(feed.Entries) == 0 {
		return types.Metadata{}, fmt.Errorf("arxiv has no entry for %s", id)
	}

	entry := feed.Entries[0]
	meta := types.Metadata{
		Title:   strings.Join(strings.Fields(entry.Title), " "),
		ArxivID: id,
	}
	for _, a := range entry.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			meta.Authors = append(meta.Authors, name)
		}
	}
	if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
		meta.Year = plausibleYear(t.Year())
	}

	return meta, nil
}

type crossrefResponse struct {
	Message crossrefWork `json:"message"`
}

type crossrefWork struct {
	Title  []string         `json:"title"`
	Author []crossrefAuthor `json:"author"`
	Issued crossrefDate     `json:"issued"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

// fetchCrossRef resolves a DOI against the CrossRef works API.
func (e *Extractor) fetchCrossRef(ctx context.Context, doi string) (types.Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, crossrefAPIBase+doi, nil)
	if err != nil {
		return types.Metadata{}, fmt.Errorf("building request: %w", err)
	}
	if e.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", e.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, e.client, req, 0)
	if err != nil {
		return types.Metadata{}, fmt.Errorf("querying crossref: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Metadata{}, fmt.Errorf("crossref returned HTTP %d", resp.StatusCode)
	}

	var cr crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return types.Metadata{}, fmt.Errorf("decoding crossref response: %w", err)
	}

	meta := types.Metadata{DOI: doi}
	if len(cr.Message.Title) > 0 {
		meta.Title = strings.Join(strings.Fields(cr.Message.Title[0]), " ")
	}
	for _, a := range cr.Message.Author {
		name := strings.TrimSpace(strings.TrimSpace(a.Given) + " " + strings.TrimSpace(a.Family))
		if name != "" {
			meta.Authors = append(meta.Authors, name)
		}
	}
	if parts := cr.Message.Issued.DateParts; len(parts) > 0 && len(parts[0]) > 0 {
		meta.Year = plausibleYear(parts[0][0])
	}

	return meta, nil
}
