// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package organize wires the pipeline together: classify the input,
// obtain the file, extract what metadata it offers, pick a filename and
// place the result, one item at a time.
package organize

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/paperorg/paperorg/internal/metadata"
	"github.com/paperorg/paperorg/internal/naming"
	"github.com/paperorg/paperorg/internal/storage"
	"github.com/paperorg/paperorg/internal/transfer"
	"github.com/paperorg/paperorg/pkg/types"
)

// extractMetadata is swapped by tests that exercise the pipeline without
// real PDF parsing.
var extractMetadata = func(ctx context.Context, e *metadata.Extractor, path string) (types.Metadata, error) {
	return e.Extract(ctx, path)
}

// Config carries the settings for one run.
type Config struct {
	// DestDir is the directory organized papers are written to.
	DestDir string

	// CustomName overrides the generated filename for single-item
	// inputs. Ignored in directory mode.
	CustomName string

	// AutoName enables metadata-driven filenames. When false the
	// fallback name is used as-is.
	AutoName bool

	// UserAgent is sent with every HTTP request.
	UserAgent string

	// Rules controls download retry behavior.
	Rules transfer.Rules
}

// Outcome is the result of organizing a single item.
type Outcome struct {
	Source    string
	FinalPath string
	Err       error
}

// Summary aggregates the outcomes of a run.
type Summary struct {
	Succeeded int
	Failed    int
	Outcomes  []Outcome
}

// Total returns the number of items processed.
func (s Summary) Total() int {
	return s.Succeeded + s.Failed
}

// HasFailures reports whether any item failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Organizer runs the download-extract-name-place pipeline.
type Organizer struct {
	Client    *http.Client
	Extractor *metadata.Extractor
	Config    Config
	Log       zerolog.Logger
	Out       io.Writer
}

// Run organizes input, which may be a URL, a PDF file or a directory of
// PDFs. Every item is attempted; per-item failures never abort a batch.
func (o *Organizer) Run(ctx context.Context, input string) Summary {
	kind, cleaned, err := DetectInput(input)
	if err != nil {
		return failure(input, err)
	}

	switch kind {
	case KindURL:
		return single(o.organizeURL(ctx, cleaned))
	case KindFile:
		return single(o.organizeFile(ctx, cleaned))
	case KindDirectory:
		return o.organizeDir(ctx, cleaned)
	default:
		return failure(input, types.NewFault(types.KindValidation, "organize", input,
			fmt.Errorf("unsupported input kind %q", kind)))
	}
}

func single(out Outcome) Summary {
	s := Summary{Outcomes: []Outcome{out}}
	if out.Err != nil {
		s.Failed = 1
	} else {
		s.Succeeded = 1
	}
	return s
}

func failure(source string, err error) Summary {
	return Summary{Failed: 1, Outcomes: []Outcome{{Source: source, Err: err}}}
}

// organizeURL downloads rawURL into a temporary file in the destination
// directory, names it and moves it into place.
func (o *Organizer) organizeURL(ctx context.Context, rawURL string) Outcome {
	out := Outcome{Source: rawURL}

	fmt.Fprintf(o.Out, "downloading: %s\n", rawURL)

	fallback := o.fallbackNameForURL(ctx, rawURL)

	if err := os.MkdirAll(o.Config.DestDir, 0o755); err != nil {
		out.Err = types.NewFault(types.KindFilesystem, "organize", o.Config.DestDir, err)
		return out
	}

	tmp, err := os.CreateTemp(o.Config.DestDir, ".paperorg-*.tmp")
	if err != nil {
		out.Err = types.NewFault(types.KindFilesystem, "organize", o.Config.DestDir, err)
		return out
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	res, err := transfer.Download(ctx, o.Client, rawURL, tmpPath, transfer.Options{
		UserAgent: o.Config.UserAgent,
		Progress:  o.progressFunc(rawURL),
		Rules:     o.Config.Rules,
	})
	if err != nil {
		out.Err = err
		return out
	}

	name := o.nameFor(ctx, tmpPath, fallback)

	placed, err := storage.Place(tmpPath, o.Config.DestDir, name, storage.ModeMove)
	if err != nil {
		out.Err = err
		return out
	}

	out.FinalPath = placed.Path
	fmt.Fprintf(o.Out, "saved: %s (%d bytes)\n", placed.Path, res.Bytes)
	return out
}

// organizeFile copies path into the destination directory under its
// synthesized name. The source file is left untouched.
func (o *Organizer) organizeFile(ctx context.Context, path string) Outcome {
	out := Outcome{Source: path}

	fallback := filepath.Base(path)
	if o.Config.CustomName != "" {
		fallback = ensurePDFExt(o.Config.CustomName)
	}

	name := o.nameFor(ctx, path, fallback)

	// Organizing a file onto itself is a no-op, not a conflict.
	srcAbs, err1 := filepath.Abs(path)
	destAbs, err2 := filepath.Abs(filepath.Join(o.Config.DestDir, name))
	if err1 == nil && err2 == nil && srcAbs == destAbs {
		out.FinalPath = path
		fmt.Fprintf(o.Out, "unchanged: %s\n", path)
		return out
	}

	placed, err := storage.Place(path, o.Config.DestDir, name, storage.ModeCopy)
	if err != nil {
		out.Err = err
		return out
	}

	out.FinalPath = placed.Path
	fmt.Fprintf(o.Out, "organized: %s -> %s\n", path, placed.Path)
	return out
}

// organizeDir organizes every PDF directly inside dir, continuing past
// individual failures.
func (o *Organizer) organizeDir(ctx context.Context, dir string) Summary {
	pdfs, err := ListPDFs(dir)
	if err != nil {
		return failure(dir, err)
	}

	// A custom name only makes sense for a single item.
	batch := *o
	batch.Config.CustomName = ""

	var summary Summary
	for _, pdf := range pdfs {
		out := batch.organizeFile(ctx, pdf)
		summary.Outcomes = append(summary.Outcomes, out)
		if out.Err != nil {
			fmt.Fprintf(o.Out, "failed:  %s (%v)\n", pdf, out.Err)
			summary.Failed++
			continue
		}
		summary.Succeeded++
	}

	fmt.Fprintf(o.Out, "\nBatch summary: %d organized, %d failed (total: %d)\n",
		summary.Succeeded, summary.Failed, summary.Total())
	return summary
}

// nameFor picks the filename for the PDF at path: synthesized from
// extracted metadata when auto-naming is on, the fallback otherwise or
// when extraction yields nothing usable. An explicit custom name skips
// extraction entirely.
func (o *Organizer) nameFor(ctx context.Context, path, fallback string) string {
	if !o.Config.AutoName || o.Config.CustomName != "" {
		return fallback
	}

	meta, err := extractMetadata(ctx, o.Extractor, path)
	if err != nil {
		o.Log.Debug().Err(err).Str("path", path).Msg("metadata extraction failed")
		return fallback
	}
	return naming.Synthesize(meta, fallback)
}

// fallbackNameForURL picks the name used when metadata yields nothing:
// the explicit custom name, a server-suggested filename, the URL path
// basename, or finally "paper.pdf".
func (o *Organizer) fallbackNameForURL(ctx context.Context, rawURL string) string {
	if o.Config.CustomName != "" {
		return ensurePDFExt(o.Config.CustomName)
	}

	if info, err := transfer.Probe(ctx, o.Client, rawURL, o.Config.UserAgent); err != nil {
		o.Log.Debug().Err(err).Str("url", rawURL).Msg("preflight probe failed")
	} else {
		if !info.IsPDF {
			fmt.Fprintf(o.Out, "  warning: %s does not report a PDF content type\n", rawURL)
		}
		if info.SuggestedName != "" {
			return ensurePDFExt(info.SuggestedName)
		}
	}

	if u, err := url.Parse(rawURL); err == nil && !strings.HasSuffix(u.Path, "/") {
		if base := filepath.Base(u.Path); base != "" && base != "." && base != "/" {
			return ensurePDFExt(base)
		}
	}

	return "paper.pdf"
}

// ensurePDFExt appends .pdf unless name already carries the extension in
// some casing.
func ensurePDFExt(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		return name
	}
	return name + ".pdf"
}

// progressFunc logs download progress at debug level, at most once per
// megabyte plus a final report when the size is known.
func (o *Organizer) progressFunc(rawURL string) func(written, total int64) {
	const step = 1 << 20
	next := int64(step)
	return func(written, total int64) {
		if written < next && written != total {
			return
		}
		for written >= next {
			next += step
		}
		o.Log.Debug().
			Int64("bytes", written).
			Int64("total", total).
			Str("url", rawURL).
			Msg("download progress")
	}
}
