// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package organize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/paperorg/paperorg/internal/metadata"
	"github.com/paperorg/paperorg/internal/transfer"
	"github.com/paperorg/paperorg/pkg/types"
)

// stubExtract replaces the extraction step for the duration of a test so
// the pipeline can be exercised without real PDF parsing.
func stubExtract(t *testing.T, fn func(path string) types.Metadata) {
	t.Helper()
	restore := extractMetadata
	extractMetadata = func(_ context.Context, _ *metadata.Extractor, path string) (types.Metadata, error) {
		return fn(path), nil
	}
	t.Cleanup(func() { extractMetadata = restore })
}

func newOrganizer(destDir string, out io.Writer) *Organizer {
	rules := transfer.DefaultRules()
	rules.BaseDelay = time.Millisecond

	return &Organizer{
		Client: &http.Client{},
		Config: Config{
			DestDir:  destDir,
			AutoName: true,
			Rules:    rules,
		},
		Log: zerolog.Nop(),
		Out: out,
	}
}

func TestRunFileCopiesWithSynthesizedName(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "download (3).pdf")
	if err := os.WriteFile(srcPath, []byte("%PDF-1.4 body"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	stubExtract(t, func(string) types.Metadata {
		return types.Metadata{
			Title:   "Machine Learning Survey",
			Authors: []string{"Ada Smith"},
			Year:    2024,
		}
	})

	var buf bytes.Buffer
	org := newOrganizer(destDir, &buf)

	summary := org.Run(context.Background(), srcPath)
	if summary.Succeeded != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, output:\n%s", summary, buf.String())
	}

	wantPath := filepath.Join(destDir, "Smith_2024_Machine_Learning_Survey.pdf")
	if summary.Outcomes[0].FinalPath != wantPath {
		t.Errorf("FinalPath = %q, want %q", summary.Outcomes[0].FinalPath, wantPath)
	}
	if _, err := os.Stat(wantPath); err != nil {
		t.Errorf("organized copy missing: %v", err)
	}
	if _, err := os.Stat(srcPath); err != nil {
		t.Errorf("source should be preserved: %v", err)
	}
	if !strings.Contains(buf.String(), "organized: ") {
		t.Errorf("output %q should contain the organized line", buf.String())
	}
}

func TestRunFileWithoutAutoName(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "draft-v2.pdf")
	if err := os.WriteFile(srcPath, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	var buf bytes.Buffer
	org := newOrganizer(destDir, &buf)
	org.Config.AutoName = false

	summary := org.Run(context.Background(), srcPath)
	if summary.Succeeded != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(destDir, "draft-v2.pdf")); err != nil {
		t.Errorf("file should keep its original name: %v", err)
	}
}

func TestRunFileCustomNameSkipsExtraction(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "scan001.pdf")
	if err := os.WriteFile(srcPath, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	// No extraction stub: a nil extractor would panic if the custom name
	// did not short-circuit the pipeline.
	var buf bytes.Buffer
	org := newOrganizer(destDir, &buf)
	org.Config.CustomName = "reading-list-04"

	summary := org.Run(context.Background(), srcPath)
	if summary.Succeeded != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(destDir, "reading-list-04.pdf")); err != nil {
		t.Errorf("custom name not applied: %v", err)
	}
}

func TestRunFileOntoItselfIsNoOp(t *testing.T) {
	destDir := t.TempDir()
	srcPath := filepath.Join(destDir, "draft.pdf")
	if err := os.WriteFile(srcPath, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	stubExtract(t, func(string) types.Metadata { return types.Metadata{} })

	var buf bytes.Buffer
	org := newOrganizer(destDir, &buf)

	summary := org.Run(context.Background(), srcPath)
	if summary.Succeeded != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if !strings.Contains(buf.String(), "unchanged: ") {
		t.Errorf("output %q should contain the unchanged line", buf.String())
	}

	entries, err := os.ReadDir(destDir)
	if err != nil {
		t.Fatalf("reading dest dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("no copy should appear, found %d entries", len(entries))
	}
}

func TestRunFileExtractionErrorFallsBack(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "scan-042.pdf")
	if err := os.WriteFile(srcPath, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	restore := extractMetadata
	extractMetadata = func(context.Context, *metadata.Extractor, string) (types.Metadata, error) {
		return types.Metadata{}, errors.New("file vanished mid-read")
	}
	t.Cleanup(func() { extractMetadata = restore })

	var buf bytes.Buffer
	org := newOrganizer(destDir, &buf)

	summary := org.Run(context.Background(), srcPath)
	if summary.Succeeded != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(destDir, "scan-042.pdf")); err != nil {
		t.Errorf("file should be organized under its own name: %v", err)
	}
}

func TestRunURLDownloadsAndNames(t *testing.T) {
	destDir := t.TempDir()

	const body = "%PDF-1.4 attention weights"
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprint(w, body)
	}))
	defer ts.Close()

	stubExtract(t, func(string) types.Metadata {
		return types.Metadata{
			Title:   "Attention Is All You Need",
			Authors: []string{"Ashish Vaswani", "Noam Shazeer"},
			Year:    2017,
		}
	})

	var buf bytes.Buffer
	org := newOrganizer(destDir, &buf)
	org.Client = ts.Client()

	summary := org.Run(context.Background(), ts.URL+"/files/attention.pdf")
	if summary.Failed != 0 {
		t.Fatalf("summary = %+v, output:\n%s", summary, buf.String())
	}

	wantPath := filepath.Join(destDir, "Vaswani_2017_Attention_Is_All_You_Need.pdf")
	got, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("reading organized file: %v", err)
	}
	if string(got) != body {
		t.Errorf("content = %q, want %q", got, body)
	}

	// The same URL again lands beside the first copy.
	summary = org.Run(context.Background(), ts.URL+"/files/attention.pdf")
	if summary.Failed != 0 {
		t.Fatalf("second run summary = %+v", summary)
	}
	second := filepath.Join(destDir, "Vaswani_2017_Attention_Is_All_You_Need(2).pdf")
	if _, err := os.Stat(second); err != nil {
		t.Errorf("conflict sibling missing: %v", err)
	}

	entries, err := os.ReadDir(destDir)
	if err != nil {
		t.Fatalf("reading dest dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".paperorg-") {
			t.Errorf("temporary file left behind: %s", entry.Name())
		}
	}
	if !strings.Contains(buf.String(), "downloading: ") || !strings.Contains(buf.String(), "saved: ") {
		t.Errorf("output missing status lines:\n%s", buf.String())
	}
}

func TestRunURLNotFound(t *testing.T) {
	destDir := t.TempDir()

	var gets int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			atomic.AddInt32(&gets, 1)
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	var buf bytes.Buffer
	org := newOrganizer(destDir, &buf)
	org.Client = ts.Client()

	summary := org.Run(context.Background(), ts.URL+"/gone.pdf")
	if summary.Failed != 1 || summary.Succeeded != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if kind := types.KindOf(summary.Outcomes[0].Err); kind != types.KindRemoteRejection {
		t.Errorf("error kind = %v, want remote rejection", kind)
	}
	if n := atomic.LoadInt32(&gets); n != 1 {
		t.Errorf("server saw %d GETs, want 1", n)
	}

	entries, err := os.ReadDir(destDir)
	if err != nil {
		t.Fatalf("reading dest dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("destination should be empty, found %d entries", len(entries))
	}
}

func TestRunURLWarnsOnNonPDFContentType(t *testing.T) {
	destDir := t.TempDir()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html>not a pdf</html>")
	}))
	defer ts.Close()

	stubExtract(t, func(string) types.Metadata { return types.Metadata{} })

	var buf bytes.Buffer
	org := newOrganizer(destDir, &buf)
	org.Client = ts.Client()

	summary := org.Run(context.Background(), ts.URL+"/page")
	if summary.Failed != 0 {
		t.Fatalf("summary = %+v, output:\n%s", summary, buf.String())
	}
	if !strings.Contains(buf.String(), "warning: ") {
		t.Errorf("output should carry a content type warning:\n%s", buf.String())
	}
	if _, err := os.Stat(filepath.Join(destDir, "page.pdf")); err != nil {
		t.Errorf("download should proceed despite the warning: %v", err)
	}
}

func TestRunDirectoryBatch(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()

	for _, name := range []string{"alpha.pdf", "beta.pdf", "gamma.pdf"} {
		if err := os.WriteFile(filepath.Join(srcDir, name), []byte("%PDF-1.4 "+name), 0o644); err != nil {
			t.Fatalf("writing fixture: %v", err)
		}
	}

	// Only alpha yields metadata; the others keep their original names.
	stubExtract(t, func(path string) types.Metadata {
		if filepath.Base(path) == "alpha.pdf" {
			return types.Metadata{Title: "Neural Routing", Authors: []string{"Grace Chen"}, Year: 2023}
		}
		return types.Metadata{}
	})

	var buf bytes.Buffer
	org := newOrganizer(destDir, &buf)

	summary := org.Run(context.Background(), srcDir)
	if summary.Succeeded != 3 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, output:\n%s", summary, buf.String())
	}

	for _, want := range []string{"Chen_2023_Neural_Routing.pdf", "beta.pdf", "gamma.pdf"} {
		if _, err := os.Stat(filepath.Join(destDir, want)); err != nil {
			t.Errorf("missing %s: %v", want, err)
		}
	}
	if !strings.Contains(buf.String(), "Batch summary: 3 organized, 0 failed (total: 3)") {
		t.Errorf("output missing batch summary:\n%s", buf.String())
	}
}

func TestRunDirectoryContinuesPastFailures(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(srcDir, "good.pdf"), []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if err := os.Symlink(filepath.Join(srcDir, "absent-target"), filepath.Join(srcDir, "broken.pdf")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	stubExtract(t, func(string) types.Metadata { return types.Metadata{} })

	var buf bytes.Buffer
	org := newOrganizer(destDir, &buf)

	summary := org.Run(context.Background(), srcDir)
	if summary.Succeeded != 1 || summary.Failed != 1 {
		t.Fatalf("summary = %+v, output:\n%s", summary, buf.String())
	}
	if !strings.Contains(buf.String(), "failed:  ") {
		t.Errorf("output missing failed line:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "Batch summary: 1 organized, 1 failed (total: 2)") {
		t.Errorf("output missing batch summary:\n%s", buf.String())
	}
	if _, err := os.Stat(filepath.Join(destDir, "good.pdf")); err != nil {
		t.Errorf("good.pdf should be organized despite the sibling failure: %v", err)
	}
}

func TestRunDirectoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	org := newOrganizer(t.TempDir(), &buf)

	summary := org.Run(context.Background(), t.TempDir())
	if summary.Failed != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	err := summary.Outcomes[0].Err
	if types.KindOf(err) != types.KindValidation {
		t.Errorf("error kind = %v, want validation", types.KindOf(err))
	}
	if !strings.Contains(err.Error(), "no PDF files found") {
		t.Errorf("error %q should mention missing PDFs", err)
	}
}

func TestRunDirectoryIgnoresCustomName(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()
	for _, name := range []string{"one.pdf", "two.pdf"} {
		if err := os.WriteFile(filepath.Join(srcDir, name), []byte("%PDF-1.4"), 0o644); err != nil {
			t.Fatalf("writing fixture: %v", err)
		}
	}

	stubExtract(t, func(string) types.Metadata { return types.Metadata{} })

	var buf bytes.Buffer
	org := newOrganizer(destDir, &buf)
	org.Config.CustomName = "everything"

	summary := org.Run(context.Background(), srcDir)
	if summary.Succeeded != 2 {
		t.Fatalf("summary = %+v", summary)
	}
	for _, want := range []string{"one.pdf", "two.pdf"} {
		if _, err := os.Stat(filepath.Join(destDir, want)); err != nil {
			t.Errorf("missing %s: %v", want, err)
		}
	}
}

func TestRunInputMissing(t *testing.T) {
	var buf bytes.Buffer
	org := newOrganizer(t.TempDir(), &buf)

	summary := org.Run(context.Background(), filepath.Join(t.TempDir(), "absent.pdf"))
	if summary.Failed != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if types.KindOf(summary.Outcomes[0].Err) != types.KindValidation {
		t.Errorf("error kind = %v, want validation", types.KindOf(summary.Outcomes[0].Err))
	}
}

func TestFallbackNameForURL(t *testing.T) {
	tests := []struct {
		name        string
		customName  string
		disposition string
		path        string
		want        string
	}{
		{"custom name wins", "my-list", "", "/x/y.pdf", "my-list.pdf"},
		{"server suggestion", "", `attachment; filename="weekly-report.pdf"`, "/dl", "weekly-report.pdf"},
		{"suggestion without extension", "", `attachment; filename="weekly-report"`, "/dl", "weekly-report.pdf"},
		{"url basename", "", "", "/papers/attention.pdf", "attention.pdf"},
		{"basename without extension", "", "", "/download", "download.pdf"},
		{"bare root", "", "", "/", "paper.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.disposition != "" {
					w.Header().Set("Content-Disposition", tt.disposition)
				}
				w.Header().Set("Content-Type", "application/pdf")
			}))
			defer ts.Close()

			var buf bytes.Buffer
			org := newOrganizer(t.TempDir(), &buf)
			org.Client = ts.Client()
			org.Config.CustomName = tt.customName

			got := org.fallbackNameForURL(context.Background(), ts.URL+tt.path)
			if got != tt.want {
				t.Errorf("fallbackNameForURL = %q, want %q", got, tt.want)
			}
		})
	}
}
