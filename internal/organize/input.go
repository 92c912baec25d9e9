// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package organize

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/paperorg/paperorg/pkg/types"
)

// InputKind classifies what the positional argument refers to.
type InputKind int

const (
	KindUnknown InputKind = iota
	KindURL
	KindFile
	KindDirectory
)

func (k InputKind) String() string {
	switch k {
	case KindURL:
		return "url"
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// DetectInput decides whether input names a URL, a local PDF file or a
// directory. Anything else is a validation error.
func DetectInput(input string) (InputKind, string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return KindUnknown, "", types.NewFault(types.KindValidation, "detect", input,
			errors.New("empty input"))
	}

	if u, err := url.Parse(input); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return KindURL, input, nil
	}

	info, err := os.Stat(input)
	if err != nil {
		return KindUnknown, "", types.NewFault(types.KindValidation, "detect", input, err)
	}
	if info.IsDir() {
		return KindDirectory, input, nil
	}
	if !strings.EqualFold(filepath.Ext(input), ".pdf") {
		return KindUnknown, "", types.NewFault(types.KindValidation, "detect", input,
			errors.New("not a PDF file"))
	}
	return KindFile, input, nil
}

// ListPDFs returns the PDF files directly inside dir in name order. The
// scan does not recurse. A directory without any PDFs is a validation
// error.
func ListPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, types.NewFault(types.KindFilesystem, "scan", dir, err)
	}

	var pdfs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			pdfs = append(pdfs, filepath.Join(dir, entry.Name()))
		}
	}

	if len(pdfs) == 0 {
		return nil, types.NewFault(types.KindValidation, "scan", dir,
			errors.New("no PDF files found"))
	}
	return pdfs, nil
}
