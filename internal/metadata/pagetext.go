// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metadata

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pageText collects plain text from the leading pages of a PDF, capped at
// maxPages pages and maxChars characters. Declared as a var so tests can
// substitute fixed text.
var pageText = func(path string, maxPages, maxChars int) (string, error) {
	if text, err := pageTextByPage(path, maxPages, maxChars); err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	// Some files defeat per-page extraction but still yield text through
	// the whole-document reader.
	return wholeDocText(path, maxChars)
}

func pageTextByPage(path string, maxPages, maxChars int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("extracting page text: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	pages := reader.NumPage()
	if pages > maxPages {
		pages = maxPages
	}

	var b strings.Builder
	for i := 1; i <= pages && b.Len() < maxChars; i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		t, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(t)
		b.WriteString("\n")
	}

	text = b.String()
	if len(text) > maxChars {
		text = text[:maxChars]
	}
	return text, nil
}

func wholeDocText(path string, maxChars int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("extracting document text: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	rd, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if _, err := io.Copy(&b, io.LimitReader(rd, int64(maxChars))); err != nil {
		return "", err
	}
	return b.String(), nil
}

// pageLines returns the visual rows of the first page in reading order.
// Declared as a var so tests can substitute fixed lines.
var pageLines = func(path string) (lines []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			lines = nil
			err = fmt.Errorf("extracting page rows: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if reader.NumPage() < 1 {
		return nil, errors.New("document has no pages")
	}

	p := reader.Page(1)
	if p.V.IsNull() {
		return nil, errors.New("first page is unreadable")
	}

	rows, err := p.GetTextByRow()
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		var b strings.Builder
		for _, word := range row.Content {
			b.WriteString(word.S)
		}
		if line := strings.TrimSpace(b.String()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}
