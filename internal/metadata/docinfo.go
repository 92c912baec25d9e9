// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metadata

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	pdftypes "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/paperorg/paperorg/pkg/types"
)

// docInfo is the raw document information dictionary of a PDF.
type docInfo struct {
	Title        string
	Author       string
	CreationDate string
}

// readDocInfo extracts the document information dictionary. The strict
// parser goes first; pdfcpu's relaxed reader picks up files the strict one
// chokes on. Declared as a var so tests can substitute fixtures.
var readDocInfo = func(path string) (docInfo, error) {
	d, err := infoDictNative(path)
	if err == nil {
		return d, nil
	}
	return infoDictRelaxed(path)
}

// docInfoStrategy maps the info dictionary onto bibliographic fields.
type docInfoStrategy struct{}

func (docInfoStrategy) name() string { return "document-info" }

func (docInfoStrategy) attempt(_ context.Context, meta types.Metadata, path string) (types.Metadata, error) {
	d, err := readDocInfo(path)
	if err != nil {
		return meta, err
	}

	found := types.Metadata{
		Title:   cleanTitle(d.Title),
		Authors: SplitAuthors(d.Author),
		Year:    yearFromPDFDate(d.CreationDate),
	}
	return fillEmpty(meta, found), nil
}

// infoDictNative reads the info dictionary with the strict parser. The
// parser panics on malformed files, so everything runs behind a recover.
func infoDictNative(path string) (d docInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			d = docInfo{}
			err = fmt.Errorf("parsing document info: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return docInfo{}, err
	}
	defer f.Close()

	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return docInfo{}, errors.New("no document info dictionary")
	}

	return docInfo{
		Title:        info.Key("Title").Text(),
		Author:       info.Key("Author").Text(),
		CreationDate: info.Key("CreationDate").RawString(),
	}, nil
}

// infoDictRelaxed reads the info dictionary with pdfcpu, which tolerates
// files the strict parser rejects.
func infoDictRelaxed(path string) (docInfo, error) {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return docInfo{}, err
	}
	if ctx.Info == nil {
		return docInfo{}, errors.New("no document info dictionary")
	}

	dict, err := ctx.DereferenceDict(*ctx.Info)
	if err != nil {
		return docInfo{}, fmt.Errorf("dereferencing info dict: %w", err)
	}
	if dict == nil {
		return docInfo{}, errors.New("info is not a dictionary")
	}

	return docInfo{
		Title:        infoString(ctx, dict, "Title"),
		Author:       infoString(ctx, dict, "Author"),
		CreationDate: infoString(ctx, dict, "CreationDate"),
	}, nil
}

func infoString(ctx *model.Context, dict pdftypes.Dict, key string) string {
	obj, found := dict.Find(key)
	if !found {
		return ""
	}
	obj, err := ctx.Dereference(obj)
	if err != nil {
		return ""
	}

	switch s := obj.(type) {
	case pdftypes.StringLiteral:
		str, err := pdftypes.StringLiteralToString(s)
		if err != nil {
			return ""
		}
		return str
	case pdftypes.HexLiteral:
		str, err := pdftypes.HexLiteralToString(s)
		if err != nil {
			return ""
		}
		return str
	default:
		return ""
	}
}

// titlePlaceholders are junk values some producers write into Title.
var titlePlaceholders = map[string]bool{
	"untitled": true,
	"unknown":  true,
}

func cleanTitle(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if titlePlaceholders[strings.ToLower(s)] {
		return ""
	}
	return s
}

// pdfDateRe matches the year of a PDF date string such as
// "D:20170612120000Z".
var pdfDateRe = regexp.MustCompile(`^D:(\d{4})`)

func yearFromPDFDate(s string) int {
	s = strings.TrimSpace(s)
	if m := pdfDateRe.FindStringSubmatch(s); m != nil {
		y, _ := strconv.Atoi(m[1])
		return plausibleYear(y)
	}
	if len(s) >= 4 {
		if y, err := strconv.Atoi(s[:4]); err == nil {
			return plausibleYear(y)
		}
	}
	return 0
}
