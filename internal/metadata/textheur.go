// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metadata

import (
	"context"
	"regexp"
	"strings"

	"github.com/paperorg/paperorg/pkg/types"
)

// titleHeuristicStrategy guesses a title from the first page when nothing
// better turned up. It is last in the chain and fills only the title.
type titleHeuristicStrategy struct{}

func (titleHeuristicStrategy) name() string { return "first-page-title" }

func (titleHeuristicStrategy) attempt(_ context.Context, meta types.Metadata, path string) (types.Metadata, error) {
	if meta.Title != "" {
		return meta, nil
	}

	lines, err := pageLines(path)
	if err != nil {
		return meta, err
	}

	meta.Title = guessTitle(lines)
	return meta, nil
}

// headerPatterns match first-page lines that are banners rather than
// titles: page numbers, journal mastheads, identifier lines, submission
// notes and contact addresses.
var headerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d+$`),
	regexp.MustCompile(`(?i)^(page\b|vol\.|volume\b|no\.|issue\b)`),
	regexp.MustCompile(`(?i)^arxiv:`),
	regexp.MustCompile(`(?i)^(doi\b|https?://)`),
	regexp.MustCompile(`(?i)^(preprint|draft|submitted to|to appear in|proceedings of|accepted)\b`),
	regexp.MustCompile(`@`),
}

// guessTitle picks the first line that looks like a real title.
func guessTitle(lines []string) string {
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if len(line) < 10 || len(line) > 200 {
			continue
		}
		if isHeader(line) {
			continue
		}
		return line
	}
	return ""
}

func isHeader(line string) bool {
	for _, re := range headerPatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
