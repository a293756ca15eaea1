// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package display turns loosely typed award fields into display values.
// Nothing here fails: missing, null, and blank values all render as Placeholder.
package display

import (
	"strings"

	"github.com/pdiddy/research-crawler/pkg/types"
)

const (
	// Placeholder is shown for any missing or blank value.
	Placeholder = "-"

	// NoneTag is the single tag shown when a keyword field yields no keywords.
	NoneTag = "None"
)

// keywordDelimiters separates keywords in keywords_zh and keywords_en.
// The source mixes half-width and full-width punctuation.
const keywordDelimiters = ",;；、"

// Normalize returns the trimmed text of v, or Placeholder when v is null or blank.
func Normalize(v types.Text) string {
	if v.IsNull() {
		return Placeholder
	}
	return NormalizeString(v.String())
}

// NormalizeString returns the trimmed s, or Placeholder when s is blank.
func NormalizeString(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return Placeholder
	}
	return s
}

// SplitKeywords splits v on any keyword delimiter, trims every token, and
// drops empty tokens. Order and duplicates are kept. A null or blank value
// yields an empty slice.
func SplitKeywords(v types.Text) []string {
	tokens := strings.FieldsFunc(v.String(), func(r rune) bool {
		return strings.ContainsRune(keywordDelimiters, r)
	})
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// KeywordTags returns the tags to render for v: its keywords, or a single
// NoneTag when there are none.
func KeywordTags(v types.Text) []string {
	tags := SplitKeywords(v)
	if len(tags) == 0 {
		return []string{NoneTag}
	}
	return tags
}
