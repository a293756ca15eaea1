// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package view

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"
	"golang.org/x/text/width"

	"github.com/pdiddy/research-crawler/internal/display"
	"github.com/pdiddy/research-crawler/internal/session"
)

// Format selects a page renderer.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DefaultWidth is the text layout width in terminal columns.
const DefaultWidth = 100

// ParseFormat maps a --format flag value to a Format. "table" is accepted as
// an alias for text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "table":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json, or yaml)", s)
}

// Render writes p to w in the given format. cols is only used by FormatText.
func Render(w io.Writer, p Page, f Format, cols int) error {
	switch f {
	case FormatJSON:
		return RenderJSON(w, p)
	case FormatYAML:
		return RenderYAML(w, p)
	case FormatText, "":
		return RenderText(w, p, cols)
	}
	return fmt.Errorf("unknown output format %q", f)
}

// RenderJSON writes p as indented JSON.
func RenderJSON(w io.Writer, p Page) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(p)
}

// RenderYAML writes p as a YAML document.
func RenderYAML(w io.Writer, p Page) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encoding page: %w", err)
	}
	return enc.Close()
}

// RenderText writes p as a plain-text report no wider than cols terminal
// columns (DefaultWidth when cols <= 0). Groups are listed only for a
// settled successful search; otherwise the empty-state text is shown.
func RenderText(w io.Writer, p Page, cols int) error {
	if cols <= 0 {
		cols = DefaultWidth
	}
	var b strings.Builder

	b.WriteString(truncate(p.Title, cols) + "\n")
	if p.Subtitle != "" {
		b.WriteString(truncate(p.Subtitle, cols) + "\n")
	}
	if p.Message != "" && p.Message != p.Subtitle {
		b.WriteString(truncate(p.Message, cols) + "\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s  %s  %s  %s\n",
		pad("Awards", 6), pad("Total funding", 20), pad("Most recent", 11), "Representative")
	fmt.Fprintf(&b, "%s  %s  %s  %s\n",
		pad(p.Stats.Awards, 6), pad(p.Stats.TotalFunding, 20), pad(p.Stats.MostRecent, 11), p.Stats.Representative)
	b.WriteString(strings.Repeat("-", min(cols, 60)) + "\n")

	if p.Status != session.Success || p.Empty != "" {
		if p.Empty != "" {
			b.WriteString(truncate(p.Empty, cols) + "\n")
		}
		_, err := io.WriteString(w, b.String())
		return err
	}

	for _, g := range p.Groups {
		fmt.Fprintf(&b, "\n%d\n", g.Year)
		if len(g.Cards) == 0 {
			b.WriteString("  (no awards)\n")
			continue
		}
		for _, c := range g.Cards {
			writeCard(&b, c, cols)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeCard(b *strings.Builder, c Card, cols int) {
	line := func(s string) {
		b.WriteString(truncate(s, cols) + "\n")
	}
	line("  " + c.Title)
	line(fmt.Sprintf("    PI: %s  Organ: %s", c.PI, c.Organ))
	line(fmt.Sprintf("    Period: %s  Amount: %s  Project: %s", c.Period, c.Amount, c.ProjectNo))
	line("    Keywords: " + strings.Join(c.KeywordsZH, ", ") + " / " + strings.Join(c.KeywordsEN, ", "))
	if c.Impact != display.Placeholder {
		line("    Impact: " + c.Impact)
	}
}

// runeWidth returns the terminal columns taken by r: two for wide and
// fullwidth East Asian characters, one otherwise.
func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}

// displayWidth returns the terminal columns taken by s.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		n += runeWidth(r)
	}
	return n
}

// truncate shortens s to at most cols columns, ending in "..." when cut.
func truncate(s string, cols int) string {
	if displayWidth(s) <= cols {
		return s
	}
	if cols <= 3 {
		return strings.Repeat(".", max(cols, 0))
	}
	budget := cols - 3
	var b strings.Builder
	used := 0
	for _, r := range s {
		rw := runeWidth(r)
		if used+rw > budget {
			break
		}
		b.WriteRune(r)
		used += rw
	}
	return b.String() + "..."
}

// pad right-pads s with spaces to cols columns.
func pad(s string, cols int) string {
	if n := displayWidth(s); n < cols {
		return s + strings.Repeat(" ", cols-n)
	}
	return s
}
