// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package view derives what a results page shows from a session state:
// headings, summary stats, and award cards grouped by window year. All
// values are display-ready strings; nothing here touches the network.
package view

import (
	"fmt"
	"strconv"

	"github.com/pdiddy/research-crawler/internal/aggregate"
	"github.com/pdiddy/research-crawler/internal/display"
	"github.com/pdiddy/research-crawler/internal/session"
	"github.com/pdiddy/research-crawler/pkg/types"
)

// Empty-state and heading texts.
const (
	TitleLatest    = "Latest results"
	NoAwardsFound  = "No awards found."
	titleResults   = "Results for %s"
	subtitleHint   = "Enter a name to see awards from %d-%d."
	subtitleResult = "Showing %d awards from %d-%d."
)

// Page is everything a results page renders.
type Page struct {
	Title    string         `json:"title" yaml:"title"`
	Subtitle string         `json:"subtitle" yaml:"subtitle"`
	Status   session.Status `json:"status" yaml:"status"`
	Message  string         `json:"message" yaml:"message"`

	// Empty is the empty-state text, set when there are no cards to show.
	Empty string `json:"empty,omitempty" yaml:"empty,omitempty"`

	Stats  Stats   `json:"stats" yaml:"stats"`
	Groups []Group `json:"groups" yaml:"groups"`
}

// Stats are the summary figures, each display.Placeholder when unknown.
type Stats struct {
	Awards         string `json:"awards" yaml:"awards"`
	TotalFunding   string `json:"total_funding" yaml:"total_funding"`
	MostRecent     string `json:"most_recent" yaml:"most_recent"`
	Representative string `json:"representative" yaml:"representative"`
}

// Group holds the cards of one window year, possibly none.
type Group struct {
	Year  int    `json:"year" yaml:"year"`
	Cards []Card `json:"cards" yaml:"cards"`
}

// Card is one award record with every field normalized.
type Card struct {
	Title      string   `json:"title" yaml:"title"`
	PI         string   `json:"pi" yaml:"pi"`
	Organ      string   `json:"organ" yaml:"organ"`
	Year       string   `json:"year" yaml:"year"`
	Period     string   `json:"period" yaml:"period"`
	Amount     string   `json:"amount" yaml:"amount"`
	ProjectNo  string   `json:"project_no" yaml:"project_no"`
	Impact     string   `json:"impact" yaml:"impact"`
	KeywordsZH []string `json:"keywords_zh" yaml:"keywords_zh"`
	KeywordsEN []string `json:"keywords_en" yaml:"keywords_en"`
}

// Build derives the page for s over the given window. Stats summarize every
// record of s; groups hold only records whose year falls in the window.
func Build(s session.State, window aggregate.Window) Page {
	groups := aggregate.WindowByYear(s.Records, window)

	p := Page{
		Title:   TitleLatest,
		Status:  s.Status,
		Message: s.Message,
		Stats:   buildStats(aggregate.Summarize(s.Records)),
		Groups:  make([]Group, len(groups)),
	}

	shown := 0
	for i, g := range groups {
		cards := make([]Card, len(g.Records))
		for j, r := range g.Records {
			cards[j] = NewCard(r)
		}
		p.Groups[i] = Group{Year: g.Year, Cards: cards}
		shown += len(cards)
	}

	switch {
	case s.Term == "":
		p.Subtitle = fmt.Sprintf(subtitleHint, window.Oldest(), window.Newest())
		p.Empty = session.MessageEmptyTerm
	case s.Status == session.Success && shown > 0:
		p.Title = fmt.Sprintf(titleResults, s.Term)
		p.Subtitle = fmt.Sprintf(subtitleResult, shown, window.Oldest(), window.Newest())
	case s.Status == session.Success:
		p.Title = fmt.Sprintf(titleResults, s.Term)
		p.Subtitle = NoAwardsFound
		p.Empty = NoAwardsFound
	default:
		p.Title = fmt.Sprintf(titleResults, s.Term)
		p.Subtitle = s.Message
		p.Empty = s.Message
	}
	return p
}

// NewCard normalizes r for display.
func NewCard(r types.AwardRecord) Card {
	return Card{
		Title:      display.Normalize(r.PlanName),
		PI:         display.Normalize(r.PIName),
		Organ:      display.Normalize(r.Organ),
		Year:       display.Normalize(r.AwardYear),
		Period:     display.Normalize(r.Period),
		Amount:     display.Normalize(r.TotalAmount),
		ProjectNo:  display.Normalize(r.ProjectNo),
		Impact:     display.Normalize(r.Impact),
		KeywordsZH: display.KeywordTags(r.KeywordsZH),
		KeywordsEN: display.KeywordTags(r.KeywordsEN),
	}
}

func buildStats(sum types.Summary) Stats {
	st := Stats{
		Awards:         display.Placeholder,
		TotalFunding:   display.Placeholder,
		MostRecent:     display.Placeholder,
		Representative: display.Placeholder,
	}
	if sum.Count == 0 {
		return st
	}
	st.Awards = strconv.Itoa(sum.Count)
	if sum.TotalFunding != nil {
		st.TotalFunding = FormatFunding(*sum.TotalFunding)
	}
	if sum.MostRecentYear != nil {
		st.MostRecent = strconv.Itoa(*sum.MostRecentYear)
	}
	if sum.RepresentativeID != nil {
		st.Representative = *sum.RepresentativeID
	}
	return st
}

// FormatFunding renders an amount in New Taiwan dollars with thousands
// separators, e.g. "NTD 3,450,000".
func FormatFunding(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	out := make([]byte, 0, len(digits)+len(digits)/3)
	for i := range len(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	return "NTD " + sign + string(out)
}
