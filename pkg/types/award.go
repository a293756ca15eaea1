// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-crawler pipeline:
// award records as returned by the award lookup service, the year groups and
// summaries derived from them, and the configuration for each stage.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Text is a loosely typed scalar received from the award lookup service.
// The service is a scraper front end, so any field may be null, absent,
// blank, a string, or a bare number. Text keeps the raw textual form and
// whether a value was present at all; display rules live in internal/display.
type Text struct {
	value string
	set   bool
}

// NewText returns a non-null Text holding s.
func NewText(s string) Text {
	return Text{value: s, set: true}
}

// Null returns the null Text. It is the zero value.
func Null() Text { return Text{} }

// IsNull reports whether the value was null or absent.
func (t Text) IsNull() bool { return !t.set }

// IsBlank reports whether the value is null or contains only whitespace.
func (t Text) IsBlank() bool {
	return !t.set || strings.TrimSpace(t.value) == ""
}

// String returns the raw text, or "" for a null value.
func (t Text) String() string { return t.value }

// MarshalJSON encodes a null Text as JSON null and anything else as a string.
func (t Text) MarshalJSON() ([]byte, error) {
	if !t.set {
		return []byte("null"), nil
	}
	return json.Marshal(t.value)
}

// UnmarshalJSON accepts any JSON scalar. Strings decode verbatim, numbers and
// booleans keep their literal spelling, and objects or arrays keep their
// compact JSON form.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = Text{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = NewText(s)
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*t = NewText(buf.String())
	default:
		if !json.Valid(data) {
			return fmt.Errorf("invalid JSON scalar %q", data)
		}
		*t = NewText(string(data))
	}
	return nil
}

// MarshalYAML encodes a null Text as YAML null.
func (t Text) MarshalYAML() (any, error) {
	if !t.set {
		return nil, nil
	}
	return t.value, nil
}

// UnmarshalYAML accepts any YAML scalar; ~ and null decode to the null Text.
func (t *Text) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*t = Text{}
		return nil
	}
	if node.Kind != yaml.ScalarNode {
		var v any
		if err := node.Decode(&v); err != nil {
			return err
		}
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		*t = NewText(string(data))
		return nil
	}
	*t = NewText(node.Value)
	return nil
}

// AwardRecord is one funded-project entry returned by the award lookup
// service. Every field is optional. Records are treated as immutable once
// received: later stages derive new structures instead of editing them.
type AwardRecord struct {
	// AwardYear is the award year, usually an ROC calendar year such as "113".
	AwardYear Text `json:"award_year" yaml:"award_year"`

	// PIName is the principal investigator's name.
	PIName Text `json:"pi_name" yaml:"pi_name"`

	// Organ is the host institution.
	Organ Text `json:"organ" yaml:"organ"`

	// PlanName is the project title.
	PlanName Text `json:"plan_name" yaml:"plan_name"`

	// Period is the execution period, e.g. "2024/08/01~2027/07/31".
	Period Text `json:"period" yaml:"period"`

	// TotalAmount is the approved budget as printed by the source.
	TotalAmount Text `json:"total_amount" yaml:"total_amount"`

	// Impact is the project summary or impact statement.
	Impact Text `json:"impact" yaml:"impact"`

	// KeywordsZH and KeywordsEN are delimited keyword lists.
	KeywordsZH Text `json:"keywords_zh" yaml:"keywords_zh"`
	KeywordsEN Text `json:"keywords_en" yaml:"keywords_en"`

	// ProjectNo is the source's project number, e.g. "113WFA2110082".
	ProjectNo Text `json:"project_no" yaml:"project_no"`
}

// YearGroup holds the records whose award year equals Year, in input order.
type YearGroup struct {
	Year    int           `json:"year" yaml:"year"`
	Records []AwardRecord `json:"records" yaml:"records"`
}

// Summary holds statistics over an ungrouped result set. Optional values
// are nil when no record supplied them.
type Summary struct {
	// Count is the number of records, windowed or not.
	Count int `json:"count" yaml:"count"`

	// MostRecentYear is the largest parsable award year.
	MostRecentYear *int `json:"most_recent_year,omitempty" yaml:"most_recent_year,omitempty"`

	// RepresentativeID is the first non-blank project number in input order.
	RepresentativeID *string `json:"representative_id,omitempty" yaml:"representative_id,omitempty"`

	// TotalFunding is the sum of every parsable total amount. An amount
	// that would overflow the sum is skipped.
	TotalFunding *int64 `json:"total_funding,omitempty" yaml:"total_funding,omitempty"`

	// FundedCount is the number of records that contributed to TotalFunding.
	FundedCount int `json:"funded_count" yaml:"funded_count"`
}
