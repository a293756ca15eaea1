// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-crawler/pkg/types"
)

// --- helpers ---

func rec(year, projectNo string) types.AwardRecord {
	r := types.AwardRecord{PlanName: types.NewText("plan " + year)}
	if year != "<null>" {
		r.AwardYear = types.NewText(year)
	}
	if projectNo != "<null>" {
		r.ProjectNo = types.NewText(projectNo)
	}
	return r
}

func groupSizes(groups []types.YearGroup) map[int]int {
	sizes := make(map[int]int, len(groups))
	for _, g := range groups {
		sizes[g.Year] = len(g.Records)
	}
	return sizes
}

var window114 = Window{114, 113, 112, 111, 110}

// --- Window ---

func TestNewWindow(t *testing.T) {
	assert.Equal(t, window114, NewWindow(114, 5))
	assert.Equal(t, Window{2026}, NewWindow(2026, 1))
	assert.Empty(t, NewWindow(114, 0))
}

func TestWindowBounds(t *testing.T) {
	assert.Equal(t, 114, window114.Newest())
	assert.Equal(t, 110, window114.Oldest())
	assert.Equal(t, 0, Window{}.Newest())
	assert.Equal(t, 0, Window{}.Oldest())
}

func TestResolveWindow(t *testing.T) {
	now := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		cfg     types.WindowConfig
		want    Window
		wantErr bool
	}{
		{
			name: "pinned start",
			cfg:  types.WindowConfig{Start: 114, Size: 5, Calendar: types.CalendarROC},
			want: window114,
		},
		{
			name: "explicit years win over start",
			cfg:  types.WindowConfig{Years: []int{113, 111, 109}, Start: 114, Size: 5},
			want: Window{113, 111, 109},
		},
		{
			name: "relative roc",
			cfg:  types.WindowConfig{Relative: true, Size: 3, Calendar: types.CalendarROC},
			want: Window{115, 114, 113},
		},
		{
			name: "relative gregorian",
			cfg:  types.WindowConfig{Relative: true, Size: 2, Calendar: types.CalendarGregorian},
			want: Window{2026, 2025},
		},
		{
			name: "relative ignores start",
			cfg:  types.WindowConfig{Relative: true, Start: 100, Size: 1, Calendar: types.CalendarROC},
			want: Window{115},
		},
		{
			name:    "ascending years rejected",
			cfg:     types.WindowConfig{Years: []int{110, 111}},
			wantErr: true,
		},
		{
			name:    "duplicate years rejected",
			cfg:     types.WindowConfig{Years: []int{112, 112}},
			wantErr: true,
		},
		{
			name:    "zero size rejected",
			cfg:     types.WindowConfig{Start: 114},
			wantErr: true,
		},
		{
			name:    "unknown calendar rejected",
			cfg:     types.WindowConfig{Relative: true, Size: 5, Calendar: "lunar"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveWindow(tt.cfg, now)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveWindow_CopiesYears(t *testing.T) {
	years := []int{114, 113}
	w, err := ResolveWindow(types.WindowConfig{Years: years}, time.Now())
	require.NoError(t, err)
	w[0] = 1
	assert.Equal(t, 114, years[0])
}

// --- ParseYear ---

func TestParseYear(t *testing.T) {
	tests := []struct {
		in     types.Text
		want   int
		wantOK bool
	}{
		{types.NewText("112"), 112, true},
		{types.NewText(" 109 "), 109, true},
		{types.NewText("2024"), 2024, true},
		{types.NewText("-1"), -1, true},
		{types.NewText(""), 0, false},
		{types.NewText("   "), 0, false},
		{types.NewText("abc"), 0, false},
		{types.NewText("112年"), 0, false},
		{types.NewText("112.5"), 0, false},
		{types.NewText("112.0"), 112, true},
		{types.NewText("113.00"), 113, true},
		{types.NewText("112."), 0, false},
		{types.NewText(".0"), 0, false},
		{types.NewText("1e2"), 0, false},
		{types.Null(), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			got, ok := ParseYear(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// --- WindowByYear ---

func TestWindowByYear_EmptyInputKeepsEveryGroup(t *testing.T) {
	groups := WindowByYear(nil, window114)
	require.Len(t, groups, len(window114))
	for i, g := range groups {
		assert.Equal(t, window114[i], g.Year)
		assert.NotNil(t, g.Records)
		assert.Empty(t, g.Records)
	}
}

func TestWindowByYear_PreservesInputOrderWithinGroup(t *testing.T) {
	records := []types.AwardRecord{
		rec("112", "first"),
		rec("114", "x"),
		rec("112", "second"),
		rec("112", "third"),
	}
	groups := WindowByYear(records, window114)

	require.Len(t, groups[2].Records, 3)
	assert.Equal(t, 112, groups[2].Year)
	assert.Equal(t, "first", groups[2].Records[0].ProjectNo.String())
	assert.Equal(t, "second", groups[2].Records[1].ProjectNo.String())
	assert.Equal(t, "third", groups[2].Records[2].ProjectNo.String())
	assert.Len(t, groups[0].Records, 1)
}

func TestWindowByYear_OmitsOutOfWindowAndUnparsable(t *testing.T) {
	records := []types.AwardRecord{
		rec("109", ""),
		rec("115", ""),
		rec("n/a", ""),
		rec("<null>", ""),
		rec("110", ""),
	}
	groups := WindowByYear(records, window114)
	assert.Equal(t, map[int]int{114: 0, 113: 0, 112: 0, 111: 0, 110: 1}, groupSizes(groups))
}

func TestWindowByYear_GroupTotalsNeverExceedInput(t *testing.T) {
	tests := []struct {
		name     string
		records  []types.AwardRecord
		allInWin bool
	}{
		{"all in window", []types.AwardRecord{rec("114", ""), rec("110", ""), rec(" 112", "")}, true},
		{"one outside", []types.AwardRecord{rec("114", ""), rec("100", "")}, false},
		{"one unparsable", []types.AwardRecord{rec("113", ""), rec("?", "")}, false},
		{"empty", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := 0
			for _, g := range WindowByYear(tt.records, window114) {
				total += len(g.Records)
			}
			assert.LessOrEqual(t, total, len(tt.records))
			assert.Equal(t, tt.allInWin, total == len(tt.records))
		})
	}
}

func TestWindowByYear_DoesNotMutateInput(t *testing.T) {
	records := []types.AwardRecord{rec("112", "a"), rec("111", "b")}
	before := make([]types.AwardRecord, len(records))
	copy(before, records)

	groups := WindowByYear(records, window114)
	groups[2].Records[0].ProjectNo = types.NewText("changed")

	assert.Equal(t, before, records)
}

func TestWindowByYear_FollowsWindowOrder(t *testing.T) {
	w := Window{110, 114}
	groups := WindowByYear([]types.AwardRecord{rec("114", "")}, w)
	require.Len(t, groups, 2)
	assert.Equal(t, 110, groups[0].Year)
	assert.Equal(t, 114, groups[1].Year)
	assert.Len(t, groups[1].Records, 1)
}

// --- Summarize ---

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Count)
	assert.Nil(t, s.MostRecentYear)
	assert.Nil(t, s.RepresentativeID)
	assert.Nil(t, s.TotalFunding)
	assert.Equal(t, 0, s.FundedCount)
}

func TestSummarize_CountMatchesInput(t *testing.T) {
	for n := 0; n < 6; n++ {
		records := make([]types.AwardRecord, n)
		for i := range records {
			records[i] = rec("bad", "")
		}
		assert.Equal(t, n, Summarize(records).Count)
	}
}

func TestSummarize_MostRecentYearIgnoresUnparsable(t *testing.T) {
	s := Summarize([]types.AwardRecord{rec("109", ""), rec("n/a", ""), rec("112", ""), rec("111", "")})
	require.NotNil(t, s.MostRecentYear)
	assert.Equal(t, 112, *s.MostRecentYear)

	s = Summarize([]types.AwardRecord{rec("n/a", ""), rec("<null>", "")})
	assert.Nil(t, s.MostRecentYear)
	assert.Equal(t, 2, s.Count)
}

func TestSummarize_RepresentativeIDIsFirstNonBlank(t *testing.T) {
	s := Summarize([]types.AwardRecord{
		rec("112", "<null>"),
		rec("112", "   "),
		rec("111", " 111WFA0000001 "),
		rec("110", "110WFA0000002"),
	})
	require.NotNil(t, s.RepresentativeID)
	assert.Equal(t, "111WFA0000001", *s.RepresentativeID)

	s = Summarize([]types.AwardRecord{rec("112", ""), rec("112", "<null>")})
	assert.Nil(t, s.RepresentativeID)
}

func TestSummarize_TotalFunding(t *testing.T) {
	records := []types.AwardRecord{
		{TotalAmount: types.NewText("1,200,000")},
		{TotalAmount: types.NewText("800000元")},
		{TotalAmount: types.NewText("unknown")},
		{},
	}
	s := Summarize(records)
	require.NotNil(t, s.TotalFunding)
	assert.Equal(t, int64(2000000), *s.TotalFunding)
	assert.Equal(t, 2, s.FundedCount)
}

func TestSummarize_TotalFundingSkipsOverflow(t *testing.T) {
	records := []types.AwardRecord{
		{TotalAmount: types.NewText("9000000000000000000")},
		{TotalAmount: types.NewText("9000000000000000000")},
		{TotalAmount: types.NewText("1,000")},
	}
	s := Summarize(records)
	require.NotNil(t, s.TotalFunding)
	assert.Equal(t, int64(9000000000000001000), *s.TotalFunding)
	assert.Equal(t, 2, s.FundedCount)

	s = Summarize([]types.AwardRecord{
		{TotalAmount: types.NewText("-9000000000000000000")},
		{TotalAmount: types.NewText("-9000000000000000000")},
	})
	require.NotNil(t, s.TotalFunding)
	assert.Equal(t, int64(-9000000000000000000), *s.TotalFunding)
	assert.Equal(t, 1, s.FundedCount)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"1,234,000", 1234000, true},
		{" 980000元 ", 980000, true},
		{"NT$ 1,000", 1000, true},
		{"", 0, false},
		{"1.5M", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseAmount(types.NewText(tt.in))
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

// --- Chen Yu scenario ---

func TestChenYuScenario(t *testing.T) {
	var records []types.AwardRecord
	body := `[
		{"pi_name": "Chen Yu", "award_year": "112", "project_no": "112XYZ0001"},
		{"pi_name": "Chen Yu", "award_year": 109, "project_no": null}
	]`
	require.NoError(t, json.Unmarshal([]byte(body), &records))

	groups := WindowByYear(records, window114)
	sizes := groupSizes(groups)
	assert.Equal(t, 1, sizes[112])
	_, has109 := sizes[109]
	assert.False(t, has109)

	total := 0
	for _, g := range groups {
		total += len(g.Records)
	}
	assert.Equal(t, 1, total)

	s := Summarize(records)
	assert.Equal(t, 2, s.Count)
	require.NotNil(t, s.MostRecentYear)
	assert.Equal(t, 112, *s.MostRecentYear)
}
