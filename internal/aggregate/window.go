// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate derives year groups and summary statistics from an
// award result set. Every function is pure: input records are never modified.
package aggregate

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/research-crawler/pkg/types"
)

// rocEpochOffset converts a Gregorian year to an ROC year.
const rocEpochOffset = 1911

// Window is the ordered list of award years shown as separate groups,
// newest first.
type Window []int

// NewWindow returns size consecutive years counting down from newest.
func NewWindow(newest, size int) Window {
	w := make(Window, size)
	for i := range w {
		w[i] = newest - i
	}
	return w
}

// Newest returns the first (most recent) year of the window, or 0 when empty.
func (w Window) Newest() int {
	if len(w) == 0 {
		return 0
	}
	return w[0]
}

// Oldest returns the last year of the window, or 0 when empty.
func (w Window) Oldest() int {
	if len(w) == 0 {
		return 0
	}
	return w[len(w)-1]
}

func (w Window) index(year int) int {
	for i, y := range w {
		if y == year {
			return i
		}
	}
	return -1
}

// ResolveWindow builds the window described by cfg. Explicit years win;
// otherwise the window counts down Size years from Start, or from the
// current year of cfg.Calendar when Relative is set. now is only consulted
// for relative windows.
func ResolveWindow(cfg types.WindowConfig, now time.Time) (Window, error) {
	if len(cfg.Years) > 0 {
		w := make(Window, len(cfg.Years))
		copy(w, cfg.Years)
		for i := 1; i < len(w); i++ {
			if w[i] >= w[i-1] {
				return nil, fmt.Errorf("window years must be strictly descending: %d follows %d", w[i], w[i-1])
			}
		}
		return w, nil
	}

	if cfg.Size <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", cfg.Size)
	}

	newest := cfg.Start
	if cfg.Relative {
		newest = now.Year()
		switch cfg.Calendar {
		case types.CalendarROC, "":
			newest -= rocEpochOffset
		case types.CalendarGregorian:
		default:
			return nil, fmt.Errorf("unknown calendar %q", cfg.Calendar)
		}
	}
	return NewWindow(newest, cfg.Size), nil
}

// ParseYear parses an award year as a base-10 integer after trimming
// surrounding whitespace. A JSON number with an all-zero fraction ("112.0")
// is accepted. ok is false for null, blank, or non-integral input.
func ParseYear(v types.Text) (year int, ok bool) {
	s := strings.TrimSpace(v.String())
	if whole, frac, found := strings.Cut(s, "."); found {
		if frac == "" || strings.Trim(frac, "0") != "" {
			return 0, false
		}
		s = whole
	}
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// WindowByYear returns one group per window year, in window order. Each
// record whose award year falls in the window is appended to its group in
// input order; all other records are left out of every group.
func WindowByYear(records []types.AwardRecord, window Window) []types.YearGroup {
	groups := make([]types.YearGroup, len(window))
	for i, y := range window {
		groups[i] = types.YearGroup{Year: y, Records: []types.AwardRecord{}}
	}

	for _, r := range records {
		year, ok := ParseYear(r.AwardYear)
		if !ok {
			continue
		}
		if i := window.index(year); i >= 0 {
			groups[i].Records = append(groups[i].Records, r)
		}
	}
	return groups
}
