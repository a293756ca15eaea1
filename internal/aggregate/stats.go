// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"math"
	"strconv"
	"strings"

	"github.com/pdiddy/research-crawler/pkg/types"
)

// amountReplacer strips the thousands separators and currency suffixes the
// award source prints around budgets ("1,234,000元", "NT$ 980,000").
var amountReplacer = strings.NewReplacer(",", "", "，", "", " ", "", "元", "", "NT$", "", "$", "")

// Summarize computes statistics over the ungrouped records. An empty input
// yields a zero count and no optional values.
func Summarize(records []types.AwardRecord) types.Summary {
	s := types.Summary{Count: len(records)}

	for _, r := range records {
		if year, ok := ParseYear(r.AwardYear); ok {
			if s.MostRecentYear == nil || year > *s.MostRecentYear {
				y := year
				s.MostRecentYear = &y
			}
		}

		if s.RepresentativeID == nil && !r.ProjectNo.IsBlank() {
			id := strings.TrimSpace(r.ProjectNo.String())
			s.RepresentativeID = &id
		}

		if amount, ok := ParseAmount(r.TotalAmount); ok {
			if s.TotalFunding == nil {
				s.TotalFunding = new(int64)
			}
			// Amounts that would overflow the sum are left out.
			if overflows(*s.TotalFunding, amount) {
				continue
			}
			*s.TotalFunding += amount
			s.FundedCount++
		}
	}
	return s
}

func overflows(sum, amount int64) bool {
	if amount > 0 {
		return sum > math.MaxInt64-amount
	}
	return sum < math.MinInt64-amount
}

// ParseAmount parses a budget printed by the award source. ok is false when
// the value is blank or not a whole number once separators are removed.
func ParseAmount(v types.Text) (amount int64, ok bool) {
	s := amountReplacer.Replace(strings.TrimSpace(v.String()))
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
