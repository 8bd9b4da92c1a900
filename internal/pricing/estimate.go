package pricing

import (
	"fmt"
	"math"
)

// DefaultPriorityFactor scales hours when a priority option is on.
const DefaultPriorityFactor = 0.75

// EstimateHours returns the whole-hour completion estimate. The priority
// factor is applied before flooring; the result is at least one hour.
func EstimateHours(rule Rule, delta int, priority bool) int {
	hours := float64(delta) * rule.HoursPerUnit
	if priority {
		f := rule.PriorityFactor
		if f <= 0 {
			f = DefaultPriorityFactor
		}
		hours *= f
	}
	h := int(math.Floor(hours))
	if h < 1 {
		h = 1
	}
	return h
}

// EstimateTime buckets the estimate for display:
// under a day in hours, one day, then whole days rounded up.
func EstimateTime(rule Rule, delta int, priority bool) string {
	return FormatHours(EstimateHours(rule, delta, priority))
}

// FormatHours renders an hour count as "~6 Hours", "~1 Day" or "~3 Days".
func FormatHours(h int) string {
	switch {
	case h < 24:
		return fmt.Sprintf("~%d Hours", h)
	case h < 48:
		return "~1 Day"
	default:
		return fmt.Sprintf("~%d Days", (h+23)/24)
	}
}
