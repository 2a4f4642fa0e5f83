package domain

import (
	"regexp"
	"strconv"
)

var yearTokenPattern = regexp.MustCompile(`\b(\d{4})\b`)

// ExtractTargetYear returns the first 4-digit token in text that falls
// inside [minYear, maxYear], or YearUnknown. The range restriction keeps
// non-year numbers (amounts, identifiers) from triggering temporal
// filtering.
func ExtractTargetYear(text string, minYear, maxYear int) int {
	for _, m := range yearTokenPattern.FindAllStringSubmatch(text, -1) {
		year, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if year >= minYear && year <= maxYear {
			return year
		}
	}
	return YearUnknown
}
