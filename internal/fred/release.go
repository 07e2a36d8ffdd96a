package fred

import (
	"strconv"
	"strings"
)

// LatestYear keeps the dates belonging to the most recent year present.
// Dates whose year cannot be parsed are ignored when picking the year.
// When no year parses, all dates are returned and ok is false.
func LatestYear(dates []ReleaseDate) (year int, filtered []ReleaseDate, ok bool) {
	for _, d := range dates {
		y, err := parseYear(d.Date)
		if err != nil {
			continue
		}
		if !ok || y > year {
			year, ok = y, true
		}
	}
	if !ok {
		return 0, dates, false
	}

	prefix := strconv.Itoa(year)
	filtered = make([]ReleaseDate, 0, len(dates))
	for _, d := range dates {
		if strings.HasPrefix(d.Date, prefix) {
			filtered = append(filtered, d)
		}
	}
	return year, filtered, true
}

func parseYear(date string) (int, error) {
	if len(date) < 4 {
		return 0, strconv.ErrSyntax
	}
	for _, r := range date[:4] {
		if r < '0' || r > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(date[:4])
}

// MatchRelease returns the first release whose name contains name, case-insensitively.
func MatchRelease(releases []Release, name string) (Release, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, r := range releases {
		if strings.Contains(strings.ToLower(r.Name), needle) {
			return r, true
		}
	}
	return Release{}, false
}
