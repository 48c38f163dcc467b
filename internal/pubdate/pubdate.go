// Package pubdate extracts a publication year from free-form date strings.
package pubdate

import (
	"strconv"
	"strings"
	"time"
)

// UnknownYear is the bucket used when no year can be parsed.
const UnknownYear = "unknown"

// layouts are tried in order by the first parsing stage.
var layouts = []string{
	"2006-01-02",
	"2006-01",
	"2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2006",
	"Jan 2006",
	"January, 2006",
	"2006 January",
}

// Year parses s in two stages. The first stage tries every known layout on
// the whole string. If that fails, the second stage drops three characters
// at a time from the end and retries, which recovers dates such as
// "2016-00-00" (unknown month and day) or "2016-05-01 (online)".
// ok is false when neither stage succeeds.
func Year(s string) (year int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if year, ok := parse(s); ok {
		return year, true
	}

	runes := []rune(s)
	for len(runes) > 3 {
		runes = runes[:len(runes)-3]
		if year, ok := parse(strings.TrimSpace(string(runes))); ok {
			return year, true
		}
	}
	return 0, false
}

// YearLabel returns the year of s as a string, or UnknownYear.
func YearLabel(s string) string {
	year, ok := Year(s)
	if !ok {
		return UnknownYear
	}
	return strconv.Itoa(year)
}

func parse(s string) (int, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Year(), true
		}
	}
	return 0, false
}
