// Package timeago renders elapsed time as a short English phrase such as
// "1 day, 3 hours ago". Months are a flat 30 days and years a flat 365 days.
package timeago

import (
	"strconv"
	"strings"
	"time"
)

// DefaultUnits is the precision used by the seen command.
const DefaultUnits = 2

type unit struct {
	singular string
	plural   string
	seconds  int64
}

var ladder = []unit{
	{"millennium", "millennia", 60 * 60 * 24 * 365 * 1000},
	{"century", "centuries", 60 * 60 * 24 * 365 * 100},
	{"decennium", "decennia", 60 * 60 * 24 * 365 * 10},
	{"year", "years", 60 * 60 * 24 * 365},
	{"month", "months", 60 * 60 * 24 * 30},
	{"week", "weeks", 60 * 60 * 24 * 7},
	{"day", "days", 60 * 60 * 24},
	{"hour", "hours", 60 * 60},
	{"minute", "minutes", 60},
	{"second", "seconds", 1},
}

// Humanize formats elapsed using at most maxUnits terms. Sub-second and
// negative durations yield "just now". A maxUnits below 1 disables the cutoff.
func Humanize(elapsed time.Duration, maxUnits int) string {
	return HumanizeSeconds(int64(elapsed/time.Second), maxUnits)
}

// Since is Humanize(now.Sub(t), maxUnits).
func Since(t, now time.Time, maxUnits int) string {
	return Humanize(now.Sub(t), maxUnits)
}

// HumanizeSeconds is Humanize on whole seconds. It reaches the century and
// millennium rungs, which lie beyond the range of time.Duration.
func HumanizeSeconds(seconds int64, maxUnits int) string {
	var terms []string
	start := -1
	for i, u := range ladder {
		if seconds >= u.seconds {
			n := seconds / u.seconds
			seconds %= u.seconds
			if start < 0 {
				start = i
			}
			noun := u.singular
			if n >= 2 {
				noun = u.plural
			}
			terms = append(terms, strconv.FormatInt(n, 10)+" "+noun)
		}
		// The cutoff counts rungs walked from the first hit, zero-valued ones included.
		if start >= 0 && maxUnits > 0 && i-start+1 >= maxUnits {
			break
		}
	}
	if len(terms) == 0 {
		return "just now"
	}
	return strings.Join(terms, ", ") + " ago"
}
