package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/colonyops/taskcoach/internal/core/date"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// parseWhen reads a point in time from the command line. It accepts RFC 3339,
// "2006-01-02 15:04", a bare date, the words now, today and tomorrow, and
// offsets from now such as +90m, +2h, +3d or +1w. A bare date or day word
// means the start of that day, or its end when endOfDay is set. "none" and
// the empty string clear the date.
func parseWhen(s string, now time.Time, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)

	day := func(t time.Time) time.Time {
		if endOfDay {
			return date.EndOfDay(t)
		}
		return date.StartOfDay(t)
	}

	switch strings.ToLower(s) {
	case "", "none":
		return date.None, nil
	case "now":
		return now, nil
	case "today":
		return day(now), nil
	case "tomorrow":
		return day(now.AddDate(0, 0, 1)), nil
	}

	if strings.HasPrefix(s, "+") {
		d, err := parseOffset(s[1:])
		if err != nil {
			return time.Time{}, err
		}
		return now.Add(d), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}
	if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		return day(t), nil
	}

	return time.Time{}, fmt.Errorf("cannot parse %q as a date", s)
}

// parseOffset extends time.ParseDuration with days (d) and weeks (w).
func parseOffset(s string) (time.Duration, error) {
	if n := len(s); n > 1 {
		unit := time.Duration(0)
		switch s[n-1] {
		case 'd':
			unit = 24 * time.Hour
		case 'w':
			unit = 7 * 24 * time.Hour
		}
		if unit != 0 {
			v, err := strconv.Atoi(s[:n-1])
			if err != nil {
				return 0, fmt.Errorf("invalid offset %q", s)
			}
			return time.Duration(v) * unit, nil
		}
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid offset %q", s)
	}
	return d, nil
}

// formatWhen renders t relative to now, or "-" when it is not set.
func formatWhen(t, now time.Time) string {
	if !date.IsSet(t) {
		return "-"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// formatDuration renders d as hours, minutes and seconds.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	return fmt.Sprintf("%d:%02d:%02d", h, m, d/time.Second)
}
