package model

import (
	"fmt"
	"strconv"
	"strings"
)

// HoursPerDay is the length of a simulated day.
const HoursPerDay = 24

// Hour is a position on the simulated clock.
type Hour struct {
	Day  int `json:"day"`
	Hour int `json:"hour"`
}

// HourFromIndex converts an absolute hour count back into (day, hour).
func HourFromIndex(idx int) Hour {
	return Hour{Day: idx / HoursPerDay, Hour: idx % HoursPerDay}
}

// Index returns the absolute number of hours since day 0 hour 0.
func (h Hour) Index() int { return h.Day*HoursPerDay + h.Hour }

// Add returns h shifted by n hours.
func (h Hour) Add(n int) Hour { return HourFromIndex(h.Index() + n) }

// Next returns the following hour, rolling into the next day at hour 24.
func (h Hour) Next() Hour { return h.Add(1) }

// Before reports whether h is strictly earlier than o.
func (h Hour) Before(o Hour) bool {
	if h.Day != o.Day {
		return h.Day < o.Day
	}
	return h.Hour < o.Hour
}

// After reports whether h is strictly later than o.
func (h Hour) After(o Hour) bool { return o.Before(h) }

func (h Hour) String() string { return fmt.Sprintf("%d:%02d", h.Day, h.Hour) }

// ParseHour parses the "day:hour" form produced by String.
func ParseHour(s string) (Hour, error) {
	d, h, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Hour{}, fmt.Errorf("invalid hour %q: want day:hour", s)
	}
	day, err := strconv.Atoi(d)
	if err != nil {
		return Hour{}, fmt.Errorf("invalid day in %q: %w", s, err)
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return Hour{}, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	if day < 0 || hour < 0 || hour >= HoursPerDay {
		return Hour{}, fmt.Errorf("hour %q out of range", s)
	}
	return Hour{Day: day, Hour: hour}, nil
}
