// Package timeline turns fest events into a horizontal day layout: wall-clock
// parsing and formatting, proportional positioning on the 09:00–20:00 window,
// greedy track assignment for overlapping events and the render-ready view.
//
// All functions here are pure. Malformed input degrades to a defined value
// instead of returning an error.
package timeline

import (
	"fmt"
	"strconv"
	"strings"
)

// Day window. Not configurable at runtime.
const (
	OpenHour    = 9
	CloseHour   = 20
	SpanMinutes = (CloseHour - OpenHour) * 60 // 660

	// MinWidthPercent keeps very short events visible.
	MinWidthPercent = 2.0
)

// ParseClock splits a "HH:MM" string into hours and minutes.
//
// Exactly one colon is required and both parts must be unsigned decimal
// numbers. Range is not checked here: "25:00" parses and is clamped later by
// position mapping; the strict policy rejects it separately.
func ParseClock(s string) (hours, minutes int, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, okH := atoiDigits(parts[0])
	m, okM := atoiDigits(parts[1])
	if !okH || !okM {
		return 0, 0, false
	}
	return h, m, true
}

func atoiDigits(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// TimeToMinutes returns the minutes elapsed since the window opening (09:00).
//
// Malformed input yields 0, i.e. the event is treated as starting at the
// window opening. Times before 09:00 return negative values.
func TimeToMinutes(t string) int {
	h, m, ok := ParseClock(t)
	if !ok {
		return 0
	}
	return (h-OpenHour)*60 + m
}

// clockMinutes returns minutes since midnight.
func clockMinutes(t string) (int, bool) {
	h, m, ok := ParseClock(t)
	if !ok {
		return 0, false
	}
	return h*60 + m, true
}

// FormatTime renders "HH:MM" as a 12-hour string: "9 AM", "2:30 PM".
// The minutes component is dropped when it is zero. Malformed input is
// returned unchanged.
func FormatTime(t string) string {
	h, m, ok := ParseClock(t)
	if !ok {
		return t
	}
	period := "AM"
	if h%24 >= 12 {
		period = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	if m == 0 {
		return fmt.Sprintf("%d %s", h12, period)
	}
	return fmt.Sprintf("%d:%02d %s", h12, m, period)
}

// CalculateDuration renders the elapsed time between start and end as "2h",
// "45 min" or "1h 15m".
//
// Reversed, equal or malformed input renders as "0 min".
func CalculateDuration(start, end string) string {
	s, okS := clockMinutes(start)
	e, okE := clockMinutes(end)
	diff := e - s
	if !okS || !okE || diff < 0 {
		diff = 0
	}
	hours, minutes := diff/60, diff%60
	switch {
	case hours == 0:
		return fmt.Sprintf("%d min", minutes)
	case minutes == 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
}

// TimeSlots returns the hour labels of the day window, "09:00" through "20:00".
func TimeSlots() []string {
	slots := make([]string, 0, CloseHour-OpenHour+1)
	for h := OpenHour; h <= CloseHour; h++ {
		slots = append(slots, fmt.Sprintf("%02d:00", h))
	}
	return slots
}
