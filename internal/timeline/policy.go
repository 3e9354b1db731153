package timeline

import (
	"fmt"
	"strings"

	"udhayam/internal/model"
)

// FieldError describes one problem with an event record.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"message"`
}

func (e FieldError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Msg) }

// Policy decides which events are admitted to the layout.
//
// PolicyLenient only drops events whose times cannot be parsed at all;
// everything else is rendered, with out-of-window and reversed times absorbed
// by clamping in CalculateEventPosition. PolicyStrict additionally drops
// out-of-range clock values and empty or reversed intervals.
type Policy string

const (
	PolicyLenient Policy = "lenient"
	PolicyStrict  Policy = "strict"
)

// ParsePolicy maps a config string to a Policy. Empty means lenient.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyLenient:
		return PolicyLenient, nil
	case PolicyStrict:
		return PolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown time policy: %q", s)
	}
}

// Check returns the reasons ev is excluded from layout, or nil if admitted.
func (p Policy) Check(ev model.Event) []FieldError {
	var errs []FieldError

	sh, sm, okS := ParseClock(ev.StartTime)
	eh, em, okE := ParseClock(ev.EndTime)
	if !okS {
		errs = append(errs, FieldError{"startTime", malformedMsg(ev.StartTime)})
	}
	if !okE {
		errs = append(errs, FieldError{"endTime", malformedMsg(ev.EndTime)})
	}
	if p != PolicyStrict || len(errs) > 0 {
		return errs
	}

	if !inClockRange(sh, sm) {
		errs = append(errs, FieldError{"startTime", "out of range"})
	}
	if !inClockRange(eh, em) {
		errs = append(errs, FieldError{"endTime", "out of range"})
	}
	if len(errs) == 0 && eh*60+em <= sh*60+sm {
		errs = append(errs, FieldError{"endTime", "must be after startTime"})
	}
	return errs
}

func malformedMsg(v string) string {
	if strings.TrimSpace(v) == "" {
		return "required"
	}
	return "malformed time, expected HH:MM"
}

func inClockRange(h, m int) bool {
	return h >= 0 && h <= 23 && m >= 0 && m <= 59
}
