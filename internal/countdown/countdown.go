// Package countdown computes the time left until the festival opens and the
// calendar dates of the festival days.
package countdown

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"
)

// TimeLeft is a countdown broken into display units.
type TimeLeft struct {
	Days    int  `json:"days"`
	Hours   int  `json:"hours"`
	Minutes int  `json:"minutes"`
	Seconds int  `json:"seconds"`
	Started bool `json:"started"`
}

// Until returns the time left from now to target. Once target is reached the
// countdown stays at zero with Started set.
func Until(target, now time.Time) TimeLeft {
	d := target.Sub(now)
	if d <= 0 {
		return TimeLeft{Started: true}
	}
	secs := int64(d / time.Second)
	return TimeLeft{
		Days:    int(secs / 86400),
		Hours:   int(secs % 86400 / 3600),
		Minutes: int(secs % 3600 / 60),
		Seconds: int(secs % 60),
	}
}

// FestDays returns the n consecutive daily occurrences starting at start,
// keeping start's wall-clock time and location.
func FestDays(start time.Time, n int) ([]time.Time, error) {
	if n <= 0 {
		return nil, errors.New("countdown: festival must last at least one day")
	}
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Count:   n,
		Dtstart: start,
	})
	if err != nil {
		return nil, err
	}
	return r.All(), nil
}

// DayDate returns the date of festival day (1-based).
func DayDate(start time.Time, n, day int) (time.Time, error) {
	days, err := FestDays(start, n)
	if err != nil {
		return time.Time{}, err
	}
	if day < 1 || day > len(days) {
		return time.Time{}, errors.New("countdown: day outside the festival")
	}
	return days[day-1], nil
}
