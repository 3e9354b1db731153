package export

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"udhayam/internal/countdown"
	"udhayam/internal/model"
	"udhayam/internal/timeline"
)

// ICSContentType is the MIME type served with calendar downloads.
const ICSContentType = "text/calendar;charset=utf-8"

// ICSOptions anchors wall-clock event times on real dates.
type ICSOptions struct {
	FestStart time.Time // opening of day 1, in the festival's location
	FestDays  int
	Policy    timeline.Policy
	Now       time.Time // DTSTAMP; zero means time.Now
}

// ICS renders the subject's day as a VCALENDAR with one VEVENT per event that
// passes the time policy.
func ICS(s Subject, events []model.Event, opts ICSOptions) (string, error) {
	date, err := countdown.DayDate(opts.FestStart, opts.FestDays, s.Selection.Day)
	if err != nil {
		return "", err
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	loc := opts.FestStart.Location()

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//udhayam//schedule//EN")
	cal.SetXWRCalName(s.Title())
	cal.SetXWRTimezone(loc.String())

	for _, ev := range timeline.FilterDay(events, s.Selection.Day) {
		if errs := opts.Policy.Check(ev); len(errs) > 0 {
			continue
		}
		start := at(date, ev.StartTime, loc)
		end := at(date, ev.EndTime, loc)
		if end.Before(start) {
			start, end = end, start
		}

		ve := cal.AddEvent(fmt.Sprintf("%s-day%d@udhayam", ev.ID, ev.Day))
		ve.SetDtStampTime(now)
		ve.SetStartAt(start)
		ve.SetEndAt(end)
		ve.SetSummary(ev.Name)
		if ev.Venue != "" {
			ve.SetLocation(ev.Venue)
		}
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if label := ev.Label(); label != "" {
			ve.AddProperty(ical.ComponentPropertyCategories, label)
		}
	}
	return cal.Serialize(), nil
}

// at places an "HH:MM" clock time on date's calendar day. Callers have
// already checked the time parses.
func at(date time.Time, clock string, loc *time.Location) time.Time {
	h, m, _ := timeline.ParseClock(clock)
	y, mo, d := date.In(loc).Date()
	return time.Date(y, mo, d, h, m, 0, 0, loc)
}
