package timeline

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"udhayam/internal/model"
)

var (
	ErrInvalidDay           = errors.New("day must be 1 or 2")
	ErrUnknownCategory      = errors.New("unknown category")
	ErrMissingDepartment    = errors.New("department is required for department events")
	ErrUnexpectedDepartment = errors.New("department is only valid for department events")
)

// FestDays is the number of festival days an event may be scheduled on.
const FestDays = 2

// Selection is the transient view state: which category, department and day
// the visitor is looking at.
type Selection struct {
	Category   model.Category `json:"category"`
	Department string         `json:"department,omitempty"`
	Day        int            `json:"day"`
}

// Validate checks the selection axes independently.
func (s Selection) Validate() error {
	if !s.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, s.Category)
	}
	if s.Day < 1 || s.Day > FestDays {
		return fmt.Errorf("%w: got %d", ErrInvalidDay, s.Day)
	}
	switch {
	case s.Category == model.CategoryDepartment && s.Department == "":
		return ErrMissingDepartment
	case s.Category != model.CategoryDepartment && s.Department != "":
		return ErrUnexpectedDepartment
	}
	return nil
}

// Key identifies the selection in caches and logs.
func (s Selection) Key() string {
	return string(s.Category) + "/" + s.Department + "/" + strconv.Itoa(s.Day)
}

// PositionedEvent is an event placed on a track.
type PositionedEvent struct {
	model.Event
	Track int `json:"track"`
	Position
}

// Track is one lane of non-overlapping events in chronological order.
type Track struct {
	Index  int               `json:"index"`
	Events []PositionedEvent `json:"events"`
}

// Rejection records an event that was left out of the layout.
type Rejection struct {
	EventID string       `json:"id"`
	Name    string       `json:"name"`
	Errors  []FieldError `json:"errors"`
}

// View is the render-ready layout of one selection.
type View struct {
	Selection    Selection   `json:"selection"`
	Title        string      `json:"title"`
	Hours        []string    `json:"hours"`
	Tracks       []Track     `json:"tracks"`
	Empty        bool        `json:"empty"`
	EmptyMessage string      `json:"emptyMessage,omitempty"`
	Rejected     []Rejection `json:"rejected,omitempty"`

	byID map[string]PositionedEvent
}

// FilterDay returns the events scheduled on day, in input order.
func FilterDay(events []model.Event, day int) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if ev.Day == day {
			out = append(out, ev)
		}
	}
	return out
}

// BuildView lays out the events of sel.Day.
//
// Events on other days are ignored, events failing policy are reported in
// Rejected, and the rest are assigned to tracks and positioned. A day with
// nothing to show yields Empty with a message rather than an error.
func BuildView(sel Selection, title string, events []model.Event, policy Policy) View {
	v := View{
		Selection: sel,
		Title:     title,
		Hours:     TimeSlots(),
		Tracks:    []Track{},
		byID:      map[string]PositionedEvent{},
	}

	dayEvents := FilterDay(events, sel.Day)
	valid := make([]model.Event, 0, len(dayEvents))
	for _, ev := range dayEvents {
		if errs := policy.Check(ev); len(errs) > 0 {
			v.Rejected = append(v.Rejected, Rejection{EventID: ev.ID, Name: ev.Name, Errors: errs})
			continue
		}
		valid = append(valid, ev)
	}

	switch {
	case len(dayEvents) == 0:
		v.Empty = true
		v.EmptyMessage = fmt.Sprintf("No events scheduled for Day %d", sel.Day)
		return v
	case len(valid) == 0:
		v.Empty = true
		v.EmptyMessage = fmt.Sprintf("No valid events scheduled for Day %d", sel.Day)
		return v
	}

	for t, members := range AssignTracks(valid) {
		track := Track{Index: t, Events: make([]PositionedEvent, 0, len(members))}
		for _, ev := range members {
			pe := PositionedEvent{
				Event:    ev,
				Track:    t,
				Position: CalculateEventPosition(ev.StartTime, ev.EndTime),
			}
			track.Events = append(track.Events, pe)
			v.byID[ev.ID] = pe
		}
		v.Tracks = append(v.Tracks, track)
	}
	return v
}

// Lookup returns the positioned event with the given id for tooltip display.
func (v View) Lookup(id string) (PositionedEvent, bool) {
	pe, ok := v.byID[id]
	return pe, ok
}

// Len returns the number of positioned events.
func (v View) Len() int {
	return len(v.byID)
}

// Chronological flattens the tracks into start order, ties by end, for the
// single-column card layout.
func (v View) Chronological() []PositionedEvent {
	out := make([]PositionedEvent, 0, len(v.byID))
	for _, t := range v.Tracks {
		out = append(out, t.Events...)
	}
	slices.SortStableFunc(out, func(a, b PositionedEvent) int {
		if c := cmp.Compare(TimeToMinutes(a.StartTime), TimeToMinutes(b.StartTime)); c != 0 {
			return c
		}
		return cmp.Compare(TimeToMinutes(a.EndTime), TimeToMinutes(b.EndTime))
	})
	return out
}

// Tooltip is the hover card content for one event.
type Tooltip struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Venue       string `json:"venue"`
	TimeRange   string `json:"timeRange"`
	Duration    string `json:"duration"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description"`
}

// Tooltip formats the event for display.
func (p PositionedEvent) Tooltip() Tooltip {
	return Tooltip{
		ID:          p.ID,
		Name:        p.Name,
		Venue:       p.Venue,
		TimeRange:   FormatTime(p.StartTime) + " - " + FormatTime(p.EndTime),
		Duration:    CalculateDuration(p.StartTime, p.EndTime),
		Label:       p.Label(),
		Description: p.Description,
	}
}
