package timeline

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"udhayam/internal/model"
)

func dayEvent(id, start, end string, day int) model.Event {
	e := ev(id, start, end)
	e.Day = day
	e.Venue = "Seminar Hall"
	e.Type = model.TypeTechnical
	return e
}

func TestBuildView(t *testing.T) {
	sel := Selection{Category: model.CategoryDepartment, Department: "aero", Day: 1}

	Convey("Given a department's events over both days", t, func() {
		events := []model.Event{
			dayEvent("aero-1", "09:00", "11:00", 1),
			dayEvent("aero-2", "10:30", "12:00", 1),
			dayEvent("aero-3", "09:00", "09:30", 1),
			dayEvent("aero-4", "10:30", "12:30", 2),
		}

		v := BuildView(sel, "Aeronautical Engineering - Day 1 Schedule", events, PolicyLenient)

		Convey("only the selected day is laid out", func() {
			So(v.Empty, ShouldBeFalse)
			So(v.Len(), ShouldEqual, 3)
			_, ok := v.Lookup("aero-4")
			So(ok, ShouldBeFalse)
		})

		Convey("tracks follow greedy assignment", func() {
			So(v.Tracks, ShouldHaveLength, 2)
			So(v.Tracks[0].Events[0].ID, ShouldEqual, "aero-3")
			So(v.Tracks[0].Events[1].ID, ShouldEqual, "aero-2")
			So(v.Tracks[1].Events[0].ID, ShouldEqual, "aero-1")
			So(v.Tracks[1].Events[0].Track, ShouldEqual, 1)
		})

		Convey("positions are attached", func() {
			pe, ok := v.Lookup("aero-2")
			So(ok, ShouldBeTrue)
			So(pe.Position, ShouldResemble, CalculateEventPosition("10:30", "12:00"))
		})

		Convey("the chronological list orders by start then end", func() {
			var got []string
			for _, pe := range v.Chronological() {
				got = append(got, pe.ID)
			}
			So(got, ShouldResemble, []string{"aero-3", "aero-1", "aero-2"})
		})

		Convey("the tooltip carries formatted strings", func() {
			pe, _ := v.Lookup("aero-1")
			tip := pe.Tooltip()
			So(tip.TimeRange, ShouldEqual, "9 AM - 11 AM")
			So(tip.Duration, ShouldEqual, "2h")
			So(tip.Label, ShouldEqual, "Technical")
			So(tip.Venue, ShouldEqual, "Seminar Hall")
		})

		Convey("the axis labels cover the window", func() {
			So(v.Hours, ShouldResemble, TimeSlots())
		})
	})

	Convey("Given a day without events", t, func() {
		v := BuildView(Selection{Category: model.CategoryCultural, Day: 2}, "Cultural Events - Day 2 Schedule",
			[]model.Event{dayEvent("c1", "09:00", "10:00", 1)}, PolicyLenient)

		So(v.Empty, ShouldBeTrue)
		So(v.EmptyMessage, ShouldEqual, "No events scheduled for Day 2")
		So(v.Tracks, ShouldBeEmpty)
	})

	Convey("Given events with unusable times", t, func() {
		events := []model.Event{
			dayEvent("ok", "09:00", "10:00", 1),
			dayEvent("nocolon", "0900", "10:00", 1),
			dayEvent("blank", "", "", 1),
			dayEvent("reversed", "12:00", "11:00", 1),
		}

		Convey("lenient drops only unparseable records and keeps the rest", func() {
			v := BuildView(sel, "t", events, PolicyLenient)
			So(v.Len(), ShouldEqual, 2)
			So(v.Rejected, ShouldHaveLength, 2)
			So(v.Rejected[0].EventID, ShouldEqual, "nocolon")
			So(v.Rejected[1].Errors, ShouldHaveLength, 2)

			pe, ok := v.Lookup("reversed")
			So(ok, ShouldBeTrue)
			So(pe.Position, ShouldResemble, CalculateEventPosition("11:00", "12:00"))
		})

		Convey("strict drops reversed intervals too", func() {
			v := BuildView(sel, "t", events, PolicyStrict)
			So(v.Len(), ShouldEqual, 1)
			So(v.Rejected, ShouldHaveLength, 3)
		})

		Convey("a day of only broken records says so", func() {
			v := BuildView(sel, "t", events[1:3], PolicyLenient)
			So(v.Empty, ShouldBeTrue)
			So(v.EmptyMessage, ShouldEqual, "No valid events scheduled for Day 1")
		})
	})
}

func TestSelectionValidate(t *testing.T) {
	Convey("Selection validation", t, func() {
		So(Selection{Category: model.CategoryDepartment, Department: "cse", Day: 1}.Validate(), ShouldBeNil)
		So(Selection{Category: model.CategorySports, Day: 2}.Validate(), ShouldBeNil)

		err := Selection{Category: "music", Day: 1}.Validate()
		So(errors.Is(err, ErrUnknownCategory), ShouldBeTrue)

		err = Selection{Category: model.CategoryCultural, Day: 3}.Validate()
		So(errors.Is(err, ErrInvalidDay), ShouldBeTrue)

		err = Selection{Category: model.CategoryDepartment, Day: 1}.Validate()
		So(errors.Is(err, ErrMissingDepartment), ShouldBeTrue)

		err = Selection{Category: model.CategorySports, Department: "cse", Day: 1}.Validate()
		So(errors.Is(err, ErrUnexpectedDepartment), ShouldBeTrue)
	})
}

func TestPolicy(t *testing.T) {
	Convey("ParsePolicy", t, func() {
		p, err := ParsePolicy("")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, PolicyLenient)

		p, err = ParsePolicy(" STRICT ")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, PolicyStrict)

		_, err = ParsePolicy("loose")
		So(err, ShouldNotBeNil)
	})

	Convey("Strict Check reports field diagnostics", t, func() {
		So(PolicyStrict.Check(ev("a", "09:00", "10:00")), ShouldBeEmpty)

		errs := PolicyStrict.Check(ev("a", "25:00", "10:61"))
		So(errs, ShouldResemble, []FieldError{
			{"startTime", "out of range"},
			{"endTime", "out of range"},
		})

		errs = PolicyStrict.Check(ev("a", "10:00", "10:00"))
		So(errs, ShouldHaveLength, 1)
		So(errs[0].Error(), ShouldEqual, "endTime: must be after startTime")

		errs = PolicyLenient.Check(ev("a", "", "x"))
		So(errs, ShouldResemble, []FieldError{
			{"startTime", "required"},
			{"endTime", "malformed time, expected HH:MM"},
		})
	})
}
