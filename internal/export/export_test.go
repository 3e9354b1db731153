package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	. "github.com/smartystreets/goconvey/convey"

	"udhayam/internal/model"
	"udhayam/internal/timeline"
)

var aero = model.Department{ID: "aero", Name: "Aeronautical Engineering", ShortName: "AERO"}

func deptSubject(day int) Subject {
	return Subject{
		Selection:  timeline.Selection{Category: model.CategoryDepartment, Department: "aero", Day: day},
		Department: aero,
	}
}

func TestCSV(t *testing.T) {
	Convey("Given a single department event", t, func() {
		events := []model.Event{{
			ID: "aero-1", Name: "Paper Presentation", Venue: "E104",
			StartTime: "09:00", EndTime: "11:00", Day: 1,
			Type: model.TypeTechnical, Description: "Present your research papers",
		}}

		out := CSV(ScheduleTable(deptSubject(1), events))

		Convey("the document has title, blank line, header and one row", func() {
			So(out, ShouldEqual,
				`"Aeronautical Engineering - Day 1 Schedule"`+"\n"+
					"\n"+
					`"Event Name","Start Time","End Time","Duration","Venue","Type","Description"`+"\n"+
					`"Paper Presentation","9 AM","11 AM","2h","E104","Technical","Present your research papers"`+"\n")
		})

		Convey("another day exports only the header", func() {
			lines := strings.Split(strings.TrimSuffix(CSV(ScheduleTable(deptSubject(2), events)), "\n"), "\n")
			So(lines, ShouldHaveLength, 3)
		})
	})

	Convey("Titles, columns and filenames depend on the category", t, func() {
		sports := Subject{Selection: timeline.Selection{Category: model.CategorySports, Day: 2}}
		cultural := Subject{Selection: timeline.Selection{Category: model.CategoryCultural, Day: 1}}

		So(deptSubject(1).FileName("csv"), ShouldEqual, "AERO_Day1_Schedule.csv")
		So(sports.FileName("csv"), ShouldEqual, "Sports_NCC_Day2_Schedule.csv")
		So(cultural.FileName("ics"), ShouldEqual, "Cultural_Day1_Schedule.ics")

		So(sports.Title(), ShouldEqual, "Sports / NCC Events - Day 2 Schedule")
		So(cultural.Title(), ShouldEqual, "Cultural Events - Day 1 Schedule")

		So(Columns(model.CategorySports), ShouldContain, "Category")
		So(Columns(model.CategoryCultural), ShouldHaveLength, 6)
	})

	Convey("Sports rows carry the category and quotes are doubled", t, func() {
		sports := Subject{Selection: timeline.Selection{Category: model.CategorySports, Day: 1}}
		tab := ScheduleTable(sports, []model.Event{{
			Name: `Kho "Kho"`, Venue: "Open Ground", StartTime: "09:00", EndTime: "10:15",
			Day: 1, Category: "M", Description: "d",
		}})
		So(tab.Rows, ShouldHaveLength, 1)

		var buf bytes.Buffer
		So(WriteCSV(&buf, tab), ShouldBeNil)
		So(buf.String(), ShouldEndWith, `"Kho ""Kho""","9 AM","10:15 AM","1h 15m","Open Ground","M","d"`+"\n")
	})
}

func TestICS(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	opts := ICSOptions{
		FestStart: time.Date(2026, 3, 6, 9, 0, 0, 0, ist),
		FestDays:  2,
		Policy:    timeline.PolicyLenient,
		Now:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	Convey("Given events on both days", t, func() {
		events := []model.Event{
			{ID: "aero-1", Name: "Paper Presentation", Venue: "E104", StartTime: "09:00", EndTime: "11:00", Day: 1, Type: model.TypeTechnical},
			{ID: "aero-4", Name: "Brain Oh Bunch", Venue: "E102", StartTime: "10:30", EndTime: "12:30", Day: 2},
			{ID: "broken", Name: "Broken", StartTime: "soon", EndTime: "12:30", Day: 2},
		}

		out, err := ICS(deptSubject(2), events, opts)
		So(err, ShouldBeNil)

		cal, err := ical.ParseCalendar(strings.NewReader(out))
		So(err, ShouldBeNil)

		Convey("only valid events of the day are exported", func() {
			So(cal.Events(), ShouldHaveLength, 1)
			ve := cal.Events()[0]
			So(ve.GetProperty(ical.ComponentPropertySummary).Value, ShouldEqual, "Brain Oh Bunch")
			So(ve.GetProperty(ical.ComponentPropertyLocation).Value, ShouldEqual, "E102")
		})

		Convey("times are anchored on the second festival day", func() {
			ve := cal.Events()[0]
			// 10:30 IST on 2026-03-07 is 05:00 UTC.
			So(ve.GetProperty(ical.ComponentPropertyDtStart).Value, ShouldEqual, "20260307T050000Z")
			So(ve.GetProperty(ical.ComponentPropertyDtEnd).Value, ShouldEqual, "20260307T070000Z")
		})
	})

	Convey("A day outside the festival is an error", t, func() {
		_, err := ICS(deptSubject(3), nil, opts)
		So(err, ShouldNotBeNil)
	})
}
