package render

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"udhayam/internal/model"
	"udhayam/internal/timeline"
)

func wellFormed(doc string) error {
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func TestSVG(t *testing.T) {
	sel := timeline.Selection{Category: model.CategoryCultural, Day: 1}

	Convey("Given a day with overlapping events", t, func() {
		events := []model.Event{
			{ID: "c1", Name: "Dance & Music", Venue: "Auditorium", StartTime: "09:00", EndTime: "20:00", Day: 1},
			{ID: "c2", Name: "<Mime>", StartTime: "10:00", EndTime: "11:00", Day: 1, Type: model.TypeQuiz},
		}
		v := timeline.BuildView(sel, `Cultural "Day" 1`, events, timeline.PolicyLenient)
		doc := SVG(v, Options{})

		Convey("the document is well-formed XML", func() {
			So(wellFormed(doc), ShouldBeNil)
			So(doc, ShouldContainSubstring, "Cultural &quot;Day&quot; 1")
			So(doc, ShouldContainSubstring, "&lt;Mime&gt;")
		})

		Convey("one row per track and one group per event", func() {
			So(strings.Count(doc, "class=\"track\""), ShouldEqual, 2)
			So(strings.Count(doc, "data-event-id="), ShouldEqual, 2)
		})

		Convey("rect geometry follows the percentages", func() {
			o := DefaultOptions()
			axisW := o.Width - o.LabelWidth - 20
			So(doc, ShouldContainSubstring, fmt.Sprintf(`width="%.2f"`, float64(axisW)))
			So(doc, ShouldContainSubstring, "#d97706")
		})

		Convey("the hour axis is labelled", func() {
			So(doc, ShouldContainSubstring, ">9 AM<")
			So(doc, ShouldContainSubstring, ">8 PM<")
		})
	})

	Convey("An empty view renders its message", t, func() {
		v := timeline.BuildView(sel, "Cultural Events - Day 1 Schedule", nil, timeline.PolicyLenient)
		doc := SVG(v, DefaultOptions())
		So(wellFormed(doc), ShouldBeNil)
		So(doc, ShouldContainSubstring, "No events scheduled for Day 1")
		So(doc, ShouldNotContainSubstring, "<rect x=")
	})
}
