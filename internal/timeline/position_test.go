package timeline

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const epsilon = 1e-9

// quarterHours returns "09:00", "09:15", ..., "20:00".
func quarterHours() []string {
	var out []string
	for m := 0; m <= SpanMinutes; m += 15 {
		out = append(out, fmt.Sprintf("%02d:%02d", OpenHour+m/60, m%60))
	}
	return out
}

func TestCalculateEventPosition(t *testing.T) {
	Convey("Given events inside the day window", t, func() {
		Convey("a two hour slot at opening spans 120/660 of the axis", func() {
			p := CalculateEventPosition("09:00", "11:00")
			So(p.Left, ShouldAlmostEqual, 0, epsilon)
			So(p.Width, ShouldAlmostEqual, 120.0/660*100, epsilon)
		})

		Convey("an afternoon slot starts at its proportional offset", func() {
			p := CalculateEventPosition("14:30", "16:00")
			So(p.Left, ShouldAlmostEqual, 330.0/660*100, epsilon)
			So(p.Width, ShouldAlmostEqual, 90.0/660*100, epsilon)
		})

		Convey("the full window maps to the full axis", func() {
			p := CalculateEventPosition("09:00", "20:00")
			So(p.Left, ShouldEqual, 0)
			So(p.Width, ShouldEqual, 100)
		})

		Convey("every quarter-hour pair stays within bounds", func() {
			slots := quarterHours()
			for i, start := range slots {
				for _, end := range slots[i+1:] {
					p := CalculateEventPosition(start, end)
					So(p.Left, ShouldBeGreaterThanOrEqualTo, 0)
					So(p.Left+p.Width, ShouldBeLessThanOrEqualTo, 100+epsilon)
					So(p.Width, ShouldBeGreaterThanOrEqualTo, MinWidthPercent)
				}
			}
		})
	})

	Convey("Given degenerate input", t, func() {
		Convey("swapped ends give the same placement", func() {
			pairs := [][2]string{
				{"09:00", "11:00"},
				{"10:30", "12:00"},
				{"07:00", "10:00"},
				{"18:00", "22:00"},
				{"09:00", "09:05"},
			}
			for _, pr := range pairs {
				So(CalculateEventPosition(pr[1], pr[0]), ShouldResemble, CalculateEventPosition(pr[0], pr[1]))
			}
		})

		Convey("short events are widened to the visibility floor", func() {
			p := CalculateEventPosition("12:00", "12:05")
			So(p.Width, ShouldEqual, MinWidthPercent)
		})

		Convey("a block at closing time is pulled back inside the axis", func() {
			p := CalculateEventPosition("20:00", "20:00")
			So(p.Width, ShouldEqual, MinWidthPercent)
			So(p.Left, ShouldEqual, 100-MinWidthPercent)
		})

		Convey("times outside the window are clamped", func() {
			p := CalculateEventPosition("07:00", "23:00")
			So(p.Left, ShouldEqual, 0)
			So(p.Width, ShouldEqual, 100)
		})

		Convey("malformed times collapse to the window start", func() {
			p := CalculateEventPosition("soon", "later")
			So(p.Left, ShouldEqual, 0)
			So(p.Width, ShouldEqual, MinWidthPercent)
		})

		Convey("the mapping is deterministic", func() {
			So(CalculateEventPosition("13:10", "15:20"), ShouldResemble, CalculateEventPosition("13:10", "15:20"))
		})
	})
}
