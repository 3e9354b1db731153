package timeline

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTimeToMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"09:00", 0},
		{"20:00", 660},
		{"14:30", 330},
		{"9:05", 5},
		{"08:00", -60},
		{" 10:15 ", 75},
		// malformed input degrades to the window opening
		{"", 0},
		{"1030", 0},
		{"10:30:00", 0},
		{"ab:cd", 0},
		{"10:", 0},
		{":30", 0},
		{"-1:30", 0},
		{"10:3x", 0},
	}
	for _, tt := range tests {
		if got := TimeToMinutes(tt.in); got != tt.want {
			t.Errorf("TimeToMinutes(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"09:00", "9 AM"},
		{"14:30", "2:30 PM"},
		{"00:00", "12 AM"},
		{"12:00", "12 PM"},
		{"12:05", "12:05 PM"},
		{"23:59", "11:59 PM"},
		{"11:07", "11:07 AM"},
		{"bad", "bad"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.in); got != tt.want {
			t.Errorf("FormatTime(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCalculateDuration(t *testing.T) {
	tests := []struct {
		start, end string
		want       string
	}{
		{"09:00", "11:00", "2h"},
		{"09:00", "09:45", "45 min"},
		{"09:15", "10:30", "1h 15m"},
		{"13:30", "15:30", "2h"},
		{"11:30", "13:00", "1h 30m"},
		{"10:00", "10:00", "0 min"},
		{"11:00", "10:00", "0 min"},
		{"xx", "10:00", "0 min"},
	}
	for _, tt := range tests {
		if got := CalculateDuration(tt.start, tt.end); got != tt.want {
			t.Errorf("CalculateDuration(%q, %q) = %q, want %q", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestParseClockAndSlots(t *testing.T) {
	Convey("ParseClock", t, func() {
		h, m, ok := ParseClock("16:45")
		So(ok, ShouldBeTrue)
		So(h, ShouldEqual, 16)
		So(m, ShouldEqual, 45)

		_, _, ok = ParseClock("16.45")
		So(ok, ShouldBeFalse)

		Convey("accepts out-of-range numbers, range is a policy concern", func() {
			h, m, ok := ParseClock("25:75")
			So(ok, ShouldBeTrue)
			So(h, ShouldEqual, 25)
			So(m, ShouldEqual, 75)
		})
	})

	Convey("TimeSlots spans the whole window hour by hour", t, func() {
		slots := TimeSlots()
		So(slots, ShouldHaveLength, 12)
		So(slots[0], ShouldEqual, "09:00")
		So(slots[len(slots)-1], ShouldEqual, "20:00")
	})
}
