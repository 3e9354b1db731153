package timeline

// Position is a horizontal placement in percent of the day window.
type Position struct {
	Left  float64 `json:"left"`
	Width float64 `json:"width"`
}

// CalculateEventPosition maps a start/end pair onto the day window.
//
// Both ends are clamped into [0, SpanMinutes] independently and then ordered,
// so swapped input yields the same placement and width is never negative.
// Width is raised to MinWidthPercent and left is pulled back so the block
// never overflows the right edge.
func CalculateEventPosition(start, end string) Position {
	s := clamp(TimeToMinutes(start), 0, SpanMinutes)
	e := clamp(TimeToMinutes(end), 0, SpanMinutes)
	if e < s {
		s, e = e, s
	}

	left := float64(s) / SpanMinutes * 100
	width := float64(e-s) / SpanMinutes * 100

	width = clampFloat(width, MinWidthPercent, 100)
	left = clampFloat(left, 0, 100-width)

	return Position{Left: left, Width: width}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

func clampFloat(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
