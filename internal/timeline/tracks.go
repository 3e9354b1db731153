package timeline

import (
	"cmp"
	"slices"

	"udhayam/internal/model"
)

// Span is a half-open interval in minutes. Two spans that only touch
// (a.End == b.Start) do not overlap.
type Span struct {
	Start int
	End   int
}

// Partition assigns each span to a track so that no two spans on the same
// track overlap, using the smallest possible number of tracks.
//
// Spans are visited by ascending start, ties broken by ascending end; spans
// equal on both keep their input order (stable sort). Each span goes to the
// first track, in creation order, whose last member ends at or before the
// span's start; otherwise a new track is opened. The result lists input
// indexes per track in placement order.
func Partition(spans []Span) [][]int {
	order := make([]int, len(spans))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		if c := cmp.Compare(spans[a].Start, spans[b].Start); c != 0 {
			return c
		}
		return cmp.Compare(spans[a].End, spans[b].End)
	})

	var (
		tracks  [][]int
		lastEnd []int
	)
	for _, idx := range order {
		placed := false
		for t := range tracks {
			if lastEnd[t] <= spans[idx].Start {
				tracks[t] = append(tracks[t], idx)
				lastEnd[t] = spans[idx].End
				placed = true
				break
			}
		}
		if !placed {
			tracks = append(tracks, []int{idx})
			lastEnd = append(lastEnd, spans[idx].End)
		}
	}
	return tracks
}

// AssignTracks partitions events into non-overlapping tracks using
// window-relative minutes from TimeToMinutes. Callers are expected to have
// dropped events with unparseable times already.
func AssignTracks(events []model.Event) [][]model.Event {
	spans := make([]Span, len(events))
	for i, ev := range events {
		spans[i] = Span{Start: TimeToMinutes(ev.StartTime), End: TimeToMinutes(ev.EndTime)}
	}

	parts := Partition(spans)
	out := make([][]model.Event, len(parts))
	for t, idxs := range parts {
		out[t] = make([]model.Event, len(idxs))
		for j, idx := range idxs {
			out[t][j] = events[idx]
		}
	}
	return out
}

// MaxOverlap returns the largest number of spans covering a single instant.
// Empty spans are ignored. When every span has positive length, Partition
// produces exactly this many tracks.
func MaxOverlap(spans []Span) int {
	type edge struct {
		at    int
		delta int
	}
	edges := make([]edge, 0, 2*len(spans))
	for _, s := range spans {
		if s.End <= s.Start {
			continue
		}
		edges = append(edges, edge{s.Start, 1}, edge{s.End, -1})
	}
	// Ends sort before starts at the same instant: touching spans don't overlap.
	slices.SortFunc(edges, func(a, b edge) int {
		if c := cmp.Compare(a.at, b.at); c != 0 {
			return c
		}
		return cmp.Compare(a.delta, b.delta)
	})

	depth, best := 0, 0
	for _, e := range edges {
		depth += e.delta
		best = max(best, depth)
	}
	return best
}
