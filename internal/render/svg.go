// Package render draws a laid-out schedule day as a standalone SVG document.
package render

import (
	"fmt"
	"strings"

	"udhayam/internal/model"
	"udhayam/internal/timeline"
)

// Options controls the drawing geometry.
type Options struct {
	Width       int // total width in px
	LabelWidth  int // left gutter
	HeaderH     int // title + hour labels
	TrackHeight int
	TrackGap    int
	Font        string
	Background  string
	Accent      string // fill for events; department color when set
}

// DefaultOptions returns the poster layout used by the web UI and capture.
func DefaultOptions() Options {
	return Options{
		Width:       1200,
		LabelWidth:  90,
		HeaderH:     90,
		TrackHeight: 56,
		TrackGap:    10,
		Font:        "Inter, Helvetica, Arial, sans-serif",
		Background:  "#0b1020",
		Accent:      "#8b5cf6",
	}
}

func (o Options) normalize() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.LabelWidth <= 0 {
		o.LabelWidth = d.LabelWidth
	}
	if o.HeaderH <= 0 {
		o.HeaderH = d.HeaderH
	}
	if o.TrackHeight <= 0 {
		o.TrackHeight = d.TrackHeight
	}
	if o.TrackGap < 0 {
		o.TrackGap = d.TrackGap
	}
	if o.Font == "" {
		o.Font = d.Font
	}
	if o.Background == "" {
		o.Background = d.Background
	}
	if o.Accent == "" {
		o.Accent = d.Accent
	}
	return o
}

// SVG renders v. Each track becomes a row; each event a rect whose x and
// width follow the event's left/width percentages of the axis.
func SVG(v timeline.View, opts Options) string {
	o := opts.normalize()

	axisX := o.LabelWidth
	axisW := o.Width - o.LabelWidth - 20
	rows := len(v.Tracks)
	if rows == 0 {
		rows = 1
	}
	height := o.HeaderH + rows*(o.TrackHeight+o.TrackGap) + 20

	var svg strings.Builder
	svg.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg" data-ready="true">
<rect width="100%%" height="100%%" fill="%s"/>
<defs>
<style>
.title { font-family: %s; font-size: 22px; font-weight: bold; fill: #ffffff; }
.hour { font-family: %s; font-size: 12px; fill: #9ca3af; }
.track { font-family: %s; font-size: 12px; fill: #6b7280; }
.name { font-family: %s; font-size: 13px; font-weight: 600; fill: #ffffff; }
.meta { font-family: %s; font-size: 11px; fill: #e5e7eb; }
.empty { font-family: %s; font-size: 16px; fill: #9ca3af; }
</style>
</defs>
`, o.Width, height, o.Width, height, o.Background,
		o.Font, o.Font, o.Font, o.Font, o.Font, o.Font))

	svg.WriteString(fmt.Sprintf(`<text x="%d" y="32" class="title">%s</text>`+"\n", axisX, escapeXML(v.Title)))

	// Hour grid
	gridTop := o.HeaderH - 20
	gridBottom := height - 20
	last := len(v.Hours) - 1
	for i, h := range v.Hours {
		x := axisX
		if last > 0 {
			x = axisX + axisW*i/last
		}
		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" text-anchor="middle" class="hour">%s</text>`+"\n",
			x, gridTop-6, escapeXML(timeline.FormatTime(h))))
		svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#1f2937" stroke-width="1"/>`+"\n",
			x, gridTop, x, gridBottom))
	}

	if v.Empty {
		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" text-anchor="middle" class="empty">%s</text>`+"\n",
			axisX+axisW/2, o.HeaderH+o.TrackHeight/2, escapeXML(v.EmptyMessage)))
		svg.WriteString("</svg>\n")
		return svg.String()
	}

	for _, track := range v.Tracks {
		y := o.HeaderH + track.Index*(o.TrackHeight+o.TrackGap)
		svg.WriteString(fmt.Sprintf(`<text x="10" y="%d" class="track">Track %d</text>`+"\n",
			y+o.TrackHeight/2+4, track.Index+1))

		for _, pe := range track.Events {
			x := float64(axisX) + pe.Left/100*float64(axisW)
			w := pe.Width / 100 * float64(axisW)
			svg.WriteString(fmt.Sprintf(`<g data-event-id="%s">`+"\n", escapeXML(pe.ID)))
			svg.WriteString(fmt.Sprintf(`<rect x="%.2f" y="%d" width="%.2f" height="%d" rx="6" fill="%s" fill-opacity="0.85"/>`+"\n",
				x, y, w, o.TrackHeight, fillFor(pe.Event, o.Accent)))
			svg.WriteString(fmt.Sprintf(`<title>%s</title>`+"\n", escapeXML(tooltipText(pe.Tooltip()))))
			svg.WriteString(fmt.Sprintf(`<text x="%.2f" y="%d" class="name">%s</text>`+"\n",
				x+6, y+20, escapeXML(pe.Name)))
			svg.WriteString(fmt.Sprintf(`<text x="%.2f" y="%d" class="meta">%s</text>`+"\n",
				x+6, y+38, escapeXML(timeline.FormatTime(pe.StartTime)+" - "+timeline.FormatTime(pe.EndTime))))
			svg.WriteString("</g>\n")
		}
	}

	svg.WriteString("</svg>\n")
	return svg.String()
}

func tooltipText(t timeline.Tooltip) string {
	parts := []string{t.Name, t.TimeRange + " (" + t.Duration + ")"}
	if t.Venue != "" {
		parts = append(parts, t.Venue)
	}
	if t.Label != "" {
		parts = append(parts, t.Label)
	}
	return strings.Join(parts, " | ")
}

// fillFor colours department events by type.
func fillFor(ev model.Event, accent string) string {
	switch ev.Type {
	case model.TypeTechnical:
		return "#2563eb"
	case model.TypeNonTechnical:
		return "#db2777"
	case model.TypeWorkshop:
		return "#059669"
	case model.TypeQuiz:
		return "#d97706"
	case model.TypeSeminar:
		return "#7c3aed"
	}
	return accent
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
