// Package export serializes a selected day's events for download.
package export

import (
	"fmt"
	"io"
	"strings"

	"udhayam/internal/model"
	"udhayam/internal/timeline"
)

// CSVContentType is the MIME type served with CSV downloads.
const CSVContentType = "text/csv;charset=utf-8;"

// Table is a titled grid of text cells.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// Subject names what a download is about: the selection and, for department
// events, the department.
type Subject struct {
	Selection  timeline.Selection
	Department model.Department
}

// Title returns the heading used in exports and page titles.
func (s Subject) Title() string {
	day := s.Selection.Day
	switch s.Selection.Category {
	case model.CategoryDepartment:
		return fmt.Sprintf("%s - Day %d Schedule", s.Department.Name, day)
	case model.CategorySports:
		return fmt.Sprintf("Sports / NCC Events - Day %d Schedule", day)
	default:
		return fmt.Sprintf("Cultural Events - Day %d Schedule", day)
	}
}

// FileName returns the download name with the given extension ("csv", "ics").
func (s Subject) FileName(ext string) string {
	var code string
	switch s.Selection.Category {
	case model.CategoryDepartment:
		code = s.Department.ShortName
	case model.CategorySports:
		code = "Sports_NCC"
	default:
		code = "Cultural"
	}
	return fmt.Sprintf("%s_Day%d_Schedule.%s", code, s.Selection.Day, ext)
}

// Columns returns the CSV header for a category.
func Columns(cat model.Category) []string {
	cols := []string{"Event Name", "Start Time", "End Time", "Duration", "Venue"}
	switch cat {
	case model.CategoryDepartment:
		cols = append(cols, "Type")
	case model.CategorySports:
		cols = append(cols, "Category")
	}
	return append(cols, "Description")
}

// ScheduleTable builds the export table for the subject's day. Events are
// kept in catalog order; times are formatted the same way as on screen.
func ScheduleTable(s Subject, events []model.Event) Table {
	cat := s.Selection.Category
	t := Table{Title: s.Title(), Columns: Columns(cat)}
	for _, ev := range timeline.FilterDay(events, s.Selection.Day) {
		row := []string{
			ev.Name,
			timeline.FormatTime(ev.StartTime),
			timeline.FormatTime(ev.EndTime),
			timeline.CalculateDuration(ev.StartTime, ev.EndTime),
			ev.Venue,
		}
		switch cat {
		case model.CategoryDepartment:
			row = append(row, string(ev.Type))
		case model.CategorySports:
			row = append(row, ev.Category)
		}
		t.Rows = append(t.Rows, append(row, ev.Description))
	}
	return t
}

// WriteCSV writes t as a quoted title line, a blank line, the header and one
// line per row. Every field is quoted; embedded quotes are doubled.
func WriteCSV(w io.Writer, t Table) error {
	var b strings.Builder
	b.WriteString(quote(t.Title))
	b.WriteString("\n\n")
	writeRecord(&b, t.Columns)
	for _, row := range t.Rows {
		writeRecord(&b, row)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// CSV returns t rendered by WriteCSV.
func CSV(t Table) string {
	var b strings.Builder
	_ = WriteCSV(&b, t)
	return b.String()
}

func writeRecord(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quote(f))
	}
	b.WriteByte('\n')
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
