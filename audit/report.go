/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package audit

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// CSVColumns are the columns of the CSV export, in order.
var CSVColumns = []string{
	"id", "datetime", "date", "time", "endTime", "dateCreated", "type", "appointmentTypeID",
	"calendar", "calendarID", "firstName", "lastName", "email", "phone", "canceled", "scheduledBy",
}

// PreviewColumns are the columns printed when no CSV file is requested.
var PreviewColumns = []string{
	"datetime", "calendarID", "type", "firstName", "lastName", "email", "phone", "dateCreated", "id",
}

// Value returns the value of the column. Zero ids are rendered as empty strings.
func (r *Row) Value(column string) string {
	switch column {
	case "id":
		return formatID(r.ID)
	case "datetime":
		return r.Datetime
	case "date":
		return r.Date
	case "time":
		return r.Time
	case "endTime":
		return r.EndTime
	case "dateCreated":
		return r.DateCreated
	case "type":
		return r.Type
	case "appointmentTypeID":
		return formatID(r.AppointmentTypeID)
	case "calendar":
		return r.Calendar
	case "calendarID":
		return formatID(r.CalendarID)
	case "firstName":
		return r.FirstName
	case "lastName":
		return r.LastName
	case "email":
		return r.Email
	case "phone":
		return r.Phone
	case "canceled":
		return strconv.FormatBool(r.Canceled)
	case "scheduledBy":
		return r.ScheduledBy
	}
	return ""
}

func (r *Row) values(columns []string) []string {
	values := make([]string, 0, len(columns))
	for _, c := range columns {
		values = append(values, r.Value(c))
	}
	return values
}

func formatID(id int) string {
	if id == 0 {
		return ""
	}
	return strconv.Itoa(id)
}

// Summary counts the rows, the rows without email and phone, and the rows per calendar.
type Summary struct {
	Appointments   int
	MissingContact int
	ByCalendarID   map[int]int
}

// Summarize computes the Summary of rows.
func Summarize(rows []Row) Summary {
	s := Summary{Appointments: len(rows), ByCalendarID: make(map[int]int)}
	for i := range rows {
		if strings.TrimSpace(rows[i].Email) == "" && strings.TrimSpace(rows[i].Phone) == "" {
			s.MissingContact++
		}
		s.ByCalendarID[rows[i].CalendarID]++
	}
	return s
}

// String renders the summary as printed by the audit command.
// The per-calendar line is omitted when there are no rows.
func (s Summary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Appointments: %d\n", s.Appointments)
	fmt.Fprintf(&sb, "Missing email+phone: %d\n", s.MissingContact)
	if len(s.ByCalendarID) != 0 {
		ids := make([]int, 0, len(s.ByCalendarID))
		for id := range s.ByCalendarID {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		parts := make([]string, 0, len(ids))
		for _, id := range ids {
			parts = append(parts, fmt.Sprintf("%d:%d", id, s.ByCalendarID[id]))
		}
		fmt.Fprintf(&sb, "By calendarID: %s\n", strings.Join(parts, " "))
	}
	return sb.String()
}

// WriteCSV writes the header and all rows with CSVColumns.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVColumns); err != nil {
		return err
	}
	for i := range rows {
		if err := cw.Write(rows[i].values(CSVColumns)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the CSV export to path, replacing an existing file.
func WriteCSVFile(path string, rows []Row) (err error) {
	f, err := os.Create(path) //nolint:gosec // path is given by the operator
	if err != nil {
		return fmt.Errorf("create CSV file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close CSV file: %w", closeErr)
		}
	}()
	if err = WriteCSV(f, rows); err != nil {
		return fmt.Errorf("write CSV file: %w", err)
	}
	return nil
}

// WriteTSV writes a tab-separated preview with PreviewColumns.
func WriteTSV(w io.Writer, rows []Row) error {
	if _, err := fmt.Fprintln(w, strings.Join(PreviewColumns, "\t")); err != nil {
		return err
	}
	for i := range rows {
		if _, err := fmt.Fprintln(w, strings.Join(rows[i].values(PreviewColumns), "\t")); err != nil {
			return err
		}
	}
	return nil
}

// WriteTable writes the preview with PreviewColumns as a table.
func WriteTable(w io.Writer, rows []Row) error {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(toTableRow(PreviewColumns))
	for i := range rows {
		t.AppendRow(toTableRow(rows[i].values(PreviewColumns)))
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func toTableRow(values []string) table.Row {
	row := make(table.Row, 0, len(values))
	for _, v := range values {
		row = append(row, v)
	}
	return row
}

// Report prints the summary followed by the CSV confirmation, the table or the TSV preview, depending on opts.
func Report(w io.Writer, rows []Row, opts *Options) error {
	if _, err := io.WriteString(w, Summarize(rows).String()); err != nil {
		return err
	}
	switch {
	case opts.CSVPath != "":
		if err := WriteCSVFile(opts.CSVPath, rows); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "Wrote CSV: %s\n", opts.CSVPath)
		return err
	case opts.Table:
		return WriteTable(w, rows)
	default:
		return WriteTSV(w, rows)
	}
}
