/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package audit

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testRows() []Row {
	return []Row{
		{
			ID: 11, Datetime: "2025-03-14T10:00:00-0400", Date: "March 14, 2025", Time: "10:00am", EndTime: "11:00am",
			DateCreated: "March 1, 2025", Type: "Women's Cut", AppointmentTypeID: 42, Calendar: "Alex", CalendarID: 7,
			FirstName: "Jane", LastName: "Doe, Jr.", Email: "jane@example.com", ScheduledBy: "admin",
		},
		{ID: 12, Datetime: "2025-03-15T10:00:00-0400", Type: "Color", CalendarID: 7, Phone: "555-0100", Canceled: true},
		{ID: 13, Datetime: "2025-03-16T10:00:00-0400", Type: "Blowout", CalendarID: 3, Email: " "},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(testRows())
	require.Equal(t, 3, s.Appointments)
	require.Equal(t, 1, s.MissingContact)
	require.Equal(t, "Appointments: 3\nMissing email+phone: 1\nBy calendarID: 3:1 7:2\n", s.String())

	require.Equal(t, "Appointments: 0\nMissing email+phone: 0\n", Summarize(nil).String())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testRows()))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	require.Equal(t, "id,datetime,date,time,endTime,dateCreated,type,appointmentTypeID,calendar,calendarID,"+
		"firstName,lastName,email,phone,canceled,scheduledBy", lines[0])
	require.Equal(t, `11,2025-03-14T10:00:00-0400,"March 14, 2025",10:00am,11:00am,"March 1, 2025",Women's Cut,42,`+
		`Alex,7,Jane,"Doe, Jr.",jane@example.com,,false,admin`, lines[1])
	require.Equal(t, "12,2025-03-15T10:00:00-0400,,,,,Color,,,7,,,,555-0100,true,", lines[2])
}

func TestWriteTSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, testRows()[:1]))
	require.Equal(t,
		"datetime\tcalendarID\ttype\tfirstName\tlastName\temail\tphone\tdateCreated\tid\n"+
			"2025-03-14T10:00:00-0400\t7\tWomen's Cut\tJane\tDoe, Jr.\tjane@example.com\t\tMarch 1, 2025\t11\n",
		buf.String())
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, testRows()))
	out := buf.String()
	require.Contains(t, out, "DATETIME")
	require.Contains(t, out, "Women's Cut")
	require.Contains(t, out, "555-0100")
	require.True(t, strings.HasPrefix(out, "╭"))
}

func TestReport(t *testing.T) {
	t.Run("csv file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "audit.csv")
		var out bytes.Buffer
		require.NoError(t, Report(&out, testRows(), &Options{CSVPath: path}))
		require.True(t, strings.HasPrefix(out.String(), "Appointments: 3\n"))
		require.True(t, strings.HasSuffix(out.String(), "Wrote CSV: "+path+"\n"))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var want bytes.Buffer
		require.NoError(t, WriteCSV(&want, testRows()))
		require.Equal(t, want.String(), string(data))
	})

	t.Run("tsv preview", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, Report(&out, testRows(), &Options{}))
		require.Contains(t, out.String(), "By calendarID: 3:1 7:2\ndatetime\tcalendarID\t")
	})

	t.Run("csv file error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "audit.csv")
		require.ErrorContains(t, Report(&bytes.Buffer{}, testRows(), &Options{CSVPath: path}), "create CSV file")
	})
}
