/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package acuity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func salonTime(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := time.ParseInLocation("2006-01-02 15:04", s, SalonLocation())
	require.NoError(t, err)
	return tm
}

func TestParseDatetime(t *testing.T) {
	tm, err := ParseDatetime("2025-03-14T14:00:00-0400")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC), tm.UTC())

	tm, err = ParseDatetime("2025-03-14T18:00:00Z")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC), tm.UTC())

	_, err = ParseDatetime("tomorrow")
	require.Error(t, err)
}

func TestFormatTime(t *testing.T) {
	// 22:00 UTC is 5 PM in New York in winter.
	require.Equal(t, "5:00 PM", FormatTime(time.Date(2025, 1, 10, 22, 0, 0, 0, time.UTC)))
	require.Equal(t, "9:30 AM", FormatTime(salonTime(t, "2025-07-01 09:30")))
	require.Equal(t, "12:05 PM", FormatTime(salonTime(t, "2025-07-01 12:05")))
}

func TestRelativeDay(t *testing.T) {
	now := salonTime(t, "2025-03-10 23:30") // Monday
	tests := []struct {
		slot string
		want string
	}{
		{"2025-03-10 23:45", "Today"},
		{"2025-03-11 08:00", "Tomorrow"},
		{"2025-03-13 10:00", "Thursday"},
		{"2025-03-17 10:00", "Monday"},
		{"2025-03-18 10:00", "Mar 18"},
		{"2025-04-02 10:00", "Apr 2"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, RelativeDay(salonTime(t, tt.slot), now), "slot %s", tt.slot)
	}
}

func TestRelativeDay_UsesSalonZone(t *testing.T) {
	// 03:30 UTC on March 11 is still March 10 in New York.
	now := time.Date(2025, 3, 11, 3, 30, 0, 0, time.UTC)
	require.Equal(t, "Today", RelativeDay(salonTime(t, "2025-03-10 23:50"), now))
	require.Equal(t, "Tomorrow", RelativeDay(salonTime(t, "2025-03-11 09:00"), now))
}

func TestFormatNextSlot(t *testing.T) {
	now := salonTime(t, "2025-03-13 08:00")
	slot, err := FormatNextSlot("2025-03-14T14:00:00-0400", now)
	require.NoError(t, err)
	require.Equal(t, NextSlot{
		Datetime:     "2025-03-14T14:00:00-0400",
		DisplayText:  "Tomorrow at 2:00 PM",
		RelativeText: "Tomorrow",
	}, slot)

	_, err = FormatNextSlot("not a date", now)
	require.Error(t, err)
}

func TestUpcomingDates(t *testing.T) {
	now := salonTime(t, "2025-02-27 20:00")
	require.Equal(t, []string{"2025-02-27", "2025-02-28", "2025-03-01"}, UpcomingDates(3, now))
	require.Empty(t, UpcomingDates(0, now))

	// Crossing the DST switch does not repeat or skip a date.
	now = salonTime(t, "2025-03-08 23:30")
	require.Equal(t, []string{"2025-03-08", "2025-03-09", "2025-03-10"}, UpcomingDates(3, now))
}

func TestCurrentAndNextMonth(t *testing.T) {
	now := time.Date(2025, 1, 1, 2, 0, 0, 0, time.UTC) // Dec 31 in New York
	require.Equal(t, "2024-12", CurrentMonth(now))
	require.Equal(t, "2025-01", NextMonth(now))
	require.Equal(t, "2025-04", NextMonth(salonTime(t, "2025-03-31 10:00")))
}
