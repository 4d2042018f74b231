/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package acuity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeAvailability struct {
	dates    map[string][]AvailabilityDate
	times    map[string][]TimeSlot
	datesErr error
	calls    []string
}

func (f *fakeAvailability) AvailableDates(_ context.Context, _, _ int, month string) ([]AvailabilityDate, error) {
	f.calls = append(f.calls, "dates:"+month)
	if f.datesErr != nil {
		return nil, f.datesErr
	}
	return f.dates[month], nil
}

func (f *fakeAvailability) AvailableTimes(_ context.Context, _, _ int, date string) ([]TimeSlot, error) {
	f.calls = append(f.calls, "times:"+date)
	return f.times[date], nil
}

func TestDayAvailability(t *testing.T) {
	fetcher := &fakeAvailability{times: map[string][]TimeSlot{
		"2025-03-14": {{Time: "2025-03-14T09:00:00-0400"}, {Time: "2025-03-14T14:30:00-0400"}},
	}}
	res, err := DayAvailability(context.Background(), fetcher, 7, 42, "2025-03-14")
	require.NoError(t, err)
	require.Equal(t, Availability{
		CalendarID:        7,
		AppointmentTypeID: 42,
		Date:              "2025-03-14",
		Slots: []Slot{
			{Datetime: "2025-03-14T09:00:00-0400", Time: "9:00 AM"},
			{Datetime: "2025-03-14T14:30:00-0400", Time: "2:30 PM"},
		},
	}, res)

	res, err = DayAvailability(context.Background(), fetcher, 7, 42, "2025-03-15")
	require.NoError(t, err)
	require.NotNil(t, res.Slots)
	require.Empty(t, res.Slots)
}

func TestFindNextSlot(t *testing.T) {
	now := salonTime(t, "2025-03-28 10:00")

	t.Run("falls through to next month", func(t *testing.T) {
		fetcher := &fakeAvailability{
			dates: map[string][]AvailabilityDate{
				"2025-03": {{Date: "2025-03-31"}},
				"2025-04": {{Date: "2025-04-01"}},
			},
			times: map[string][]TimeSlot{
				"2025-04-01": {{Time: "2025-04-01T11:00:00-0400"}, {Time: "2025-04-01T13:00:00-0400"}},
			},
		}
		res, err := FindNextSlot(context.Background(), fetcher, 7, 42, now)
		require.NoError(t, err)
		require.Equal(t, &NextSlot{
			Datetime:     "2025-04-01T11:00:00-0400",
			DisplayText:  "Tuesday at 11:00 AM",
			RelativeText: "Tuesday",
		}, res.NextSlot)
		require.Equal(t, []string{"dates:2025-03", "times:2025-03-31", "dates:2025-04", "times:2025-04-01"}, fetcher.calls)
	})

	t.Run("nothing available", func(t *testing.T) {
		res, err := FindNextSlot(context.Background(), &fakeAvailability{}, 7, 42, now)
		require.NoError(t, err)
		require.Nil(t, res.NextSlot)
		require.Equal(t, 7, res.CalendarID)
	})

	t.Run("error", func(t *testing.T) {
		cause := errors.New("boom")
		_, err := FindNextSlot(context.Background(), &fakeAvailability{datesErr: cause}, 7, 42, now)
		require.ErrorIs(t, err, cause)
	})
}
