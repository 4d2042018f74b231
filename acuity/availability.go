/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package acuity

import (
	"context"
	"fmt"
	"time"
)

// AvailabilityFetcher is the part of Client used to look up free slots.
type AvailabilityFetcher interface {
	AvailableDates(ctx context.Context, calendarID, appointmentTypeID int, month string) ([]AvailabilityDate, error)
	AvailableTimes(ctx context.Context, calendarID, appointmentTypeID int, date string) ([]TimeSlot, error)
}

var _ AvailabilityFetcher = (*Client)(nil)

// Slot is a bookable time of a day.
type Slot struct {
	Datetime string `json:"datetime"`
	Time     string `json:"time"`
}

// Availability is served by the availability route.
// Date and Slots are set for a specific day, NextSlot for the "next available" lookup
// (it stays nil when nothing is bookable this month and next month).
type Availability struct {
	CalendarID        int       `json:"calendarId"`
	AppointmentTypeID int       `json:"appointmentTypeId"`
	Date              string    `json:"date,omitempty"`
	Slots             []Slot    `json:"slots,omitempty"`
	NextSlot          *NextSlot `json:"nextSlot,omitempty"`
}

// DayAvailability returns the free slots of the date (YYYY-MM-DD).
func DayAvailability(
	ctx context.Context, fetcher AvailabilityFetcher, calendarID, appointmentTypeID int, date string,
) (Availability, error) {
	times, err := fetcher.AvailableTimes(ctx, calendarID, appointmentTypeID, date)
	if err != nil {
		return Availability{}, fmt.Errorf("get available times: %w", err)
	}
	res := Availability{CalendarID: calendarID, AppointmentTypeID: appointmentTypeID, Date: date, Slots: []Slot{}}
	for _, ts := range times {
		slot := Slot{Datetime: ts.Time}
		if t, parseErr := ParseDatetime(ts.Time); parseErr == nil {
			slot.Time = FormatTime(t)
		}
		res.Slots = append(res.Slots, slot)
	}
	return res, nil
}

// FindNextSlot looks for the first free slot in the month of now and, if there is none, in the next month.
func FindNextSlot(
	ctx context.Context, fetcher AvailabilityFetcher, calendarID, appointmentTypeID int, now time.Time,
) (Availability, error) {
	res := Availability{CalendarID: calendarID, AppointmentTypeID: appointmentTypeID}
	for _, month := range []string{CurrentMonth(now), NextMonth(now)} {
		dates, err := fetcher.AvailableDates(ctx, calendarID, appointmentTypeID, month)
		if err != nil {
			return Availability{}, fmt.Errorf("get available dates for %s: %w", month, err)
		}
		for _, d := range dates {
			times, err := fetcher.AvailableTimes(ctx, calendarID, appointmentTypeID, d.Date)
			if err != nil {
				return Availability{}, fmt.Errorf("get available times for %s: %w", d.Date, err)
			}
			if len(times) == 0 {
				continue
			}
			next, err := FormatNextSlot(times[0].Time, now)
			if err != nil {
				return Availability{}, err
			}
			res.NextSlot = &next
			return res, nil
		}
	}
	return res, nil
}
