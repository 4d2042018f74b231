/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package acuity

import (
	"fmt"
	"time"
	_ "time/tzdata" // The salon zone must resolve on hosts without zoneinfo.
)

// SalonTimeZone is the zone all customer-facing dates and times are rendered in.
const SalonTimeZone = "America/New_York"

// Layouts of Acuity dates.
const (
	DateLayout     = "2006-01-02"
	MonthLayout    = "2006-01"
	DatetimeLayout = "2006-01-02T15:04:05-0700"
)

var salonLocation = func() *time.Location {
	loc, err := time.LoadLocation(SalonTimeZone)
	if err != nil {
		panic(fmt.Sprintf("load %s location: %v", SalonTimeZone, err))
	}
	return loc
}()

// SalonLocation returns the salon time zone.
func SalonLocation() *time.Location {
	return salonLocation
}

// NextSlot describes the next bookable slot of a stylist.
type NextSlot struct {
	Datetime     string `json:"datetime"`
	DisplayText  string `json:"displayText"`
	RelativeText string `json:"relativeText"`
}

// ParseDatetime parses an Acuity datetime ("2025-03-14T14:00:00-0400"). RFC 3339 is accepted as well.
func ParseDatetime(s string) (time.Time, error) {
	t, err := time.Parse(DatetimeLayout, s)
	if err == nil {
		return t, nil
	}
	if t, rfcErr := time.Parse(time.RFC3339, s); rfcErr == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("parse datetime %q: %w", s, err)
}

// FormatTime renders the wall clock time in the salon zone ("2:00 PM").
func FormatTime(t time.Time) string {
	return t.In(salonLocation).Format("3:04 PM")
}

// RelativeDay describes the day of t relative to now in the salon zone:
// "Today", "Tomorrow", the weekday name within a week, or a short date ("Mar 21") otherwise.
func RelativeDay(t, now time.Time) string {
	local := t.In(salonLocation)
	days := daysBetween(now.In(salonLocation), local)
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days <= 7:
		return local.Weekday().String()
	default:
		return local.Format("Jan 2")
	}
}

// FormatNextSlot builds the NextSlot of an Acuity datetime.
func FormatNextSlot(datetime string, now time.Time) (NextSlot, error) {
	t, err := ParseDatetime(datetime)
	if err != nil {
		return NextSlot{}, err
	}
	rel := RelativeDay(t, now)
	return NextSlot{
		Datetime:     datetime,
		DisplayText:  rel + " at " + FormatTime(t),
		RelativeText: rel,
	}, nil
}

// UpcomingDates returns n consecutive salon-local dates (YYYY-MM-DD) starting with the day of now.
func UpcomingDates(n int, now time.Time) []string {
	if n <= 0 {
		return []string{}
	}
	dates := make([]string, 0, n)
	local := now.In(salonLocation)
	for i := 0; i < n; i++ {
		dates = append(dates, local.AddDate(0, 0, i).Format(DateLayout))
	}
	return dates
}

// CurrentMonth returns the salon-local month of now (YYYY-MM).
func CurrentMonth(now time.Time) string {
	return now.In(salonLocation).Format(MonthLayout)
}

// NextMonth returns the salon-local month following the month of now (YYYY-MM).
func NextMonth(now time.Time) string {
	local := now.In(salonLocation)
	return time.Date(local.Year(), local.Month()+1, 1, 0, 0, 0, 0, salonLocation).Format(MonthLayout)
}

// daysBetween counts calendar days from a to b using their wall clock dates.
func daysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
