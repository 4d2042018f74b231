/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package acuity

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Public scheduling page of the salon account.
const (
	OwnerID         = "38274584"
	AppOrigin       = "https://app.acuityscheduling.com"
	SchedulePath    = "/schedule.php"
	BaseScheduleURL = AppOrigin + SchedulePath + "?owner=" + OwnerID
)

// Embedded scheduler.
const (
	EmbedOrigin  = "https://embed.acuityscheduling.com"
	EmbedJSURL   = EmbedOrigin + "/js/embed.js"
	EmbedBaseURL = BaseScheduleURL + "&showHeader=false"
)

// Cache TTLs of the catalog data.
const (
	ServicesTTL     = time.Hour
	StylistsTTL     = 30 * time.Minute
	AvailabilityTTL = 10 * time.Minute
	NextSlotTTL     = 5 * time.Minute
)

// BookingURLForCalendar returns the scheduling page pre-filtered by the stylist calendar.
func BookingURLForCalendar(calendarID int) string {
	return BaseScheduleURL + "&calendarID=" + strconv.Itoa(calendarID)
}

// BookingURLForAppointmentType returns the scheduling page opened on the appointment type.
func BookingURLForAppointmentType(appointmentTypeID int) string {
	return BaseScheduleURL + "&appointmentType=" + strconv.Itoa(appointmentTypeID)
}

// BookingURLForCategory returns the scheduling page filtered by the category name.
func BookingURLForCategory(category string) string {
	return BaseScheduleURL + "&appointmentType=category:" + encodeURIComponent(category)
}

// ServicesKey returns the cache key of the grouped service catalog.
func ServicesKey() string {
	return "services:all"
}

// StylistsKey returns the cache key of the stylist list.
func StylistsKey() string {
	return "stylists:all"
}

// AvailabilityKey returns the cache key of a calendar availability.
// An empty date means "next available slot".
func AvailabilityKey(calendarID int, date string) string {
	if date == "" {
		date = "next"
	}
	return "availability:" + strconv.Itoa(calendarID) + ":" + date
}

var uriComponentUnescaper = strings.NewReplacer(
	"+", "%20", "%21", "!", "%27", "'", "%28", "(", "%29", ")", "%2A", "*",
)

// encodeURIComponent escapes s the way browsers do for a single URI component:
// spaces become %20 and the marks !'()* stay as is.
func encodeURIComponent(s string) string {
	return uriComponentUnescaper.Replace(url.QueryEscape(s))
}
