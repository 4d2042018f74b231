/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package acuity

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// LooseString decodes a JSON string, number, boolean or null into a string.
// Acuity sends `false` instead of an empty string for some optional fields (e.g. calendar images).
type LooseString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *LooseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte("false")):
		*s = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = LooseString(str)
		return nil
	}
	*s = LooseString(data)
	return nil
}

// LooseInt decodes a JSON number or a numeric string into an int. Empty strings and null give 0.
type LooseInt int

// UnmarshalJSON implements json.Unmarshaler.
func (n *LooseInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		if str == "" {
			*n = 0
			return nil
		}
		data = []byte(str)
	}
	v, err := strconv.Atoi(string(data))
	if err != nil {
		return err
	}
	*n = LooseInt(v)
	return nil
}

// Calendar is a stylist calendar as returned by GET /calendars.
type Calendar struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	ReplyTo     string      `json:"replyTo"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	Timezone    string      `json:"timezone"`
	Image       LooseString `json:"image"`
	Thumbnail   LooseString `json:"thumbnail"`
}

// AppointmentType is a bookable service as returned by GET /appointment-types.
type AppointmentType struct {
	ID            int         `json:"id"`
	Name          string      `json:"name"`
	Active        bool        `json:"active"`
	Description   string      `json:"description"`
	Duration      int         `json:"duration"`
	Price         LooseString `json:"price"`
	Category      string      `json:"category"`
	Color         string      `json:"color"`
	Private       bool        `json:"private"`
	Type          string      `json:"type"`
	SchedulingURL string      `json:"schedulingUrl"`
	Image         LooseString `json:"image"`
	CalendarIDs   []int       `json:"calendarIDs"`
	ClassSize     *int        `json:"classSize,omitempty"`
	PaddingAfter  int         `json:"paddingAfter"`
	PaddingBefore int         `json:"paddingBefore"`
	AddonIDs      []int       `json:"addonIDs,omitempty"`
	FormIDs       []int       `json:"formIDs,omitempty"`
}

// AvailabilityDate is an item of GET /availability/dates.
type AvailabilityDate struct {
	Date string `json:"date"`
}

// TimeSlot is an item of GET /availability/times.
type TimeSlot struct {
	Time           string `json:"time"`
	SlotsAvailable int    `json:"slotsAvailable"`
}

// Appointment is a booked appointment as returned by GET /appointments.
type Appointment struct {
	ID                LooseInt    `json:"id"`
	FirstName         string      `json:"firstName"`
	LastName          string      `json:"lastName"`
	Phone             string      `json:"phone"`
	Email             string      `json:"email"`
	Date              string      `json:"date"`
	Time              string      `json:"time"`
	EndTime           string      `json:"endTime"`
	DateCreated       string      `json:"dateCreated"`
	Datetime          string      `json:"datetime"`
	Price             LooseString `json:"price"`
	Paid              LooseString `json:"paid"`
	Type              string      `json:"type"`
	AppointmentTypeID LooseInt    `json:"appointmentTypeID"`
	Duration          LooseString `json:"duration"`
	Calendar          string      `json:"calendar"`
	CalendarID        LooseInt    `json:"calendarID"`
	Canceled          bool        `json:"canceled"`
	ScheduledBy       LooseString `json:"scheduledBy"`
	Notes             string      `json:"notes"`
}
