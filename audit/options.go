/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package audit

import (
	"fmt"
	"strings"
	"time"

	"github.com/vahairstudio/site-api/acuity"
	"github.com/vahairstudio/site-api/log"
)

// Sort directions accepted by GET /appointments.
const (
	DirectionAsc  = "ASC"
	DirectionDesc = "DESC"
)

// Defaults of Options.
const (
	DefaultMax       = 100
	DefaultRangeDays = 30
)

// DetailsConcurrency limits the number of in-flight GET /appointments/{id} requests.
const DetailsConcurrency = 5

// Options describe which appointments are audited and how the result is reported.
type Options struct {
	From        string // YYYY-MM-DD, today by default.
	To          string // YYYY-MM-DD, From plus DefaultRangeDays by default.
	CalendarIDs []int
	Max         int
	Direction   string

	// IncludeCanceled fetches active and canceled appointments. It takes precedence over Canceled.
	IncludeCanceled bool
	// Canceled fetches only canceled appointments.
	Canceled     bool
	ExcludeForms bool

	FirstName string
	LastName  string
	Email     string
	Phone     string

	// Details fetches every appointment separately to fill the scheduledBy column.
	Details bool

	// CSVPath is the file the report is written to. The TSV preview is printed when it's empty.
	CSVPath string
	// Table prints the preview as a table instead of TSV.
	Table bool

	Logger log.FieldLogger
}

// NewOptions returns Options with default values.
func NewOptions() Options {
	return Options{Max: DefaultMax, Direction: DirectionAsc, ExcludeForms: true}
}

// SetDefaultDates fills empty From and To relative to now in the local time zone.
func (o *Options) SetDefaultDates(now time.Time) {
	if o.From == "" {
		o.From = now.Local().Format(acuity.DateLayout)
	}
	if o.To == "" {
		if from, err := time.ParseInLocation(acuity.DateLayout, o.From, time.Local); err == nil {
			o.To = from.AddDate(0, 0, DefaultRangeDays).Format(acuity.DateLayout)
		}
	}
}

// OptionError reports an invalid option. Flag is the name of the corresponding CLI flag.
type OptionError struct {
	Flag string
	Msg  string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("invalid --%s (%s)", e.Flag, e.Msg)
}

// Validate checks the options and normalizes the direction to upper case.
func (o *Options) Validate() error {
	o.Direction = strings.ToUpper(strings.TrimSpace(o.Direction))
	if o.Direction != DirectionAsc && o.Direction != DirectionDesc {
		return &OptionError{Flag: "direction", Msg: "must be ASC or DESC"}
	}
	if o.Max <= 0 {
		return &OptionError{Flag: "max", Msg: "must be a positive number"}
	}
	for _, d := range []struct{ flag, value string }{{"from", o.From}, {"to", o.To}} {
		if d.value == "" {
			continue
		}
		if _, err := time.Parse(acuity.DateLayout, d.value); err != nil {
			return &OptionError{Flag: d.flag, Msg: "must be YYYY-MM-DD"}
		}
	}
	for _, id := range o.CalendarIDs {
		if id <= 0 {
			return &OptionError{Flag: "calendar", Msg: fmt.Sprintf("%d is not a valid id", id)}
		}
	}
	return nil
}

func (o *Options) query(calendarID int, canceled bool) acuity.AppointmentsQuery {
	return acuity.AppointmentsQuery{
		Max:          o.Max,
		MinDate:      o.From,
		MaxDate:      o.To,
		CalendarID:   calendarID,
		Canceled:     canceled,
		ExcludeForms: o.ExcludeForms,
		Direction:    o.Direction,
		FirstName:    o.FirstName,
		LastName:     o.LastName,
		Email:        o.Email,
		Phone:        o.Phone,
	}
}
