/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package audit lists booked Acuity appointments for operators, e.g. to check what is booked during a migration.
// The result is summarized and exported as CSV, TSV or a table. It's used by the acuity-audit command only,
// customer data never leaves it through the public API.
package audit

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/vahairstudio/site-api/acuity"
	"github.com/vahairstudio/site-api/log"
)

// Client is the part of the Acuity client used by the audit.
type Client interface {
	Appointments(ctx context.Context, query acuity.AppointmentsQuery) ([]acuity.Appointment, error)
	Appointment(ctx context.Context, id int) (acuity.Appointment, error)
}

var _ Client = (*acuity.Client)(nil)

// Row is a single audited appointment.
type Row struct {
	ID                int
	Datetime          string
	Date              string
	Time              string
	EndTime           string
	DateCreated       string
	Type              string
	AppointmentTypeID int
	Calendar          string
	CalendarID        int
	FirstName         string
	LastName          string
	Email             string
	Phone             string
	Canceled          bool
	ScheduledBy       string
}

func newRow(a *acuity.Appointment, canceled bool) Row {
	return Row{
		ID:                int(a.ID),
		Datetime:          a.Datetime,
		Date:              a.Date,
		Time:              a.Time,
		EndTime:           a.EndTime,
		DateCreated:       a.DateCreated,
		Type:              a.Type,
		AppointmentTypeID: int(a.AppointmentTypeID),
		Calendar:          a.Calendar,
		CalendarID:        int(a.CalendarID),
		FirstName:         a.FirstName,
		LastName:          a.LastName,
		Email:             a.Email,
		Phone:             a.Phone,
		Canceled:          canceled,
	}
}

// Run fetches the appointments described by opts.
// Rows are sorted by datetime, then by id. Options are expected to be validated.
func Run(ctx context.Context, client Client, opts Options) ([]Row, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewDisabledLogger()
	}

	var rows []Row
	if opts.IncludeCanceled {
		active, err := fetchAppointments(ctx, client, &opts, false)
		if err != nil {
			return nil, err
		}
		canceled, err := fetchAppointments(ctx, client, &opts, true)
		if err != nil {
			return nil, err
		}
		rows = appendRows(rows, active, false)
		rows = appendRows(rows, canceled, true)
	} else {
		appointments, err := fetchAppointments(ctx, client, &opts, opts.Canceled)
		if err != nil {
			return nil, err
		}
		rows = appendRows(rows, appointments, opts.Canceled)
	}

	if opts.Details && len(rows) != 0 {
		if err := fillDetails(ctx, client, rows, logger); err != nil {
			return nil, err
		}
	}

	slices.SortStableFunc(rows, func(a, b Row) int {
		return cmp.Or(cmp.Compare(a.Datetime, b.Datetime), cmp.Compare(a.ID, b.ID))
	})
	return rows, nil
}

// fetchAppointments makes one query, or one query per calendar since Acuity filters by a single calendar only.
func fetchAppointments(ctx context.Context, client Client, opts *Options, canceled bool) ([]acuity.Appointment, error) {
	if len(opts.CalendarIDs) == 0 {
		appointments, err := client.Appointments(ctx, opts.query(0, canceled))
		if err != nil {
			return nil, fmt.Errorf("get appointments: %w", err)
		}
		return appointments, nil
	}
	var all []acuity.Appointment
	for _, calendarID := range opts.CalendarIDs {
		appointments, err := client.Appointments(ctx, opts.query(calendarID, canceled))
		if err != nil {
			return nil, fmt.Errorf("get appointments of calendar %d: %w", calendarID, err)
		}
		all = append(all, appointments...)
	}
	return all, nil
}

func appendRows(rows []Row, appointments []acuity.Appointment, canceled bool) []Row {
	for i := range appointments {
		rows = append(rows, newRow(&appointments[i], canceled))
	}
	return rows
}

// fillDetails sets ScheduledBy of every row. A failed request leaves the column empty.
func fillDetails(ctx context.Context, client Client, rows []Row, logger log.FieldLogger) error {
	var g errgroup.Group
	g.SetLimit(DetailsConcurrency)
	for i := range rows {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			appointment, err := client.Appointment(ctx, rows[i].ID)
			if err != nil {
				logger.Warn("failed to get appointment details", log.Int("appointment_id", rows[i].ID), log.Error(err))
				return nil
			}
			rows[i].ScheduledBy = string(appointment.ScheduledBy)
			return nil
		})
	}
	_ = g.Wait()
	return ctx.Err()
}
