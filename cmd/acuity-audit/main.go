/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Command acuity-audit lists Acuity appointments in a date range and reports
// which of them lack customer contact details.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vahairstudio/site-api/acuity"
	"github.com/vahairstudio/site-api/audit"
	"github.com/vahairstudio/site-api/log"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

const defaultTimeout = 5 * time.Minute

// exitError carries the process exit code. A nil err means the message has already been printed.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit code %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, os.Getenv))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	cmd := newAuditCommand(getenv)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.err != nil {
			_, _ = fmt.Fprintln(stderr, "Error:", exitErr.err)
		}
		return exitErr.code
	}
	_, _ = fmt.Fprintln(stderr, "Error:", err)
	return exitFailure
}

func newAuditCommand(getenv func(string) string) *cobra.Command {
	opts := audit.NewOptions()
	var includeForms, verbose bool
	var timeout time.Duration
	var baseURL string

	cmd := &cobra.Command{
		Use:   "acuity-audit",
		Short: "Audit Acuity appointments for missing contact details",
		Long: `Audit Acuity appointments for missing contact details.

Appointments from --from to --to (today and 30 days ahead by default) are fetched for every
--calendar (or all calendars). A summary is printed first, followed by a TSV preview,
a table (--table) or a CSV file (--csv).

Credentials are read from ACUITY_USER_ID and ACUITY_API_KEY.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return &exitError{code: exitUsage, err: err}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if includeForms {
				opts.ExcludeForms = false
			}
			opts.SetDefaultDates(time.Now())
			if err := opts.Validate(); err != nil {
				return &exitError{code: exitUsage, err: err}
			}

			acuityCfg := acuity.NewDefaultConfig(getenv(acuity.EnvUserID), getenv(acuity.EnvAPIKey))
			if baseURL != "" {
				acuityCfg.BaseURL = baseURL
			}
			if missing := acuityCfg.MissingCredentials(); len(missing) != 0 {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Missing env var: %s\n", missing[0])
				return &exitError{code: exitUsage}
			}

			logCfg := log.NewDefaultConfig()
			logCfg.Output = log.OutputStderr
			logCfg.Format = log.FormatText
			logCfg.Level = log.LevelWarn
			if verbose {
				logCfg.Level = log.LevelDebug
			}
			logger, closeLogger := log.NewLogger(logCfg)
			defer closeLogger()
			opts.Logger = logger

			client, err := acuity.NewClientWithOpts(acuityCfg, acuity.ClientOpts{
				LoggerProvider: func(context.Context) log.FieldLogger { return logger },
			})
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			rows, err := audit.Run(ctx, client, opts)
			if err != nil {
				return err
			}
			return audit.Report(cmd.OutOrStdout(), rows, &opts)
		},
	}

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &exitError{code: exitUsage, err: fmt.Errorf("%w\n%s", err, c.UsageString())}
	})

	flags := cmd.Flags()
	flags.StringVar(&opts.From, "from", "", "first day of the range, YYYY-MM-DD (default today)")
	flags.StringVar(&opts.To, "to", "", "last day of the range, YYYY-MM-DD (default 30 days after --from)")
	flags.IntSliceVar(&opts.CalendarIDs, "calendar", nil, "calendar id, may be repeated (default all calendars)")
	flags.IntVar(&opts.Max, "max", audit.DefaultMax, "maximum number of appointments per request")
	flags.StringVar(&opts.Direction, "direction", audit.DirectionAsc, "sort direction of the API results, ASC or DESC")
	flags.BoolVar(&opts.IncludeCanceled, "include-canceled", false, "fetch both active and canceled appointments")
	flags.BoolVar(&opts.Canceled, "canceled", false, "fetch only canceled appointments")
	flags.BoolVar(&opts.ExcludeForms, "exclude-forms", true, "ask the API to omit intake forms")
	flags.BoolVar(&includeForms, "include-forms", false, "ask the API to include intake forms")
	flags.StringVar(&opts.FirstName, "first-name", "", "filter by customer first name")
	flags.StringVar(&opts.LastName, "last-name", "", "filter by customer last name")
	flags.StringVar(&opts.Email, "email", "", "filter by customer email")
	flags.StringVar(&opts.Phone, "phone", "", "filter by customer phone")
	flags.BoolVar(&opts.Details, "details", false, "fetch every appointment to fill the scheduledBy column")
	flags.StringVar(&opts.CSVPath, "csv", "", "write all columns to this CSV file")
	flags.BoolVar(&opts.Table, "table", false, "print the preview as a table instead of TSV")
	flags.DurationVar(&timeout, "timeout", defaultTimeout, "overall timeout of the audit")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log outbound requests")
	flags.StringVar(&baseURL, "base-url", "", "Acuity API base URL")
	_ = flags.MarkHidden("base-url")

	return cmd
}
