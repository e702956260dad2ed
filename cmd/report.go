package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/bnema/stk-connect/internal/application"
	"github.com/bnema/stk-connect/internal/domain"
	"github.com/spf13/cobra"
)

func newReportCmd(app *app) *cobra.Command {
	var (
		flags  sessionFlags
		report domain.ReportCreate
		start  string
		stop   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "report <object-path>",
		Short: "Ask a running STK instance to write a report to a file",
		Long: "report sends a ReportCreate command for the given object. STK writes the report " +
			"on its side; the reply is not read.",
		Example: `  stkc report Facility/Site_A --style Access --access-object Satellite/Sat_1 --file /tmp/access.txt
  stkc report Satellite/Sat_1 --style "LLA Position" --start "1 Jul 2026 00:00:00.000" --stop "2 Jul 2026 00:00:00.000" --print`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report.ObjectPath = args[0]

			period, err := parseTimePeriod(start, stop)
			if err != nil {
				return err
			}
			report.TimePeriod = period

			command, err := report.Command()
			if err != nil {
				return err
			}

			if dryRun {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), command)
				return err
			}

			profile, err := app.resolveProfile(cmd, &flags)
			if err != nil {
				return err
			}

			connector := application.NewConnector(profile.Endpoint,
				application.WithDialer(app.dialer),
				application.WithLogger(app.logger(cmd.ErrOrStderr())),
				application.WithWriteTimeout(app.writeTimeout),
			)
			if err := connector.Connect(cmd.Context()); err != nil {
				return err
			}
			if err := connector.Send(command); err != nil {
				_ = connector.Close()
				return err
			}
			if err := connector.Close(); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "requested %s report for %s\n", report.Style, report.ObjectPath)
			return err
		},
	}

	flags.registerEndpoint(cmd)
	cmd.Flags().StringVar(&report.Style, "style", "", "Report style name")
	cmd.Flags().StringVar(&report.FilePath, "file", "", "Export the report to this path on the STK host")
	cmd.Flags().StringVar(&report.AccessObjectPath, "access-object", "", "Second object of an access report")
	cmd.Flags().StringVar(&start, "start", "", "Report start time (STK date or RFC 3339)")
	cmd.Flags().StringVar(&stop, "stop", "", "Report stop time (STK date or RFC 3339)")
	cmd.Flags().StringVar(&report.TimeStep, "time-step", "", "Report time step in seconds")
	cmd.Flags().StringVar(&report.AdditionalData, "additional-data", "", "Style-specific additional data")
	cmd.Flags().StringVar(&report.Summary, "summary", "", "Summary option (Include or Only)")
	cmd.Flags().StringVar(&report.AllLines, "all-lines", "", "AllLines option (Include or Only)")
	cmd.Flags().BoolVar(&dryRun, "print", false, "Print the command instead of sending it")
	_ = cmd.MarkFlagRequired("style")

	return cmd
}

func parseTimePeriod(start string, stop string) (*domain.TimePeriod, error) {
	if start == "" && stop == "" {
		return nil, nil
	}
	if start == "" || stop == "" {
		return nil, errors.New("--start and --stop must be given together")
	}

	startAt, err := parseReportTime(start)
	if err != nil {
		return nil, fmt.Errorf("parse --start: %w", err)
	}
	stopAt, err := parseReportTime(stop)
	if err != nil {
		return nil, fmt.Errorf("parse --stop: %w", err)
	}

	return &domain.TimePeriod{Start: startAt, Stop: stopAt}, nil
}

func parseReportTime(value string) (time.Time, error) {
	if at, err := domain.ParseSTKTime(value); err == nil {
		return at, nil
	}

	at, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is neither an STK date (%s) nor RFC 3339", value, domain.STKDateLayout)
	}

	return at, nil
}
