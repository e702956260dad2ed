package cmd

import (
	"fmt"

	"github.com/bnema/stk-connect/internal/application"
	"github.com/spf13/cobra"
)

func newSendCmd(app *app) *cobra.Command {
	var (
		flags sessionFlags
		file  string
	)

	cmd := &cobra.Command{
		Use:   "send [command...]",
		Short: "Send Connect commands to a running STK instance",
		Example: `  stkc send "New / Scenario Demo"
  stkc send --port 5002 --file setup.connect`,
		RunE: func(cmd *cobra.Command, args []string) error {
			commands, err := collectCommands(cmd, args, file)
			if err != nil {
				return err
			}
			if len(commands) == 0 {
				return errNoCommands
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

			if err := sendAll(connector.Send, commands); err != nil {
				_ = connector.Close()
				return err
			}
			if err := connector.Close(); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "sent %d command(s) to %s\n", connector.Sent(), profile.Endpoint.Address())
			return err
		},
	}

	flags.registerEndpoint(cmd)
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read commands from a file, one per line (- for stdin)")

	return cmd
}

func sendAll(send func(string) error, commands []string) error {
	for _, command := range commands {
		if err := send(command); err != nil {
			return err
		}
	}

	return nil
}
