package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newPathsCmd(app *app) *cobra.Command {
	var flags sessionFlags

	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Show the executable, arguments and directories launch would use",
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, err := app.resolveProfile(cmd, &flags)
			if err != nil {
				return err
			}

			launcher, err := newLauncher(app, profile, app.logger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			spec := launcher.ProcessSpec()
			cfg := launcher.Config()
			rows := [][2]string{
				{"endpoint", launcher.Endpoint().Address()},
				{"install dir", cfg.InstallDir},
				{"config dir", cfg.ConfigDir},
				{"executable", spec.Path},
				{"arguments", strings.Join(spec.Args, " ")},
				{"profiles", app.profilesPath},
			}
			if cfg.StderrPath != "" {
				rows = append(rows, [2]string{"stderr file", cfg.StderrPath})
			}

			for _, row := range rows {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", row[0]+":", row[1]); err != nil {
					return err
				}
			}

			return nil
		},
	}

	flags.registerEndpoint(cmd)
	flags.registerLaunch(cmd)

	return cmd
}
