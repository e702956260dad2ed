package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/bnema/stk-connect/internal/adapters/process"
	"github.com/bnema/stk-connect/internal/application"
	"github.com/bnema/stk-connect/internal/domain"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const defaultProgramFiles = `C:\Program Files`

func newLaunchCmd(app *app) *cobra.Command {
	var (
		flags       sessionFlags
		file        string
		keepRunning bool
		noSpinner   bool
	)

	cmd := &cobra.Command{
		Use:   "launch [command...]",
		Short: "Start a local STK instance, wait for its command port and send commands",
		Long: "launch starts STK headless, polls the command port until it accepts a connection, " +
			"sends the given commands and shuts STK down again unless --keep-running is set.",
		Example: `  stkc launch --install-dir ~/stk "New / Scenario Demo"
  stkc launch --profile lab --keep-running --stderr-file ~/stk.log --file setup.connect`,
		RunE: func(cmd *cobra.Command, args []string) error {
			commands, err := collectCommands(cmd, args, file)
			if err != nil {
				return err
			}

			profile, err := app.resolveProfile(cmd, &flags)
			if err != nil {
				return err
			}
			if keepRunning && profile.Launch.StderrPath == "" {
				return fmt.Errorf("--keep-running requires --stderr-file so STK output outlives this command")
			}

			log := app.logger(cmd.ErrOrStderr())
			launcher, err := newLauncher(app, profile, log)
			if err != nil {
				return err
			}

			launch := launcher.Launch
			if noSpinner {
				err = launch(cmd.Context())
			} else {
				label := fmt.Sprintf("Waiting for STK on %s...", profile.Endpoint.Address())
				err = runLaunchSpinner(cmd.Context(), cmd.ErrOrStderr(), label, launch)
			}
			if err != nil {
				output := launcher.StartupOutput()
				_ = launcher.Close()
				return launchFailure(err, output)
			}

			if err := sendAll(launcher.Send, commands); err != nil {
				_ = launcher.Close()
				return err
			}

			if keepRunning {
				err = launcher.Detach()
			} else {
				err = launcher.Close()
			}
			if err != nil {
				return err
			}
			if terminateErr := launcher.TerminateErr(); terminateErr != nil {
				log.Warn().Err(terminateErr).Msg("STK may still be running")
			}

			rendered, err := app.sessionRenderer(launcher.Summary(profile.Name))
			if err != nil {
				return fmt.Errorf("render session: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	flags.registerEndpoint(cmd)
	flags.registerLaunch(cmd)
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read commands from a file, one per line (- for stdin)")
	cmd.Flags().BoolVar(&keepRunning, "keep-running", false, "Leave STK running after the commands are sent")
	cmd.Flags().BoolVar(&noSpinner, "no-spinner", false, "Do not show a progress spinner")

	return cmd
}

func newLauncher(app *app, profile domain.Profile, log zerolog.Logger) (*application.Launcher, error) {
	return application.NewLauncher(profile.Endpoint, profile.Launch,
		application.WithProcessStarter(process.NewStarter(process.WithLogger(log))),
		application.WithLauncherDialer(app.dialer),
		application.WithLauncherLogger(log),
		application.WithLauncherWriteTimeout(app.writeTimeout),
		application.WithEnviron(os.Environ()),
		application.WithHomeDir("", envOrDefault("PROGRAMFILES", defaultProgramFiles)),
	)
}

// launchFailure adds the tail of STK's stderr to a failed launch so license and
// port problems are visible without --stderr-file.
func launchFailure(err error, output []byte) error {
	tail := lastLines(output, 10)
	if tail == "" {
		return err
	}

	return fmt.Errorf("%w\nSTK output:\n%s", err, tail)
}

func lastLines(output []byte, n int) string {
	lines := strings.Split(strings.TrimRight(string(output), "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
