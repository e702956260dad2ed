package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "stkc",
		Short:         "STK Connect client (stkc): launch STK and send Connect commands",
		Long:          "stkc drives the STK simulation toolkit over its Connect command socket: it can start a local instance, wait for the command port, and send one-line commands to it.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().String("profile", "", "Saved profile to use (see `stkc profile list`)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	_ = app.config.BindPFlag(profileKey, rootCmd.PersistentFlags().Lookup("profile"))
	_ = app.config.BindPFlag(logLevelKey, rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(
		newVersionCmd(),
		newSendCmd(app),
		newLaunchCmd(app),
		newReportCmd(app),
		newProfileCmd(app),
		newPathsCmd(app),
	)

	return rootCmd
}
