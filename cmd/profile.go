package cmd

import (
	"fmt"

	"github.com/bnema/stk-connect/internal/domain"
	"github.com/spf13/cobra"
)

func newProfileCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage saved connection and launch profiles",
	}

	cmd.AddCommand(
		newProfileListCmd(app),
		newProfileShowCmd(app),
		newProfileSetCmd(app),
		newProfileRemoveCmd(app),
	)

	return cmd
}

func newProfileListCmd(app *app) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved profiles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			profiles, err := app.profiles.List(cmd.Context())
			if err != nil {
				return err
			}

			if plain {
				for _, profile := range profiles {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", profile.Name, profile.Endpoint.Address())
				}
				return nil
			}

			return writeProfiles(cmd, app, profiles)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Print one tab-separated line per profile")

	return cmd
}

func newProfileShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show one saved profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := app.profiles.Get(cmd.Context(), domain.ProfileName(args[0]))
			if err != nil {
				return err
			}

			return writeProfiles(cmd, app, []domain.Profile{profile})
		},
	}
}

func newProfileSetCmd(app *app) *cobra.Command {
	var flags sessionFlags

	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Create a profile or update the given settings of an existing one",
		Example: `  stkc profile set lab --host stk-lab --port 6001 --install-dir /opt/stk12
  stkc --profile lab launch "New / Scenario Demo"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := app.profiles.GetOrDefault(cmd.Context(), domain.ProfileName(args[0]))
			if err != nil {
				return err
			}

			flags.apply(cmd, &profile)
			if err := app.profiles.Save(cmd.Context(), profile); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "saved profile %s (%s) to %s\n", profile.Name, profile.Endpoint.Address(), app.profilesPath)
			return err
		},
	}

	flags.registerEndpoint(cmd)
	flags.registerLaunch(cmd)

	return cmd
}

func newProfileRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove a saved profile",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.profiles.Remove(cmd.Context(), domain.ProfileName(args[0])); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "removed profile %s\n", args[0])
			return err
		},
	}
}

func writeProfiles(cmd *cobra.Command, app *app, profiles []domain.Profile) error {
	rendered, err := app.profilesRenderer(profiles)
	if err != nil {
		return fmt.Errorf("render profiles: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
