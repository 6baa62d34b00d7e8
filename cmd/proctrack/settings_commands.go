package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"proctrack/internal/config"
	"proctrack/internal/ipc"
)

func newSettingsCommands(ctx *commandContext) []*cobra.Command {
	var asJSON bool
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show the daemon's tracking intervals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				iv, err := client.Settings(requestContext(cmd))
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, iv)
				}
				out := cmd.OutOrStdout()
				rows := [][]string{
					{"poll_interval", fmt.Sprintf("%ds", iv.PollInterval), fmt.Sprintf("%ds", config.MinPollInterval)},
					{"duration_update_interval", fmt.Sprintf("%ds", iv.DurationUpdateInterval), fmt.Sprintf("%ds", config.MinDurationUpdateInterval)},
					{"autosave_interval", fmt.Sprintf("%ds", iv.AutosaveInterval), fmt.Sprintf("%ds", config.MinAutosaveInterval)},
				}
				fmt.Fprintln(out, renderTable([]string{"Setting", "Value", "Minimum"}, rows,
					[]columnAlignment{alignLeft, alignRight, alignRight}, isTerminal(out)))
				return nil
			})
		},
	}
	settingsCmd.Flags().BoolVar(&asJSON, "json", false, "Print intervals as JSON")

	var poll, durationUpdate, autosave uint64
	optionCmd := &cobra.Command{
		Use:   "option",
		Short: "Change tracking intervals in seconds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var update ipc.OptionPayload
			flags := cmd.Flags()
			if flags.Changed("poll-interval") {
				update.PollInterval = &poll
			}
			if flags.Changed("duration-update-interval") {
				update.DurationUpdateInterval = &durationUpdate
			}
			if flags.Changed("autosave-interval") {
				update.AutosaveInterval = &autosave
			}
			if update.Empty() {
				return fmt.Errorf("no option given; see `proctrack option --help`")
			}
			return ctx.send(cmd, ipc.KindOption, update)
		},
	}
	optionCmd.Flags().Uint64VarP(&poll, "poll-interval", "p", 0,
		fmt.Sprintf("How often to check whether tracked processes run (min %d)", config.MinPollInterval))
	optionCmd.Flags().Uint64VarP(&durationUpdate, "duration-update-interval", "d", 0,
		fmt.Sprintf("How often running processes accrue time (min %d)", config.MinDurationUpdateInterval))
	optionCmd.Flags().Uint64VarP(&autosave, "autosave-interval", "a", 0,
		fmt.Sprintf("How often state is saved (min %d)", config.MinAutosaveInterval))

	quitCmd := &cobra.Command{
		Use:   "quit",
		Short: "Save state and stop the daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.send(cmd, ipc.KindQuit, nil)
		},
	}

	return []*cobra.Command{settingsCmd, optionCmd, quitCmd}
}
