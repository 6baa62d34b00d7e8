package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"proctrack/internal/ipc"
)

func newProcessCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newShowCommand(ctx),
		newAddCommand(ctx),
		newRemoveCommand(ctx),
		newChangeCommand(ctx),
		newDurationCommand(ctx),
		newMoveCommand(ctx),
	}
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var debug bool
	cmd := &cobra.Command{
		Use:   "show [ids]",
		Short: "Show tracked processes, optionally only the IDs given as 0-3,5,7",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := ""
			if len(args) == 1 {
				ids = args[0]
			}
			return ctx.withClient(func(client *ipc.Client) error {
				entries, err := client.Show(requestContext(cmd), ids)
				if err != nil {
					return err
				}
				switch {
				case asJSON:
					return writeJSON(cmd, entries)
				case debug:
					for _, e := range entries {
						fmt.Fprintf(cmd.OutOrStdout(), "%d: %+v\n", e.ID, e.Process)
					}
					return nil
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No processes tracked")
					return nil
				}
				fmt.Fprintln(out, renderEntries(entries, isTerminal(out)))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Print raw entry fields")
	cmd.MarkFlagsMutuallyExclusive("json", "debug")
	return cmd
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var payload ipc.AddPayload
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Start tracking a process by name (see `proctrack processes`)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload.Name = args[0]
			return ctx.send(cmd, ipc.KindAdd, payload)
		},
	}
	cmd.Flags().StringVarP(&payload.Icon, "icon", "i", "", "Icon path")
	cmd.Flags().StringVarP(&payload.Duration, "duration", "d", "", "Initial duration as HH:MM:SS")
	cmd.Flags().StringVarP(&payload.Notes, "notes", "n", "", "Notes about the process")
	cmd.Flags().StringVarP(&payload.AddedDate, "added-date", "a", "", "Date added as YYYY/MM/DD HH:MM:SS")
	return cmd
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Stop tracking the process with the given ID",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			return ctx.send(cmd, ipc.KindRemove, ipc.RemovePayload{ID: id})
		},
	}
}

func newChangeCommand(ctx *commandContext) *cobra.Command {
	var (
		tracking  bool
		icon      string
		duration  string
		notes     string
		addedDate string
	)
	cmd := &cobra.Command{
		Use:   "change <id>",
		Short: "Change fields of a tracked process",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			payload := ipc.ChangePayload{ID: id}
			flags := cmd.Flags()
			if flags.Changed("tracking") {
				payload.Tracking = &tracking
			}
			if flags.Changed("icon") {
				payload.Icon = &icon
			}
			if flags.Changed("duration") {
				payload.Duration = &duration
			}
			if flags.Changed("notes") {
				payload.Notes = &notes
			}
			if flags.Changed("added-date") {
				payload.AddedDate = &addedDate
			}
			return ctx.send(cmd, ipc.KindChange, payload)
		},
	}
	cmd.Flags().BoolVarP(&tracking, "tracking", "t", true, "Whether running time is accrued")
	cmd.Flags().StringVarP(&icon, "icon", "i", "", "Icon path")
	cmd.Flags().StringVarP(&duration, "duration", "d", "", "Duration as HH:MM:SS")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Notes about the process")
	cmd.Flags().StringVarP(&addedDate, "added-date", "a", "", "Date added as YYYY/MM/DD HH:MM:SS")
	return cmd
}

func newDurationCommand(ctx *commandContext) *cobra.Command {
	durationCmd := &cobra.Command{
		Use:   "duration",
		Short: "Add or subtract seconds from a process's duration",
	}
	for _, op := range []struct {
		name  string
		short string
	}{
		{ipc.OperationAdd, "Add seconds to a process's duration"},
		{ipc.OperationSubtract, "Subtract seconds from a process's duration"},
	} {
		operation := op.name
		durationCmd.AddCommand(&cobra.Command{
			Use:   operation + " <id> <seconds>",
			Short: op.short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseIDArg(args[0])
				if err != nil {
					return err
				}
				seconds, err := strconv.ParseUint(args[1], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid seconds %q: %w", args[1], err)
				}
				return ctx.send(cmd, ipc.KindDuration, ipc.DurationPayload{
					ID:        id,
					Operation: operation,
					Seconds:   seconds,
				})
			},
		})
	}
	return durationCmd
}

func newMoveCommand(ctx *commandContext) *cobra.Command {
	moveCmd := &cobra.Command{
		Use:   "move",
		Short: "Move a process up, down, to the top or to the bottom",
	}
	for _, direction := range []string{"up", "down", "top", "bottom"} {
		dir := direction
		moveCmd.AddCommand(&cobra.Command{
			Use:   dir + " <id>",
			Short: "Move a process " + dir,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseIDArg(args[0])
				if err != nil {
					return err
				}
				return ctx.send(cmd, ipc.KindMove, ipc.MovePayload{ID: id, Direction: dir})
			},
		})
	}
	return moveCmd
}

func parseIDArg(value string) (int, error) {
	id, err := strconv.Atoi(value)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid id %q", value)
	}
	return id, nil
}
