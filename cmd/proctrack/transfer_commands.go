package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"proctrack/internal/fileutil"
	"proctrack/internal/ipc"
	"proctrack/internal/process"
)

func newTransferCommands(ctx *commandContext) []*cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export <path> [ids]",
		Short: "Write tracked processes to a JSON file, optionally only the IDs given as 0-3,5,7",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := ""
			if len(args) == 2 {
				ids = args[1]
			}
			return ctx.withClient(func(client *ipc.Client) error {
				entries, err := client.Export(requestContext(cmd), ids)
				if err != nil {
					return err
				}
				procs := make([]process.Process, len(entries))
				names := make([]string, len(entries))
				for i, e := range entries {
					procs[i] = e.Process
					names[i] = e.Name
				}
				data, err := json.MarshalIndent(procs, "", "  ")
				if err != nil {
					return fmt.Errorf("encode export: %w", err)
				}
				if err := fileutil.WriteFileAtomic(args[0], append(data, '\n'), 0o644); err != nil {
					return fmt.Errorf("cannot open file %s -> %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", process.QuoteNames(names), args[0])
				return nil
			})
		},
	}

	var legacy bool
	importCmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Merge processes from a JSON export; names already tracked are skipped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// The daemon resolves the path from its own working directory.
			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve %s: %w", args[0], err)
			}
			return ctx.send(cmd, ipc.KindImport, ipc.ImportPayload{Path: path, Legacy: legacy})
		},
	}
	importCmd.Flags().BoolVar(&legacy, "legacy", false, "Read the older name-keyed export format")

	return []*cobra.Command{exportCmd, importCmd}
}
