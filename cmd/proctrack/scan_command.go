package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"proctrack/internal/scanner"
)

func newScanCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "processes",
		Short:       "List running process names as the tracker sees them",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			running, err := scanner.Default().RunningProcesses(requestContext(cmd))
			if err != nil {
				return fmt.Errorf("list processes: %w", err)
			}
			names := sortedNames(running)
			out := cmd.OutOrStdout()
			for _, name := range names {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}

// sortedNames orders names case-insensitively so "Xorg" sits next to "xdg".
func sortedNames(running map[string]struct{}) []string {
	names := make([]string, 0, len(running))
	for name := range running {
		names = append(names, name)
	}
	collate.New(language.Und, collate.IgnoreCase).SortStrings(names)
	return names
}
