package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"refhub/src/internal/record"
)

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the library across every field (case-insensitive substring)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, records, err := loadCollection()
			if err != nil {
				return err
			}
			query := strings.ToLower(strings.Join(args, " "))
			var matches []record.Record
			for _, r := range records {
				if recordMatches(r, query) {
					matches = append(matches, r)
				}
			}
			out := cmd.OutOrStdout()
			if len(matches) == 0 {
				fmt.Fprintf(out, "no entries match %q\n", strings.Join(args, " "))
				return nil
			}
			fmt.Fprintln(out, renderTable(entryHeaders, entryRows(matches)))
			fmt.Fprintf(out, "%d of %d entries\n", len(matches), len(records))
			return nil
		},
	}
}

func recordMatches(r record.Record, query string) bool {
	if strings.Contains(strings.ToLower(r.ID), query) {
		return true
	}
	for _, v := range r.Fields {
		if strings.Contains(strings.ToLower(v), query) {
			return true
		}
	}
	return false
}
