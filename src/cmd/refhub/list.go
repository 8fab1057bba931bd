package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the library as a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, records, err := loadCollection()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "library is empty")
				return nil
			}
			fmt.Fprintln(out, renderTable(entryHeaders, entryRows(records)))
			fmt.Fprintf(out, "%d entries\n", len(records))
			return nil
		},
	}
}
