package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"refhub/src/internal/record"
)

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <key>...",
		Short: "Remove entries by citation key",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, records, err := loadCollection()
			if err != nil {
				return err
			}
			for _, key := range args {
				i := record.FindByID(records, key)
				if i < 0 {
					return fmt.Errorf("no entry with key %q", key)
				}
				records = append(records[:i], records[i+1:]...)
			}
			if _, err := c.SaveLibrary(libraryName, records); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d entr%s (%d remain)\n",
				len(args), plural(len(args), "y", "ies"), len(records))
			return nil
		},
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
