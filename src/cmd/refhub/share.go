package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "share [library]",
		Short: "Create a timestamped share copy of a cached library",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache()
			if err != nil {
				return err
			}
			name := libraryName
			if len(args) == 1 {
				name = args[0]
			}
			dst, err := c.ShareLibrary(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "share copy created: %s\n", dst)
			return nil
		},
	}
}
