package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLibsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "libs",
		Short: "List the cached libraries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache()
			if err != nil {
				return err
			}
			names, err := c.ListLibraries()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintln(out, "no cached libraries")
				return nil
			}
			for _, name := range names {
				marker := " "
				if name == libraryName {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s\n", marker, name)
			}
			return nil
		},
	}
}
