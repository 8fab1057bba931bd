package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"refhub/src/internal/record"
)

func newEditCmd() *cobra.Command {
	var sets []string
	var unsets []string
	var rename string
	cmd := &cobra.Command{
		Use:   "edit <key>",
		Short: "Edit fields of one entry (--set field=value, --unset field, --rename newkey)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(sets) == 0 && len(unsets) == 0 && rename == "" {
				return fmt.Errorf("nothing to do; pass --set, --unset, or --rename")
			}
			c, records, err := loadCollection()
			if err != nil {
				return err
			}
			i := record.FindByID(records, args[0])
			if i < 0 {
				return fmt.Errorf("no entry with key %q", args[0])
			}
			r := records[i].Clone()
			for _, kv := range sets {
				name, value, ok := strings.Cut(kv, "=")
				if !ok || strings.TrimSpace(name) == "" {
					return fmt.Errorf("invalid --set %q, want field=value", kv)
				}
				r.Set(strings.TrimSpace(name), value)
			}
			for _, name := range unsets {
				r.Unset(strings.TrimSpace(name))
			}
			if rename != "" {
				if j := record.FindByID(records, rename); j >= 0 && j != i {
					return fmt.Errorf("key %q is already taken", rename)
				}
				r.ID = rename
			}
			records[i] = r
			if _, err := c.SaveLibrary(libraryName, records); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", r.ID)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value to set (repeatable)")
	cmd.Flags().StringArrayVar(&unsets, "unset", nil, "field to remove (repeatable)")
	cmd.Flags().StringVar(&rename, "rename", "", "new citation key")
	return cmd
}
