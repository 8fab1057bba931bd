package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"refhub/src/internal/bibtex"
	"refhub/src/internal/record"
)

func newExportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export [key...]",
		Short: "Write entries as BibTeX (default: the whole library to stdout)",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, records, err := loadCollection()
			if err != nil {
				return err
			}
			selected := records
			if len(args) > 0 {
				selected = nil
				for _, key := range args {
					i := record.FindByID(records, key)
					if i < 0 {
						return fmt.Errorf("no entry with key %q", key)
					}
					selected = append(selected, records[i])
				}
			}
			text := bibtex.Format(selected)
			if output == "" {
				fmt.Fprint(cmd.OutOrStdout(), text)
				return nil
			}
			if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d entries to %s\n", len(selected), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}
