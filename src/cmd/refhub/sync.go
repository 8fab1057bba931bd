package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"refhub/src/internal/bibtex"
	"refhub/src/internal/dedupe"
	"refhub/src/internal/textenc"
	"refhub/src/internal/webdav"
)

func newPullCmd() *cobra.Command {
	var merge bool
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Download the library from the remote store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, existing, err := loadCollection()
			if err != nil {
				return err
			}
			client, remoteName, err := remoteClient(c)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			data, err := client.Fetch(cmd.Context(), remoteName)
			if errors.Is(err, webdav.ErrNotFound) {
				fmt.Fprintln(out, "remote library not found; nothing to pull")
				return nil
			}
			if err != nil {
				return err
			}
			fetched, err := bibtex.Decode(textenc.Decode(data))
			if err != nil {
				return fmt.Errorf("remote library is not valid BibTeX: %w", err)
			}
			records := fetched
			if merge {
				var added, updated int
				records, added, updated = dedupe.Merge(existing, dedupe.FilterExact(fetched))
				fmt.Fprintf(out, "merged remote library: added %d, updated %d\n", added, updated)
			}
			if _, err := c.SaveLibrary(libraryName, records); err != nil {
				return err
			}
			fmt.Fprintf(out, "loaded %d entries from remote\n", len(records))
			return nil
		},
	}
	cmd.Flags().BoolVar(&merge, "merge", false, "merge into the local library instead of replacing it")
	return cmd
}

func newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Upload the library to the remote store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, records, err := loadCollection()
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return fmt.Errorf("library is empty; refusing to push")
			}
			client, remoteName, err := remoteClient(c)
			if err != nil {
				return err
			}
			if err := client.Store(cmd.Context(), remoteName, []byte(bibtex.Format(records))); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %d entries to remote\n", len(records))
			return nil
		},
	}
}
