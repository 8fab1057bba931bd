package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"refhub/src/internal/bibtex"
	"refhub/src/internal/dedupe"
	"refhub/src/internal/record"
	"refhub/src/internal/session"
	"refhub/src/internal/stringsx"
	"refhub/src/internal/textenc"
)

func newImportCmd() *cobra.Command {
	var takeFirst bool
	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import BibTeX files into the library, resolving duplicates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, existing, err := loadCollection()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			var batch []record.Record
			for _, path := range args {
				raw, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				recs, err := bibtex.Decode(textenc.Decode(raw))
				if err != nil {
					fmt.Fprintf(out, "skipping %s: %v\n", path, err)
					continue
				}
				batch = append(batch, recs...)
			}
			if len(batch) == 0 {
				return fmt.Errorf("no valid entries found in the given files")
			}
			// Filter before minting keys: identical keyless records must
			// still collapse onto each other.
			batch = dedupe.FilterExact(batch)
			for i := range batch {
				if strings.TrimSpace(batch[i].ID) == "" {
					batch[i].ID = newCitationKey()
				}
			}

			sess := session.New(existing)
			pending, res := sess.BeginImport(batch)
			if pending != nil {
				fmt.Fprintf(out, "found %d group(s) of similar entries\n", len(pending.Groups))
				res, err = resolveConflicts(cmd, sess, pending, takeFirst)
				if err != nil {
					return err
				}
				if res == nil {
					fmt.Fprintln(out, "import abandoned; library unchanged")
					return nil
				}
			}
			if _, err := c.SaveLibrary(libraryName, sess.Records()); err != nil {
				return err
			}
			fmt.Fprintf(out, "Import complete: added %d, updated %d (%d entries total)\n",
				res.Added, res.Updated, res.Total)
			return nil
		},
	}
	cmd.Flags().BoolVar(&takeFirst, "take-first", false, "keep the first entry of every conflict group without prompting")
	return cmd
}

// newCitationKey mints a key for records that arrive without one.
func newCitationKey() string {
	return "ref" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// resolveConflicts walks the user through every group, lets them revise any
// choice, then applies all choices with one confirmation. Returns nil when
// the user abandons the import.
func resolveConflicts(cmd *cobra.Command, sess *session.Session, pending *session.PendingImport, takeFirst bool) (*session.MergeResult, error) {
	if takeFirst {
		res, err := sess.ConfirmImport()
		if err != nil {
			return nil, err
		}
		return &res, nil
	}

	out := cmd.OutOrStdout()
	in := bufio.NewScanner(cmd.InOrStdin())
	for {
		for i, group := range pending.Groups {
			fmt.Fprintf(out, "\nGroup %d of %d: %d similar entries\n", i+1, len(pending.Groups), len(group))
			printGroup(out, group)
			fmt.Fprintf(out, "keep which entry? [1-%d, enter keeps %d, q abandons] ", len(group), pending.Selections[i]+1)
			answer, ok := readLine(in)
			if !ok || answer == "q" {
				sess.AbandonImport()
				return nil, nil
			}
			if answer == "" {
				continue
			}
			n, err := strconv.Atoi(answer)
			if err != nil || sess.SetSelection(i, n-1) != nil {
				fmt.Fprintf(out, "invalid choice %q, keeping entry %d\n", answer, pending.Selections[i]+1)
			}
		}

		fmt.Fprint(out, "\napply these choices and continue the import? [Y/n/q] ")
		answer, ok := readLine(in)
		if !ok || answer == "q" {
			sess.AbandonImport()
			return nil, nil
		}
		if answer == "" || answer == "y" || answer == "yes" {
			res, err := sess.ConfirmImport()
			if err != nil {
				return nil, err
			}
			return &res, nil
		}
		// Any other answer revisits the groups with current choices intact.
	}
}

func printGroup(out io.Writer, group []record.Record) {
	rows := make([][]string, 0, len(group))
	for i, r := range group {
		row := entryRows([]record.Record{r})[0]
		rows = append(rows, append([]string{strconv.Itoa(i + 1)}, row...))
	}
	fmt.Fprintln(out, renderTable(append([]string{"#"}, entryHeaders...), rows))
	for i, r := range group {
		fmt.Fprintf(out, "  [%d] %s (%d fields)\n", i+1, r.ID, r.FieldCount())
		for _, name := range r.FieldNames() {
			fmt.Fprintf(out, "      %s = %s\n", name, stringsx.Truncate(r.Get(name), 100))
		}
	}
}

func readLine(s *bufio.Scanner) (string, bool) {
	if !s.Scan() {
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(s.Text())), true
}
