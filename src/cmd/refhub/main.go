package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"refhub/src/internal/cache"
)

var (
	cacheDir    string
	libraryName string
)

var rootCmd = &cobra.Command{
	Use:   "refhub",
	Short: "Personal reference-library manager (BibTeX import, dedupe, cloud sync)",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Pick up WebDAV credentials from a .env file if present.
		_ = godotenv.Load()
	},
}

func execute() error {
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache", "cache", "cache directory")
	rootCmd.PersistentFlags().StringVar(&libraryName, "library", cache.DefaultLibrary(), "library file within the cache")
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newLibsCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newEditCmd())
	rootCmd.AddCommand(newRemoveCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newShareCmd())
	rootCmd.AddCommand(newRemoteCmd())
	rootCmd.AddCommand(newPullCmd())
	rootCmd.AddCommand(newPushCmd())
	return rootCmd.Execute()
}

func main() {
	if err := execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
