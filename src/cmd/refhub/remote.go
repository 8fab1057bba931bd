package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"refhub/src/internal/cache"
)

func newRemoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Manage the WebDAV remote store configuration",
	}
	cmd.AddCommand(newRemoteSetCmd())
	cmd.AddCommand(newRemoteShowCmd())
	return cmd
}

func newRemoteSetCmd() *cobra.Command {
	var cfg cache.RemoteConfig
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Save remote store settings (password via " + passwordEnv + ")",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.URL == "" {
				return fmt.Errorf("--url is required")
			}
			c, err := openCache()
			if err != nil {
				return err
			}
			if cfg.Filename == "" {
				cfg.Filename = cache.DefaultLibrary()
			}
			if err := c.SaveRemoteConfig(cfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "remote config saved")
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.URL, "url", "", "WebDAV base URL, e.g. https://dav.example.com/dav/")
	cmd.Flags().StringVar(&cfg.Username, "user", "", "username or email")
	cmd.Flags().StringVar(&cfg.Filename, "file", "", "remote library filename")
	cmd.Flags().BoolVar(&cfg.Insecure, "insecure", false, "skip TLS certificate verification")
	return cmd
}

func newRemoteShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the saved remote store settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache()
			if err != nil {
				return err
			}
			cfg, err := c.LoadRemoteConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if cfg == nil {
				fmt.Fprintln(out, "no remote configured")
				return nil
			}
			fmt.Fprintf(out, "url:      %s\nuser:     %s\nfile:     %s\ninsecure: %v\n",
				cfg.URL, cfg.Username, cfg.Filename, cfg.Insecure)
			return nil
		},
	}
}
