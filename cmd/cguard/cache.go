package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cguard/internal/driver"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the verdict cache used by check --cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "dir",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := driver.OpenCache("cguard")
			if err != nil {
				return fmt.Errorf("failed to open cache: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.Dir())
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached verdict",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := driver.OpenCache("cguard")
			if err != nil {
				return fmt.Errorf("failed to open cache: %w", err)
			}
			if err := c.DropAll(); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			if quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet"); !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", c.Dir())
			}
			return nil
		},
	})
	return cmd
}
