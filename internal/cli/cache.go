package cli

import (
	"fmt"

	"github.com/piwi3910/circlepack/internal/cache"
	"github.com/spf13/cobra"
)

func cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the result cache",
		Long: `Solved layouts are cached by problem and solver settings so that
repeated runs return instantly. Use --no-cache on solve to bypass it.`,
	}
	cmd.AddCommand(cacheClearCommand(), cachePathCommand())
	return cmd
}

func cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached result",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cache.Dir()
			if err != nil {
				return err
			}
			n, err := cache.Clear(dir)
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Removed %d cached results", n)
			return nil
		},
	}
}

func cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cache.Dir()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, dir)
			return nil
		},
	}
}
