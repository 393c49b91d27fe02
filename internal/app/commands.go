package app

import (
	"context"
	"fmt"
	"time"

	"mohaa-portal/internal/cache"
	"mohaa-portal/internal/config"

	"github.com/spf13/cobra"
)

func (app *App) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mohaa-portal version %s\n", app.Version)
			fmt.Printf("Commit: %s\n", app.Commit)
			fmt.Printf("Date: %s\n", app.Date)
		},
	}
}

func (app *App) initConfigCommand() *cobra.Command {
	var format string
	var force bool

	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write an example mohaa-portal config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.Exists() && !force {
				return fmt.Errorf("a config file already exists, use --force to overwrite it")
			}
			path := "mohaa-portal." + format
			if err := config.GenerateExample(path, format); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "yml", "config format: yml or toml")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	return cmd
}

func (app *App) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the stats API response cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop every cached stats API response",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cache.Name(app.Cache) != "redis" {
				fmt.Println("The memory cache lives inside the running server; restart it to clear.")
				return nil
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			n, err := app.API.ClearCache(ctx)
			if err != nil {
				return fmt.Errorf("failed to clear redis cache: %w", err)
			}
			fmt.Printf("Cleared %d cached responses\n", n)
			return nil
		},
	})
	return cmd
}
