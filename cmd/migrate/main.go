// migrate applies the embedded schema: migrate up, migrate down [--steps N], migrate version.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/config"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/db/migrate"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply or roll back the database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		directionCmd(migrate.Up, "Apply pending migrations"),
		directionCmd(migrate.Down, "Roll back migrations"),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func directionCmd(dir migrate.Direction, short string) *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   string(dir),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dsn, err := databaseURL()
			if err != nil {
				return err
			}
			if err := migrate.Run(dsn, dir, steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: done\n", dir)
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 0, "number of migrations to apply (0 = all)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dsn, err := databaseURL()
			if err != nil {
				return err
			}
			v, dirty, err := migrate.Version(dsn)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty=%t)\n", v, dirty)
			return nil
		},
	}
}

func databaseURL() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return "", fmt.Errorf("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	return cfg.DatabaseURL, nil
}
