package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/inventa/backend/internal/infrastructure/config"
	"github.com/inventa/backend/internal/infrastructure/logger"
	"github.com/inventa/backend/internal/infrastructure/migration"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli carries the state shared by all subcommands
type cli struct {
	logLevel string
	cfg      *config.Config
	log      *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Inventa database migration tool",
		Long: `Applies the embedded schema migrations to the database configured in
config.toml or INVENTA_DATABASE_* environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			log, err := logger.New(logger.Config{Level: c.logLevel, Format: "console", Output: "stderr"})
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.cfg, c.log = cfg, log
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		c.newUpCmd(),
		c.newDownCmd(),
		c.newStepsCmd(),
		c.newGotoCmd(),
		c.newVersionCmd(),
		c.newForceCmd(),
		c.newListCmd(),
	)
	return rootCmd
}

// withMigrator opens a migrator on its own connection and closes it afterwards
func (c *cli) withMigrator(fn func(m *migration.Migrator) error) error {
	m, err := migration.NewFromURL(c.cfg.Database.MigrationURL(), c.cfg.Database.Driver, c.log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			c.log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()
	return fn(m)
}

func (c *cli) newUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return c.withMigrator(func(m *migration.Migrator) error { return m.Up() })
		},
	}
}

func (c *cli) newDownCmd() *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if !confirm {
				return fmt.Errorf("down drops every table; rerun with --confirm")
			}
			return c.withMigrator(func(m *migration.Migrator) error { return m.Down() })
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm rolling back every migration")
	return cmd
}

func (c *cli) newStepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "steps <n>",
		Short: "Apply n migrations (negative rolls back)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return c.withMigrator(func(m *migration.Migrator) error { return m.Steps(n) })
		},
	}
}

func (c *cli) newGotoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "goto <version>",
		Short: "Migrate up or down to a specific version",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			version, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return c.withMigrator(func(m *migration.Migrator) error { return m.GoTo(uint(version)) })
		},
	}
}

func (c *cli) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the current migration version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withMigrator(func(m *migration.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "version %d dirty=%t\n", version, dirty)
				return nil
			})
		},
	}
}

func (c *cli) newForceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "force <version>",
		Short: "Set the migration version without running migrations",
		Long:  "Clears a dirty state after a failed migration has been repaired by hand.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return c.withMigrator(func(m *migration.Migrator) error { return m.Force(version) })
		},
	}
}

func (c *cli) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the embedded migrations for the configured driver",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			infos, err := migration.List(c.cfg.Database.Driver)
			if err != nil {
				return err
			}
			for _, info := range infos {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%06d  %s\n", info.Version, info.Name)
			}
			return nil
		},
	}
}
