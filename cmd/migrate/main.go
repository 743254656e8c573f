package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/ogurasousui/employee-directory/internal/platform/config"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
}

type options struct {
	configPath    string
	migrationsDir string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply employee directory database migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
	root.PersistentFlags().StringVar(&opts.migrationsDir, "dir", "assets/migrations", "directory containing migration files")

	root.AddCommand(
		actionCmd(opts, "up", "Apply all pending migrations"),
		actionCmd(opts, "down", "Revert all applied migrations"),
		actionCmd(opts, "drop", "Drop every table in the database"),
		actionCmd(opts, "version", "Print the current migration version"),
	)
	return root
}

func actionCmd(opts *options, action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := config.LoadEnvFiles(config.DefaultEnvFiles...); err != nil {
				return err
			}
			cfg, err := config.Load(config.ResolvePath(opts.configPath))
			if err != nil {
				return errors.Wrap(err, "load config")
			}

			if err := runMigration(cmd, action, opts.migrationsDir, cfg.Database.DSN()); err != nil {
				return errors.Wrapf(err, "migration %s", action)
			}
			cmd.Printf("migration %s completed\n", action)
			return nil
		},
	}
}

func runMigration(cmd *cobra.Command, action, dir, dsn string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return errors.Wrapf(err, "resolve path for %s", dir)
	}
	if _, err := os.Stat(absDir); err != nil {
		return errors.Wrapf(err, "migrations directory %s", absDir)
	}
	absDir = filepath.ToSlash(absDir)

	m, err := migrate.New(fmt.Sprintf("file://%s", absDir), dsn)
	if err != nil {
		return errors.Wrap(err, "create migrate instance")
	}
	defer m.Close()

	switch action {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	case "drop":
		return m.Drop()
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				cmd.Println("no migration applied")
				return nil
			}
			return err
		}
		cmd.Printf("version=%d dirty=%t\n", version, dirty)
		return nil
	default:
		return errors.Errorf("unsupported action %q", action)
	}
}
