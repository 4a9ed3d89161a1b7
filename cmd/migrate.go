package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/access-admin/db"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run the embedded sql migrations under db/migrations",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if !cfg.Storage.IsSQL() {
		cmd.Printf("storage driver %q keeps no schema; nothing to migrate\n", cfg.Storage.Driver)
		return nil
	}

	driver := sqlDriverName(cfg.Storage.Driver)
	conn, err := goose.OpenDBWithDriver(driver, cfg.Storage.Source)
	if err != nil {
		return fmt.Errorf("goose: failed to open DB: %w", err)
	}
	defer conn.Close()

	goose.SetBaseFS(db.Migrations)
	goose.SetTableName("schema_migrations")

	command := "up"
	if migrateRollback {
		command = "down"
	}
	if err := goose.RunContext(ctx, command, conn, "migrations"); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}

	cmd.Printf("goose %s applied on %s\n", command, cfg.Storage.Driver)
	return nil
}
