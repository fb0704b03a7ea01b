package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/huangsam/storecheck/internal/contract"
	"github.com/huangsam/storecheck/internal/iocache"
	"github.com/huangsam/storecheck/schema"
)

// historyCmd is the parent command for validation history operations.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage validation history.",
	Long: `The history command provides subcommands to manage recorded validation runs.

History is only recorded when --history-backend is set. Each run stores the
package identity, score and finding counts, plus one row per finding.`,
}

// historySetup handles the setup for history commands.
// It only loads configuration and initializes stores without path validation.
func historySetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	cfg.HistoryBackend = schema.DatabaseBackend(viper.GetString("history-backend"))
	cfg.HistoryDBConnect = viper.GetString("history-db-connect")
	if cfg.HistoryBackend == "" {
		return fmt.Errorf("history backend is not configured (use --history-backend)")
	}
	if err := contract.ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	// The report cache is not needed for history management
	return iocache.InitStores("", "", cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// historyMigrateSetup handles the setup for history migrate command.
// It loads configuration but does NOT initialize stores (to avoid auto-creating tables).
func historyMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	cfg.HistoryBackend = schema.DatabaseBackend(viper.GetString("history-backend"))
	cfg.HistoryDBConnect = viper.GetString("history-db-connect")

	// Migrations default to the local SQLite history database
	if cfg.HistoryBackend == "" {
		cfg.HistoryBackend = schema.SQLiteBackend
	}
	return contract.ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// historyStatusCmd represents the history status command.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show validation history status.",
	Long: `Display the history backend, its connection state, the number of recorded
runs and findings, and the row count of each history table.

Examples:
  # Inspect the local SQLite history
  storecheck history status --history-backend sqlite`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return historySetup()
	},
	Run: func(_ *cobra.Command, _ []string) {
		status, err := storeManager.GetHistoryStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(os.Stdout, status)
	},
}

// historyClearCmd represents the history clear command.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear validation history.",
	Long: `Remove all recorded validation runs and findings.

For SQLite the history database file is deleted. For MySQL and PostgreSQL the
history tables are dropped.

Examples:
  # Clear the local SQLite history
  storecheck history clear --history-backend sqlite`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return loadConfigFile()
	},
	Run: func(_ *cobra.Command, _ []string) {
		backend := schema.DatabaseBackend(viper.GetString("history-backend"))
		connStr := viper.GetString("history-db-connect")
		if backend == "" {
			backend = schema.SQLiteBackend
		}
		if err := iocache.ClearHistory(backend, iocache.GetHistoryDBFilePath(), connStr); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// historyExportCmd represents the history export command.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export validation history to Parquet files.",
	Long: `Export every recorded run and finding to Parquet files for offline analysis.

The --output-file value is used as a prefix: runs go to <prefix>.runs.parquet
and findings go to <prefix>.findings.parquet.

Examples:
  # Export the local history
  storecheck history export --history-backend sqlite --output-file storecheck

  # Export a shared MySQL history
  storecheck history export --history-backend mysql --history-db-connect "$STORECHECK_HISTORY_DB_CONNECT" --output-file weekly`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return historySetup()
	},
	Run: func(_ *cobra.Command, _ []string) {
		outputFile := viper.GetString("output-file")
		if err := iocache.ExecuteHistoryExport(storeManager.GetHistoryStore(), outputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyMigrateCmd represents the history migrate command.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations for the history store.",
	Long: `Apply or roll back the embedded schema migrations of the history store.

By default the store is migrated to the latest version. Use --target-version 0
to roll back every migration, or a positive version to move to that version.

Examples:
  # Migrate the local SQLite history to the latest schema
  storecheck history migrate

  # Migrate a PostgreSQL history database
  storecheck history migrate --history-backend postgresql --history-db-connect "$STORECHECK_HISTORY_DB_CONNECT"

  # Roll back everything
  storecheck history migrate --target-version 0`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return historyMigrateSetup()
	},
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion, os.Stdout); err != nil {
			contract.LogFatal("Migration failed", err)
		}
	},
}
