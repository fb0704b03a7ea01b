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

// cacheCmd is the parent command for cache operations.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the report cache.",
	Long: `The cache command provides subcommands to manage cached validation reports.

Reports are keyed by package digest and rulebook fingerprint, so changing either
one already bypasses stale entries. Clearing is only needed to reclaim space.`,
}

// cacheSetup handles the setup for cache commands.
// It only loads configuration and initializes stores without path validation.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	cfg.CacheBackend = schema.DatabaseBackend(viper.GetString("cache-backend"))
	cfg.CacheDBConnect = viper.GetString("cache-db-connect")
	if err := contract.ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// History is not needed for cache management
	return iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect, "", "")
}

// cacheClearCmd represents the cache clear command.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the report cache.",
	Long: `Remove all cached validation reports.

For SQLite the cache database file is deleted. For MySQL and PostgreSQL the
report_cache table is dropped and recreated on the next run.

Examples:
  # Clear the default SQLite cache
  storecheck cache clear

  # Clear a shared PostgreSQL cache
  storecheck cache clear --cache-backend postgresql --cache-db-connect "$STORECHECK_CACHE_DB_CONNECT"`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return loadConfigFile()
	},
	Run: func(_ *cobra.Command, _ []string) {
		backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
		connStr := viper.GetString("cache-db-connect")
		if err := iocache.ClearCache(backend, iocache.GetCacheDBFilePath(), connStr); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd represents the cache status command.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show report cache status.",
	Long: `Display the cache backend, its connection state, the number of cached
reports, and the age of the newest and oldest entries.

Examples:
  # Inspect the default cache
  storecheck cache status`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return cacheSetup()
	},
	Run: func(_ *cobra.Command, _ []string) {
		store := storeManager.GetReportStore()
		if store == nil {
			contract.LogFatal("Cache status unavailable", fmt.Errorf("cache backend is not configured"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}
