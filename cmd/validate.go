package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/storecheck/core"
	"github.com/huangsam/storecheck/internal/contract"
)

// validateCmd validates one or more extension packages and reports every finding.
var validateCmd = &cobra.Command{
	Use:   "validate <path>...",
	Short: "Validate extension packages against Chrome Web Store policy.",
	Long: `Validate extension packages and print every policy finding with a 0-100 compliance score.

Each path may be an unpacked extension directory, a .zip archive, or a .crx package.
Packages are validated concurrently; reports keep the order of the paths given.

Reports are cached by package digest and rulebook, so unchanged packages are
not validated twice. Use --history-backend to keep a record of every run.

Examples:
  # Validate an unpacked extension
  storecheck validate ./my-extension

  # Validate a packaged build and write JSON
  storecheck validate dist/extension.zip --output json --output-file report.json

  # Validate several builds at once with more workers
  storecheck validate build/*.zip --workers 8

  # Export findings for later analysis
  storecheck validate dist/extension.zip --output parquet --output-file findings.parquet`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteValidate(commandContext(), cfg, storeManager); err != nil {
			contract.LogFatal("Validation failed", err)
		}
	},
}
