package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/storecheck/core"
	"github.com/huangsam/storecheck/internal/contract"
)

// rulesCmd displays the active rulebook.
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Display the active store policy rulebook.",
	Long: `Display the thresholds, lists and severity penalties used for validation.

The rulebook starts from the built-in Chrome Web Store defaults and applies any
overrides from the rules and penalties sections of the config file.

Examples:
  # Show the rulebook
  storecheck rules

  # Check what a team config changes
  storecheck rules --config ./ci/.storecheck.yaml

  # Export the rulebook as JSON
  storecheck rules --output json --output-file rules.json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRules(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot display rules", err)
		}
	},
}
