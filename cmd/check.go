package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/huangsam/storecheck/core"
	"github.com/huangsam/storecheck/internal/contract"
)

// checkCmd focused on CI/CD policy enforcement.
var checkCmd = &cobra.Command{
	Use:   "check <path>...",
	Short: "Enforce store policy in CI/CD pipelines (fails build on violations)",
	Long: `Validate extension packages and fail with a non-zero exit code when any of them
would likely be rejected by the Chrome Web Store.

A package fails the check when its score is below --min-score or when it has a
finding at or above the --fail-on severity. Use --fail-on none to gate on score only.

Default gate: score >= 70 and no critical findings

Use cases:
- Pull request gates - block merges that add risky permissions
- Release validation - check the packaged build before uploading it
- Regression guard - catch policy drift as the manifest evolves

Examples:
  # Gate a release build with the default thresholds
  storecheck check dist/extension.zip

  # Stricter gate for a production pipeline
  storecheck check dist/extension.zip --min-score 90 --fail-on high

  # Only care about the score
  storecheck check ./my-extension --fail-on none --min-score 60`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		err := core.ExecuteCheck(commandContext(), cfg, storeManager)
		if errors.Is(err, core.ErrCheckFailed) {
			// The violations were already printed on stdout
			os.Exit(1)
		}
		if err != nil {
			contract.LogFatal("Policy check failed", err)
		}
	},
}
