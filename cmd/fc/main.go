// Command fc is the FeelingCare offline sync CLI.
//
// It records journal entries and email events into the local offline
// state, and syncs the pending-write queue to the remote store either on
// demand (fc sync) or continuously (fc daemon).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "fc",
	Short: "FeelingCare offline sync",
	Long: `fc manages the FeelingCare offline state: the daily mood journal,
the outbound-email activity log, and the pending-write queue that replays
local writes to the remote store when the network allows.

Local writes always succeed; syncing is a best-effort background concern.`,
	Version: version,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
