package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Lexi-Lu02/feeling-care/internal/journal"
	"github.com/Lexi-Lu02/feeling-care/internal/maillog"
	"github.com/Lexi-Lu02/feeling-care/internal/queue"
	"github.com/Lexi-Lu02/feeling-care/internal/syncer"
	"github.com/Lexi-Lu02/feeling-care/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one drain cycle against the remote store",
	Long: `Drain the pending-write queue once.

Each queued task is dispatched to the remote store in order. Failed tasks
are re-queued for the next cycle; malformed tasks are dropped.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		store := mustOpenStore(cfg)

		ctx := context.Background()
		remote, closeRemote, err := newRemoteWriter(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to remote: %v\n", err)
			os.Exit(1)
		}
		defer closeRemote()

		q := queue.New(store)
		depth := q.Depth()
		if depth == 0 {
			fmt.Printf("%s Queue is empty, nothing to sync\n", ui.RenderPass("✓"))
			return
		}

		fmt.Printf("%s Syncing %d pending task(s)...\n", ui.RenderAccent("🔄"), depth)
		start := time.Now()

		stats, err := syncer.New(q, remote, nil).RunCycle(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error during sync: %v\n", err)
			os.Exit(1)
		}

		elapsed := time.Since(start)
		fmt.Printf("%s Sync complete in %v\n", ui.RenderPass("✓"), elapsed.Round(time.Millisecond))
		fmt.Printf("   Delivered: %d\n", stats.Delivered)
		if stats.Requeued > 0 {
			fmt.Printf("   Requeued:  %d %s\n", stats.Requeued, ui.RenderWarn("(will retry next cycle)"))
		}
		if stats.Dropped > 0 {
			fmt.Printf("   Dropped:   %d %s\n", stats.Dropped, ui.RenderWarn("(malformed, not retried)"))
		}
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show local state and queue status",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		store := mustOpenStore(cfg)

		q := queue.New(store)
		entries, _ := journal.New(store).Entries()
		events, _ := maillog.New(store).Events()

		fmt.Printf("\n%s FeelingCare Offline State\n\n", ui.RenderAccent("📊"))
		fmt.Printf("State dir:       %s\n", store.Dir())
		fmt.Printf("Remote mode:     %s\n", cfg.RemoteMode)
		fmt.Printf("Journal entries: %d\n", len(entries))
		fmt.Printf("Email events:    %d\n", len(events))
		fmt.Printf("Pending tasks:   %d (cursor %d)\n", q.Depth(), q.Cursor())
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
}
