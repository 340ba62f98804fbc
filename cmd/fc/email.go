package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Lexi-Lu02/feeling-care/internal/localstore"
	"github.com/Lexi-Lu02/feeling-care/internal/maillog"
	"github.com/Lexi-Lu02/feeling-care/internal/queue"
	"github.com/Lexi-Lu02/feeling-care/internal/schema"
	"github.com/Lexi-Lu02/feeling-care/internal/ui"
)

var emailCmd = &cobra.Command{
	Use:   "email",
	Short: "Outbound-email activity log",
	Long: `Record and inspect outbound email attempts.

Events are recorded locally (30-day window, newest 100 kept) and a sync
task is queued so the event reaches the remote store on the next drain
cycle. Actual email delivery happens elsewhere; this log only tracks it.`,
}

var (
	emailTo      string
	emailSubject string
	emailStatus  string
)

var emailLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Record an email attempt",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		store := mustOpenStore(cfg)

		if emailTo == "" {
			fmt.Fprintln(os.Stderr, "Error: --to is required")
			os.Exit(1)
		}

		event := schema.EmailEvent{
			To:      emailTo,
			Subject: emailSubject,
			Status:  emailStatus,
		}
		if err := maillog.New(store).Add(event); err != nil {
			fmt.Fprintf(os.Stderr, "Error recording email event: %v\n", err)
			os.Exit(1)
		}

		// Re-read the stamped event so the queued payload carries the
		// timestamp assigned at insert.
		events, _ := maillog.New(store).Events()
		stamped := event
		if len(events) > 0 {
			stamped = events[0]
		}

		payload, _ := json.Marshal(stamped)
		if _, err := queue.New(store).Enqueue(schema.TaskKindEmail, payload); err != nil {
			fmt.Fprintf(os.Stderr, "%s event recorded locally but could not be queued for sync: %v\n", ui.RenderWarn("⚠"), err)
			return
		}

		fmt.Printf("%s Email event recorded (%s -> %s)\n", ui.RenderPass("✓"), stamped.Status, stamped.To)
	},
}

var emailListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded email events",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		store := mustOpenStore(cfg)

		events, status := maillog.New(store).Events()
		if status == localstore.StatusCorrupt {
			fmt.Printf("%s Stored email state was unreadable; starting fresh on next write\n", ui.RenderWarn("⚠"))
		}
		if len(events) == 0 {
			fmt.Println("No email events in the last 30 days.")
			return
		}

		for _, e := range events {
			ts := schema.FromMillis(e.Timestamp).Local().Format("2006-01-02 15:04")
			fmt.Printf("%s  %-8s %-30s %s\n", ui.RenderMuted(ts), e.Status, e.To, e.Subject)
		}
	},
}

func init() {
	emailLogCmd.Flags().StringVar(&emailTo, "to", "", "recipient address")
	emailLogCmd.Flags().StringVar(&emailSubject, "subject", "", "message subject")
	emailLogCmd.Flags().StringVar(&emailStatus, "status", "sent", "delivery status (sent, failed, queued)")

	emailCmd.AddCommand(emailLogCmd)
	emailCmd.AddCommand(emailListCmd)
	rootCmd.AddCommand(emailCmd)
}
