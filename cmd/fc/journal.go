package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/Lexi-Lu02/feeling-care/internal/journal"
	"github.com/Lexi-Lu02/feeling-care/internal/localstore"
	"github.com/Lexi-Lu02/feeling-care/internal/queue"
	"github.com/Lexi-Lu02/feeling-care/internal/schema"
	"github.com/Lexi-Lu02/feeling-care/internal/ui"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Daily mood journal",
	Long: `Record and inspect daily journal entries.

Entries are stored locally (one per calendar day, last write wins) and a
sync task is queued so the entry reaches the remote store on the next
drain cycle.`,
}

var (
	journalMood    string
	journalContent string
	journalWhen    string
)

var journalAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a journal entry",
	Long: `Record a journal entry for a calendar day.

Without --mood/--content an interactive form is shown. --when accepts a
natural-language time ("yesterday evening", "last friday"); the entry
replaces any existing entry for that day.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		store := mustOpenStore(cfg)

		mood := journalMood
		content := journalContent
		if mood == "" || content == "" {
			form := huh.NewForm(huh.NewGroup(
				huh.NewSelect[string]().
					Title("How are you feeling?").
					Options(huh.NewOptions("great", "good", "okay", "low", "rough")...).
					Value(&mood),
				huh.NewText().
					Title("What happened today?").
					Value(&content),
			))
			if err := form.Run(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}

		entry := schema.Entry{
			Mood:      mood,
			Content:   content,
			Timestamp: schema.Millis(time.Now()),
		}
		if journalWhen != "" {
			parsed, err := parseWhen(journalWhen)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error parsing --when: %v\n", err)
				os.Exit(1)
			}
			entry.Timestamp = schema.Millis(parsed)
		}
		entry.DateKey = schema.DateKey(entry.Timestamp)

		if err := journal.New(store).Add(entry); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving entry: %v\n", err)
			os.Exit(1)
		}

		// The local write already succeeded; a failed enqueue only
		// delays remote delivery, so it is reported as a warning.
		payload, _ := json.Marshal(entry)
		if _, err := queue.New(store).Enqueue(schema.TaskKindJournal, payload); err != nil {
			fmt.Fprintf(os.Stderr, "%s entry saved locally but could not be queued for sync: %v\n", ui.RenderWarn("⚠"), err)
			return
		}

		fmt.Printf("%s Journal entry recorded for %s (%s)\n", ui.RenderPass("✓"), entry.DateKey, entry.Mood)
	},
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List local journal entries",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		store := mustOpenStore(cfg)

		entries, status := journal.New(store).Entries()
		if status == localstore.StatusCorrupt {
			fmt.Printf("%s Stored journal state was unreadable; starting fresh on next write\n", ui.RenderWarn("⚠"))
		}
		if len(entries) == 0 {
			fmt.Println("No journal entries in the last 30 days.")
			return
		}

		for _, e := range entries {
			ts := schema.FromMillis(e.Timestamp).Local().Format("2006-01-02 15:04")
			fmt.Printf("%s  %-6s %s\n", ui.RenderMuted(ts), e.Mood, e.Content)
		}
	},
}

var journalDedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Collapse duplicate entries to one per day",
	Long: `Repair the journal log by keeping only the most recent entry per
calendar day. Needed after bulk imports or writes from older clients that
bypassed the one-entry-per-day guard.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		store := mustOpenStore(cfg)

		removed, err := journal.New(store).Deduplicate()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error deduplicating: %v\n", err)
			os.Exit(1)
		}
		if removed == 0 {
			fmt.Printf("%s No duplicates found\n", ui.RenderPass("✓"))
			return
		}
		fmt.Printf("%s Removed %d duplicate entr%s\n", ui.RenderPass("✓"), removed, pluralY(removed))
	},
}

// parseWhen resolves a natural-language time expression.
func parseWhen(text string) (time.Time, error) {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	result, err := w.Parse(text, time.Now())
	if err != nil {
		return time.Time{}, err
	}
	if result == nil {
		return time.Time{}, fmt.Errorf("could not understand %q", text)
	}
	return result.Time, nil
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

func init() {
	journalAddCmd.Flags().StringVar(&journalMood, "mood", "", "mood for the entry (great, good, okay, low, rough)")
	journalAddCmd.Flags().StringVar(&journalContent, "content", "", "entry text")
	journalAddCmd.Flags().StringVar(&journalWhen, "when", "", "natural-language time the entry belongs to")

	journalCmd.AddCommand(journalAddCmd)
	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalDedupeCmd)
	rootCmd.AddCommand(journalCmd)
}
