package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Lexi-Lu02/feeling-care/internal/connectivity"
	"github.com/Lexi-Lu02/feeling-care/internal/daemon"
	"github.com/Lexi-Lu02/feeling-care/internal/dashboard"
	"github.com/Lexi-Lu02/feeling-care/internal/queue"
	"github.com/Lexi-Lu02/feeling-care/internal/syncer"
	"github.com/Lexi-Lu02/feeling-care/internal/ui"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the sync daemon (foreground)",
	Long: `Run the background sync process in the foreground.

The daemon drains the pending-write queue once at startup and again after
every offline-to-online transition. With a dashboard port configured it
also serves a WebSocket stream of queue and sync activity.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		store := mustOpenStore(cfg)

		var logOut io.Writer = os.Stderr
		if cfg.LogFile != "" {
			logOut = &lumberjack.Logger{
				Filename:   cfg.LogFile,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     14, // days
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		remote, closeRemote, err := newRemoteWriter(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to remote: %v\n", err)
			os.Exit(1)
		}
		defer closeRemote()

		q := queue.New(store)
		s := syncer.New(q, remote, log.New(logOut, "[sync] ", log.LstdFlags))

		network := connectivity.NewWatcher(&connectivity.Config{
			ProbeAddr: cfg.ProbeAddr,
			Interval:  cfg.ProbeIntervalDuration(),
			Logger:    log.New(logOut, "[connectivity] ", log.LstdFlags),
		})

		var dash *dashboard.Server
		if cfg.DashboardPort > 0 {
			dash = dashboard.NewServer(&dashboard.Config{
				Port:   cfg.DashboardPort,
				Logger: log.New(logOut, "[dashboard] ", log.LstdFlags),
			})
			if err := dash.Start(); err != nil {
				fmt.Fprintf(os.Stderr, "Error starting dashboard: %v\n", err)
				os.Exit(1)
			}
			defer dash.Stop()
		}

		d, err := daemon.New(q, s, network, dash, store.Dir(), &daemon.Config{
			Logger: log.New(logOut, "[daemon] ", log.LstdFlags),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating daemon: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s Starting FeelingCare sync daemon...\n", ui.RenderAccent("🚀"))
		fmt.Printf("   State dir: %s\n", store.Dir())
		fmt.Printf("   Remote:    %s\n", cfg.RemoteMode)
		if dash != nil {
			fmt.Printf("   Dashboard: http://localhost:%d\n", cfg.DashboardPort)
		}
		fmt.Printf("\nPress Ctrl+C to stop\n\n")

		if err := d.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Daemon stopped with error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}
