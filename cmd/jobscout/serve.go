package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jobscout-dev/jobscout/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scan daemon",
	Long:  "Run scheduled scans for every user with stored criteria; blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"db", cfg.DBPath,
		"schedule", cfg.Schedule.Spec,
		"fetch_min_delay", cfg.Fetch.MinDelay.String(),
		"ai_enabled", cfg.AI.Enabled,
	)

	st, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// Active flags left behind by a crashed process would block every scan
	// forever; this process now owns all of them.
	cleared, err := st.ResetStaleActive()
	if err != nil {
		logger.Error("failed to reset stale scans", "error", err)
		os.Exit(1)
	}
	if cleared > 0 {
		logger.Warn("cleared stale active scans from a previous process", "count", cleared)
	}

	ctrl := buildController(cfg, st, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(st, ctrl, cfg.Schedule.Spec, cfg.Schedule.RunOnStart, logger)
	if err := sched.Start(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("shutting down")
	sched.Stop()
	ctrl.Wait()
	logger.Info("goodbye")
	return nil
}
