package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jobscout-dev/jobscout/internal/scan"
)

var scanUserID int64

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one scan for a user and exit",
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().Int64Var(&scanUserID, "user", 0, "user ID to scan for")
	scanCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	st, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	ctrl := buildController(cfg, st, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := ctrl.RunScan(ctx, scanUserID)
	switch {
	case errors.Is(err, scan.ErrNoCriteria):
		fmt.Printf("user %d has no stored criteria; import some with `jobscout criteria import`\n", scanUserID)
		return nil
	case errors.Is(err, scan.ErrAlreadyActive):
		fmt.Printf("a scan is already running for user %d\n", scanUserID)
		return nil
	case err != nil:
		return err
	}

	if summary.NoCriteria {
		fmt.Printf("user %d has empty criteria, nothing to scan\n", scanUserID)
		return nil
	}

	fmt.Printf("scan %s: %d new jobs, %d links examined, %d/%d searches\n",
		summary.Outcome, summary.NewJobs, summary.LinksExamined,
		summary.QueriesDone, summary.QueriesTotal)
	if summary.Message != "" {
		fmt.Println(summary.Message)
	}
	if summary.Outcome == scan.OutcomeFailed {
		os.Exit(1)
	}
	return nil
}
