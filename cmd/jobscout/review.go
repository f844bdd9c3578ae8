package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jobscout-dev/jobscout/internal/review"
)

var reviewUserID int64

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Browse approved jobs interactively (TUI)",
	Long:  "Open the approved-jobs review screen to mark postings applied, dismiss them, or archive them.",
	RunE:  runReview,
}

func init() {
	reviewCmd.Flags().Int64Var(&reviewUserID, "user", 0, "user ID to review")
	reviewCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
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

	return review.Run(st, reviewUserID)
}
