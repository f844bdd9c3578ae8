package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var stopUserID int64

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Request a running scan to stop",
	Long:  "Raise the persisted stop flag for a user's scan. The scan finishes its current posting and then exits, whichever process owns it.",
	RunE:  runStop,
}

func init() {
	stopCmd.Flags().Int64Var(&stopUserID, "user", 0, "user ID whose scan to stop")
	stopCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
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

	active, err := st.IsActive(stopUserID)
	if err != nil {
		return fmt.Errorf("checking scan state: %w", err)
	}
	if !active {
		fmt.Printf("no scan is running for user %d\n", stopUserID)
		return nil
	}
	if err := st.RequestStop(stopUserID); err != nil {
		return fmt.Errorf("requesting stop: %w", err)
	}
	fmt.Printf("stop requested for user %d; the scan will exit after its current posting\n", stopUserID)
	return nil
}
