package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statusUserID int64

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a user's scan state and counters",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().Int64Var(&statusUserID, "user", 0, "user ID to report on")
	statusCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
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

	status, err := st.Status(statusUserID)
	if err != nil {
		return fmt.Errorf("reading status: %w", err)
	}

	state := "idle"
	if status.Active {
		state = "scanning"
		if status.StopRequested {
			state = "stopping"
		}
	}

	fmt.Printf("user %d: %s\n", statusUserID, state)
	fmt.Printf("  discovered: %d\n", status.Discovered)
	fmt.Printf("  analyzed:   %d\n", status.Analyzed)
	fmt.Printf("  approved:   %d\n", status.Approved)
	fmt.Printf("  applied:    %d\n", status.Applied)
	return nil
}
