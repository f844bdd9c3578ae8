package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobscout-dev/jobscout/internal/ai"
	"github.com/jobscout-dev/jobscout/internal/config"
	"github.com/jobscout-dev/jobscout/internal/fetch"
	"github.com/jobscout-dev/jobscout/internal/model"
	"github.com/jobscout-dev/jobscout/internal/notifier"
	"github.com/jobscout-dev/jobscout/internal/scan"
	"github.com/jobscout-dev/jobscout/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobscout",
	Short: "Personal job scanner for listing-site searches",
	Long:  "JobScout crawls listing-site search results per user, filters and AI-screens the postings, and records the approvals for review.",
	// Default to `serve` so the bare binary runs the daemon, which keeps
	// systemd unit files simple.
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBSCOUT_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBSCOUT_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBSCOUT_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

func setupEvaluator(cfg *config.Config, logger *slog.Logger) model.Evaluator {
	if !cfg.AI.Enabled {
		logger.Info("AI evaluation disabled, no jobs will be approved")
		return ai.NewNopEvaluator()
	}
	httpClient := &http.Client{Timeout: cfg.AI.Timeout}
	provider := ai.NewOpenAIProvider(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, httpClient)
	return ai.NewLLMEvaluator(provider, cfg.AI.MaxRetries, 2*time.Second, logger)
}

// openStore opens the SQLite database named by the config.
func openStore(cfg *config.Config) (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(cfg.DBPath)
}

// buildController wires the full scan pipeline around an open store.
func buildController(cfg *config.Config, st *store.SQLiteStore, logger *slog.Logger) *scan.Controller {
	httpClient := &http.Client{Timeout: cfg.Fetch.Timeout}
	fetcher := fetch.NewHTTPFetcher(httpClient, cfg.Fetch.MinDelay, logger)
	eval := setupEvaluator(cfg, logger)
	n := setupNotifier(cfg, httpClient, logger)

	scanner := scan.NewScanner(st, st, fetcher, eval, n, cfg.Scan.MaxDetailAttempts, logger)
	return scan.NewController(scanner, st, st, logger)
}
