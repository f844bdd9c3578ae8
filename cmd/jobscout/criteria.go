package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jobscout-dev/jobscout/internal/model"
)

var criteriaUserID int64

var criteriaCmd = &cobra.Command{
	Use:   "criteria",
	Short: "Manage stored search criteria",
}

var criteriaImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import a user's search criteria from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCriteriaImport,
}

var criteriaShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a user's stored criteria",
	RunE:  runCriteriaShow,
}

func init() {
	criteriaCmd.PersistentFlags().Int64Var(&criteriaUserID, "user", 0, "user ID")
	criteriaCmd.MarkPersistentFlagRequired("user")
	criteriaCmd.AddCommand(criteriaImportCmd)
	criteriaCmd.AddCommand(criteriaShowCmd)
	rootCmd.AddCommand(criteriaCmd)
}

// criteriaFile is the on-disk YAML shape for a user's search profile.
type criteriaFile struct {
	Keywords          []string `yaml:"keywords"`
	Locations         []string `yaml:"locations"`
	ExclusionKeywords []string `yaml:"exclusion_keywords"`
	ResumePath        string   `yaml:"resume_path"`
	Resume            string   `yaml:"resume"`
	Criteria          string   `yaml:"criteria"`
}

func runCriteriaImport(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read criteria file: %w", err)
	}

	var cf criteriaFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return fmt.Errorf("parse criteria file: %w", err)
	}
	if len(cf.Keywords) == 0 {
		return fmt.Errorf("criteria file has no keywords")
	}
	if len(cf.Locations) == 0 {
		return fmt.Errorf("criteria file has no locations")
	}

	resume := cf.Resume
	if cf.ResumePath != "" {
		raw, err := os.ReadFile(cf.ResumePath)
		if err != nil {
			return fmt.Errorf("read resume %q: %w", cf.ResumePath, err)
		}
		resume = string(raw)
	}

	st, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	criteria := model.UserCriteria{
		UserID:            criteriaUserID,
		Keywords:          cf.Keywords,
		Locations:         cf.Locations,
		ExclusionKeywords: cf.ExclusionKeywords,
		Resume:            resume,
		Criteria:          cf.Criteria,
	}
	if err := st.SaveCriteria(criteria); err != nil {
		return fmt.Errorf("save criteria: %w", err)
	}

	fmt.Printf("criteria saved for user %d: %d keywords, %d locations, %d exclusions\n",
		criteriaUserID, len(cf.Keywords), len(cf.Locations), len(cf.ExclusionKeywords))
	return nil
}

func runCriteriaShow(cmd *cobra.Command, args []string) error {
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

	criteria, err := st.GetCriteria(criteriaUserID)
	if err != nil {
		return fmt.Errorf("load criteria: %w", err)
	}
	if criteria == nil {
		fmt.Printf("no criteria stored for user %d\n", criteriaUserID)
		return nil
	}

	fmt.Printf("user %d\n", criteriaUserID)
	fmt.Printf("  keywords:   %s\n", strings.Join(criteria.Keywords, ", "))
	fmt.Printf("  locations:  %s\n", strings.Join(criteria.Locations, ", "))
	fmt.Printf("  exclusions: %s\n", strings.Join(criteria.ExclusionKeywords, ", "))
	fmt.Printf("  resume:     %d chars\n", len(criteria.Resume))
	if criteria.Criteria != "" {
		fmt.Printf("  guidance:   %s\n", criteria.Criteria)
	}
	return nil
}
