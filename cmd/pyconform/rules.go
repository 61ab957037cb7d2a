package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pyconform/internal/config"
	"pyconform/internal/rules"
)

var rulesFormat string

var rulesCmd = &cobra.Command{
	Use:   "rules [path]",
	Short: "List the convention rules and their effective severities",
	Long: `List every rule the checker can emit, with its default severity and the
effective severity after applying the configuration of the given project
root (current directory when omitted).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRules,
}

func init() {
	rulesCmd.Flags().StringVarP(&rulesFormat, "output", "o", "human", "Output format: human, json")
	rootCmd.AddCommand(rulesCmd)
}

type ruleListing struct {
	ID          string `json:"rule_id"`
	Severity    string `json:"severity"`
	Enabled     bool   `json:"enabled"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func runRules(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	cfg, err := config.LoadConfig(root)
	if err != nil {
		return err
	}

	var listings []ruleListing
	for _, md := range rules.AllMetadata() {
		severity := md.Severity
		if s, ok := cfg.SeverityOverride(md.ID); ok {
			severity = s
		}
		listings = append(listings, ruleListing{
			ID:          md.ID,
			Severity:    severity,
			Enabled:     cfg.RuleEnabled(md.ID),
			Title:       md.Title,
			Description: md.Description,
		})
	}

	if rulesFormat == "json" {
		data, err := json.MarshalIndent(listings, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal rule list: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	for _, l := range listings {
		state := "enabled"
		if !l.Enabled {
			state = "disabled"
		}
		fmt.Fprintf(os.Stdout, "%-26s %-8s %-9s %s\n", l.ID, l.Severity, state, l.Title)
	}
	return nil
}
