package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	rulesPath    string
	rulesInclude string
	rulesExclude string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List checking rules",
	Long:  "List the builtin rules, or the rules of a custom YAML file, in load order with each rule's category id",
	RunE:  runRules,
}

func init() {
	rulesCmd.Flags().StringVar(&rulesPath, "rules", "", "Path to custom rules YAML file")
	rulesCmd.Flags().StringVar(&rulesInclude, "include", "", "Include rules matching regex pattern (comma-separated)")
	rulesCmd.Flags().StringVar(&rulesExclude, "exclude", "", "Exclude rules matching regex pattern (comma-separated)")
}

func runRules(cmd *cobra.Command, args []string) error {
	rules, err := loadRules(rulesPath, rulesInclude, rulesExclude)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	byCategory := make(map[string]int)
	for _, r := range rules {
		byCategory[r.Category.ID]++
	}

	fmt.Fprintf(out, "%d rule(s) in %d category(ies)\n\n", len(rules), len(byCategory))
	for _, r := range rules {
		fmt.Fprintf(out, "%-28s %-10s %s\n", r.ID, r.Category.ID, r.Name)
	}
	return nil
}
