package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/quillcheck/quillcheck/pkg/matcher"
	"github.com/quillcheck/quillcheck/pkg/pool"
	"github.com/quillcheck/quillcheck/pkg/rule"
	"github.com/quillcheck/quillcheck/pkg/types"
	"github.com/quillcheck/quillcheck/pkg/validator"
	"github.com/spf13/cobra"
)

var (
	checkRulesPath         string
	checkRulesInclude      string
	checkRulesExclude      string
	checkCategories        string
	checkWorkers           int
	checkQueueCapacity     int
	checkTimeout           time.Duration
	checkByBlock           bool
	checkNameIndexEndpoint string
	checkColorMode         string
)

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Check a text file for rule violations",
	Long: `Check a file (or stdin when no file is given) against the loaded rules.
The text is split into paragraph blocks and dispatched through the
matcher pool; violations are printed with their document positions.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkRulesPath, "rules", "", "Path to custom rules YAML file")
	checkCmd.Flags().StringVar(&checkRulesInclude, "rules-include", "", "Include rules matching regex pattern (comma-separated)")
	checkCmd.Flags().StringVar(&checkRulesExclude, "rules-exclude", "", "Exclude rules matching regex pattern (comma-separated)")
	checkCmd.Flags().StringVar(&checkCategories, "categories", "", "Only check these category ids (comma-separated)")
	checkCmd.Flags().IntVar(&checkWorkers, "workers", pool.DefaultWorkers, "Number of concurrently executing jobs")
	checkCmd.Flags().IntVar(&checkQueueCapacity, "queue", pool.DefaultQueueCapacity, "Pending job queue capacity")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", pool.DefaultCheckTimeout, "Per-job timeout")
	checkCmd.Flags().BoolVar(&checkByBlock, "by-block", false, "Dispatch one job per block instead of one per matcher")
	checkCmd.Flags().StringVar(&checkNameIndexEndpoint, "name-index", "", "Endpoint of a name lookup service; enables the name validator")
	checkCmd.Flags().StringVar(&checkColorMode, "color", "auto", "Colorize output: auto, always, never")
}

func runCheck(cmd *cobra.Command, args []string) error {
	text, source, err := readCheckInput(cmd, args)
	if err != nil {
		return err
	}

	rules, err := loadRules(checkRulesPath, checkRulesInclude, checkRulesExclude)
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}

	matchers, err := matcher.NewPerCategory(rules)
	if err != nil {
		return fmt.Errorf("creating matchers: %w", err)
	}

	strategy := pool.DocumentPerCategory
	if checkByBlock {
		strategy = pool.BlockLevel
	}
	p := pool.New(
		pool.WithWorkers(checkWorkers),
		pool.WithQueueCapacity(checkQueueCapacity),
		pool.WithCheckTimeout(checkTimeout),
		pool.WithStrategy(strategy),
	)
	defer p.Close()

	for _, m := range matchers {
		p.AddMatcher(m)
	}
	if checkNameIndexEndpoint != "" {
		p.AddMatcher(validator.AsMatcher(validator.NewNameCheck(checkNameIndexEndpoint, nil)))
	}

	check := types.Check{
		DocumentID:  source,
		SetID:       "cli",
		CategoryIDs: rule.ParsePatterns(checkCategories),
		Blocks:      paragraphBlocks(text),
	}

	result, err := p.Check(cmd.Context(), check)
	if err != nil {
		return err
	}

	printReport(cmd.OutOrStdout(), source, result)
	return nil
}

func readCheckInput(cmd *cobra.Command, args []string) (text, source string, err error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("reading %s: %w", args[0], err)
		}
		return string(data), args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), "<stdin>", nil
}

// loadRules loads custom or builtin rules and applies include/exclude
// filters.
func loadRules(path, include, exclude string) ([]*types.Rule, error) {
	loader := rule.NewLoader()

	var rules []*types.Rule
	var err error
	if path != "" {
		rules, err = loader.LoadRulesFile(path)
	} else {
		rules, err = loader.LoadBuiltinRules()
	}
	if err != nil {
		return nil, err
	}

	return rule.Filter(rules, rule.FilterConfig{
		Include: rule.ParsePatterns(include),
		Exclude: rule.ParsePatterns(exclude),
	})
}

// paragraphBlocks splits text into blank-line separated blocks, keeping
// document offsets.
func paragraphBlocks(text string) []types.TextBlock {
	var blocks []types.TextBlock
	offset := 0
	n := 0
	for _, para := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(para) != "" {
			n++
			blocks = append(blocks, types.TextBlock{
				ID:   fmt.Sprintf("block-%d", n),
				Text: para,
				From: offset,
				To:   offset + len(para),
			})
		}
		offset += len(para) + 2 // separator
	}
	if len(blocks) == 0 {
		blocks = append(blocks, types.TextBlock{ID: "block-1", Text: text, From: 0, To: len(text)})
	}
	return blocks
}
