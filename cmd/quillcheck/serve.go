package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quillcheck/quillcheck/pkg/matcher"
	"github.com/quillcheck/quillcheck/pkg/pool"
	"github.com/quillcheck/quillcheck/pkg/serve"
	"github.com/quillcheck/quillcheck/pkg/validator"
	"github.com/spf13/cobra"
)

var (
	serveRulesPath     string
	serveWorkers       int
	serveQueueCapacity int
	serveTimeout       time.Duration
	serveByBlock       bool
	serveNameIndex     string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as streaming check server",
	Long: `Run Quillcheck as a long-lived streaming server that accepts check
requests via stdin and outputs results via stdout using NDJSON format.

The process loads rules once at startup and processes requests until
stdin closes or SIGTERM is received.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveRulesPath, "rules", "", "Path to custom rules YAML file")
	serveCmd.Flags().IntVar(&serveWorkers, "workers", pool.DefaultWorkers, "Number of concurrently executing jobs")
	serveCmd.Flags().IntVar(&serveQueueCapacity, "queue", pool.DefaultQueueCapacity, "Pending job queue capacity")
	serveCmd.Flags().DurationVar(&serveTimeout, "timeout", pool.DefaultCheckTimeout, "Per-job timeout")
	serveCmd.Flags().BoolVar(&serveByBlock, "by-block", false, "Dispatch one job per block instead of one per matcher")
	serveCmd.Flags().StringVar(&serveNameIndex, "name-index", "", "Endpoint of a name lookup service; enables the name validator")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	rules, err := loadRules(serveRulesPath, "", "")
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}
	matchers, err := matcher.NewPerCategory(rules)
	if err != nil {
		return fmt.Errorf("creating matchers: %w", err)
	}

	strategy := pool.DocumentPerCategory
	if serveByBlock {
		strategy = pool.BlockLevel
	}
	p := pool.New(
		pool.WithWorkers(serveWorkers),
		pool.WithQueueCapacity(serveQueueCapacity),
		pool.WithCheckTimeout(serveTimeout),
		pool.WithStrategy(strategy),
	)
	defer p.Close()

	for _, m := range matchers {
		p.AddMatcher(m)
	}
	if serveNameIndex != "" {
		p.AddMatcher(validator.AsMatcher(validator.NewNameCheck(serveNameIndex, nil)))
	}

	// Set up signal handling
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		cancel()
	}()

	srv := serve.NewServer(p, cmd.InOrStdin(), cmd.OutOrStdout())
	return srv.Run(ctx)
}
