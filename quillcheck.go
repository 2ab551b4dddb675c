// Package quillcheck provides a concurrent text-checking library.
//
// Quillcheck routes blocks of input text to a pool of registered matchers
// (independent rule engines) and aggregates their violations into a single
// result, with bounded concurrency, a bounded admission queue, and per-job
// timeouts.
//
// # Basic Usage
//
// Create a checker with builtin rules and check some text:
//
//	checker, err := quillcheck.NewChecker()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer checker.Close()
//
//	result, err := checker.CheckString(ctx, "This approach is very unique.")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, m := range result.Matches {
//	    fmt.Printf("%s at [%d-%d]: %s\n", m.Rule.ID, m.FromPos, m.ToPos, m.Message)
//	}
//
// # Custom Matchers
//
// Register additional matchers on the underlying pool:
//
//	checker.AddMatcher(validator.AsMatcher(validator.NewNameCheck(endpoint, nil)))
package quillcheck

import (
	"context"
	"fmt"
	"time"

	"github.com/quillcheck/quillcheck/pkg/matcher"
	"github.com/quillcheck/quillcheck/pkg/pool"
	"github.com/quillcheck/quillcheck/pkg/rule"
	"github.com/quillcheck/quillcheck/pkg/types"
)

// Re-export commonly used types for convenience.
// Users can import just "github.com/quillcheck/quillcheck" without
// subpackages.
type (
	// Category identifies a named group of rules.
	Category = types.Category

	// Check is one request to examine a document's blocks.
	Check = types.Check

	// CheckResult is the aggregated outcome of one check.
	CheckResult = types.CheckResult

	// Rule defines a checking rule.
	Rule = types.Rule

	// RuleMatch is a single reported violation.
	RuleMatch = types.RuleMatch

	// TextBlock is one contiguous region of the source document.
	TextBlock = types.TextBlock

	// TextRange is an inclusive character range in document coordinates.
	TextRange = types.TextRange
)

// Re-export the planning strategies.
const (
	DocumentPerCategory = pool.DocumentPerCategory
	BlockLevel          = pool.BlockLevel
)

// Checker bundles a matcher pool with one regex matcher per rule category.
type Checker struct {
	pool   *pool.Pool
	config *checkerConfig
}

// checkerConfig holds checker configuration.
type checkerConfig struct {
	rules        []*types.Rule
	workers      int
	queue        int
	checkTimeout time.Duration
	strategy     pool.Strategy
}

// Option configures a Checker.
type Option func(*checkerConfig)

// WithRules uses custom rules instead of the builtin rules.
func WithRules(rules []*Rule) Option {
	return func(c *checkerConfig) {
		c.rules = rules
	}
}

// WithWorkers sets the number of concurrently executing jobs.
func WithWorkers(n int) Option {
	return func(c *checkerConfig) {
		c.workers = n
	}
}

// WithQueueCapacity bounds the number of jobs waiting for a worker.
func WithQueueCapacity(n int) Option {
	return func(c *checkerConfig) {
		c.queue = n
	}
}

// WithCheckTimeout sets the per-job deadline.
func WithCheckTimeout(d time.Duration) Option {
	return func(c *checkerConfig) {
		c.checkTimeout = d
	}
}

// WithStrategy selects the check planning strategy.
func WithStrategy(s pool.Strategy) Option {
	return func(c *checkerConfig) {
		c.strategy = s
	}
}

// NewChecker creates a Checker with the given options.
//
// By default the checker uses the builtin rules, four workers, a queue of
// one hundred jobs, a ten second per-job timeout, and the
// document-per-category strategy.
func NewChecker(opts ...Option) (*Checker, error) {
	config := &checkerConfig{
		workers:      pool.DefaultWorkers,
		queue:        pool.DefaultQueueCapacity,
		checkTimeout: pool.DefaultCheckTimeout,
		strategy:     pool.DocumentPerCategory,
	}
	for _, opt := range opts {
		opt(config)
	}

	if config.rules == nil {
		loader := rule.NewLoader()
		rules, err := loader.LoadBuiltinRules()
		if err != nil {
			return nil, fmt.Errorf("loading builtin rules: %w", err)
		}
		config.rules = rules
	}

	// One matcher per category, so category-restricted checks dispatch
	// only that category's rules.
	matchers, err := matcher.NewPerCategory(config.rules)
	if err != nil {
		return nil, fmt.Errorf("creating matchers: %w", err)
	}

	p := pool.New(
		pool.WithWorkers(config.workers),
		pool.WithQueueCapacity(config.queue),
		pool.WithCheckTimeout(config.checkTimeout),
		pool.WithStrategy(config.strategy),
	)
	for _, m := range matchers {
		p.AddMatcher(m)
	}

	return &Checker{pool: p, config: config}, nil
}

// Check runs one check through the pool.
func (c *Checker) Check(ctx context.Context, check Check) (CheckResult, error) {
	return c.pool.Check(ctx, check)
}

// CheckString checks a single string as one block covering all categories.
func (c *Checker) CheckString(ctx context.Context, text string) (CheckResult, error) {
	return c.pool.Check(ctx, Check{
		SetID: "default",
		Blocks: []TextBlock{
			{ID: "block-1", Text: text, From: 0, To: len(text)},
		},
	})
}

// AddMatcher registers an additional matcher and returns its effective id.
func (c *Checker) AddMatcher(m matcher.Matcher) string {
	return c.pool.AddMatcher(m)
}

// Categories returns the union of the categories of every registered
// matcher.
func (c *Checker) Categories() []Category {
	return c.pool.CurrentCategories()
}

// Pool exposes the underlying matcher pool.
func (c *Checker) Pool() *pool.Pool {
	return c.pool
}

// RuleCount returns the number of rules loaded across the checker's regex
// matchers. Matchers added later with AddMatcher are not counted.
func (c *Checker) RuleCount() int {
	return len(c.config.rules)
}

// Close releases the pool's workers. Always call Close when done.
func (c *Checker) Close() {
	c.pool.Close()
}

// LoadRulesFromFile loads checking rules from a YAML file. Use with
// WithRules to create a checker with custom rules.
func LoadRulesFromFile(path string) ([]*Rule, error) {
	loader := rule.NewLoader()
	return loader.LoadRulesFile(path)
}

// LoadBuiltinRules returns all builtin checking rules.
func LoadBuiltinRules() ([]*Rule, error) {
	loader := rule.NewLoader()
	return loader.LoadBuiltinRules()
}
