package matcher

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/quillcheck/quillcheck/pkg/prefilter"
	"github.com/quillcheck/quillcheck/pkg/types"
)

const defaultContextChars = 40

// RegexpMatcher checks text blocks against regex rules using regexp2.
// Patterns are compiled once at construction; the compiled cache and the
// prefilter are read-only afterwards, so a single instance is safe for
// concurrent Check calls from multiple pool workers.
type RegexpMatcher struct {
	id           string
	rules        []*types.Rule
	regexCache   map[string]*regexp2.Regexp
	prefilter    *prefilter.Prefilter
	categories   []types.Category
	contextChars int
}

// NewRegexp compiles the configured rules into a RegexpMatcher.
// Every rule must carry a non-empty pattern.
func NewRegexp(cfg Config) (*RegexpMatcher, error) {
	if len(cfg.Rules) == 0 {
		return nil, fmt.Errorf("no rules provided")
	}
	contextChars := cfg.ContextChars
	if contextChars <= 0 {
		contextChars = defaultContextChars
	}

	m := &RegexpMatcher{
		id:           cfg.ID,
		rules:        cfg.Rules,
		regexCache:   make(map[string]*regexp2.Regexp, len(cfg.Rules)),
		prefilter:    prefilter.New(cfg.Rules),
		contextChars: contextChars,
	}

	seenCategories := make(map[string]bool)
	for _, rule := range cfg.Rules {
		if rule.Pattern == "" {
			return nil, fmt.Errorf("rule %s has no pattern", rule.ID)
		}
		// Try RE2 mode first (no backtracking); fall back to the default
		// Perl-compatible mode for patterns RE2 cannot express.
		re, err := regexp2.Compile(rule.Pattern, regexp2.RE2|regexp2.Multiline)
		if err != nil {
			re, err = regexp2.Compile(rule.Pattern, regexp2.Multiline)
			if err != nil {
				return nil, fmt.Errorf("failed to compile pattern %q for rule %s: %w", rule.Pattern, rule.ID, err)
			}
		}
		// Bound catastrophic backtracking.
		re.MatchTimeout = 5 * time.Second
		m.regexCache[rule.Pattern] = re

		if !seenCategories[rule.Category.ID] {
			seenCategories[rule.Category.ID] = true
			m.categories = append(m.categories, rule.Category)
		}
	}

	return m, nil
}

// ID returns the configured id, if any.
func (m *RegexpMatcher) ID() string { return m.id }

// Type identifies the engine kind.
func (m *RegexpMatcher) Type() string { return "regex" }

// Categories returns the distinct categories of the loaded rules.
func (m *RegexpMatcher) Categories() []types.Category {
	out := make([]types.Category, len(m.categories))
	copy(out, m.categories)
	return out
}

// Check scans every block of the request against the loaded rules.
// Match positions are inclusive character positions in the coordinates of
// the blocks as received.
func (m *RegexpMatcher) Check(ctx context.Context, req types.MatcherRequest) ([]*types.RuleMatch, error) {
	var matches []*types.RuleMatch
	for _, block := range req.Blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		blockMatches, err := m.checkBlock(block)
		if err != nil {
			return nil, err
		}
		matches = append(matches, blockMatches...)
	}
	return matches, nil
}

func (m *RegexpMatcher) checkBlock(block types.TextBlock) ([]*types.RuleMatch, error) {
	var matches []*types.RuleMatch

	for _, rule := range m.prefilter.Filter(block.Text) {
		re := m.regexCache[rule.Pattern]
		if re == nil {
			continue
		}

		match, err := re.FindStringMatch(block.Text)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[warn] rule %s regex error (skipping rule for this block): %v\n", rule.ID, err)
			continue
		}
		for match != nil {
			if match.Length > 0 {
				matches = append(matches, m.buildMatch(rule, block, match))
			}
			match, err = re.FindNextMatch(match)
			if err != nil {
				fmt.Fprintf(os.Stderr, "[warn] rule %s regex error (skipping rule for this block): %v\n", rule.ID, err)
				break
			}
		}
	}

	return matches, nil
}

func (m *RegexpMatcher) buildMatch(rule *types.Rule, block types.TextBlock, match *regexp2.Match) *types.RuleMatch {
	start := match.Index
	end := start + match.Length
	before, after := ExtractContext(block.Text, start, end, m.contextChars)
	matched := match.String()

	return &types.RuleMatch{
		Rule:           *rule,
		FromPos:        block.From + start,
		ToPos:          block.From + end - 1,
		MatchedText:    matched,
		MatchContext:   before + matched + after,
		Message:        rule.Message,
		PrecedingText:  before,
		SubsequentText: after,
		MatcherType:    m.Type(),
	}
}
