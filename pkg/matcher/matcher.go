package matcher

import (
	"context"

	"github.com/quillcheck/quillcheck/pkg/types"
)

// Matcher examines blocks of text and reports rule violations for the
// categories it covers.
//
// Thread safety: a matcher registered with a pool is invoked from multiple
// workers at once, so implementations must be safe for concurrent use.
type Matcher interface {
	// ID returns the matcher's id. It may be empty, in which case the pool
	// assigns one at registration.
	ID() string

	// Type identifies the engine kind, e.g. "regex".
	Type() string

	// Categories returns the rule categories this matcher covers.
	Categories() []types.Category

	// Check examines the request's blocks and returns every violation found.
	// Positions in returned matches are in the coordinates of the blocks as
	// received; the pool re-projects them across elided skip ranges.
	Check(ctx context.Context, req types.MatcherRequest) ([]*types.RuleMatch, error)
}

// Config for regex matcher initialization.
type Config struct {
	// ID is optional; the pool assigns one at registration if empty.
	ID string

	// Rules to compile and load into the matcher.
	Rules []*types.Rule

	// ContextChars bounds the preceding and subsequent context captured
	// around each match. Zero uses a default window.
	ContextChars int
}

// New creates a regex-backed Matcher with the given config.
func New(cfg Config) (Matcher, error) {
	return NewRegexp(cfg)
}

// NewPerCategory compiles one regex matcher per rule category, in
// first-seen category order. Checks restricted to a category then dispatch
// only that category's rules.
func NewPerCategory(rules []*types.Rule) ([]Matcher, error) {
	byCategory := make(map[string][]*types.Rule)
	var order []string
	for _, r := range rules {
		if _, ok := byCategory[r.Category.ID]; !ok {
			order = append(order, r.Category.ID)
		}
		byCategory[r.Category.ID] = append(byCategory[r.Category.ID], r)
	}

	matchers := make([]Matcher, 0, len(order))
	for _, id := range order {
		m, err := NewRegexp(Config{Rules: byCategory[id]})
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}
	return matchers, nil
}
