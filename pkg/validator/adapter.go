package validator

import (
	"context"

	"github.com/quillcheck/quillcheck/pkg/matcher"
	"github.com/quillcheck/quillcheck/pkg/types"
)

// AsMatcher exposes a validator to the pool as an ordinary matcher with a
// single synthetic category.
func AsMatcher(v Validator) matcher.Matcher {
	return &matcherAdapter{v: v}
}

type matcherAdapter struct {
	v Validator
}

func (a *matcherAdapter) ID() string   { return "" }
func (a *matcherAdapter) Type() string { return "validator" }

func (a *matcherAdapter) Categories() []types.Category {
	return []types.Category{a.v.Category()}
}

func (a *matcherAdapter) Check(ctx context.Context, req types.MatcherRequest) ([]*types.RuleMatch, error) {
	return a.v.Check(ctx, Request{Blocks: req.Blocks})
}
