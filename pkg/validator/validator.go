// Package validator hosts matchers that fan out to external services
// instead of pattern engines: a validator resolves pieces of text against a
// remote source and synthesises rule matches for anything it cannot
// resolve. The pool treats a validator like any other matcher via
// AsMatcher.
package validator

import (
	"context"

	"github.com/quillcheck/quillcheck/pkg/types"
)

// Request carries the blocks a validator examines.
type Request struct {
	Blocks []types.TextBlock
}

// Validator checks text against an external source. Its matches carry a
// single synthetic category.
type Validator interface {
	// Category returns the validator's synthetic category.
	Category() types.Category

	// Rules returns the synthetic rules this validator can report against.
	Rules() []types.Rule

	// Check examines the request's blocks, consulting external services as
	// needed. Implementations must honour ctx cancellation on outbound
	// calls.
	Check(ctx context.Context, req Request) ([]*types.RuleMatch, error)
}
