package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"

	"github.com/quillcheck/quillcheck/pkg/matcher"
	"github.com/quillcheck/quillcheck/pkg/types"
)

// nameCandidateRe finds capitalised multi-word sequences that look like
// proper names.
var nameCandidateRe = regexp.MustCompile(`\b[A-Z][a-z]+(?: [A-Z][a-z]+)+\b`)

// NameCheckValidator resolves name-like phrases against an external search
// service and reports any phrase the service does not know.
type NameCheckValidator struct {
	endpoint string
	client   *http.Client
	category types.Category
	rule     types.Rule
}

// lookupResponse is the search service's answer: how many documents
// mention the queried phrase.
type lookupResponse struct {
	Hits int `json:"hits"`
}

// NewNameCheck creates a validator that queries endpoint with ?q=<phrase>.
// A nil client uses http.DefaultClient.
func NewNameCheck(endpoint string, client *http.Client) *NameCheckValidator {
	if client == nil {
		client = http.DefaultClient
	}
	category := types.Category{ID: "names", Name: "Name check"}
	return &NameCheckValidator{
		endpoint: endpoint,
		client:   client,
		category: category,
		rule: types.Rule{
			ID:       "names.unknown-name",
			Name:     "Unknown name",
			Message:  "This name could not be verified against the reference index.",
			Category: category,
		},
	}
}

// Category returns the validator's synthetic category.
func (v *NameCheckValidator) Category() types.Category { return v.category }

// Rules returns the single synthetic rule this validator reports against.
func (v *NameCheckValidator) Rules() []types.Rule { return []types.Rule{v.rule} }

// Check looks up every name candidate in every block and synthesises a
// match for each phrase the service has no record of.
func (v *NameCheckValidator) Check(ctx context.Context, req Request) ([]*types.RuleMatch, error) {
	var matches []*types.RuleMatch
	for _, block := range req.Blocks {
		for _, loc := range nameCandidateRe.FindAllStringIndex(block.Text, -1) {
			start, end := loc[0], loc[1]
			phrase := block.Text[start:end]

			known, err := v.lookup(ctx, phrase)
			if err != nil {
				return nil, err
			}
			if known {
				continue
			}

			before, after := matcher.ExtractContext(block.Text, start, end, 40)
			matches = append(matches, &types.RuleMatch{
				Rule:           v.rule,
				FromPos:        block.From + start,
				ToPos:          block.From + end - 1,
				MatchedText:    phrase,
				MatchContext:   before + phrase + after,
				Message:        fmt.Sprintf("%q could not be verified against the reference index.", phrase),
				PrecedingText:  before,
				SubsequentText: after,
				MatcherType:    "validator",
			})
		}
	}
	return matches, nil
}

// lookup queries the search service for a phrase. Any transport failure or
// unexpected status is surfaced to the caller.
func (v *NameCheckValidator) lookup(ctx context.Context, phrase string) (bool, error) {
	u := v.endpoint + "?q=" + url.QueryEscape(phrase)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create lookup request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("name lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("name lookup failed: HTTP %d", resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("name lookup returned invalid JSON: %w", err)
	}
	return body.Hits > 0, nil
}
