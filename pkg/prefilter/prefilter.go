// Package prefilter narrows the rule set for a piece of text using
// Aho-Corasick keyword matching, so matchers with large rule sets skip
// rules whose trigger words cannot occur in the input.
package prefilter

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/quillcheck/quillcheck/pkg/types"
)

// Prefilter indexes rule keywords for fast candidate selection.
// Keyword matching is case-insensitive, since prose casing varies freely.
type Prefilter struct {
	matcher        *ahocorasick.Matcher
	keywords       []string                 // lowercased keyword at each index
	keywordRules   map[string][]*types.Rule // keyword -> rules triggered by it
	noKeywordRules []*types.Rule            // rules without keywords, always candidates
}

// New builds a prefilter from rules. Rules without keywords are always
// returned by Filter.
func New(rules []*types.Rule) *Prefilter {
	pf := &Prefilter{
		keywordRules: make(map[string][]*types.Rule),
	}

	seen := make(map[string]bool)
	for _, rule := range rules {
		if len(rule.Keywords) == 0 {
			pf.noKeywordRules = append(pf.noKeywordRules, rule)
			continue
		}
		for _, keyword := range rule.Keywords {
			kw := strings.ToLower(keyword)
			if !seen[kw] {
				seen[kw] = true
				pf.keywords = append(pf.keywords, kw)
			}
			pf.keywordRules[kw] = append(pf.keywordRules[kw], rule)
		}
	}

	if len(pf.keywords) > 0 {
		pf.matcher = ahocorasick.NewStringMatcher(pf.keywords)
	}
	return pf
}

// Filter returns the rules that might match text: every rule without
// keywords, plus every rule with at least one keyword present.
func (pf *Prefilter) Filter(text string) []*types.Rule {
	result := make([]*types.Rule, 0, len(pf.noKeywordRules))
	result = append(result, pf.noKeywordRules...)

	if pf.matcher == nil {
		return result
	}

	hits := pf.matcher.Match([]byte(strings.ToLower(text)))

	included := make(map[*types.Rule]bool, len(result))
	for _, rule := range result {
		included[rule] = true
	}
	for _, hit := range hits {
		for _, rule := range pf.keywordRules[pf.keywords[hit]] {
			if !included[rule] {
				included[rule] = true
				result = append(result, rule)
			}
		}
	}

	return result
}
