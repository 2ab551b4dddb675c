package rule

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/quillcheck/quillcheck/pkg/types"
)

// FilterConfig specifies include and exclude patterns for rule filtering.
// Patterns are regexes matched against rule ids and category ids.
type FilterConfig struct {
	Include []string // only matching rules included
	Exclude []string // matching rules excluded
}

// ParsePatterns splits a comma-separated string into individual patterns,
// trimming whitespace.
func ParsePatterns(patterns string) []string {
	if patterns == "" {
		return []string{}
	}
	parts := strings.Split(patterns, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Filter applies include then exclude patterns to rules. Empty include
// means "include all". Returns an error on invalid regex.
func Filter(rules []*types.Rule, config FilterConfig) ([]*types.Rule, error) {
	include, err := compilePatterns(config.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := compilePatterns(config.Exclude)
	if err != nil {
		return nil, err
	}

	filtered := rules
	if len(include) > 0 {
		filtered = keepMatching(filtered, include, true)
	}
	if len(exclude) > 0 {
		filtered = keepMatching(filtered, exclude, false)
	}
	return filtered, nil
}

// ByCategories keeps rules whose category id is in the given set. An empty
// set keeps everything.
func ByCategories(rules []*types.Rule, categoryIDs []string) []*types.Rule {
	if len(categoryIDs) == 0 {
		return rules
	}
	want := make(map[string]bool, len(categoryIDs))
	for _, id := range categoryIDs {
		want[id] = true
	}
	var out []*types.Rule
	for _, r := range rules {
		if want[r.Category.ID] {
			out = append(out, r)
		}
	}
	return out
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	var regexes []*regexp.Regexp
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
		}
		regexes = append(regexes, re)
	}
	return regexes, nil
}

// keepMatching keeps rules that match (keep=true) or do not match
// (keep=false) any of the regexes, testing both rule id and category id.
func keepMatching(rules []*types.Rule, regexes []*regexp.Regexp, keep bool) []*types.Rule {
	var out []*types.Rule
	for _, r := range rules {
		matched := false
		for _, re := range regexes {
			if re.MatchString(r.ID) || re.MatchString(r.Category.ID) {
				matched = true
				break
			}
		}
		if matched == keep {
			out = append(out, r)
		}
	}
	return out
}
