// Package rule loads checking rules from YAML files and filters them by
// category or id.
package rule

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/quillcheck/quillcheck/pkg/types"
	"gopkg.in/yaml.v3"
)

// Loader handles loading rules from YAML files.
type Loader struct {
	fs fs.FS // embedded filesystem for built-in rules
}

// NewLoader creates a loader backed by the embedded built-in rules.
func NewLoader() *Loader {
	return &Loader{fs: builtinRulesFS}
}

// NewLoaderWithFS creates a loader over a custom filesystem.
func NewLoaderWithFS(fsys fs.FS) *Loader {
	return &Loader{fs: fsys}
}

// LoadRules parses every rule in a YAML document.
func (l *Loader) LoadRules(data []byte) ([]*types.Rule, error) {
	var yamlFile yamlRulesFile
	if err := yaml.Unmarshal(data, &yamlFile); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(yamlFile.Rules) == 0 {
		return nil, fmt.Errorf("no rules found in YAML")
	}

	rules := make([]*types.Rule, 0, len(yamlFile.Rules))
	for _, yr := range yamlFile.Rules {
		r, err := convertYAMLRule(yr)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// LoadRulesFile loads rules from a YAML file path.
func (l *Loader) LoadRulesFile(path string) ([]*types.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return l.LoadRules(data)
}

// LoadBuiltinRules loads all built-in rules from the embedded filesystem.
func (l *Loader) LoadBuiltinRules() ([]*types.Rule, error) {
	var rules []*types.Rule

	err := fs.WalkDir(l.fs, "rules", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".yml" {
			return nil
		}

		data, err := fs.ReadFile(l.fs, path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		var yamlFile yamlRulesFile
		if err := yaml.Unmarshal(data, &yamlFile); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		for _, yr := range yamlFile.Rules {
			r, err := convertYAMLRule(yr)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			rules = append(rules, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rules, nil
}

// convertYAMLRule converts yamlRule to types.Rule, validating the fields a
// matcher depends on.
func convertYAMLRule(yr yamlRule) (*types.Rule, error) {
	if yr.ID == "" {
		return nil, fmt.Errorf("rule %q has no id", yr.Name)
	}
	if yr.Pattern == "" {
		return nil, fmt.Errorf("rule %s has no pattern", yr.ID)
	}
	if yr.Category.ID == "" {
		return nil, fmt.Errorf("rule %s has no category id", yr.ID)
	}
	return &types.Rule{
		ID:          yr.ID,
		Name:        yr.Name,
		Pattern:     yr.Pattern,
		Message:     yr.Message,
		Suggestion:  yr.Suggestion,
		Description: yr.Description,
		Category: types.Category{
			ID:    yr.Category.ID,
			Name:  yr.Category.Name,
			Color: yr.Category.Color,
		},
		Keywords:         yr.Keywords,
		Examples:         yr.Examples,
		NegativeExamples: yr.NegativeExamples,
	}, nil
}
