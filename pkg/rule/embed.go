package rule

import "embed"

// builtinRulesFS embeds the built-in rules directory: a starter set of
// grammar and style rules.
//
//go:embed rules/*.yml
var builtinRulesFS embed.FS
