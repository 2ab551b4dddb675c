package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/quillcheck/quillcheck/pkg/types"
	"golang.org/x/term"
)

// styles groups the output colors used by the check report.
type styles struct {
	heading  *color.Color
	ruleName *color.Color
	match    *color.Color
	position *color.Color
	message  *color.Color
}

func newStyles() *styles {
	return &styles{
		heading:  color.New(color.Bold, color.FgHiWhite),
		ruleName: color.New(color.Bold, color.FgHiBlue),
		match:    color.New(color.FgYellow),
		position: color.New(color.FgHiGreen),
		message:  color.New(color.FgWhite),
	}
}

// configureColor applies the --color flag, falling back to TTY detection.
func configureColor(mode string) {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		if !term.IsTerminal(int(os.Stdout.Fd())) || os.Getenv("NO_COLOR") != "" {
			color.NoColor = true
		}
	}
}

func printReport(w io.Writer, source string, result types.CheckResult) {
	configureColor(checkColorMode)
	s := newStyles()

	if !quiet {
		s.heading.Fprintf(w, "%s: %d finding(s)\n", source, len(result.Matches))
		fmt.Fprintf(w, "categories checked: %s\n\n", strings.Join(result.CategoryIDs, ", "))
	}

	for _, m := range result.Matches {
		s.ruleName.Fprintf(w, "%s", m.Rule.ID)
		fmt.Fprint(w, " at ")
		s.position.Fprintf(w, "[%d-%d]", m.FromPos, m.ToPos)
		fmt.Fprint(w, ": ")
		s.match.Fprintf(w, "%q", m.MatchedText)
		fmt.Fprintln(w)
		s.message.Fprintf(w, "  %s\n", m.Message)
		if m.Rule.Suggestion != "" {
			fmt.Fprintf(w, "  suggestion: %s\n", m.Rule.Suggestion)
		}
		if verbose && m.MatchContext != "" {
			fmt.Fprintf(w, "  context: %s\n", m.MatchContext)
		}
		fmt.Fprintln(w)
	}
}
