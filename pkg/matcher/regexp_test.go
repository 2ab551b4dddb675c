package matcher

import (
	"context"
	"testing"

	"github.com/quillcheck/quillcheck/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	styleCategory   = types.Category{ID: "style", Name: "Style"}
	grammarCategory = types.Category{ID: "grammar", Name: "Grammar"}
)

func testRules() []*types.Rule {
	return []*types.Rule{
		{
			ID:               "style.very-unique",
			Pattern:          `(?i)\bvery unique\b`,
			Message:          "Absolute adjectives cannot be intensified.",
			Category:         styleCategory,
			Keywords:         []string{"unique"},
			Examples:         []string{"this is very unique"},
			NegativeExamples: []string{"this is unique"},
		},
		{
			ID:               "grammar.repeated-word",
			Pattern:          `(?i)\b(\w+) \1\b`,
			Message:          "This word appears twice in a row.",
			Category:         grammarCategory,
			Examples:         []string{"check the the result"},
			NegativeExamples: []string{"check the result"},
		},
	}
}

func TestNewRegexp(t *testing.T) {
	t.Run("compiles valid rules", func(t *testing.T) {
		m, err := NewRegexp(Config{Rules: testRules()})
		require.NoError(t, err)
		assert.Equal(t, "regex", m.Type())
		assert.ElementsMatch(t, []types.Category{styleCategory, grammarCategory}, m.Categories())
	})

	t.Run("no rules", func(t *testing.T) {
		_, err := NewRegexp(Config{})
		assert.ErrorContains(t, err, "no rules")
	})

	t.Run("rule without pattern", func(t *testing.T) {
		_, err := NewRegexp(Config{Rules: []*types.Rule{{ID: "r1", Category: styleCategory}}})
		assert.ErrorContains(t, err, "has no pattern")
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := NewRegexp(Config{Rules: []*types.Rule{{ID: "r1", Pattern: "(", Category: styleCategory}}})
		assert.ErrorContains(t, err, "failed to compile pattern")
	})

	t.Run("id is carried through", func(t *testing.T) {
		m, err := NewRegexp(Config{ID: "regex-1", Rules: testRules()})
		require.NoError(t, err)
		assert.Equal(t, "regex-1", m.ID())
	})
}

func TestNewPerCategory(t *testing.T) {
	matchers, err := NewPerCategory(testRules())
	require.NoError(t, err)
	require.Len(t, matchers, 2)

	require.Len(t, matchers[0].Categories(), 1)
	assert.Equal(t, "style", matchers[0].Categories()[0].ID)
	require.Len(t, matchers[1].Categories(), 1)
	assert.Equal(t, "grammar", matchers[1].Categories()[0].ID)

	// The style matcher must not report grammar violations.
	text := "check the the result"
	matches, err := matchers[0].Check(context.Background(), types.MatcherRequest{
		Blocks: []types.TextBlock{{ID: "b1", Text: text, From: 0, To: len(text)}},
	})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestRegexpMatcher_Check(t *testing.T) {
	m, err := NewRegexp(Config{Rules: testRules()})
	require.NoError(t, err)

	t.Run("finds violation with document positions", func(t *testing.T) {
		text := "This plan is very unique."
		matches, err := m.Check(context.Background(), types.MatcherRequest{
			Blocks: []types.TextBlock{{ID: "b1", Text: text, From: 100, To: 100 + len(text)}},
		})
		require.NoError(t, err)
		require.Len(t, matches, 1)

		got := matches[0]
		assert.Equal(t, "style.very-unique", got.Rule.ID)
		assert.Equal(t, "very unique", got.MatchedText)
		assert.Equal(t, 113, got.FromPos)
		assert.Equal(t, 123, got.ToPos) // inclusive end
		assert.Equal(t, "Absolute adjectives cannot be intensified.", got.Message)
		assert.Equal(t, "regex", got.MatcherType)
		assert.Equal(t, "This plan is ", got.PrecedingText)
		assert.Equal(t, ".", got.SubsequentText)
		assert.Equal(t, "This plan is very unique.", got.MatchContext)
	})

	t.Run("backreference pattern falls back from RE2", func(t *testing.T) {
		text := "check the the result"
		matches, err := m.Check(context.Background(), types.MatcherRequest{
			Blocks: []types.TextBlock{{ID: "b1", Text: text, From: 0, To: len(text)}},
		})
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "grammar.repeated-word", matches[0].Rule.ID)
		assert.Equal(t, "the the", matches[0].MatchedText)
	})

	t.Run("clean text yields no matches", func(t *testing.T) {
		matches, err := m.Check(context.Background(), types.MatcherRequest{
			Blocks: []types.TextBlock{{ID: "b1", Text: "All good here.", From: 0, To: 14}},
		})
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("matches across multiple blocks", func(t *testing.T) {
		matches, err := m.Check(context.Background(), types.MatcherRequest{
			Blocks: []types.TextBlock{
				{ID: "b1", Text: "very unique", From: 0, To: 11},
				{ID: "b2", Text: "go go again", From: 20, To: 31},
			},
		})
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, 0, matches[0].FromPos)
		assert.Equal(t, 20, matches[1].FromPos)
	})

	t.Run("cancelled context stops the scan", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := m.Check(ctx, types.MatcherRequest{
			Blocks: []types.TextBlock{{ID: "b1", Text: "x", From: 0, To: 1}},
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRegexpMatcher_RuleExamples(t *testing.T) {
	// Every rule's recorded examples must trip it and its negative
	// examples must not.
	for _, r := range testRules() {
		rules := []*types.Rule{r}
		m, err := NewRegexp(Config{Rules: rules})
		require.NoError(t, err)

		for _, ex := range r.Examples {
			matches, err := m.Check(context.Background(), types.MatcherRequest{
				Blocks: []types.TextBlock{{ID: "b", Text: ex, From: 0, To: len(ex)}},
			})
			require.NoError(t, err)
			assert.NotEmpty(t, matches, "rule %s example %q", r.ID, ex)
		}
		for _, ex := range r.NegativeExamples {
			matches, err := m.Check(context.Background(), types.MatcherRequest{
				Blocks: []types.TextBlock{{ID: "b", Text: ex, From: 0, To: len(ex)}},
			})
			require.NoError(t, err)
			assert.Empty(t, matches, "rule %s negative example %q", r.ID, ex)
		}
	}
}

func TestExtractContext(t *testing.T) {
	text := "one two three four five"

	t.Run("window clipped at boundaries", func(t *testing.T) {
		before, after := ExtractContext(text, 4, 7, 100)
		assert.Equal(t, "one ", before)
		assert.Equal(t, " three four five", after)
	})

	t.Run("window bounds context", func(t *testing.T) {
		before, after := ExtractContext(text, 8, 13, 4)
		assert.Equal(t, "two ", before)
		assert.Equal(t, " fou", after)
	})

	t.Run("zero window", func(t *testing.T) {
		before, after := ExtractContext(text, 4, 7, 0)
		assert.Empty(t, before)
		assert.Empty(t, after)
	})

	t.Run("out of range offsets", func(t *testing.T) {
		before, after := ExtractContext(text, -1, 3, 5)
		assert.Empty(t, before)
		assert.Empty(t, after)
	})
}
