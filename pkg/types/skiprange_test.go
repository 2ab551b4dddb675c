package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElideSkipRanges(t *testing.T) {
	tests := []struct {
		name     string
		block    TextBlock
		wantText string
		wantTo   int
	}{
		{
			name:     "no ranges is a no-op",
			block:    TextBlock{ID: "b1", Text: "ABCDEF", From: 0, To: 6},
			wantText: "ABCDEF",
			wantTo:   6,
		},
		{
			name: "alternating single-char ranges",
			block: TextBlock{
				ID: "b1", Text: "ABCDEF", From: 0, To: 6,
				SkipRanges: []TextRange{{From: 0, To: 0}, {From: 2, To: 2}, {From: 4, To: 4}},
			},
			wantText: "BDF",
			wantTo:   3,
		},
		{
			name: "multi-char range in the middle",
			block: TextBlock{
				ID: "b1", Text: "hello [noted] world", From: 0, To: 19,
				SkipRanges: []TextRange{{From: 6, To: 13}},
			},
			wantText: "hello world",
			wantTo:   11,
		},
		{
			name: "block not starting at document origin",
			block: TextBlock{
				ID: "b2", Text: "ABCDEF", From: 100, To: 106,
				SkipRanges: []TextRange{{From: 100, To: 100}, {From: 102, To: 102}, {From: 104, To: 104}},
			},
			wantText: "BDF",
			wantTo:   103,
		},
		{
			name: "whole block elided",
			block: TextBlock{
				ID: "b1", Text: "AB", From: 0, To: 2,
				SkipRanges: []TextRange{{From: 0, To: 1}},
			},
			wantText: "",
			wantTo:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ElideSkipRanges(tt.block)
			assert.Equal(t, tt.wantText, got.Text)
			assert.Equal(t, tt.block.From, got.From)
			assert.Equal(t, tt.wantTo, got.To)
			assert.Nil(t, got.SkipRanges)
			assert.NoError(t, got.Validate())
		})
	}
}

func TestReprojectPos_WorkedExample(t *testing.T) {
	// "ABCDEF" with A, C, E skipped: the matcher sees "BDF".
	ranges := []TextRange{{From: 0, To: 0}, {From: 2, To: 2}, {From: 4, To: 4}}

	assert.Equal(t, 1, ReprojectPos(0, ranges)) // B
	assert.Equal(t, 3, ReprojectPos(1, ranges)) // D
	assert.Equal(t, 5, ReprojectPos(2, ranges)) // F
}

func TestReprojectMatch(t *testing.T) {
	ranges := []TextRange{{From: 0, To: 0}, {From: 2, To: 2}, {From: 4, To: 4}}

	m := &RuleMatch{FromPos: 0, ToPos: 0}
	ReprojectMatch(m, ranges)
	assert.Equal(t, 1, m.FromPos)
	assert.Equal(t, 1, m.ToPos)

	m = &RuleMatch{FromPos: 2, ToPos: 2}
	ReprojectMatch(m, ranges)
	assert.Equal(t, 5, m.FromPos)
	assert.Equal(t, 5, m.ToPos)
}

// Every kept character in the elided text must re-project to its original
// document offset, and the result must stay inside the block bounds.
func TestReproject_RoundTrip(t *testing.T) {
	blocks := []TextBlock{
		{ID: "a", Text: "ABCDEF", From: 0, To: 6, SkipRanges: []TextRange{{From: 1, To: 2}}},
		{ID: "b", Text: "ABCDEFGH", From: 10, To: 18, SkipRanges: []TextRange{{From: 10, To: 11}, {From: 14, To: 14}, {From: 17, To: 17}}},
		{ID: "c", Text: "the quick brown fox", From: 40, To: 59, SkipRanges: []TextRange{{From: 43, To: 48}}},
	}

	for _, b := range blocks {
		t.Run(b.ID, func(t *testing.T) {
			require.NoError(t, b.Validate())
			elided := ElideSkipRanges(b)

			// Collect the original offsets of kept characters.
			var keptOffsets []int
			ri := 0
			for i := 0; i < len(b.Text); i++ {
				abs := b.From + i
				for ri < len(b.SkipRanges) && abs > b.SkipRanges[ri].To {
					ri++
				}
				if ri < len(b.SkipRanges) && abs >= b.SkipRanges[ri].From && abs <= b.SkipRanges[ri].To {
					continue
				}
				keptOffsets = append(keptOffsets, abs)
			}
			require.Len(t, keptOffsets, len(elided.Text))

			for i := range elided.Text {
				got := ReprojectPos(elided.From+i, b.SkipRanges)
				assert.Equal(t, keptOffsets[i], got)
				assert.GreaterOrEqual(t, got, b.From)
				assert.LessOrEqual(t, got, b.To)
				assert.Equal(t, b.Text[got-b.From], elided.Text[i])
			}
		})
	}
}
