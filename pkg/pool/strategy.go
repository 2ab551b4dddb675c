package pool

import (
	"time"

	"github.com/quillcheck/quillcheck/pkg/matcher"
	"github.com/quillcheck/quillcheck/pkg/types"
)

// Strategy selects how one check is expanded into jobs.
type Strategy string

const (
	// DocumentPerCategory produces exactly one job per selected matcher,
	// carrying every block of the check. This is the default.
	DocumentPerCategory Strategy = "documentPerCategory"

	// BlockLevel produces one job per (matcher, block) pair. It maximises
	// parallelism and gives fine-grained queue backpressure, so oversized
	// documents are rejected at admission instead of monopolising workers.
	BlockLevel Strategy = "blockLevel"
)

// Registered pairs a matcher with its pool-assigned id.
type Registered struct {
	ID      string
	Matcher matcher.Matcher
}

// Job is one unit of work dispatched to one matcher. Request blocks have
// their skip ranges elided; SkipRanges keeps the original ranges per block
// id so workers can re-project reported positions.
type Job struct {
	CheckID     string
	Matcher     matcher.Matcher
	Request     types.MatcherRequest
	CategoryIDs []string
	SkipRanges  map[string][]types.TextRange
	Deadline    time.Time
}

// Plan expands a check into jobs for the selected matchers. It is a pure
// function of its arguments; deadlines are stamped by the pool at admission.
func (s Strategy) Plan(check types.Check, selected []Registered) []Job {
	elided := make([]types.TextBlock, len(check.Blocks))
	skipRanges := make(map[string][]types.TextRange)
	for i, b := range check.Blocks {
		elided[i] = types.ElideSkipRanges(b)
		if len(b.SkipRanges) > 0 {
			skipRanges[b.ID] = b.SkipRanges
		}
	}

	var jobs []Job
	for _, r := range selected {
		covered := coveredCategoryIDs(r.Matcher, check.CategoryIDs)
		if len(covered) == 0 {
			continue
		}
		switch s {
		case BlockLevel:
			for _, b := range elided {
				jobs = append(jobs, Job{
					CheckID:     check.DocumentID,
					Matcher:     r.Matcher,
					Request:     types.MatcherRequest{Blocks: []types.TextBlock{b}},
					CategoryIDs: covered,
					SkipRanges:  skipRanges,
				})
			}
		default:
			jobs = append(jobs, Job{
				CheckID:     check.DocumentID,
				Matcher:     r.Matcher,
				Request:     types.MatcherRequest{Blocks: elided},
				CategoryIDs: covered,
				SkipRanges:  skipRanges,
			})
		}
	}
	return jobs
}

// coveredCategoryIDs returns the matcher's category ids restricted to the
// requested set. An empty request set means every category the matcher has.
func coveredCategoryIDs(m matcher.Matcher, requested []string) []string {
	own := types.CategoryIDs(m.Categories())
	if len(requested) == 0 {
		return own
	}
	want := make(map[string]bool, len(requested))
	for _, id := range requested {
		want[id] = true
	}
	covered := make([]string, 0, len(own))
	for _, id := range own {
		if want[id] {
			covered = append(covered, id)
		}
	}
	return covered
}
