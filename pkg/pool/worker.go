package pool

import (
	"context"
	"fmt"
	"time"

	"github.com/quillcheck/quillcheck/pkg/types"
)

// jobResult is one job's outcome, delivered to the per-check aggregator.
type jobResult struct {
	matches []*types.RuleMatch
	err     error
}

// queuedJob pairs a job with its check's result channel. The channel is
// buffered to the check's job count, so delivery never blocks a worker even
// after the check has failed and stopped receiving.
type queuedJob struct {
	job     Job
	results chan<- jobResult
}

// worker drains the queue until the pool is closed. Each job races the
// matcher invocation against the job deadline; a timed-out invocation keeps
// running in the background and its eventual result is discarded.
func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		qj, ok := p.queue.Take()
		if !ok {
			return
		}
		p.execute(qj)
	}
}

func (p *Pool) execute(qj queuedJob) {
	timer := time.NewTimer(time.Until(qj.job.Deadline))
	defer timer.Stop()

	done := make(chan jobResult, 1)
	go func() {
		defer func() {
			// A matcher panicking inside Check is treated the same as a
			// returned error, with the panic value as the message.
			if r := recover(); r != nil {
				done <- jobResult{err: fmt.Errorf("%v", r)}
			}
		}()
		// Matchers are assumed non-cancellable: a timed-out or abandoned
		// invocation is never interrupted, so no deadline on this context.
		matches, err := qj.job.Matcher.Check(context.Background(), qj.job.Request)
		done <- jobResult{matches: matches, err: err}
	}()

	select {
	case res := <-done:
		if res.err == nil {
			reproject(res.matches, qj.job)
		}
		qj.results <- res
	case <-timer.C:
		qj.results <- jobResult{err: &TimeoutError{Duration: p.checkTimeout}}
	}
}

// reproject rewrites match positions from elided-block coordinates back to
// original document coordinates, using the skip ranges of the block that
// contains each match.
func reproject(matches []*types.RuleMatch, job Job) {
	if len(job.SkipRanges) == 0 {
		return
	}
	for _, m := range matches {
		if b, ok := owningBlock(m, job.Request.Blocks); ok {
			types.ReprojectMatch(m, job.SkipRanges[b.ID])
		}
	}
}

// owningBlock finds the elided block whose span contains the match.
func owningBlock(m *types.RuleMatch, blocks []types.TextBlock) (types.TextBlock, bool) {
	for _, b := range blocks {
		if m.FromPos >= b.From && m.ToPos <= b.To {
			return b, true
		}
	}
	return types.TextBlock{}, false
}
