// Package pool implements the concurrent dispatch core: a bounded work
// queue, a fixed worker set, check planning strategies, per-job timeouts,
// and aggregation of matcher results into a single check outcome.
package pool

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quillcheck/quillcheck/pkg/matcher"
	"github.com/quillcheck/quillcheck/pkg/types"
)

// Defaults applied when an option is absent or out of range.
const (
	DefaultWorkers       = 4
	DefaultQueueCapacity = 100
	DefaultCheckTimeout  = 10 * time.Second
)

// DebugLogger provides caller-supplied diagnostic logging.
type DebugLogger interface {
	Log(format string, args ...interface{})
}

// NoopLogger discards all log output.
type NoopLogger struct{}

func (NoopLogger) Log(format string, args ...interface{}) {}

// Pool routes checks to registered matchers and aggregates their results.
//
// The matcher registry may be mutated while checks are in flight: each check
// operates on a snapshot taken under a short read lock, so removal takes
// effect for future checks only and in-flight jobs keep their matcher
// reference.
type Pool struct {
	workers       int
	queueCapacity int
	strategy      Strategy
	checkTimeout  time.Duration
	logger        DebugLogger

	mu       sync.RWMutex
	registry []Registered
	index    map[string]int // id -> position in registry

	nextID atomic.Int64
	queue  *JobQueue
	wg     sync.WaitGroup
	closed atomic.Bool
}

// Option configures a Pool.
type Option func(*Pool)

// WithWorkers sets the number of concurrently executing jobs.
func WithWorkers(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithQueueCapacity bounds the number of jobs waiting for a worker.
func WithQueueCapacity(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.queueCapacity = n
		}
	}
}

// WithStrategy selects the check planning strategy.
func WithStrategy(s Strategy) Option {
	return func(p *Pool) {
		p.strategy = s
	}
}

// WithCheckTimeout sets the per-job deadline.
func WithCheckTimeout(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.checkTimeout = d
		}
	}
}

// WithLogger sets a diagnostic logger.
func WithLogger(l DebugLogger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a pool and starts its workers.
func New(opts ...Option) *Pool {
	p := &Pool{
		workers:       DefaultWorkers,
		queueCapacity: DefaultQueueCapacity,
		strategy:      DocumentPerCategory,
		checkTimeout:  DefaultCheckTimeout,
		logger:        NoopLogger{},
		index:         make(map[string]int),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.queue = NewJobQueue(p.queueCapacity)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// AddMatcher registers a matcher and returns its effective id. If the
// matcher does not carry an id, a monotonically unique one is assigned.
// Adding the same matcher again is a no-op.
func (p *Pool) AddMatcher(m matcher.Matcher) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, r := range p.registry {
		if r.Matcher == m {
			return r.ID
		}
	}

	id := m.ID()
	if id == "" {
		id = "matcher-" + strconv.FormatInt(p.nextID.Add(1), 10)
	}
	if pos, ok := p.index[id]; ok {
		// Same id, different matcher: latest registration wins.
		p.registry[pos] = Registered{ID: id, Matcher: m}
		return id
	}
	p.index[id] = len(p.registry)
	p.registry = append(p.registry, Registered{ID: id, Matcher: m})
	p.logger.Log("registered matcher %s (%s)", id, m.Type())
	return id
}

// RemoveMatcherByID removes a matcher from the registry. Jobs already
// dispatched to it are not cancelled; their results are still delivered.
func (p *Pool) RemoveMatcherByID(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pos, ok := p.index[id]
	if !ok {
		return
	}
	p.registry = append(p.registry[:pos], p.registry[pos+1:]...)
	delete(p.index, id)
	for i := pos; i < len(p.registry); i++ {
		p.index[p.registry[i].ID] = i
	}
}

// RemoveAllMatchers clears the registry. In-flight jobs keep running.
func (p *Pool) RemoveAllMatchers() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registry = nil
	p.index = make(map[string]int)
}

// Matchers returns a snapshot of the current registry.
func (p *Pool) Matchers() []Registered {
	return p.snapshot()
}

// CurrentCategories returns the union of the categories of every currently
// registered matcher, deduplicated by id in registration order.
func (p *Pool) CurrentCategories() []types.Category {
	snapshot := p.snapshot()
	seen := make(map[string]bool)
	var out []types.Category
	for _, r := range snapshot {
		for _, c := range r.Matcher.Categories() {
			if !seen[c.ID] {
				seen[c.ID] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// Check runs one check to completion: resolve categories, select matchers,
// plan jobs, enqueue, await aggregation. It blocks until every job has
// reported or the first failure, whichever comes first. On failure,
// remaining jobs still run but their outcomes are discarded.
func (p *Pool) Check(ctx context.Context, check types.Check) (types.CheckResult, error) {
	if p.closed.Load() {
		return types.CheckResult{}, ErrPoolClosed
	}
	if err := check.Validate(); err != nil {
		return types.CheckResult{}, err
	}

	snapshot := p.snapshot()
	if err := p.verifyCategories(check.CategoryIDs, snapshot); err != nil {
		return types.CheckResult{}, err
	}
	selected := selectMatchers(check.CategoryIDs, snapshot)

	jobs := p.strategy.Plan(check, selected)
	reported := reportedCategoryIDs(jobs)
	if len(jobs) == 0 {
		return types.CheckResult{CategoryIDs: reported}, nil
	}

	// Buffered to the job count so workers never block delivering results
	// for a check that has already failed and stopped receiving.
	results := make(chan jobResult, len(jobs))
	deadline := time.Now().Add(p.checkTimeout)
	for i := range jobs {
		jobs[i].Deadline = deadline
		if !p.queue.Offer(queuedJob{job: jobs[i], results: results}) {
			// Already-enqueued jobs from this check still run; their
			// deliveries land in the buffered channel and are discarded.
			return types.CheckResult{}, &QueueFullError{Capacity: p.queueCapacity}
		}
	}

	var matches []*types.RuleMatch
	for remaining := len(jobs); remaining > 0; remaining-- {
		select {
		case res := <-results:
			if res.err != nil {
				return types.CheckResult{}, res.err
			}
			matches = append(matches, res.matches...)
		case <-ctx.Done():
			return types.CheckResult{}, ctx.Err()
		}
	}

	return types.CheckResult{CategoryIDs: reported, Matches: matches}, nil
}

// Close stops the workers. In-flight matcher invocations run to completion;
// subsequent Check calls fail with ErrPoolClosed.
func (p *Pool) Close() {
	if p.closed.Swap(true) {
		return
	}
	p.queue.Close()
	p.wg.Wait()
}

func (p *Pool) snapshot() []Registered {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Registered, len(p.registry))
	copy(out, p.registry)
	return out
}

// verifyCategories fails with UnknownCategoryError if any requested id is
// covered by no registered matcher. An empty request always verifies.
func (p *Pool) verifyCategories(requested []string, snapshot []Registered) error {
	if len(requested) == 0 {
		return nil
	}
	known := make(map[string]bool)
	for _, r := range snapshot {
		for _, c := range r.Matcher.Categories() {
			known[c.ID] = true
		}
	}
	var unknown []string
	for _, id := range requested {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return &UnknownCategoryError{IDs: unknown}
	}
	return nil
}

// selectMatchers keeps matchers whose categories intersect the requested
// set. An empty request selects every registered matcher.
func selectMatchers(requested []string, snapshot []Registered) []Registered {
	if len(requested) == 0 {
		return snapshot
	}
	want := make(map[string]bool, len(requested))
	for _, id := range requested {
		want[id] = true
	}
	var selected []Registered
	for _, r := range snapshot {
		for _, c := range r.Matcher.Categories() {
			if want[c.ID] {
				selected = append(selected, r)
				break
			}
		}
	}
	return selected
}

// reportedCategoryIDs is the union of the category ids of all planned jobs,
// in plan order.
func reportedCategoryIDs(jobs []Job) []string {
	seen := make(map[string]bool)
	var out []string
	for _, j := range jobs {
		for _, id := range j.CategoryIDs {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}
