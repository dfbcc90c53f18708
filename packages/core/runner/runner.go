package runner

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/abdul-hamid-achik/bspec/packages/clock"
	"github.com/abdul-hamid-achik/bspec/packages/core/config"
	"github.com/abdul-hamid-achik/bspec/packages/core/spec"
	"github.com/abdul-hamid-achik/bspec/packages/history"
	"github.com/abdul-hamid-achik/bspec/packages/output"
	"github.com/abdul-hamid-achik/bspec/packages/report"
	"github.com/abdul-hamid-achik/bspec/packages/stats"
)

// Runner executes one spec tree per Run call.
type Runner struct {
	config    *config.Config
	formatter output.Formatter
	clock     clock.Clock
	timings   *stats.Recorder
	sem       chan struct{}

	mu      sync.Mutex
	summary spec.Summary
	failed  []spec.Result

	anyFailed atomic.Bool
	executed  atomic.Int64
}

// Option configures a Runner.
type Option func(*Runner)

// WithFormatter replaces the formatter selected by the configuration.
func WithFormatter(f output.Formatter) Option {
	return func(r *Runner) {
		r.formatter = f
	}
}

// WithClock replaces the system clock, for tests.
func WithClock(c clock.Clock) Option {
	return func(r *Runner) {
		r.clock = c
	}
}

// New validates the configuration and builds a runner. An invalid
// configuration is fatal.
func New(cfg *config.Config, opts ...Option) (*Runner, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	r := &Runner{
		config:  cfg,
		clock:   clock.System(),
		timings: stats.NewRecorder(),
		sem:     make(chan struct{}, cfg.Concurrency),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.formatter == nil {
		output.SetColorMode(cfg.Color)
		f, err := output.New(cfg.Formatter, os.Stdout)
		if err != nil {
			return nil, err
		}
		r.formatter = f
	}
	r.formatter = output.Synchronized(r.formatter)

	return r, nil
}

// Run filters, shuffles and executes the suite, returning the aggregate
// summary. The returned error reports engine-level problems (persisting
// an explicitly requested failure report); example failures are expressed
// through the summary, never as an error.
func (r *Runner) Run(ctx context.Context, suite *spec.Suite) (spec.Summary, error) {
	roots := suite.Roots()
	if keep := r.predicate(); keep != nil {
		roots = spec.Filter(roots, keep)
	}

	seed := r.config.Seed
	if !r.config.HasSeed {
		seed = time.Now().UnixNano()
	}
	roots = spec.Shuffle(roots, seed)

	runID := uuid.NewString()
	startedAt := time.Now()
	start := r.clock.Now()

	r.formatter.RunStarted(output.RunInfo{
		ID:          runID,
		Seed:        seed,
		Concurrency: r.config.Concurrency,
		Total:       spec.CountExamples(roots),
	})

	r.runLevel(ctx, roots, nil)

	elapsed := r.clock.Since(start)

	r.mu.Lock()
	summary := r.summary
	failedResults := append([]spec.Result(nil), r.failed...)
	r.mu.Unlock()

	r.formatter.RunDone(summary, r.timings.Snapshot(), elapsed)

	if err := r.persistReport(failedResults); err != nil {
		return summary, err
	}
	r.recordHistory(runID, startedAt, seed, summary, elapsed)

	return summary, nil
}

// runLevel walks one sibling slice: examples are dispatched onto the
// worker pool; before descending into a child group the dispatched
// examples are drained so the child group's events stay bracketed.
func (r *Runner) runLevel(ctx context.Context, nodes []*spec.Node, parents []*scope) {
	var wg sync.WaitGroup
	for _, node := range nodes {
		if node.Kind == spec.KindGroup {
			wg.Wait()
			r.runGroup(ctx, node, parents)
			continue
		}
		r.dispatch(ctx, node, parents, &wg)
	}
	wg.Wait()
}

func (r *Runner) runGroup(ctx context.Context, node *spec.Node, parents []*scope) {
	depth := len(parents)
	r.formatter.GroupStarted(node.Label, depth)

	sc := &scope{node: node, res: &groupResources{hooks: node.Hooks}}
	scopes := make([]*scope, len(parents), len(parents)+1)
	copy(scopes, parents)
	scopes = append(scopes, sc)

	r.runLevel(ctx, node.Children, scopes)

	for _, err := range sc.res.teardown(ctx) {
		fmt.Fprintf(os.Stderr, "warning: afterAll in %q failed: %v\n", node.Label, err)
	}

	r.formatter.GroupDone(node.Label, depth)
}

// dispatch hands one example to the pool. Under fastFail no new example
// is dispatched once a failure has been observed; already-running
// examples always finish.
func (r *Runner) dispatch(ctx context.Context, ex *spec.Node, scopes []*scope, wg *sync.WaitGroup) {
	if r.config.FastFail && r.anyFailed.Load() {
		return
	}

	r.sem <- struct{}{}
	// Re-check after the semaphore: with width 1 this makes fastFail
	// deterministic, since the previous example has fully finished.
	if r.config.FastFail && r.anyFailed.Load() {
		<-r.sem
		return
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() { <-r.sem }()
		r.runExample(ctx, ex, scopes)
	}()
}

func (r *Runner) runExample(ctx context.Context, ex *spec.Node, scopes []*scope) {
	path := examplePath(ex, scopes)
	r.formatter.ExampleStarted(path)

	start := r.clock.Now()
	var result spec.Result
	if ex.Pending {
		result = spec.Result{Path: path, Status: spec.StatusPending, Reason: ex.Reason}
	} else {
		result = r.evaluate(ctx, ex, scopes, path)
		r.timings.Record(r.clock.Since(start))
	}
	result.Duration = r.clock.Since(start)

	r.executed.Add(1)
	increment := spec.Summary{Examples: 1}
	if result.Status == spec.StatusFailed {
		increment.Failures = 1
	}

	r.mu.Lock()
	r.summary = r.summary.Merge(increment)
	if result.Status == spec.StatusFailed {
		r.failed = append(r.failed, result)
	}
	r.mu.Unlock()

	switch result.Status {
	case spec.StatusPassed:
		r.formatter.ExamplePassed(path, result.Duration)
	case spec.StatusPending:
		r.formatter.ExamplePending(path, result.Reason)
	case spec.StatusFailed:
		r.anyFailed.Store(true)
		r.formatter.ExampleFailed(path, result.Failure, result.Duration)
	}
}

// predicate combines the configured path filter with the rerun set, or
// returns nil when neither applies.
func (r *Runner) predicate() spec.Predicate {
	var preds []spec.Predicate
	if pattern := r.config.Filter; pattern != "" {
		preds = append(preds, func(path spec.Path) bool {
			return spec.MatchPattern(path.String(), pattern)
		})
	}
	if r.config.Rerun {
		preds = append(preds, report.Predicate(report.Read(r.config.ReportPath)))
	}
	if len(preds) == 0 {
		return nil
	}
	return func(path spec.Path) bool {
		for _, p := range preds {
			if !p(path) {
				return false
			}
		}
		return true
	}
}

// persistReport writes the failure report. A run that executed zero
// examples leaves any prior report untouched.
func (r *Runner) persistReport(failed []spec.Result) error {
	if r.config.ReportPath == "" || r.executed.Load() == 0 {
		return nil
	}

	records := make([]report.Record, 0, len(failed))
	for _, res := range failed {
		rec := report.Record{
			Groups:      res.Path.Groups,
			Requirement: res.Path.Requirement,
		}
		if res.Failure != nil {
			rec.Detail = res.Failure.Message
		}
		records = append(records, rec)
	}
	return report.Write(r.config.ReportPath, records)
}

func (r *Runner) recordHistory(runID string, startedAt time.Time, seed int64, summary spec.Summary, elapsed time.Duration) {
	if r.config.HistoryPath == "" {
		return
	}

	store, err := history.Open(r.config.HistoryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		return
	}
	defer store.Close()

	err = store.Record(history.Run{
		ID:        runID,
		StartedAt: startedAt,
		Seed:      seed,
		Examples:  summary.Examples,
		Failures:  summary.Failures,
		Duration:  elapsed,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
}

// ExitCode derives the process exit status from a summary.
func ExitCode(s spec.Summary) int {
	if s.Passed() {
		return 0
	}
	return 1
}

func examplePath(ex *spec.Node, scopes []*scope) spec.Path {
	groups := make([]string, len(scopes))
	for i, sc := range scopes {
		groups[i] = sc.node.Label
	}
	return spec.Path{Groups: groups, Requirement: ex.Label}
}
