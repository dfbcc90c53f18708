package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/abdul-hamid-achik/bspec/packages/core/config"
	"github.com/abdul-hamid-achik/bspec/packages/core/spec"
	"github.com/abdul-hamid-achik/bspec/packages/diff"
	"github.com/abdul-hamid-achik/bspec/packages/stats"
)

// RunInfo describes a starting run.
type RunInfo struct {
	ID          string
	Seed        int64
	Concurrency int
	Total       int // examples planned after filtering
}

// Formatter receives the run's lifecycle events in order.
type Formatter interface {
	RunStarted(info RunInfo)
	GroupStarted(label string, depth int)
	GroupDone(label string, depth int)
	ExampleStarted(path spec.Path)
	ExamplePassed(path spec.Path, duration time.Duration)
	ExampleFailed(path spec.Path, failure *spec.Failure, duration time.Duration)
	ExamplePending(path spec.Path, reason string)
	RunDone(summary spec.Summary, timing stats.Snapshot, elapsed time.Duration)
}

// New returns the formatter registered under name, writing to w.
func New(name string, w io.Writer) (Formatter, error) {
	switch name {
	case config.FormatterDoc:
		return NewDocument(WithWriter(w)), nil
	case config.FormatterProgress:
		return NewProgress(WithWriter(w)), nil
	case config.FormatterFailures:
		return NewFailures(WithWriter(w)), nil
	}
	return nil, fmt.Errorf("unknown formatter %q", name)
}

// SetColorMode applies the configured color mode process-wide. Auto keeps
// the terminal detection fatih/color performs on its own.
func SetColorMode(mode string) {
	switch mode {
	case config.ColorAlways:
		color.NoColor = false
	case config.ColorNever:
		color.NoColor = true
	}
}

// Synchronized wraps f so every event is delivered under one lock,
// serializing concurrent workers into a single event stream.
func Synchronized(f Formatter) Formatter {
	return &syncFormatter{f: f}
}

type syncFormatter struct {
	mu sync.Mutex
	f  Formatter
}

func (s *syncFormatter) RunStarted(info RunInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.f.RunStarted(info)
}

func (s *syncFormatter) GroupStarted(label string, depth int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.f.GroupStarted(label, depth)
}

func (s *syncFormatter) GroupDone(label string, depth int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.f.GroupDone(label, depth)
}

func (s *syncFormatter) ExampleStarted(path spec.Path) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.f.ExampleStarted(path)
}

func (s *syncFormatter) ExamplePassed(path spec.Path, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.f.ExamplePassed(path, duration)
}

func (s *syncFormatter) ExampleFailed(path spec.Path, failure *spec.Failure, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.f.ExampleFailed(path, failure, duration)
}

func (s *syncFormatter) ExamplePending(path spec.Path, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.f.ExamplePending(path, reason)
}

func (s *syncFormatter) RunDone(summary spec.Summary, timing stats.Snapshot, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.f.RunDone(summary, timing, elapsed)
}

// Sink provides the primitive output operations formatters build on.
type Sink struct {
	w io.Writer
}

// NewSink returns a sink writing to w, defaulting to stdout.
func NewSink(w io.Writer) *Sink {
	if w == nil {
		w = os.Stdout
	}
	return &Sink{w: w}
}

// Text writes without a trailing newline.
func (s *Sink) Text(format string, args ...any) {
	fmt.Fprintf(s.w, format, args...)
}

// Line writes one line.
func (s *Sink) Line(format string, args ...any) {
	fmt.Fprintf(s.w, format+"\n", args...)
}

// Option configures a formatter.
type Option func(*base)

// WithWriter directs formatter output to w instead of stdout.
func WithWriter(w io.Writer) Option {
	return func(b *base) {
		b.sink = NewSink(w)
	}
}

// base carries the state all three renderers share: the sink, the run
// info, and the failures collected for end-of-run enumeration.
type base struct {
	sink     *Sink
	info     RunInfo
	failures []failureEntry
	pending  []pendingEntry
}

type failureEntry struct {
	path     spec.Path
	failure  *spec.Failure
	duration time.Duration
}

type pendingEntry struct {
	path   spec.Path
	reason string
}

func newBase(opts ...Option) base {
	b := base{sink: NewSink(nil)}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) recordFailure(path spec.Path, failure *spec.Failure, duration time.Duration) {
	b.failures = append(b.failures, failureEntry{path: path, failure: failure, duration: duration})
}

func (b *base) recordPending(path spec.Path, reason string) {
	b.pending = append(b.pending, pendingEntry{path: path, reason: reason})
}

// writeFailures enumerates every collected failure with its path, reason,
// and for mismatches the computed diff.
func (b *base) writeFailures() {
	if len(b.failures) == 0 {
		return
	}

	red := color.New(color.FgRed).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	b.sink.Line("")
	b.sink.Line("%s", bold("Failures:"))
	for i, entry := range b.failures {
		b.sink.Line("")
		b.sink.Line("  %d) %s", i+1, entry.path)
		b.sink.Line("     %s", red(failureHeadline(entry.failure)))

		if entry.failure.Kind == spec.FailureMismatch {
			for _, chunk := range diff.Sequences(entry.failure.Expected, entry.failure.Actual) {
				for _, token := range chunk.Tokens {
					switch chunk.Op {
					case diff.ExpectedOnly:
						b.sink.Line("       %s", red("- "+token))
					case diff.ActualOnly:
						b.sink.Line("       %s", green("+ "+token))
					default:
						b.sink.Line("         %s", token)
					}
				}
			}
		}

		if entry.failure.Stack != "" {
			b.sink.Line("     %s", entry.failure.Stack)
		}
		for _, also := range entry.failure.Also {
			b.sink.Line("     %s", red("also: "+also))
		}
	}
}

// writeSummary prints the final counts, timing percentiles and the seed.
func (b *base) writeSummary(summary spec.Summary, timing stats.Snapshot, elapsed time.Duration) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	b.sink.Line("")
	b.sink.Text("Examples: ")
	passed := summary.Examples - summary.Failures - len(b.pending)
	if passed > 0 {
		b.sink.Text("%s, ", green(fmt.Sprintf("%d passed", passed)))
	}
	if summary.Failures > 0 {
		b.sink.Text("%s, ", red(fmt.Sprintf("%d failed", summary.Failures)))
	}
	if len(b.pending) > 0 {
		b.sink.Text("%s, ", yellow(fmt.Sprintf("%d pending", len(b.pending))))
	}
	b.sink.Line("%d total", summary.Examples)
	b.sink.Line("Time:     %s", elapsed.Round(time.Millisecond))
	if timing.Count > 0 {
		b.sink.Line("Timing:   %s", cyan(fmt.Sprintf("p50 %s, p95 %s, max %s",
			timing.P50.Round(time.Microsecond),
			timing.P95.Round(time.Microsecond),
			timing.Max.Round(time.Microsecond))))
	}
	b.sink.Line("Seed:     %d", b.info.Seed)
}

func failureHeadline(f *spec.Failure) string {
	switch f.Kind {
	case spec.FailureTimeout:
		return "timed out"
	case spec.FailureFault:
		if f.Message != "" {
			return "panic: " + f.Message
		}
		return "panic"
	case spec.FailureMismatch:
		if f.Message != "" {
			return f.Message
		}
		return "expected and actual values differ"
	default:
		return f.Message
	}
}
