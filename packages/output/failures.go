package output

import (
	"time"

	"github.com/abdul-hamid-achik/bspec/packages/core/spec"
	"github.com/abdul-hamid-achik/bspec/packages/stats"
)

// Failures stays silent while examples pass and only enumerates failed
// examples and the final summary.
type Failures struct {
	base
}

// NewFailures returns a failures-only formatter.
func NewFailures(opts ...Option) *Failures {
	return &Failures{base: newBase(opts...)}
}

func (f *Failures) RunStarted(info RunInfo) {
	f.info = info
}

func (f *Failures) GroupStarted(label string, depth int)                 {}
func (f *Failures) GroupDone(label string, depth int)                    {}
func (f *Failures) ExampleStarted(path spec.Path)                        {}
func (f *Failures) ExamplePassed(path spec.Path, duration time.Duration) {}

func (f *Failures) ExampleFailed(path spec.Path, failure *spec.Failure, duration time.Duration) {
	f.recordFailure(path, failure, duration)
}

func (f *Failures) ExamplePending(path spec.Path, reason string) {
	f.recordPending(path, reason)
}

func (f *Failures) RunDone(summary spec.Summary, timing stats.Snapshot, elapsed time.Duration) {
	f.writeFailures()
	f.writeSummary(summary, timing, elapsed)
}
