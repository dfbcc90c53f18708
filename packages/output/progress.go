package output

import (
	"time"

	"github.com/fatih/color"

	"github.com/abdul-hamid-achik/bspec/packages/core/spec"
	"github.com/abdul-hamid-achik/bspec/packages/stats"
)

// Progress renders one character per example: a dot for a pass, F for a
// failure, * for pending.
type Progress struct {
	base
}

// NewProgress returns a progress formatter.
func NewProgress(opts ...Option) *Progress {
	return &Progress{base: newBase(opts...)}
}

func (f *Progress) RunStarted(info RunInfo) {
	f.info = info
}

func (f *Progress) GroupStarted(label string, depth int) {}
func (f *Progress) GroupDone(label string, depth int)    {}
func (f *Progress) ExampleStarted(path spec.Path)        {}

func (f *Progress) ExamplePassed(path spec.Path, duration time.Duration) {
	green := color.New(color.FgGreen).SprintFunc()
	f.sink.Text("%s", green("."))
}

func (f *Progress) ExampleFailed(path spec.Path, failure *spec.Failure, duration time.Duration) {
	f.recordFailure(path, failure, duration)
	red := color.New(color.FgRed).SprintFunc()
	f.sink.Text("%s", red("F"))
}

func (f *Progress) ExamplePending(path spec.Path, reason string) {
	f.recordPending(path, reason)
	yellow := color.New(color.FgYellow).SprintFunc()
	f.sink.Text("%s", yellow("*"))
}

func (f *Progress) RunDone(summary spec.Summary, timing stats.Snapshot, elapsed time.Duration) {
	f.sink.Line("")
	f.writeFailures()
	f.writeSummary(summary, timing, elapsed)
}
