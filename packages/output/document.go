package output

import (
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/abdul-hamid-achik/bspec/packages/core/spec"
	"github.com/abdul-hamid-achik/bspec/packages/stats"
)

// Document renders the full nested doc-style output: one indented line
// per group and per example.
type Document struct {
	base
}

// NewDocument returns a doc-style formatter.
func NewDocument(opts ...Option) *Document {
	return &Document{base: newBase(opts...)}
}

func (f *Document) RunStarted(info RunInfo) {
	f.info = info
	bold := color.New(color.Bold).SprintFunc()
	f.sink.Line("%s seed=%d concurrency=%d", bold("bspec run"), info.Seed, info.Concurrency)
	f.sink.Line("")
}

func (f *Document) GroupStarted(label string, depth int) {
	f.sink.Line("%s%s", indent(depth), label)
}

func (f *Document) GroupDone(label string, depth int) {
	if depth == 0 {
		f.sink.Line("")
	}
}

func (f *Document) ExampleStarted(path spec.Path) {}

func (f *Document) ExamplePassed(path spec.Path, duration time.Duration) {
	green := color.New(color.FgGreen).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	f.sink.Line("%s%s %s %s", indent(len(path.Groups)), green("✓"),
		path.Requirement, cyan("("+duration.Round(time.Millisecond).String()+")"))
}

func (f *Document) ExampleFailed(path spec.Path, failure *spec.Failure, duration time.Duration) {
	f.recordFailure(path, failure, duration)
	red := color.New(color.FgRed).SprintFunc()
	f.sink.Line("%s%s %s %s", indent(len(path.Groups)), red("✗"),
		path.Requirement, red("(failed)"))
}

func (f *Document) ExamplePending(path spec.Path, reason string) {
	f.recordPending(path, reason)
	yellow := color.New(color.FgYellow).SprintFunc()
	line := indent(len(path.Groups)) + yellow("-") + " " + path.Requirement
	if reason != "" {
		line += " " + yellow("(pending: "+reason+")")
	} else {
		line += " " + yellow("(pending)")
	}
	f.sink.Line("%s", line)
}

func (f *Document) RunDone(summary spec.Summary, timing stats.Snapshot, elapsed time.Duration) {
	f.writeFailures()
	f.writeSummary(summary, timing, elapsed)
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}
