package output

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/bspec/packages/core/spec"
	"github.com/abdul-hamid-achik/bspec/packages/stats"
)

func init() {
	color.NoColor = true
}

func examplePath(req string) spec.Path {
	return spec.Path{Groups: []string{"group"}, Requirement: req}
}

func mismatch() *spec.Failure {
	return &spec.Failure{
		Kind:     spec.FailureMismatch,
		Expected: []string{"one", "two"},
		Actual:   []string{"one", "three"},
	}
}

func playRun(f Formatter) {
	f.RunStarted(RunInfo{ID: "run-1", Seed: 42, Concurrency: 1, Total: 3})
	f.GroupStarted("group", 0)
	f.ExampleStarted(examplePath("passes"))
	f.ExamplePassed(examplePath("passes"), 3*time.Millisecond)
	f.ExampleStarted(examplePath("fails"))
	f.ExampleFailed(examplePath("fails"), mismatch(), time.Millisecond)
	f.ExamplePending(examplePath("waits"), "someday")
	f.GroupDone("group", 0)
	f.RunDone(spec.Summary{Examples: 3, Failures: 1}, stats.Snapshot{}, 10*time.Millisecond)
}

func TestDocument(t *testing.T) {
	var buf bytes.Buffer
	playRun(NewDocument(WithWriter(&buf)))
	out := buf.String()

	assert.Contains(t, out, "seed=42")
	assert.Contains(t, out, "group")
	assert.Contains(t, out, "✓ passes")
	assert.Contains(t, out, "✗ fails")
	assert.Contains(t, out, "pending: someday")
	assert.Contains(t, out, "Failures:")
	assert.Contains(t, out, "1) group > fails")
	assert.Contains(t, out, "- two")
	assert.Contains(t, out, "+ three")
	assert.Contains(t, out, "3 total")
	assert.Contains(t, out, "Seed:     42")

	assert.Less(t, strings.Index(out, "✓ passes"), strings.Index(out, "✗ fails"))
}

func TestDocument_DiffKeepsCommonLinesUnmarked(t *testing.T) {
	var buf bytes.Buffer
	f := NewDocument(WithWriter(&buf))
	f.RunStarted(RunInfo{Seed: 1})
	f.ExampleFailed(examplePath("fails"), mismatch(), time.Millisecond)
	f.RunDone(spec.Summary{Examples: 1, Failures: 1}, stats.Snapshot{}, time.Millisecond)

	for _, line := range strings.Split(buf.String(), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "one" {
			return
		}
		if trimmed == "- one" || trimmed == "+ one" {
			t.Fatalf("common line rendered as a difference: %q", line)
		}
	}
	t.Fatal("common line missing from diff output")
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	playRun(NewProgress(WithWriter(&buf)))
	out := buf.String()

	assert.Contains(t, out, ".F*")
	assert.Contains(t, out, "Failures:")
	assert.Contains(t, out, "1) group > fails")
	assert.NotContains(t, out, "✓")
}

func TestFailures(t *testing.T) {
	var buf bytes.Buffer
	playRun(NewFailures(WithWriter(&buf)))
	out := buf.String()

	assert.NotContains(t, out, "passes")
	assert.Contains(t, out, "1) group > fails")
	assert.Contains(t, out, "1 failed")
}

func TestFailures_SilentOnSuccess(t *testing.T) {
	var buf bytes.Buffer
	f := NewFailures(WithWriter(&buf))
	f.RunStarted(RunInfo{Seed: 7})
	f.ExamplePassed(examplePath("fine"), time.Millisecond)
	assert.Empty(t, buf.String(), "nothing is written until the run is done")
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer

	for _, name := range []string{"doc", "progress", "failures"} {
		f, err := New(name, &buf)
		require.NoError(t, err)
		assert.NotNil(t, f)
	}

	_, err := New("sparkles", &buf)
	assert.Error(t, err)
}

func TestSynchronized(t *testing.T) {
	var buf bytes.Buffer
	f := Synchronized(NewProgress(WithWriter(&buf)))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.ExamplePassed(examplePath("p"), time.Millisecond)
		}()
	}
	wg.Wait()

	assert.Equal(t, strings.Repeat(".", 50), buf.String())
}

func TestFailureHeadline(t *testing.T) {
	assert.Equal(t, "timed out", failureHeadline(&spec.Failure{Kind: spec.FailureTimeout}))
	assert.Equal(t, "panic: x", failureHeadline(&spec.Failure{Kind: spec.FailureFault, Message: "x"}))
	assert.Equal(t, "expected and actual values differ", failureHeadline(&spec.Failure{Kind: spec.FailureMismatch}))
	assert.Equal(t, "boom", failureHeadline(&spec.Failure{Kind: spec.FailureReason, Message: "boom"}))
}
