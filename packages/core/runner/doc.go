// Package runner executes a spec tree and produces a run summary.
//
// It provides:
//   - Path filtering and rerun-only-failures filtering
//   - Deterministic seeded shuffling of sibling order
//   - A bounded worker pool with configurable width (width 1 is strictly
//     sequential, the default)
//   - Scoped hook execution: beforeEach/afterEach per example, memoized
//     exactly-once beforeAll/afterAll per group, around wrappers composed
//     innermost-to-outermost
//   - Per-example timeout races with the losing evaluation detached
//   - Panic capture, so a fault in one example never aborts its siblings
//   - Failure report persistence and run history recording
//
// Events flow to a single serialized output.Formatter; a group's
// entered/left events always bracket every event of its descendants.
package runner
