// Package output decouples reporting from the runner.
//
// The runner emits an ordered vocabulary of lifecycle events through the
// Formatter interface; a formatter renders them however it likes. Three
// renderers share the vocabulary:
//   - Document: verbose nested doc-style output
//   - Progress: one character per example
//   - Failures: silent except for failed examples
//
// Formatters write through a Sink providing the primitive text and color
// operations. The runner wraps its formatter in Synchronized, so a
// formatter never sees two events at once even under concurrency.
package output
