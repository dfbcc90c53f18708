// Package cmd implements the bspec CLI commands using Cobra.
//
// Available commands:
//   - run: Execute spec suites via `go test` with bspec options
//   - history: Show recent runs recorded in the history database
//   - version: Show bspec version information
//
// The run command translates its flags into BSPEC_* environment
// variables consumed by the config package inside the test process, and
// supports a watch mode that re-runs suites when source files change.
package cmd
