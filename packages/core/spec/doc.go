// Package spec defines the immutable tree of groups and examples that the
// runner executes.
//
// It provides:
//   - A builder DSL (Suite, G) for declaring nested groups, examples and
//     scoped hooks (BeforeEach/AfterEach/BeforeAll/AfterAll/Around)
//   - Path, Result and Summary value types shared with the runner and the
//     output formatters
//   - Sentinel errors for marking examples pending or recording a
//     structured expected/actual mismatch
//   - Side-effect-free tree transforms: Filter and Shuffle
//
// Trees are built once and never mutated afterwards, so a tree can be
// traversed more than once (a dry counting pass and a real run) and a
// reported Path always reflects the exact nesting at evaluation time.
package spec
