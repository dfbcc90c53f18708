// Package config holds the run configuration consumed by the runner.
//
// Values are resolved in three layers: built-in defaults, an optional
// .bspec.yaml project file, and BSPEC_* environment variables. The CLI
// sets the environment variables; library users can also fill the struct
// directly. Validate rejects invalid combinations before a run starts.
package config
