package cmd

// Exit codes for the bspec CLI
const (
	// ExitSuccess indicates all examples passed
	ExitSuccess = 0

	// ExitTestFailure indicates one or more examples failed
	ExitTestFailure = 1

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)
