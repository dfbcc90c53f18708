package config

// Default returns a configuration with default values: sequential
// execution, no timeout, doc formatter, report and history under .bspec/.
func Default() *Config {
	return &Config{
		Concurrency: 1,
		Timeout:     0,
		FastFail:    false,
		Rerun:       false,
		Filter:      "",
		Formatter:   FormatterDoc,
		Color:       ColorAuto,
		ReportPath:  ".bspec/failures.json",
		HistoryPath: ".bspec/history.db",
	}
}
