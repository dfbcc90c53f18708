package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/abdul-hamid-achik/bspec/packages/core/config"
)

var runCmd = &cobra.Command{
	Use:   "run [packages]",
	Short: "Run spec suites via go test",
	Long: `Run spec suites in the given Go packages (default ./...).

bspec run wraps "go test", translating its flags into BSPEC_* environment
variables that the suites read through the config package.

Examples:
  bspec run
  bspec run ./internal/... --concurrency 4
  bspec run --seed 1337 --formatter progress
  bspec run --rerun
  bspec run --fast-fail --timeout 5s
  bspec run --watch`,
	RunE: runCommand,
}

// watchCoalesce bounds how often file change events trigger a re-run.
const watchCoalesce = 500 * time.Millisecond

var (
	concurrencyFlag int
	seedFlag        int64
	timeoutFlag     string
	fastFailFlag    bool
	rerunFlag       bool
	filterFlag      string
	formatterFlag   string
	colorFlag       string
	reportFlag      string
	historyFlag     string
	watchFlag       bool
	goTestVerbose   bool
)

func init() {
	runCmd.Flags().IntVarP(&concurrencyFlag, "concurrency", "c", config.EnvInt("BSPEC_CONCURRENCY", 1), "Worker pool width, 1 = sequential (env: BSPEC_CONCURRENCY)")
	runCmd.Flags().Int64Var(&seedFlag, "seed", 0, "Shuffle seed for reproducible ordering (env: BSPEC_SEED)")
	runCmd.Flags().StringVar(&timeoutFlag, "timeout", config.EnvString("BSPEC_TIMEOUT", ""), "Per-example timeout, e.g. 5s (env: BSPEC_TIMEOUT)")
	runCmd.Flags().BoolVar(&fastFailFlag, "fast-fail", config.EnvBool("BSPEC_FAST_FAIL", false), "Stop dispatching examples after the first failure (env: BSPEC_FAST_FAIL)")
	runCmd.Flags().BoolVar(&rerunFlag, "rerun", false, "Run only examples that failed in the previous run")
	runCmd.Flags().StringVarP(&filterFlag, "filter", "f", "", "Run only examples whose path matches the pattern (* prefix/suffix supported)")
	runCmd.Flags().StringVarP(&formatterFlag, "formatter", "F", config.EnvString("BSPEC_FORMATTER", config.FormatterDoc), "Output formatter: doc, progress, failures (env: BSPEC_FORMATTER)")
	runCmd.Flags().StringVar(&colorFlag, "color", config.EnvString("BSPEC_COLOR", config.ColorAuto), "Color mode: auto, always, never (env: BSPEC_COLOR)")
	runCmd.Flags().StringVar(&reportFlag, "report", config.EnvString("BSPEC_REPORT", ""), "Failure report path (env: BSPEC_REPORT)")
	runCmd.Flags().StringVar(&historyFlag, "history", config.EnvString("BSPEC_HISTORY", ""), "Run history database path (env: BSPEC_HISTORY)")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch Go files for changes and re-run")
	runCmd.Flags().BoolVarP(&goTestVerbose, "verbose", "v", false, "Pass -v to go test")
}

func runCommand(cmd *cobra.Command, args []string) error {
	packages := args
	if len(packages) == 0 {
		packages = []string{"./..."}
	}

	// Validate the option combination up front so a bad invocation fails
	// before any test process starts.
	cfg := config.Default()
	cfg.Concurrency = concurrencyFlag
	cfg.FastFail = fastFailFlag
	cfg.Rerun = rerunFlag
	cfg.Filter = filterFlag
	cfg.Formatter = formatterFlag
	cfg.Color = colorFlag
	if reportFlag != "" {
		cfg.ReportPath = reportFlag
	}
	if timeoutFlag != "" {
		d, err := time.ParseDuration(timeoutFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid timeout %q: %v\n", timeoutFlag, err)
			os.Exit(ExitConfigError)
		}
		cfg.Timeout = d
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(ExitConfigError)
	}

	env := buildEnv(cmd)

	code := runGoTest(cmd, packages, env)
	if !watchFlag {
		os.Exit(code)
	}

	return watchAndRerun(cmd, packages, env)
}

// buildEnv translates the run flags into the BSPEC_* environment consumed
// by config.FromEnv inside the test process.
func buildEnv(cmd *cobra.Command) []string {
	env := []string{
		fmt.Sprintf("BSPEC_CONCURRENCY=%d", concurrencyFlag),
		fmt.Sprintf("BSPEC_FAST_FAIL=%t", fastFailFlag),
		fmt.Sprintf("BSPEC_RERUN=%t", rerunFlag),
		"BSPEC_FORMATTER=" + formatterFlag,
		"BSPEC_COLOR=" + colorFlag,
	}
	if cmd.Flags().Changed("seed") {
		env = append(env, fmt.Sprintf("BSPEC_SEED=%d", seedFlag))
	}
	if timeoutFlag != "" {
		env = append(env, "BSPEC_TIMEOUT="+timeoutFlag)
	}
	if filterFlag != "" {
		env = append(env, "BSPEC_FILTER="+filterFlag)
	}
	if reportFlag != "" {
		env = append(env, "BSPEC_REPORT="+reportFlag)
	}
	if historyFlag != "" {
		env = append(env, "BSPEC_HISTORY="+historyFlag)
	}
	return env
}

func runGoTest(cmd *cobra.Command, packages, env []string) int {
	goArgs := []string{"test"}
	if goTestVerbose {
		goArgs = append(goArgs, "-v")
	}
	goArgs = append(goArgs, packages...)

	proc := exec.Command("go", goArgs...)
	proc.Stdout = cmd.OutOrStdout()
	proc.Stderr = cmd.ErrOrStderr()
	proc.Env = append(os.Environ(), env...)

	if err := proc.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "running go test: %v\n", err)
		return ExitUsageError
	}
	return ExitSuccess
}

// watchAndRerun re-runs the suites whenever a Go file changes. A rate
// limiter coalesces the event bursts editors produce on save.
func watchAndRerun(cmd *cobra.Command, packages, env []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	err = filepath.Walk(".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		name := info.Name()
		if name != "." && (strings.HasPrefix(name, ".") || name == "vendor" || name == "testdata") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		return fmt.Errorf("watching directories: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")

	limiter := rate.NewLimiter(rate.Every(watchCoalesce), 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if filepath.Ext(event.Name) != ".go" {
				continue
			}
			if !limiter.Allow() {
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nFile changed: %s\nRe-running specs...\n\n", event.Name)
			runGoTest(cmd, packages, env)
			fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watcher error: %v\n", err)
		}
	}
}
