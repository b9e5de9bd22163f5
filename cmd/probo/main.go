package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/probo/internal/common"
	"github.com/ternarybob/probo/internal/results"
)

var (
	configPath   = flag.String("config", "", "Configuration file path (TOML)")
	browserName  = flag.String("browser", "", "Browser to drive (overrides config)")
	headless     = flag.Bool("headless", false, "Run the browser headless (overrides config)")
	suiteFilter  = flag.String("run", "", "Run only tests matching this pattern (go test -run)")
	parallel     = flag.Int("parallel", 0, "Maximum parallel tests (go test -parallel)")
	outputDir    = flag.String("output", "", "Results base directory (overrides config)")
	schedule     = flag.String("schedule", "", "Cron expression for recurring runs (e.g. \"0 */2 * * *\")")
	listRuns     = flag.Int("list-runs", 0, "List the N most recent runs and exit")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	config     *common.Config
	configFile string
	logger     arbor.ILogger
)

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Probo version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Startup sequence: load config, apply CLI overrides, init logger,
	// print banner.
	var err error

	path := *configPath
	if path == "" {
		if _, statErr := os.Stat("probo.toml"); statErr == nil {
			path = "probo.toml"
		}
	}

	config, err = common.LoadConfig(path)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Str("path", path).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	// The test suites run with test/ui as their working directory, so hand
	// them an absolute path to the same config file.
	if path != "" {
		if abs, absErr := filepath.Abs(path); absErr == nil {
			configFile = abs
		} else {
			configFile = path
		}
	}

	applyFlagOverrides(config)

	logger = common.InitLogger(config, "")
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Str("environment", config.Environment).
		Str("base_url", config.Target.BaseURL).
		Str("browser", config.Browser.Name).
		Bool("headless", config.Browser.Headless).
		Msg("Configuration loaded")

	store, err := results.Open(filepath.Join(config.Output.ResultsBaseDir, "history"), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open run history")
		os.Exit(1)
	}
	defer store.Close()

	if *listRuns > 0 {
		printRunHistory(store, *listRuns)
		return
	}

	if *schedule != "" {
		runScheduled(store, *schedule)
		return
	}

	run := executeRun(store)
	if run.Status != results.RunStatusPassed {
		os.Exit(1)
	}
}

// applyFlagOverrides layers command-line flags over the loaded config.
// Flags have the highest priority.
func applyFlagOverrides(c *common.Config) {
	if *browserName != "" {
		c.Browser.Name = strings.ToLower(*browserName)
	}
	if isFlagSet("headless") {
		c.Browser.Headless = *headless
	}
	if *outputDir != "" {
		c.Output.ResultsBaseDir = *outputDir
	}
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// executeRun drives one smoke run: create the run directory, exec the UI
// test suite with the resolved configuration exported, parse the outcome
// and persist the record.
func executeRun(store *results.Store) *results.RunRecord {
	runID := common.NewRunID()
	started := time.Now()

	runDir := filepath.Join(config.Output.ResultsBaseDir,
		fmt.Sprintf("ui-%s", started.Format("2006-01-02_15-04-05")))
	absRunDir, err := filepath.Abs(runDir)
	if err != nil {
		absRunDir = runDir
	}
	if err := os.MkdirAll(filepath.Join(absRunDir, "screenshots"), 0755); err != nil {
		logger.Fatal().Err(err).Str("dir", absRunDir).Msg("Failed to create run directory")
		os.Exit(1)
	}

	logger.Info().
		Str("run_id", runID).
		Str("output", absRunDir).
		Msg("Starting UI smoke run")

	args := []string{"test", "-v", "-count=1"}
	if *suiteFilter != "" {
		args = append(args, "-run", *suiteFilter)
	}
	if *parallel > 0 {
		args = append(args, "-parallel", fmt.Sprintf("%d", *parallel))
	}
	args = append(args, "./test/ui/...")

	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(),
		"BASE_URL="+config.Target.BaseURL,
		"API_BASE_URL="+config.Target.APIBaseURL,
		"BROWSER="+config.Browser.Name,
		fmt.Sprintf("HEADLESS=%t", config.Browser.Headless),
		"ENVIRONMENT="+config.Environment,
		"TEST_RESULTS_DIR="+absRunDir,
		"LOG_LEVEL="+config.Logging.Level,
	)
	if configFile != "" {
		// Timeouts, window size and the other file-only settings reach the
		// suite through the file itself, not per-field env vars.
		cmd.Env = append(cmd.Env, "PROBO_CONFIG="+configFile)
	}

	output, runErr := cmd.CombinedOutput()
	finished := time.Now()

	logPath := filepath.Join(absRunDir, "test.log")
	if err := os.WriteFile(logPath, output, 0644); err != nil {
		logger.Warn().Err(err).Str("path", logPath).Msg("Failed to write test log")
	}

	passed, failed, skipped := parseTestCounts(string(output))

	status := results.RunStatusPassed
	if runErr != nil || failed > 0 {
		status = results.RunStatusFailed
	}

	run := &results.RunRecord{
		ID:          runID,
		Suite:       "ui",
		Browser:     config.Browser.Name,
		Environment: config.Environment,
		StartedAt:   started,
		FinishedAt:  finished,
		Status:      status,
		Passed:      passed,
		Failed:      failed,
		Skipped:     skipped,
		OutputDir:   absRunDir,
	}

	if err := store.SaveRun(run); err != nil {
		logger.Warn().Err(err).Msg("Failed to persist run record")
	}

	event := logger.Info()
	if status == results.RunStatusFailed {
		event = logger.Warn()
	}
	event.
		Str("run_id", runID).
		Str("status", status).
		Int("passed", passed).
		Int("failed", failed).
		Int("skipped", skipped).
		Str("duration", run.Duration().Round(time.Millisecond).String()).
		Msg("Run complete")

	return run
}

// parseTestCounts extracts pass/fail/skip counts from go test -v output.
func parseTestCounts(output string) (passed, failed, skipped int) {
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "--- PASS:"):
			passed++
		case strings.HasPrefix(trimmed, "--- FAIL:"):
			failed++
		case strings.HasPrefix(trimmed, "--- SKIP:"):
			skipped++
		}
	}
	return passed, failed, skipped
}

// runScheduled executes the suite on a cron schedule until interrupted.
func runScheduled(store *results.Store, expr string) {
	scheduler := cron.New()
	_, err := scheduler.AddFunc(expr, func() {
		executeRun(store)
	})
	if err != nil {
		logger.Fatal().Err(err).Str("schedule", expr).Msg("Invalid cron expression")
		os.Exit(1)
	}

	logger.Info().Str("schedule", expr).Msg("Scheduler started, press Ctrl+C to stop")
	scheduler.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	ctx := scheduler.Stop()
	<-ctx.Done()
	logger.Info().Msg("Scheduler stopped")
}

// printRunHistory lists the most recent runs with a summary line.
func printRunHistory(store *results.Store, limit int) {
	runs, err := store.ListRuns(limit)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to list runs")
		os.Exit(1)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet")
		return
	}

	fmt.Printf("%-42s %-10s %-8s %-8s %6s %6s %6s  %s\n",
		"RUN", "BROWSER", "ENV", "STATUS", "PASS", "FAIL", "SKIP", "STARTED")
	fmt.Println(strings.Repeat("-", 110))
	for _, r := range runs {
		fmt.Printf("%-42s %-10s %-8s %-8s %6d %6d %6d  %s\n",
			r.ID, r.Browser, r.Environment, r.Status,
			r.Passed, r.Failed, r.Skipped,
			r.StartedAt.Format("2006-01-02 15:04:05"))
	}

	summary, err := store.Summarize()
	if err == nil {
		fmt.Printf("\nTotal: %d runs (%d passed, %d failed)\n",
			summary.TotalRuns, summary.PassedRuns, summary.FailedRuns)
	}
}
