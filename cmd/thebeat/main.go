package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/thebeat-kr/thebeat/internal/common"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	// Command-line flags
	configFiles  configPaths // Multiple -config flags supported
	backtestDate = flag.String("date", "", "Back-test against this date (YYYYMMDD); skips delivery")
	scheduled    = flag.Bool("schedule", false, "Run on the configured cron schedule instead of once")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	// Global state
	config *common.Config
	logger arbor.ILogger
)

func init() {
	// Register custom flag for multiple config files
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("The Beat version %s\n", common.GetVersion())
		os.Exit(0)
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
	// 2. Initialize logger
	// 3. Print banner
	var err error

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("thebeat.toml"); err == nil {
			configFiles = append(configFiles, "thebeat.toml")
		} else if _, err := os.Stat("deployments/local/thebeat.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/thebeat.toml")
		}
	}

	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		// Use temporary logger for startup errors
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger = common.InitLogger(config)
	common.PrintBanner(common.GetFullVersion())

	logger.Info().
		Strs("config_files", configFiles).
		Str("environment", config.Environment).
		Str("log_level", config.Logging.Level).
		Msg("Application configuration loaded")

	// Back-test mode: fixed reference instant, no delivery, no session gate.
	if *backtestDate != "" {
		day, err := common.ParseCompactDate(*backtestDate)
		if err != nil {
			logger.Fatal().Str("date", *backtestDate).Err(err).Msg("Invalid back-test date")
			os.Exit(1)
		}
		runBacktest(day)
		return
	}

	if *scheduled {
		runScheduled()
		return
	}

	runOnce()
}

// runOnce executes a single collection cycle against the current time.
// Collection failures degrade inside the pipeline; only construction
// problems (bad config) are fatal.
func runOnce() {
	ctx, cancel := signalContext()
	defer cancel()

	p, err := newPipeline(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize pipeline")
		os.Exit(1)
	}
	defer p.Close()

	p.Run(ctx, time.Now().In(common.KST()), false)
}

// runBacktest replays a cycle as if it were the given morning. The
// reference instant is the pre-open briefing time on that date.
func runBacktest(day time.Time) {
	ctx, cancel := signalContext()
	defer cancel()

	ref := time.Date(day.Year(), day.Month(), day.Day(), 8, 20, 0, 0, common.KST())
	logger.Info().
		Str("reference", common.FormatAPIDateTime(ref)).
		Msg("Back-test run")

	p, err := newPipeline(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize pipeline")
		os.Exit(1)
	}
	defer p.Close()

	p.Run(ctx, ref, true)
}

// runScheduled blocks, firing a cycle on the configured cron expression
// until interrupted.
func runScheduled() {
	ctx, cancel := signalContext()
	defer cancel()

	p, err := newPipeline(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize pipeline")
		os.Exit(1)
	}
	defer p.Close()

	c := cron.New()
	_, err = c.AddFunc(config.Schedule.Cron, func() {
		p.Run(ctx, time.Now().In(common.KST()), false)
	})
	if err != nil {
		logger.Fatal().Str("cron", config.Schedule.Cron).Err(err).Msg("Invalid cron expression")
		os.Exit(1)
	}

	c.Start()
	logger.Info().
		Str("cron", config.Schedule.Cron).
		Msg("Scheduler started - Press Ctrl+C to stop")

	<-ctx.Done()
	logger.Info().Msg("Interrupt signal received")

	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		logger.Warn().Msg("Timed out waiting for running cycle to finish")
	}
	logger.Info().Msg("Scheduler stopped")
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
