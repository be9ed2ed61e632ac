package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/clockzen/evidence-harness/config"
	"github.com/clockzen/evidence-harness/internal/driver"
	"github.com/clockzen/evidence-harness/internal/harness"
	"github.com/clockzen/evidence-harness/internal/scenarios"
	"github.com/clockzen/evidence-harness/pkg/logger"
)

// RunOptions holds command options
type RunOptions struct {
	BaseURL      string
	EvidenceRoot string
	Parallel     int
	Headless     bool
	WSEndpoint   string
	Tags         []string
}

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run [flags] [feature-tag...]",
		Short: "Run evidence scenarios and capture artifacts",
		Long: `Run all registered scenarios, or only those named by feature tag.
Each scenario executes against its own isolated browser context and writes
its artifacts under the evidence root.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Tags = args
			applyFlagOverrides(cmd, opts)
			return runScenarios(opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.BaseURL, "base-url", "", "Base URL of the application under test")
	flags.StringVar(&opts.EvidenceRoot, "evidence-root", "", "Directory to write artifacts under")
	flags.IntVar(&opts.Parallel, "parallel", 0, "Number of scenarios to run concurrently")
	flags.BoolVar(&opts.Headless, "headless", true, "Run the browser headless")
	flags.StringVar(&opts.WSEndpoint, "ws-endpoint", "", "Connect to a remote browser server instead of launching one")

	return cmd
}

// applyFlagOverrides pushes explicitly-set flags into configuration so the
// rest of the harness reads one source of truth.
func applyFlagOverrides(cmd *cobra.Command, opts *RunOptions) {
	if cmd.Flags().Changed("base-url") {
		config.Set("target.base_url", opts.BaseURL)
	}
	if cmd.Flags().Changed("evidence-root") {
		config.Set("evidence.root", opts.EvidenceRoot)
	}
	if cmd.Flags().Changed("parallel") {
		config.Set("run.parallel", opts.Parallel)
	}
	if cmd.Flags().Changed("headless") {
		config.Set("browser.headless", opts.Headless)
	}
	if cmd.Flags().Changed("ws-endpoint") {
		config.Set("browser.ws_endpoint", opts.WSEndpoint)
	}
}

func runScenarios(opts *RunOptions) error {
	log := logger.New()

	selected, err := scenarios.ByTags(opts.Tags)
	if err != nil {
		return err
	}

	browser, err := driver.New(driver.Options{
		WSEndpoint:     config.WSEndpoint(),
		Headless:       config.Headless(),
		ViewportWidth:  config.ViewportWidth(),
		ViewportHeight: config.ViewportHeight(),
	}, log)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			log.Warn("Failed to close browser: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runOpts := harness.Options{
		BaseURL:      config.TargetBaseURL(),
		EvidenceRoot: config.EvidenceRoot(),
	}
	runner := harness.NewRunner(runOpts, config.Parallel(), browser.NewSession, log)

	log.Info("Running %d scenario(s) against %s", len(selected), runOpts.BaseURL)
	started := time.Now()
	results := runner.Run(ctx, selected)

	failed := 0
	for _, res := range results {
		if res.Passed() {
			log.Info("%s (%d artifact(s), %v)", log.Pass(res.FeatureTag), len(res.Artifacts), res.Duration.Round(time.Millisecond))
		} else {
			failed++
			log.Error("%s: %v", log.Fail(res.FeatureTag), res.Err)
		}
	}

	manifest := harness.NewManifest(started, results)
	manifestPath, err := manifest.Write(runOpts.EvidenceRoot)
	if err != nil {
		log.Warn("Failed to write run manifest: %v", err)
	} else {
		log.Info("Run manifest written to %s", manifestPath)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scenario(s) failed", failed, len(results))
	}
	log.Info("All %d scenario(s) passed", len(results))
	return nil
}
