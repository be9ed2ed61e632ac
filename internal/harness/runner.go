package harness

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/clockzen/evidence-harness/pkg/logger"
)

// SessionFactory acquires an isolated browser session for one scenario.
type SessionFactory func(ctx context.Context) (Session, error)

// Result is the outcome of one scenario run as reported to the caller.
type Result struct {
	Name       string
	FeatureTag string
	Artifacts  []string
	Duration   time.Duration
	Err        error
}

// Passed reports whether the scenario completed without a fatal condition.
func (r Result) Passed() bool {
	return r.Err == nil
}

// Runner executes scenarios, each against its own isolated browser context.
// Scenarios never share mutable state; the only shared resource is the
// evidence directory, safe under concurrent writes because every scenario
// owns distinct artifact paths.
type Runner struct {
	opts       Options
	parallel   int
	newSession SessionFactory
	log        *logger.Logger
}

// NewRunner creates a runner. parallel < 1 is treated as sequential.
func NewRunner(opts Options, parallel int, factory SessionFactory, log *logger.Logger) *Runner {
	if parallel < 1 {
		parallel = 1
	}
	return &Runner{opts: opts, parallel: parallel, newSession: factory, log: log}
}

// Run executes all scenarios and returns one result per scenario, in input
// order. A fatal condition aborts only the scenario it occurred in.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) []Result {
	if err := os.MkdirAll(r.opts.EvidenceRoot, 0755); err != nil {
		r.log.Error("Failed to create evidence root %s: %v", r.opts.EvidenceRoot, err)
	}

	results := make([]Result, len(scenarios))
	sem := make(chan struct{}, r.parallel)
	var wg sync.WaitGroup

	for i, sc := range scenarios {
		wg.Add(1)
		go func(i int, sc Scenario) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = r.runOne(ctx, sc)
		}(i, sc)
	}
	wg.Wait()
	return results
}

// runOne acquires an isolated session, executes the scenario, verifies its
// artifacts, and releases the session regardless of outcome.
func (r *Runner) runOne(ctx context.Context, sc Scenario) Result {
	started := time.Now()
	res := Result{Name: sc.Name, FeatureTag: sc.FeatureTag}

	session, err := r.newSession(ctx)
	if err != nil {
		res.Err = fmt.Errorf("scenario %s: acquiring browser session: %w", sc.FeatureTag, err)
		res.Duration = time.Since(started)
		return res
	}
	defer func() {
		if err := session.Close(); err != nil {
			r.log.Warn("[%s] failed to release browser session: %v", sc.FeatureTag, err)
		}
	}()

	artifacts, err := sc.Run(ctx, session.Driver(), r.opts, r.log)
	res.Artifacts = artifacts
	if err != nil {
		res.Err = err
		res.Duration = time.Since(started)
		return res
	}

	for _, path := range artifacts {
		if err := verifyArtifact(path); err != nil {
			res.Err = fmt.Errorf("scenario %s: %w", sc.FeatureTag, err)
			break
		}
	}
	res.Duration = time.Since(started)
	return res
}

// verifyArtifact confirms a captured file exists, is non-empty, and sniffs
// as a PNG image.
func verifyArtifact(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCaptureFailure, path, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %s is empty", ErrCaptureFailure, path)
	}
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCaptureFailure, path, err)
	}
	if !mtype.Is("image/png") {
		return fmt.Errorf("%w: %s is %s, expected image/png", ErrCaptureFailure, path, mtype)
	}
	return nil
}
