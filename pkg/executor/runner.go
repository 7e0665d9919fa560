// Package executor runs scenarios one after another, each in its own session.
package executor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/devicelab-dev/loginmodule-e2e/pkg/config"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/core"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/harness"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/logger"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/scenario"
)

// SuiteName names the suite in results.
const SuiteName = "loginmodule-e2e"

// RunnerConfig configures the runner.
type RunnerConfig struct {
	StopOnFail bool // Skip remaining scenarios after the first failure

	// Live progress callbacks
	OnScenarioStart func(idx, total int, name string)
	OnScenarioEnd   func(idx, total int, result core.ScenarioResult)
}

// Runner executes scenarios sequentially.
type Runner struct {
	config RunnerConfig
	suite  *config.Config
}

// New creates a new Runner.
func New(suite *config.Config, cfg RunnerConfig) *Runner {
	return &Runner{
		config: cfg,
		suite:  suite,
	}
}

// Run executes all scenarios and returns the aggregated result.
func (r *Runner) Run(ctx context.Context, scenarios []scenario.Scenario) *core.SuiteResult {
	result := &core.SuiteResult{
		Name:      SuiteName,
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
		Scenarios: make([]core.ScenarioResult, len(scenarios)),
	}

	logger.Info("run %s: %d scenario(s), output %s", result.RunID, len(scenarios), r.suite.OutputDir)

	stopped := false
	total := len(scenarios)
	for i, sc := range scenarios {
		switch {
		case ctx.Err() != nil:
			result.Scenarios[i] = skipped(sc, "run cancelled")
			continue
		case stopped:
			result.Scenarios[i] = skipped(sc, "run stopped after failure")
			continue
		}

		if r.config.OnScenarioStart != nil {
			r.config.OnScenarioStart(i, total, sc.Name)
		}

		sr := r.executeScenario(ctx, sc, r.suite.RunDir(result.RunID))
		result.Scenarios[i] = sr

		if r.config.OnScenarioEnd != nil {
			r.config.OnScenarioEnd(i, total, sr)
		}
		if r.config.StopOnFail && !sr.Status.IsSuccess() {
			stopped = true
		}
	}

	result.Duration = time.Since(result.StartTime)
	result.ComputeSummary()

	logger.Info("run %s: %d passed, %d failed, %d skipped in %v",
		result.RunID, result.Passed, result.Failed, result.Skipped, result.Duration.Round(time.Millisecond))
	return result
}

// executeScenario runs one scenario in a fresh session, capturing artifacts
// before the session closes.
func (r *Runner) executeScenario(ctx context.Context, sc scenario.Scenario, artifactDir string) core.ScenarioResult {
	res := core.ScenarioResult{
		Name:      sc.Name,
		Tags:      sc.Tags,
		Status:    core.StatusRunning,
		StartTime: time.Now(),
	}

	logger.Info("scenario %s: start", sc.Name)

	err := harness.Run(ctx, r.suite, func(ctx context.Context, s *harness.Session) error {
		res.SessionID = s.ID

		runErr := sc.Run(ctx, s)
		if r.suite.Artifacts.ShouldCapture(core.StatusOf(runErr)) {
			attachments, capErr := s.Capture(context.WithoutCancel(ctx), artifactDir, sc.Name)
			if capErr != nil {
				logger.Warn("scenario %s: artifact capture incomplete: %v", sc.Name, capErr)
			}
			res.Attachments = attachments
		}
		return runErr
	})

	res.Duration = time.Since(res.StartTime)
	res.Status = core.StatusOf(err)
	if err != nil {
		res.Category = core.CategoryOf(err)
		res.Error = err.Error()
		logger.Error("scenario %s: %s after %v: %v", sc.Name, res.Status, res.Duration.Round(time.Millisecond), err)
	} else {
		logger.Info("scenario %s: passed in %v", sc.Name, res.Duration.Round(time.Millisecond))
	}
	return res
}

func skipped(sc scenario.Scenario, reason string) core.ScenarioResult {
	return core.ScenarioResult{
		Name:   sc.Name,
		Tags:   sc.Tags,
		Status: core.StatusSkipped,
		Error:  reason,
	}
}
