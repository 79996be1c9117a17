package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/blackboxsec/blackbox/internal/core"
	"github.com/blackboxsec/blackbox/internal/domain/model"
	obserrors "github.com/blackboxsec/blackbox/internal/observability/errors"
	"github.com/blackboxsec/blackbox/internal/observability/metrics"
	"github.com/blackboxsec/blackbox/internal/observability/notify"
)

// execute runs one claimed job to a terminal state: record a Run, ensure the
// required profile, invoke the handler, capture output, finalize.
func (e *Engine) execute(ctx context.Context, job *model.Job) {
	logger := e.logger.With("job_id", job.ID, "job_type", job.Type)
	logger.InfoContext(ctx, "executing job")

	handler, resolved := e.registry.Resolve(job.Type)
	moduleName := string(job.Type)
	if !resolved {
		moduleName = model.ModuleUnresolved
	}

	// Finalization must survive shutdown: a claimed job left running with no
	// terminal status would look stale forever.
	finalizeCtx := context.WithoutCancel(ctx)

	startedAt := e.timeProvider.Now().UTC()
	run, err := e.store.Runs.Start(finalizeCtx, core.StartRunParams{
		JobID:     job.ID,
		Module:    moduleName,
		StartedAt: startedAt,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to record run start", "error", err)
		e.finalize(finalizeCtx, logger, job, false)
		e.observeOutcome(finalizeCtx, job, 0, 0, 0, fmt.Errorf("record run start: %w", err))
		return
	}

	var stdout, stderr bytes.Buffer
	execErr := e.runJob(ctx, job, handler, resolved, &stdout, &stderr, logger)

	exitCode := 0
	if execErr != nil {
		exitCode = exitCodeFor(execErr)
		fmt.Fprintf(&stderr, "\nerror: %v", execErr)
	}

	finishedAt := e.timeProvider.Now().UTC()
	if err := e.store.Runs.Finish(finalizeCtx, core.FinishRunParams{
		RunID:      run.ID,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		ExitCode:   &exitCode,
		FinishedAt: finishedAt,
	}); err != nil {
		logger.ErrorContext(ctx, "failed to record run finish", "error", err, "run_id", run.ID)
	}

	e.finalize(finalizeCtx, logger, job, execErr == nil)
	e.observeOutcome(finalizeCtx, job, run.ID, exitCode, finishedAt.Sub(startedAt), execErr)

	if execErr != nil {
		logger.WarnContext(ctx, "job failed", "run_id", run.ID, "exit_code", exitCode, "error", execErr)
		return
	}
	logger.InfoContext(ctx, "job finished", "run_id", run.ID)
}

// runJob performs the failure-ordered execution steps: resolution, profile
// switch, handler invocation. The first failing step is terminal for the run.
func (e *Engine) runJob(
	ctx context.Context,
	job *model.Job,
	handler HandlerFunc,
	resolved bool,
	stdout, stderr *bytes.Buffer,
	logger *slog.Logger,
) error {
	if !resolved {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}

	if e.switcher != nil {
		if err := e.switcher.Ensure(ctx, job.Type); err != nil {
			return fmt.Errorf("profile switch: %w", err)
		}
	}

	rc := &RunContext{
		Job:    job,
		Store:  e.store,
		Stdout: stdout,
		Stderr: stderr,
		Logger: logger,
	}
	return e.invokeHandler(ctx, handler, rc)
}

// invokeHandler calls the handler under the optional deadline, converting a
// panic into an ordinary handler error so one bad job cannot take down the
// loop.
func (e *Engine) invokeHandler(ctx context.Context, handler HandlerFunc, rc *RunContext) (err error) {
	if e.handlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.handlerTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	return handler(ctx, rc)
}

// finalize moves the job to its terminal status. A false result from the
// conditional update means ownership was lost; that is logged, not retried.
func (e *Engine) finalize(ctx context.Context, logger *slog.Logger, job *model.Job, success bool) {
	var (
		ok     bool
		err    error
		status model.JobStatus
	)
	if success {
		status = model.JobStatusFinished
		ok, err = e.store.Jobs.MarkFinished(ctx, job.ID)
	} else {
		status = model.JobStatusError
		ok, err = e.store.Jobs.MarkError(ctx, job.ID)
	}

	if err != nil {
		logger.ErrorContext(ctx, "failed to finalize job", "target_status", status, "error", err)
		return
	}
	if !ok {
		logger.WarnContext(ctx, "job ownership lost before finalize", "target_status", status)
	}
}

// observeOutcome emits the lifecycle metric for the terminal transition and,
// on failure, hands the event to the failure notifier. Both paths are
// best-effort and never feed back into job state.
func (e *Engine) observeOutcome(
	ctx context.Context,
	job *model.Job,
	runID int64,
	exitCode int,
	duration time.Duration,
	execErr error,
) {
	transition := string(model.JobStatusFinished)
	result := metrics.ResultSuccess
	if execErr != nil {
		transition = string(model.JobStatusError)
		result = metrics.ResultError
	}

	metrics.EmitJobLifecycle(e.metrics, metrics.JobMetric{
		JobType:    string(job.Type),
		Transition: transition,
		Result:     result,
		Duration:   duration,
		Err:        execErr,
	})

	if execErr == nil || e.notifier == nil || !e.notifier.Enabled() {
		return
	}

	payload := notify.JobFailurePayload{
		JobID:      job.ID,
		JobType:    string(job.Type),
		RunID:      runID,
		ExitCode:   exitCode,
		Error:      execErr.Error(),
		ErrorClass: obserrors.Classify(execErr),
		OccurredAt: e.timeProvider.Now().UTC(),
	}
	if job.Profile != nil {
		payload.Profile = *job.Profile
	}

	e.notifier.NotifyJobFailure(ctx, payload)
}

// exitCodeFor extracts the process exit code when the failure wraps an
// *exec.ExitError, and defaults to 1 otherwise.
func exitCodeFor(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code > 0 {
			return code
		}
	}
	return 1
}
