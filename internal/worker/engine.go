package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/blackboxsec/blackbox/internal/data"
	"github.com/blackboxsec/blackbox/internal/domain/model"
	"github.com/blackboxsec/blackbox/internal/observability/notify"
	"github.com/blackboxsec/blackbox/internal/observability/statsd"
)

const defaultPollInterval = 5 * time.Second

// ProfileEnsurer activates the environment profile a job type requires before
// its handler runs.
type ProfileEnsurer interface {
	Ensure(ctx context.Context, jobType model.JobType) error
}

// FailureNotifier receives an event for every job that finalizes with status
// error.
type FailureNotifier interface {
	NotifyJobFailure(ctx context.Context, payload notify.JobFailurePayload)
	Enabled() bool
}

// Options holds the dependencies for creating an Engine.
type Options struct {
	Store    *Store
	Registry *Registry

	// Switcher is optional; without one, jobs run under whatever profile is
	// current.
	Switcher ProfileEnsurer

	// PollInterval is the fallback wait between claim attempts when no
	// queue notification arrives.
	PollInterval time.Duration

	// HandlerTimeout bounds each handler invocation. Zero means no timeout.
	HandlerTimeout time.Duration

	// TypeFilter restricts claiming to the listed job types. Empty claims
	// everything.
	TypeFilter []model.JobType

	// Metrics receives job lifecycle counters and timings. Nil disables
	// emission.
	Metrics statsd.Sink

	// Notifier is told about jobs that finalize with status error. Nil
	// disables notification.
	Notifier FailureNotifier

	Logger       *slog.Logger
	TimeProvider data.TimeProvider
}

// Engine is the worker loop: claim the oldest queued job, execute it, record
// the run, finalize status, repeat. One claimed job executes at a time.
type Engine struct {
	store          *Store
	registry       *Registry
	switcher       ProfileEnsurer
	pollInterval   time.Duration
	handlerTimeout time.Duration
	typeFilter     []model.JobType
	metrics        statsd.Sink
	notifier       FailureNotifier
	logger         *slog.Logger
	timeProvider   data.TimeProvider
	instanceID     string
}

// NewEngine creates an Engine with the given options.
func NewEngine(opts Options) *Engine {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.TimeProvider == nil {
		opts.TimeProvider = &data.RealTimeProvider{}
	}

	instanceID := uuid.NewString()
	return &Engine{
		store:          opts.Store,
		registry:       opts.Registry,
		switcher:       opts.Switcher,
		pollInterval:   opts.PollInterval,
		handlerTimeout: opts.HandlerTimeout,
		typeFilter:     opts.TypeFilter,
		metrics:        opts.Metrics,
		notifier:       opts.Notifier,
		logger:         opts.Logger.With("worker_instance", instanceID),
		timeProvider:   opts.TimeProvider,
		instanceID:     instanceID,
	}
}

// InstanceID returns the unique identifier of this engine instance.
func (e *Engine) InstanceID() string {
	return e.instanceID
}

// Run executes the claim loop until ctx is cancelled. Handler and storage
// failures never stop the loop; they finalize or skip the affected job and
// continue.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.InfoContext(ctx, "worker engine starting",
		"poll_interval", e.pollInterval,
		"handler_timeout", e.handlerTimeout,
		"registered_types", e.registry.Types(),
		"type_filter", e.typeFilter)

	for {
		if err := ctx.Err(); err != nil {
			e.logger.InfoContext(ctx, "worker engine stopping", "reason", err)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		job, err := e.store.Jobs.ClaimNext(ctx, e.typeFilter)
		if err != nil {
			if errors.Is(err, model.ErrNoJobsQueued) {
				e.waitForWork(ctx)
				continue
			}
			if ctx.Err() != nil {
				continue
			}
			e.logger.ErrorContext(ctx, "claim failed, backing off", "error", err)
			e.sleep(ctx, e.pollInterval)
			continue
		}

		e.execute(ctx, job)
	}
}

// waitForWork blocks until a queue notification arrives or the poll interval
// elapses, whichever comes first.
func (e *Engine) waitForWork(ctx context.Context) {
	waitCtx, cancel := context.WithTimeout(ctx, e.pollInterval)
	defer cancel()

	err := e.store.Jobs.WaitForNotification(waitCtx)
	if err == nil {
		e.logger.DebugContext(ctx, "woken by queue notification")
		return
	}
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return
	}

	// Notification transport failure; fall back to plain polling cadence.
	e.logger.WarnContext(ctx, "queue notification wait failed", "error", err)
	e.sleep(ctx, e.pollInterval)
}

func (e *Engine) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
