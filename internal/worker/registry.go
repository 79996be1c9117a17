// Package worker contains the job execution engine: the claim loop, the
// handler registry and the executor that records runs and finalizes job
// status.
package worker

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"github.com/blackboxsec/blackbox/internal/core"
	"github.com/blackboxsec/blackbox/internal/domain/model"
)

// Store bundles the repositories the engine and handlers work against.
type Store struct {
	Jobs        core.JobRepository
	Runs        core.RunRepository
	HashResults core.HashResultRepository
	ProfileLog  core.ProfileLogRepository

	// Cache is optional; handlers must tolerate nil.
	Cache core.CacheRepository
}

// RunContext carries everything a handler may need for one execution attempt.
// Output written to Stdout/Stderr is captured into the job's Run record.
type RunContext struct {
	Job    *model.Job
	Store  *Store
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// HandlerFunc executes one job. A nil return finalizes the job as finished;
// any error finalizes it as error. Handlers must not finalize job status
// themselves.
type HandlerFunc func(ctx context.Context, rc *RunContext) error

// Registry maps job types to handlers. It is immutable after construction so
// concurrent Resolve calls need no locking.
type Registry struct {
	handlers map[model.JobType]HandlerFunc
}

// NewRegistry builds a Registry from the given handler map. The map is copied.
func NewRegistry(handlers map[model.JobType]HandlerFunc) *Registry {
	copied := make(map[model.JobType]HandlerFunc, len(handlers))
	for jobType, handler := range handlers {
		if handler == nil {
			continue
		}
		copied[jobType] = handler
	}
	return &Registry{handlers: copied}
}

// Resolve returns the handler registered for a job type.
func (r *Registry) Resolve(jobType model.JobType) (HandlerFunc, bool) {
	handler, ok := r.handlers[jobType]
	return handler, ok
}

// Types returns the registered job types in sorted order.
func (r *Registry) Types() []model.JobType {
	types := make([]model.JobType, 0, len(r.handlers))
	for jobType := range r.handlers {
		types = append(types, jobType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
