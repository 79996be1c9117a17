// Package core contains repository interface definitions (ports). Service and
// worker code depends on these contracts, not on the pgx-backed
// implementations, so tests can substitute in-memory or generated mocks.
package core

import (
	"context"
	"time"

	"github.com/blackboxsec/blackbox/internal/domain/model"
)

// JobRepository defines the interface for job data operations.
type JobRepository interface {
	Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error)
	GetByID(ctx context.Context, id int64) (*model.Job, error)
	List(ctx context.Context, opts *model.JobListOptions) ([]*model.Job, error)

	// ClaimNext atomically transitions the oldest queued job (created_at
	// ascending, id ascending on ties) to running and returns it. When types
	// is non-empty the scan is restricted to those job types. Returns
	// model.ErrNoJobsQueued when nothing is claimable.
	ClaimNext(ctx context.Context, types []model.JobType) (*model.Job, error)

	// MarkFinished and MarkError finalize a running job. Both are conditional
	// on status='running' and report false when the job was not in that state
	// (ownership was lost or the job was already finalized).
	MarkFinished(ctx context.Context, id int64) (bool, error)
	MarkError(ctx context.Context, id int64) (bool, error)

	Stats(ctx context.Context) (*model.JobStats, error)

	// StaleRunning lists jobs stuck in running longer than olderThan. The
	// engine never auto-recovers these; they are surfaced for operators.
	StaleRunning(ctx context.Context, olderThan time.Duration) ([]*model.Job, error)

	// WaitForNotification blocks until the store signals that a job was
	// queued, or ctx is done. Used to wake the poll loop early.
	WaitForNotification(ctx context.Context) error
}

// StartRunParams groups parameters for RunRepository.Start.
type StartRunParams struct {
	JobID     int64
	Module    string
	StartedAt time.Time
}

// FinishRunParams groups parameters for RunRepository.Finish.
type FinishRunParams struct {
	RunID      int64
	Stdout     string
	Stderr     string
	ExitCode   *int
	FinishedAt time.Time
}

// RunRepository defines the interface for run (execution attempt) records.
type RunRepository interface {
	Start(ctx context.Context, params StartRunParams) (*model.Run, error)
	Finish(ctx context.Context, params FinishRunParams) error
	ListByJob(ctx context.Context, jobID int64) ([]*model.Run, error)
}

// HashResultRepository defines the interface for append-only hash/intelligence
// results.
type HashResultRepository interface {
	Create(ctx context.Context, req *model.CreateHashResultRequest) (*model.HashResult, error)
	ListByJob(ctx context.Context, jobID int64) ([]*model.HashResult, error)
}

// ProfileLogRepository defines the interface for the append-only profile
// change audit trail.
type ProfileLogRepository interface {
	Append(ctx context.Context, req *model.AppendProfileChangeRequest) (*model.ProfileChange, error)
	List(ctx context.Context, limit int) ([]*model.ProfileChange, error)
}

// CacheRepository defines a TTL byte cache used by lookup modules to avoid
// re-querying external intelligence services. Get returns (nil, nil) on miss.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
