// Package service provides the business logic layer between the HTTP API and
// the repositories.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/blackboxsec/blackbox/internal/core"
	apperrors "github.com/blackboxsec/blackbox/internal/errors"
	"github.com/blackboxsec/blackbox/internal/domain/model"
)

// JobServiceOptions groups dependencies for JobService.
type JobServiceOptions struct {
	Jobs        core.JobRepository
	Runs        core.RunRepository
	HashResults core.HashResultRepository
	Logger      *slog.Logger

	// StaleAfter is the running-job age beyond which ListStale reports a job.
	StaleAfter time.Duration
}

// JobService provides submission and read access for jobs, their runs and
// their results. Execution belongs to the worker engine, not this service.
type JobService struct {
	jobs        core.JobRepository
	runs        core.RunRepository
	hashResults core.HashResultRepository
	logger      *slog.Logger
	staleAfter  time.Duration
}

// NewJobService constructs a new JobService.
func NewJobService(opts JobServiceOptions) (*JobService, error) {
	if opts.Jobs == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.Runs == nil {
		return nil, errors.New("RunRepository is required")
	}
	if opts.HashResults == nil {
		return nil, errors.New("HashResultRepository is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = time.Hour
	}

	return &JobService{
		jobs:        opts.Jobs,
		runs:        opts.Runs,
		hashResults: opts.HashResults,
		logger:      opts.Logger.With("component", "job_service"),
		staleAfter:  opts.StaleAfter,
	}, nil
}

// Create validates and submits a new job. Params are normalized to an empty
// JSON object when the payload is null.
func (s *JobService) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, apperrors.Validation("create job request is required")
	}
	if len(req.Params) == 0 || string(req.Params) == "null" {
		req.Params = json.RawMessage(`{}`)
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid job")
	}

	if !req.Type.Known() {
		// Accepted anyway; it will fail handler resolution at execution time.
		s.logger.WarnContext(ctx, "submitting job with unknown type", "type", req.Type)
	}

	job, err := s.jobs.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "job submitted", "id", job.ID, "type", job.Type)
	return job, nil
}

// Get returns one job by id.
func (s *JobService) Get(ctx context.Context, id int64) (*model.Job, error) {
	return s.jobs.GetByID(ctx, id)
}

// List returns jobs matching the options, newest first.
func (s *JobService) List(ctx context.Context, opts *model.JobListOptions) ([]*model.Job, error) {
	if opts == nil {
		opts = &model.JobListOptions{}
	}
	if opts.Status != "" && !opts.Status.Valid() {
		return nil, apperrors.Validationf("invalid status filter %q", opts.Status)
	}
	return s.jobs.List(ctx, opts)
}

// ListRuns returns the execution attempts recorded for a job.
func (s *JobService) ListRuns(ctx context.Context, jobID int64) ([]*model.Run, error) {
	if _, err := s.jobs.GetByID(ctx, jobID); err != nil {
		return nil, err
	}
	return s.runs.ListByJob(ctx, jobID)
}

// ListResults returns the hash/intelligence results recorded for a job.
func (s *JobService) ListResults(ctx context.Context, jobID int64) ([]*model.HashResult, error) {
	if _, err := s.jobs.GetByID(ctx, jobID); err != nil {
		return nil, err
	}
	return s.hashResults.ListByJob(ctx, jobID)
}

// Stats returns per-status job counts.
func (s *JobService) Stats(ctx context.Context) (*model.JobStats, error) {
	return s.jobs.Stats(ctx)
}

// ListStale reports jobs stuck in running longer than the configured
// threshold. They are surfaced for operators, never auto-recovered.
func (s *JobService) ListStale(ctx context.Context) ([]*model.Job, error) {
	return s.jobs.StaleRunning(ctx, s.staleAfter)
}

// StaleAfter returns the configured staleness threshold.
func (s *JobService) StaleAfter() time.Duration {
	return s.staleAfter
}
