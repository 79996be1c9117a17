package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/blackboxsec/blackbox/internal/domain/model"
	apperrors "github.com/blackboxsec/blackbox/internal/errors"
	"github.com/blackboxsec/blackbox/internal/mocks"
)

type jobServiceMocks struct {
	jobs    *mocks.MockJobRepository
	runs    *mocks.MockRunRepository
	results *mocks.MockHashResultRepository
}

func newJobService(t *testing.T, ctrl *gomock.Controller) (*JobService, jobServiceMocks) {
	t.Helper()

	deps := jobServiceMocks{
		jobs:    mocks.NewMockJobRepository(ctrl),
		runs:    mocks.NewMockRunRepository(ctrl),
		results: mocks.NewMockHashResultRepository(ctrl),
	}
	svc, err := NewJobService(JobServiceOptions{
		Jobs:        deps.jobs,
		Runs:        deps.runs,
		HashResults: deps.results,
		StaleAfter:  30 * time.Minute,
	})
	require.NoError(t, err)
	return svc, deps
}

func TestNewJobService(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	jobs := mocks.NewMockJobRepository(ctrl)
	runs := mocks.NewMockRunRepository(ctrl)
	results := mocks.NewMockHashResultRepository(ctrl)

	t.Run("success", func(t *testing.T) {
		svc, err := NewJobService(JobServiceOptions{
			Jobs:        jobs,
			Runs:        runs,
			HashResults: results,
		})
		require.NoError(t, err)
		assert.NotNil(t, svc)
		assert.Equal(t, time.Hour, svc.StaleAfter())
	})

	t.Run("missing jobs repo", func(t *testing.T) {
		_, err := NewJobService(JobServiceOptions{Runs: runs, HashResults: results})
		require.Error(t, err)
	})

	t.Run("missing runs repo", func(t *testing.T) {
		_, err := NewJobService(JobServiceOptions{Jobs: jobs, HashResults: results})
		require.Error(t, err)
	})

	t.Run("missing hash results repo", func(t *testing.T) {
		_, err := NewJobService(JobServiceOptions{Jobs: jobs, Runs: runs})
		require.Error(t, err)
	})
}

func TestJobService_CreateNormalizesParams(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, deps := newJobService(t, ctrl)

	deps.jobs.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *model.CreateJobRequest) (*model.Job, error) {
			assert.JSONEq(t, `{}`, string(req.Params))
			return &model.Job{ID: 1, Type: req.Type, Params: req.Params, Status: model.JobStatusQueued}, nil
		})

	job, err := svc.Create(context.Background(), &model.CreateJobRequest{
		Type: model.JobTypeHashLookup,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(job.Params))
}

func TestJobService_CreateRejectsInvalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, _ := newJobService(t, ctrl)

	// The repository is never reached; the controller fails the test on any
	// unexpected call.
	_, err := svc.Create(context.Background(), &model.CreateJobRequest{
		Type:   "",
		Params: json.RawMessage(`{}`),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Create(context.Background(), &model.CreateJobRequest{
		Type:   model.JobTypeWifiRecon,
		Params: json.RawMessage(`{not json`),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestJobService_CreateAcceptsUnknownType(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, deps := newJobService(t, ctrl)

	req := &model.CreateJobRequest{
		Type:   model.JobType("future_module"),
		Params: json.RawMessage(`{"target":"somewhere"}`),
	}
	expected := &model.Job{ID: 7, Type: req.Type, Params: req.Params, Status: model.JobStatusQueued}
	deps.jobs.EXPECT().Create(gomock.Any(), req).Return(expected, nil)

	job, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, model.JobType("future_module"), job.Type)
	assert.Equal(t, model.JobStatusQueued, job.Status)
}

func TestJobService_ListRejectsInvalidStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, _ := newJobService(t, ctrl)

	_, err := svc.List(context.Background(), &model.JobListOptions{Status: "pending"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestJobService_ListDefaultsOptions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, deps := newJobService(t, ctrl)

	deps.jobs.EXPECT().List(gomock.Any(), &model.JobListOptions{}).Return([]*model.Job{}, nil)

	jobs, err := svc.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestJobService_ListRunsUnknownJob(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, deps := newJobService(t, ctrl)

	deps.jobs.EXPECT().GetByID(gomock.Any(), int64(99)).
		Return(nil, apperrors.NotFoundf("job %d not found", 99))

	_, err := svc.ListRuns(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestJobService_ListRunsAndResults(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, deps := newJobService(t, ctrl)

	job := &model.Job{ID: 5, Type: model.JobTypeHashLookup, Status: model.JobStatusFinished}
	deps.jobs.EXPECT().GetByID(gomock.Any(), job.ID).Return(job, nil).Times(2)

	exitCode := 0
	deps.runs.EXPECT().ListByJob(gomock.Any(), job.ID).Return([]*model.Run{
		{ID: 1, JobID: job.ID, Module: "hash_lookup", ExitCode: &exitCode},
	}, nil)

	plaintext := "no breaches found"
	deps.results.EXPECT().ListByJob(gomock.Any(), job.ID).Return([]*model.HashResult{
		{ID: 1, JobID: &job.ID, Service: model.ServiceLeakCheck, Hash: "x", Plaintext: &plaintext},
	}, nil)

	gotRuns, err := svc.ListRuns(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, gotRuns, 1)
	assert.Equal(t, "hash_lookup", gotRuns[0].Module)

	gotResults, err := svc.ListResults(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, gotResults, 1)
	assert.Equal(t, model.ServiceLeakCheck, gotResults[0].Service)
}

func TestJobService_Stats(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, deps := newJobService(t, ctrl)

	deps.jobs.EXPECT().Stats(gomock.Any()).Return(&model.JobStats{Queued: 3, Running: 1}, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Queued)
	assert.Equal(t, 1, stats.Running)
}

func TestJobService_ListStaleUsesConfiguredThreshold(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, deps := newJobService(t, ctrl)

	deps.jobs.EXPECT().StaleRunning(gomock.Any(), 30*time.Minute).
		Return([]*model.Job{{ID: 3, Status: model.JobStatusRunning}}, nil)

	stale, err := svc.ListStale(context.Background())
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, 30*time.Minute, svc.StaleAfter())
}
