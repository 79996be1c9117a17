package data

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackboxsec/blackbox/internal/domain/model"
	"github.com/blackboxsec/blackbox/internal/testutil"
)

func newTestJobRepo(t *testing.T) *JobRepo {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })
	return NewJobRepo(db, RepoConfig{})
}

func enqueueTestJob(t *testing.T, repo *JobRepo, jobType model.JobType) *model.Job {
	t.Helper()
	job, err := repo.Create(context.Background(), testutil.NewJobRequest().WithType(jobType).Build())
	require.NoError(t, err)
	return job
}

func TestJobRepo_Create(t *testing.T) {
	repo := newTestJobRepo(t)

	t.Run("successful creation", func(t *testing.T) {
		req := testutil.NewJobRequest().
			WithType(model.JobTypeHashLookup).
			WithProfile("wifi_audit").
			WithParams(`{"mode": "leakcheck", "value": "test@example.com"}`).
			Build()

		job, err := repo.Create(context.Background(), req)
		require.NoError(t, err)
		require.NotNil(t, job)

		assert.NotZero(t, job.ID)
		assert.Equal(t, model.JobTypeHashLookup, job.Type)
		require.NotNil(t, job.Profile)
		assert.Equal(t, "wifi_audit", *job.Profile)
		assert.Equal(t, model.JobStatusQueued, job.Status)
		assert.JSONEq(t, `{"mode": "leakcheck", "value": "test@example.com"}`, string(job.Params))
		assert.NotZero(t, job.CreatedAt)
	})

	t.Run("empty params default to object", func(t *testing.T) {
		job, err := repo.Create(context.Background(), &model.CreateJobRequest{
			Type:   model.JobTypeWifiRecon,
			Params: json.RawMessage(`{}`),
		})
		require.NoError(t, err)
		assert.JSONEq(t, `{}`, string(job.Params))
	})

	t.Run("validation error", func(t *testing.T) {
		job, err := repo.Create(context.Background(), &model.CreateJobRequest{Params: json.RawMessage(`{}`)})
		require.Error(t, err)
		assert.Nil(t, job)
	})
}

func TestJobRepo_GetByID(t *testing.T) {
	repo := newTestJobRepo(t)
	created := enqueueTestJob(t, repo, model.JobTypeBTRecon)

	job, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, job.ID)
	assert.Equal(t, model.JobTypeBTRecon, job.Type)

	_, err = repo.GetByID(context.Background(), 999999)
	require.Error(t, err)
}

func TestJobRepo_ClaimNext_FIFO(t *testing.T) {
	repo := newTestJobRepo(t)

	first := enqueueTestJob(t, repo, model.JobTypeWifiRecon)
	second := enqueueTestJob(t, repo, model.JobTypeBTRecon)
	third := enqueueTestJob(t, repo, model.JobTypeWifiRecon)

	for _, want := range []*model.Job{first, second, third} {
		claimed, err := repo.ClaimNext(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, want.ID, claimed.ID)
		assert.Equal(t, model.JobStatusRunning, claimed.Status)
	}

	_, err := repo.ClaimNext(context.Background(), nil)
	require.ErrorIs(t, err, model.ErrNoJobsQueued)
}

func TestJobRepo_ClaimNext_TypeFilter(t *testing.T) {
	repo := newTestJobRepo(t)

	enqueueTestJob(t, repo, model.JobTypeWifiRecon)
	hashJob := enqueueTestJob(t, repo, model.JobTypeHashLookup)

	claimed, err := repo.ClaimNext(context.Background(), []model.JobType{model.JobTypeHashLookup})
	require.NoError(t, err)
	assert.Equal(t, hashJob.ID, claimed.ID)

	// The wifi job stays queued for a claimer without that filter.
	_, err = repo.ClaimNext(context.Background(), []model.JobType{model.JobTypeHashLookup})
	require.ErrorIs(t, err, model.ErrNoJobsQueued)

	wifi, err := repo.ClaimNext(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, model.JobTypeWifiRecon, wifi.Type)
}

func TestJobRepo_ClaimNext_Concurrent(t *testing.T) {
	repo := newTestJobRepo(t)

	const jobCount = 20
	for i := 0; i < jobCount; i++ {
		enqueueTestJob(t, repo, model.JobTypeWifiRecon)
	}

	var (
		mu      sync.Mutex
		claimed = map[int64]int{}
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				job, err := repo.ClaimNext(context.Background(), nil)
				if errors.Is(err, model.ErrNoJobsQueued) {
					return
				}
				if err != nil {
					t.Errorf("claim failed: %v", err)
					return
				}
				mu.Lock()
				claimed[job.ID]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, claimed, jobCount)
	for id, count := range claimed {
		assert.Equalf(t, 1, count, "job %d claimed %d times", id, count)
	}
}

func TestJobRepo_Finalize_Conditional(t *testing.T) {
	repo := newTestJobRepo(t)
	job := enqueueTestJob(t, repo, model.JobTypeWifiRecon)

	// A queued job cannot be finalized.
	ok, err := repo.MarkFinished(context.Background(), job.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.ClaimNext(context.Background(), nil)
	require.NoError(t, err)

	ok, err = repo.MarkFinished(context.Background(), job.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Terminal states stick.
	ok, err = repo.MarkFinished(context.Background(), job.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = repo.MarkError(context.Background(), job.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFinished, got.Status)
}

func TestJobRepo_List(t *testing.T) {
	repo := newTestJobRepo(t)

	enqueueTestJob(t, repo, model.JobTypeWifiRecon)
	enqueueTestJob(t, repo, model.JobTypeHashLookup)
	claimedJob := enqueueTestJob(t, repo, model.JobTypeWifiRecon)

	_, err := repo.ClaimNext(context.Background(), nil)
	require.NoError(t, err)

	all, err := repo.List(context.Background(), &model.JobListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Newest first.
	assert.Equal(t, claimedJob.ID, all[0].ID)

	queued, err := repo.List(context.Background(), &model.JobListOptions{Status: model.JobStatusQueued})
	require.NoError(t, err)
	assert.Len(t, queued, 2)

	wifi, err := repo.List(context.Background(), &model.JobListOptions{Type: model.JobTypeWifiRecon})
	require.NoError(t, err)
	assert.Len(t, wifi, 2)
}

func TestJobRepo_StatsAndStaleRunning(t *testing.T) {
	repo := newTestJobRepo(t)

	enqueueTestJob(t, repo, model.JobTypeWifiRecon)
	stale := enqueueTestJob(t, repo, model.JobTypeBTRecon)

	claimed, err := repo.ClaimNext(context.Background(), nil)
	require.NoError(t, err)
	stuck, err := repo.ClaimNext(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, stale.ID, stuck.ID)

	okDone, err := repo.MarkFinished(context.Background(), claimed.ID)
	require.NoError(t, err)
	require.True(t, okDone)

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Queued)
	assert.Equal(t, 1, stats.Running)
	assert.Equal(t, 1, stats.Finished)

	// Backdate the running job so it crosses the staleness threshold.
	_, err = repo.DB.ExecContext(context.Background(),
		`UPDATE jobs SET updated_at = now() - interval '2 hours' WHERE id = $1`, stale.ID)
	require.NoError(t, err)

	staleJobs, err := repo.StaleRunning(context.Background(), time.Hour)
	require.NoError(t, err)
	require.Len(t, staleJobs, 1)
	assert.Equal(t, stale.ID, staleJobs[0].ID)
}

func TestJobRepo_WaitForNotification(t *testing.T) {
	repo := newTestJobRepo(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- repo.WaitForNotification(ctx)
	}()

	// Give the listener a moment to subscribe before inserting.
	time.Sleep(200 * time.Millisecond)
	enqueueTestJob(t, repo, model.JobTypeWifiRecon)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("notification not received before timeout")
	}
}
