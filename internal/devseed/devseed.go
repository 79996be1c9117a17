// Package devseed populates a development database with sample jobs and
// profile history so the API and CLI have something to show immediately.
package devseed

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/blackboxsec/blackbox/internal/core"
	"github.com/blackboxsec/blackbox/internal/data"
	"github.com/blackboxsec/blackbox/internal/domain/model"
)

// Services bundles the repositories needed for development seeding.
type Services struct {
	DB         *sql.DB
	Jobs       core.JobRepository
	ProfileLog core.ProfileLogRepository
}

// NewServices constructs the repositories for seeding using the provided DB.
func NewServices(db *sql.DB) Services {
	return Services{
		DB:         db,
		Jobs:       data.NewJobRepo(db, data.RepoConfig{}),
		ProfileLog: data.NewProfileLogRepo(db),
	}
}

// Run executes the development seeding workflow. Seeding is additive: it
// enqueues sample jobs and appends profile history, skipping nothing that
// already exists, so it is meant for fresh databases.
func Run(ctx context.Context, svcs Services, logger *slog.Logger) error {
	failures := 0
	failures += seedJobs(ctx, svcs.Jobs, logger)
	failures += seedProfileLog(ctx, svcs.ProfileLog, logger)

	if failures > 0 {
		return fmt.Errorf("%d seed errors; check logs", failures)
	}
	return nil
}

func seedJobs(ctx context.Context, jobs core.JobRepository, logger *slog.Logger) int {
	failures := 0
	for _, req := range defaultJobs() {
		job, err := jobs.Create(ctx, req)
		if err != nil {
			if logger != nil {
				logger.ErrorContext(ctx, "failed to seed job", "type", req.Type, "error", err)
			}
			failures++
			continue
		}
		if logger != nil {
			logger.InfoContext(ctx, "seeded job", "id", job.ID, "type", job.Type)
		}
	}
	return failures
}

func defaultJobs() []*model.CreateJobRequest {
	wifiAudit := "wifi_audit"
	btAudit := "bluetooth_audit"
	return []*model.CreateJobRequest{
		{
			Type:    model.JobTypeWifiRecon,
			Profile: &wifiAudit,
			Params:  json.RawMessage(`{"channels": [1, 6, 11], "duration_seconds": 120}`),
		},
		{
			Type:    model.JobTypeWifiActive,
			Profile: &wifiAudit,
			Params:  json.RawMessage(`{"target_bssid": "aa:bb:cc:dd:ee:ff", "deauth": false}`),
		},
		{
			Type:    model.JobTypeBTRecon,
			Profile: &btAudit,
			Params:  json.RawMessage(`{"inquiry_seconds": 30}`),
		},
		{
			Type: model.JobTypeHashLookup,
			Params: json.RawMessage(
				`{"mode": "hash", "value": "8743b52063cd84097a65d1633f5c74f5", "hash_algo": "md5", "services": ["onlinehashcrack"]}`),
		},
	}
}

func seedProfileLog(ctx context.Context, log core.ProfileLogRepository, logger *slog.Logger) int {
	failures := 0
	for _, req := range defaultProfileHistory() {
		if _, err := log.Append(ctx, req); err != nil {
			if logger != nil {
				logger.ErrorContext(ctx, "failed to seed profile change", "profile", req.NewProfile, "error", err)
			}
			failures++
		}
	}
	return failures
}

func defaultProfileHistory() []*model.AppendProfileChangeRequest {
	defaultProfile := "default"
	reason := "development seed"
	triggeredBy := model.TriggeredByCLI
	return []*model.AppendProfileChangeRequest{
		{
			NewProfile:  "wifi_audit",
			OldProfile:  &defaultProfile,
			Reason:      &reason,
			TriggeredBy: &triggeredBy,
		},
		{
			NewProfile:  defaultProfile,
			Reason:      &reason,
			TriggeredBy: &triggeredBy,
		},
	}
}
