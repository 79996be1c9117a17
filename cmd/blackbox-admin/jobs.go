package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/blackboxsec/blackbox/internal/bootstrap"
	"github.com/blackboxsec/blackbox/internal/data"
	"github.com/blackboxsec/blackbox/internal/devseed"
	"github.com/blackboxsec/blackbox/internal/domain/model"
	"github.com/blackboxsec/blackbox/internal/service"
)

func runMigrate(ctx *commandContext, _ []string) error {
	return withDB(ctx, func(db *sql.DB) error {
		return bootstrap.RunMigrations(ctx.Ctx, db, ctx.Logger)
	})
}

func runSeed(ctx *commandContext, _ []string) error {
	return withDB(ctx, func(db *sql.DB) error {
		ctx.Logger.Info("ensuring database migrations are current")
		if err := bootstrap.RunMigrations(ctx.Ctx, db, ctx.Logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}

		ctx.Logger.Info("seeding development data")
		if err := devseed.Run(ctx.Ctx, devseed.NewServices(db), ctx.Logger); err != nil {
			return fmt.Errorf("seed data: %w", err)
		}
		return writef(os.Stdout, "development data seeded\n")
	})
}

func runEnqueue(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("enqueue", flag.ContinueOnError)
	jobType := fs.String("type", "", "job type (wifi_recon, wifi_active, bt_recon, bt_active, hash_lookup)")
	params := fs.String("params", "{}", "job params as a JSON object")
	profileName := fs.String("profile", "", "requested profile (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *jobType == "" {
		return fmt.Errorf("-type is required")
	}

	return withDB(ctx, func(db *sql.DB) error {
		svc, err := newJobService(ctx, db)
		if err != nil {
			return err
		}

		req := &model.CreateJobRequest{
			Type:   model.JobType(*jobType),
			Params: json.RawMessage(*params),
		}
		if *profileName != "" {
			req.Profile = profileName
		}

		job, err := svc.Create(ctx.Ctx, req)
		if err != nil {
			return err
		}
		return writef(os.Stdout, "job %d queued (type %s)\n", job.ID, job.Type)
	})
}

func runStats(ctx *commandContext, _ []string) error {
	return withDB(ctx, func(db *sql.DB) error {
		svc, err := newJobService(ctx, db)
		if err != nil {
			return err
		}

		stats, err := svc.Stats(ctx.Ctx)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, row := range []struct {
			label string
			count int
		}{
			{"queued", stats.Queued},
			{"running", stats.Running},
			{"finished", stats.Finished},
			{"error", stats.Error},
		} {
			if err := writef(tw, "%s\t%d\n", row.label, row.count); err != nil {
				return err
			}
		}
		return tw.Flush()
	})
}

func runStaleJobs(ctx *commandContext, _ []string) error {
	return withDB(ctx, func(db *sql.DB) error {
		svc, err := newJobService(ctx, db)
		if err != nil {
			return err
		}

		jobs, err := svc.ListStale(ctx.Ctx)
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			return writef(os.Stdout, "no jobs running longer than %s\n", svc.StaleAfter())
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		if err := writef(tw, "ID\tTYPE\tRUNNING SINCE\n"); err != nil {
			return err
		}
		for _, job := range jobs {
			if err := writef(tw, "%d\t%s\t%s\n", job.ID, job.Type, job.UpdatedAt.Format(time.RFC3339)); err != nil {
				return err
			}
		}
		return tw.Flush()
	})
}

func newJobService(ctx *commandContext, db *sql.DB) (*service.JobService, error) {
	return service.NewJobService(service.JobServiceOptions{
		Jobs:        data.NewJobRepo(db, data.RepoConfig{Logger: ctx.Logger}),
		Runs:        data.NewRunRepo(db),
		HashResults: data.NewHashResultRepo(db),
		Logger:      ctx.Logger,
		StaleAfter:  ctx.Config.Worker.StaleAfter,
	})
}
