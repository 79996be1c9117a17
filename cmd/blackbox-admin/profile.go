package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/blackboxsec/blackbox/internal/data"
	"github.com/blackboxsec/blackbox/internal/domain/model"
	"github.com/blackboxsec/blackbox/internal/profile"
	"github.com/blackboxsec/blackbox/internal/service"
)

func runProfileShow(ctx *commandContext, _ []string) error {
	return withDB(ctx, func(db *sql.DB) error {
		svc, err := newProfileService(ctx, db)
		if err != nil {
			return err
		}

		active := svc.Active(ctx.Ctx)
		if err := writef(os.Stdout, "active: %s", active.Name); err != nil {
			return err
		}
		if active.InternetVia != "" {
			if err := writef(os.Stdout, " (internet via %s)", active.InternetVia); err != nil {
				return err
			}
		}
		return writef(os.Stdout, "\navailable: %s\n", strings.Join(active.Available, ", "))
	})
}

func runProfileSwitch(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("profile-switch", flag.ContinueOnError)
	name := fs.String("name", "", "profile to activate")
	reason := fs.String("reason", "manual switch", "why the profile is changing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("-name is required")
	}

	return withDB(ctx, func(db *sql.DB) error {
		svc, err := newProfileService(ctx, db)
		if err != nil {
			return err
		}

		if err := svc.Switch(ctx.Ctx, *name, *reason, model.TriggeredByCLI); err != nil {
			return err
		}
		return writef(os.Stdout, "profile %s active\n", *name)
	})
}

func runProfileLog(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("profile-log", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "maximum entries to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withDB(ctx, func(db *sql.DB) error {
		repo := data.NewProfileLogRepo(db)
		entries, err := repo.List(ctx.Ctx, *limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return writef(os.Stdout, "no profile changes recorded\n")
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		if err := writef(tw, "WHEN\tFROM\tTO\tBY\tREASON\n"); err != nil {
			return err
		}
		for _, e := range entries {
			if err := writef(tw, "%s\t%s\t%s\t%s\t%s\n",
				e.CreatedAt.Format(time.RFC3339),
				strOrDash(e.OldProfile),
				e.NewProfile,
				strOrDash(e.TriggeredBy),
				strOrDash(e.Reason),
			); err != nil {
				return err
			}
		}
		return tw.Flush()
	})
}

func strOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

// newProfileService builds a ProfileService over a real switcher so CLI
// switches run the interface and tethering commands like the worker does.
func newProfileService(ctx *commandContext, db *sql.DB) (*service.ProfileService, error) {
	catalog, err := profile.LoadCatalog(ctx.Config.Profiles.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load profile catalog: %w", err)
	}

	logRepo := data.NewProfileLogRepo(db)
	switcher := profile.NewSwitcher(profile.SwitcherOptions{
		Catalog:        catalog,
		Runner:         &profile.ExecRunner{Timeout: ctx.Config.Profiles.CommandTimeout, Logger: ctx.Logger},
		Log:            logRepo,
		Logger:         ctx.Logger,
		InitialProfile: ctx.Config.Profiles.Default,
	})
	if err := switcher.LoadActive(ctx.Ctx); err != nil {
		ctx.Logger.Warn("could not restore active profile", "error", err)
	}

	return service.NewProfileService(service.ProfileServiceOptions{
		Catalog:  catalog,
		Switcher: switcher,
		Jobs:     data.NewJobRepo(db, data.RepoConfig{Logger: ctx.Logger}),
		Log:      logRepo,
		Logger:   ctx.Logger,
	})
}
