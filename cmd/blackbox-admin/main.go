// Command blackbox-admin provides operational tooling for the blackbox job
// engine: migrations, queue inspection and profile control from the shell.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/blackboxsec/blackbox/config"
	"github.com/blackboxsec/blackbox/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
}

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Apply pending database migrations",
			run:         runMigrate,
		},
		"enqueue": {
			name:        "enqueue",
			description: "Submit a job (enqueue -type wifi_recon [-params '{...}'] [-profile name])",
			run:         runEnqueue,
		},
		"seed": {
			name:        "seed",
			description: "Populate a development database with sample jobs and profile history",
			run:         runSeed,
		},
		"stats": {
			name:        "stats",
			description: "Show per-status job counts",
			run:         runStats,
		},
		"stale-jobs": {
			name:        "stale-jobs",
			description: "List jobs stuck in running longer than the configured threshold",
			run:         runStaleJobs,
		},
		"profile": {
			name:        "profile",
			description: "Show the active profile and the catalog",
			run:         runProfileShow,
		},
		"profile-switch": {
			name:        "profile-switch",
			description: "Activate a profile (profile-switch -name wifi_audit [-reason text])",
			run:         runProfileSwitch,
		},
		"profile-log": {
			name:        "profile-log",
			description: "Show recent profile changes, newest first",
			run:         runProfileLog,
		},
	}
}

func printUsage() error {
	if err := writef(os.Stderr, "usage: blackbox-admin <command> [flags]\n\ncommands:\n"); err != nil {
		return err
	}

	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(os.Stderr, 0, 4, 2, ' ', 0)
	for _, name := range names {
		if err := writef(tw, "  %s\t%s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

// withDB connects the database, runs fn and closes the connection.
func withDB(ctx *commandContext, fn func(db *sql.DB) error) error {
	db, err := bootstrap.ConnectDB(ctx.Config.Postgres, ctx.Logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			ctx.Logger.Error("close database failed", "error", cerr)
		}
	}()
	return fn(db)
}
