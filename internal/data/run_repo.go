package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/blackboxsec/blackbox/internal/core"
	"github.com/blackboxsec/blackbox/internal/data/pgxutil"
	apperrors "github.com/blackboxsec/blackbox/internal/errors"
	"github.com/blackboxsec/blackbox/internal/domain/model"
)

// RunRepo provides persistence for module execution attempts.
type RunRepo struct {
	DB *sql.DB
}

// NewRunRepo constructs a RunRepo.
func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{DB: db}
}

const runColumns = `
  id,
  job_id,
  module,
  COALESCE(stdout, ''),
  COALESCE(stderr, ''),
  exit_code,
  started_at,
  finished_at
`

// Start opens a run record for a job at execution start. Output, exit code,
// and finished_at are filled in by Finish.
func (r *RunRepo) Start(ctx context.Context, params core.StartRunParams) (*model.Run, error) {
	if params.JobID <= 0 {
		return nil, apperrors.Validation("job id is required")
	}
	if params.Module == "" {
		return nil, apperrors.Validation("module is required")
	}

	var run *model.Run
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, `
			INSERT INTO runs (job_id, module, started_at)
			VALUES ($1, $2, $3)
			RETURNING `+runColumns,
			params.JobID, params.Module, params.StartedAt.UTC())
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		return scanSingleRun(rows, &run)
	})
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("start run: %w", err))
	}
	return run, nil
}

// Finish finalizes a run with captured output and exit information.
func (r *RunRepo) Finish(ctx context.Context, params core.FinishRunParams) error {
	if params.RunID <= 0 {
		return apperrors.Validation("run id is required")
	}

	var exitCode sql.NullInt32
	if params.ExitCode != nil {
		exitCode = sql.NullInt32{Int32: int32(*params.ExitCode), Valid: true}
	}

	res, err := r.DB.ExecContext(ctx, `
		UPDATE runs
		SET stdout = $2, stderr = $3, exit_code = $4, finished_at = $5
		WHERE id = $1
	`, params.RunID, params.Stdout, params.Stderr, exitCode, params.FinishedAt.UTC())
	if err != nil {
		return apperrors.MapDBError(fmt.Errorf("finish run: %w", err))
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrRunNotFound
	}
	return nil
}

// ListByJob returns runs for a job, most recently started first.
func (r *RunRepo) ListByJob(ctx context.Context, jobID int64) ([]*model.Run, error) {
	var runs []*model.Run
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, `
			SELECT `+runColumns+`
			FROM runs
			WHERE job_id = $1
			ORDER BY started_at DESC NULLS LAST, id DESC
		`, jobID)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		for rows.Next() {
			run, scanErr := scanRunFromRow(rows)
			if scanErr != nil {
				return scanErr
			}
			runs = append(runs, run)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("list runs: %w", err))
	}
	return runs, nil
}

func scanSingleRun(rows pgx.Rows, out **model.Run) error {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return pgx.ErrNoRows
	}
	run, err := scanRunFromRow(rows)
	if err != nil {
		return err
	}
	if rowsErr := rows.Err(); rowsErr != nil && !errors.Is(rowsErr, pgx.ErrNoRows) {
		return rowsErr
	}
	*out = run
	return nil
}

func scanRunFromRow(scanner jobRowScanner) (*model.Run, error) {
	run := &model.Run{}
	var exitCode sql.NullInt32
	var startedAt, finishedAt sql.NullTime
	if err := scanner.Scan(
		&run.ID,
		&run.JobID,
		&run.Module,
		&run.Stdout,
		&run.Stderr,
		&exitCode,
		&startedAt,
		&finishedAt,
	); err != nil {
		return nil, err
	}

	run.ExitCode = cloneNullableInt(exitCode)
	run.StartedAt = cloneNullableTime(startedAt)
	run.FinishedAt = cloneNullableTime(finishedAt)
	return run, nil
}
