package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	apperrors "github.com/blackboxsec/blackbox/internal/errors"
	"github.com/blackboxsec/blackbox/internal/data/pgxutil"
	"github.com/blackboxsec/blackbox/internal/domain/model"
)

// jobQueuedChannel is the LISTEN/NOTIFY channel signaled on every job insert.
const jobQueuedChannel = "blackbox_job_queued"

// SQL used by ClaimNext to atomically claim the oldest queued job.
// SKIP LOCKED keeps concurrent claimers from blocking on the same candidate;
// the status guard in the UPDATE makes the read-then-write conditional, so a
// claimer that loses the race simply matches zero rows and re-polls.
const claimNextSQL = `
  WITH cte AS (
    SELECT id FROM jobs
    WHERE status = 'queued' %s
    ORDER BY created_at ASC, id ASC
    LIMIT 1
    FOR UPDATE SKIP LOCKED
  )
  UPDATE jobs j
  SET status = 'running', updated_at = $1
  FROM cte
  WHERE j.id = cte.id AND j.status = 'queued'
  RETURNING j.id, j.type, j.profile, j.params, j.status, j.created_at, j.updated_at`

// Create inserts a new queued job and signals listeners on the job channel.
func (r *JobRepo) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, errors.New("create job request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid job")
	}

	params := req.Params
	if len(params) == 0 {
		params = json.RawMessage(`{}`)
	}

	var job *model.Job
	txErr := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
          INSERT INTO jobs (type, profile, params, status, created_at, updated_at)
          VALUES ($1, $2, $3, 'queued', $4, $4)
          RETURNING `+jobColumns,
			req.Type, req.Profile, []byte(params), r.timeProvider.Now().UTC())
		if err != nil {
			return fmt.Errorf("insert job: %w", err)
		}
		j, collectErr := collectJobFromRows(rows)
		rows.Close()
		if collectErr != nil {
			return fmt.Errorf("collect job: %w", collectErr)
		}

		if _, execErr := tx.Exec(ctx, `SELECT pg_notify($1::text, $2::text)`,
			jobQueuedChannel, strconv.FormatInt(j.ID, 10)); execErr != nil {
			return fmt.Errorf("send job notification: %w", execErr)
		}

		job = j
		return nil
	})
	if txErr != nil {
		return nil, apperrors.MapDBError(txErr)
	}
	return job, nil
}

// ClaimNext atomically claims the oldest queued job (FIFO by created_at,
// id ascending on ties) and transitions it to running. Returns
// model.ErrNoJobsQueued when no queued job exists.
func (r *JobRepo) ClaimNext(ctx context.Context, types []model.JobType) (*model.Job, error) {
	query, args := buildClaimQuery(types, r.timeProvider.Now().UTC())

	var job *model.Job
	err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		rows, qerr := tx.Query(ctx, query, args...)
		if qerr != nil {
			return fmt.Errorf("claim job: %w", qerr)
		}
		defer rows.Close()

		j, cerr := collectJobFromRows(rows)
		if errors.Is(cerr, pgx.ErrNoRows) {
			return model.ErrNoJobsQueued
		}
		if cerr != nil {
			return fmt.Errorf("claim job: %w", cerr)
		}
		job = j
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrNoJobsQueued) {
			return nil, model.ErrNoJobsQueued
		}
		return nil, apperrors.MapDBError(err)
	}
	return job, nil
}

func buildClaimQuery(types []model.JobType, now time.Time) (string, []any) {
	args := []any{now}
	filter := ""
	if len(types) > 0 {
		placeholders := make([]string, len(types))
		for i, t := range types {
			args = append(args, t)
			placeholders[i] = "$" + strconv.Itoa(len(args))
		}
		filter = "AND type IN (" + strings.Join(placeholders, ", ") + ")"
	}
	return fmt.Sprintf(claimNextSQL, filter), args
}

// MarkFinished transitions a running job to finished. Returns false when the
// job was not running (the caller lost ownership or the job was already
// finalized).
func (r *JobRepo) MarkFinished(ctx context.Context, id int64) (bool, error) {
	return r.finalize(ctx, id, model.JobStatusFinished)
}

// MarkError transitions a running job to error. Returns false when the job was
// not running.
func (r *JobRepo) MarkError(ctx context.Context, id int64) (bool, error) {
	return r.finalize(ctx, id, model.JobStatusError)
}

func (r *JobRepo) finalize(ctx context.Context, id int64, status model.JobStatus) (bool, error) {
	if !status.Terminal() {
		return false, fmt.Errorf("status %q is not terminal", status)
	}

	res, err := r.DB.ExecContext(ctx, `
		UPDATE jobs
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status = 'running'
	`, id, status, r.timeProvider.Now().UTC())
	if err != nil {
		return false, apperrors.MapDBError(fmt.Errorf("finalize job: %w", err))
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("finalize rows affected: %w", err)
	}

	if rowsAffected == 0 && r.logger != nil {
		r.logger.WarnContext(ctx, "finalize matched no running job",
			"job_id", id,
			"target_status", status,
		)
	}

	return rowsAffected > 0, nil
}

// GetByID retrieves a job by its ID.
func (r *JobRepo) GetByID(ctx context.Context, id int64) (*model.Job, error) {
	var job *model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(pgxConn *pgx.Conn) error {
		rows, err := pgxConn.Query(ctx, `
			SELECT `+jobColumns+`
			FROM jobs
			WHERE id = $1
		`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		job, err = collectJobFromRows(rows)
		return err
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("get job: %w", err))
	}
	return job, nil
}

const defaultListLimit = 100

// List returns jobs matching the given filters, newest first.
func (r *JobRepo) List(ctx context.Context, opts *model.JobListOptions) ([]*model.Job, error) {
	if opts == nil {
		opts = &model.JobListOptions{}
	}
	limit := opts.Limit
	if limit <= 0 || limit > 1000 {
		limit = defaultListLimit
	}

	where := []string{"TRUE"}
	args := []any{}
	if opts.Status != "" {
		if !opts.Status.Valid() {
			return nil, apperrors.Validationf("invalid status filter: %s", opts.Status)
		}
		args = append(args, opts.Status)
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}
	if opts.Type != "" {
		args = append(args, opts.Type)
		where = append(where, "type = $"+strconv.Itoa(len(args)))
	}
	args = append(args, limit, opts.Offset)

	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC, id DESC
		LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	return r.queryJobs(ctx, query, args...)
}

// StaleRunning lists jobs stuck in running with no update for longer than
// olderThan. Detection only; recovery is an operator concern.
func (r *JobRepo) StaleRunning(ctx context.Context, olderThan time.Duration) ([]*model.Job, error) {
	cutoff := r.timeProvider.Now().Add(-olderThan).UTC()
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE status = 'running' AND updated_at < $1
		ORDER BY updated_at ASC`
	return r.queryJobs(ctx, query, cutoff)
}

func (r *JobRepo) queryJobs(ctx context.Context, query string, args ...any) ([]*model.Job, error) {
	var jobs []*model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(pgxConn *pgx.Conn) error {
		rows, err := pgxConn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			job, scanErr := scanJobFromRow(rows)
			if scanErr != nil {
				return scanErr
			}
			jobs = append(jobs, job)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("list jobs: %w", err))
	}
	return jobs, nil
}

// Stats returns counts of jobs per lifecycle state.
func (r *JobRepo) Stats(ctx context.Context) (*model.JobStats, error) {
	var s model.JobStats
	err := r.DB.QueryRowContext(ctx, `
  SELECT
    count(*) FILTER (WHERE status = 'queued')   AS queued,
    count(*) FILTER (WHERE status = 'running')  AS running,
    count(*) FILTER (WHERE status = 'finished') AS finished,
    count(*) FILTER (WHERE status = 'error')    AS error
  FROM jobs
  `).Scan(&s.Queued, &s.Running, &s.Finished, &s.Error)
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("job stats: %w", err))
	}
	return &s, nil
}

// WaitForNotification blocks until a job-queued notification arrives or ctx is
// done.
func (r *JobRepo) WaitForNotification(ctx context.Context) error {
	conn, err := r.DB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get conn from pool: %w", err)
	}
	defer func() {
		_ = conn.Close()
	}()

	quoted := pgx.Identifier{jobQueuedChannel}.Sanitize()

	if _, execErr := conn.ExecContext(ctx, "LISTEN "+quoted); execErr != nil {
		return fmt.Errorf("listen %s: %w", jobQueuedChannel, execErr)
	}
	defer func() {
		if _, execErr := conn.ExecContext(context.Background(), "UNLISTEN "+quoted); execErr != nil {
			_ = execErr
		}
	}()

	return conn.Raw(func(dc any) error {
		sc, ok := dc.(*stdlib.Conn)
		if !ok {
			return errors.New("unexpected driver connection type; expected *stdlib.Conn")
		}
		_, notifyErr := sc.Conn().WaitForNotification(ctx)
		return notifyErr
	})
}

// collectJobFromRows collects a single job from pgx rows.
func collectJobFromRows(rows pgx.Rows) (*model.Job, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, pgx.ErrNoRows
	}

	job, err := scanJobFromRow(rows)
	if err != nil {
		return nil, err
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, rowsErr
	}

	return job, nil
}

type jobRowScanner interface {
	Scan(dest ...any) error
}

func scanJobFromRow(scanner jobRowScanner) (*model.Job, error) {
	job := &model.Job{}
	var params []byte
	var profile sql.NullString
	if err := scanner.Scan(
		&job.ID,
		&job.Type,
		&profile,
		&params,
		&job.Status,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, err
	}

	job.Params = cloneJSON(params)
	job.Profile = cloneNullableString(profile)
	return job, nil
}

func cloneJSON(raw []byte) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(`{}`)
	}
	return append(json.RawMessage(nil), raw...)
}

func cloneNullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func cloneNullableTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func cloneNullableInt(ni sql.NullInt32) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int32)
	return &v
}
