package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/blackboxsec/blackbox/internal/data/pgxutil"
	apperrors "github.com/blackboxsec/blackbox/internal/errors"
	"github.com/blackboxsec/blackbox/internal/domain/model"
)

// HashResultRepo provides persistence for hash/intelligence results. Rows are
// append-only: there is no update path, and deletion happens only via the job
// cascade.
type HashResultRepo struct {
	DB *sql.DB
}

// NewHashResultRepo constructs a HashResultRepo.
func NewHashResultRepo(db *sql.DB) *HashResultRepo {
	return &HashResultRepo{DB: db}
}

const hashResultColumns = `
  id,
  job_id,
  service,
  hash,
  plaintext,
  confidence,
  created_at
`

// Create appends a new hash result row.
func (r *HashResultRepo) Create(ctx context.Context, req *model.CreateHashResultRequest) (*model.HashResult, error) {
	if req == nil {
		return nil, apperrors.Validation("create hash result request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var result *model.HashResult
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, `
			INSERT INTO hash_results (job_id, service, hash, plaintext, confidence)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+hashResultColumns,
			req.JobID, req.Service, req.Hash, req.Plaintext, req.Confidence)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		if !rows.Next() {
			if rerr := rows.Err(); rerr != nil {
				return rerr
			}
			return pgx.ErrNoRows
		}
		hr, scanErr := scanHashResultFromRow(rows)
		if scanErr != nil {
			return scanErr
		}
		result = hr
		return rows.Err()
	})
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("create hash result: %w", err))
	}
	return result, nil
}

// ListByJob returns results recorded for a job, oldest first.
func (r *HashResultRepo) ListByJob(ctx context.Context, jobID int64) ([]*model.HashResult, error) {
	var results []*model.HashResult
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, `
			SELECT `+hashResultColumns+`
			FROM hash_results
			WHERE job_id = $1
			ORDER BY created_at ASC, id ASC
		`, jobID)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		for rows.Next() {
			hr, scanErr := scanHashResultFromRow(rows)
			if scanErr != nil {
				return scanErr
			}
			results = append(results, hr)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("list hash results: %w", err))
	}
	return results, nil
}

func scanHashResultFromRow(scanner jobRowScanner) (*model.HashResult, error) {
	hr := &model.HashResult{}
	var jobID sql.NullInt64
	var plaintext sql.NullString
	var confidence sql.NullFloat64
	if err := scanner.Scan(
		&hr.ID,
		&jobID,
		&hr.Service,
		&hr.Hash,
		&plaintext,
		&confidence,
		&hr.CreatedAt,
	); err != nil {
		return nil, err
	}

	if jobID.Valid {
		v := jobID.Int64
		hr.JobID = &v
	}
	hr.Plaintext = cloneNullableString(plaintext)
	if confidence.Valid {
		v := confidence.Float64
		hr.Confidence = &v
	}
	return hr, nil
}
