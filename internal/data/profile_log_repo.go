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

// ProfileLogRepo provides the append-only audit trail of profile/tethering
// switches.
type ProfileLogRepo struct {
	DB *sql.DB
}

// NewProfileLogRepo constructs a ProfileLogRepo.
func NewProfileLogRepo(db *sql.DB) *ProfileLogRepo {
	return &ProfileLogRepo{DB: db}
}

const profileLogColumns = `
  id,
  old_profile,
  new_profile,
  reason,
  triggered_by,
  created_at
`

// Append records one profile change.
func (r *ProfileLogRepo) Append(ctx context.Context, req *model.AppendProfileChangeRequest) (*model.ProfileChange, error) {
	if req == nil {
		return nil, apperrors.Validation("append profile change request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid profile change")
	}

	var change *model.ProfileChange
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, `
			INSERT INTO profiles_log (old_profile, new_profile, reason, triggered_by)
			VALUES ($1, $2, $3, $4)
			RETURNING `+profileLogColumns,
			req.OldProfile, req.NewProfile, req.Reason, req.TriggeredBy)
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
		pc, scanErr := scanProfileChangeFromRow(rows)
		if scanErr != nil {
			return scanErr
		}
		change = pc
		return rows.Err()
	})
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("append profile change: %w", err))
	}
	return change, nil
}

// List returns the most recent profile changes, newest first.
func (r *ProfileLogRepo) List(ctx context.Context, limit int) ([]*model.ProfileChange, error) {
	if limit <= 0 || limit > 1000 {
		limit = defaultListLimit
	}

	var changes []*model.ProfileChange
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, `
			SELECT `+profileLogColumns+`
			FROM profiles_log
			ORDER BY created_at DESC, id DESC
			LIMIT $1
		`, limit)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		for rows.Next() {
			pc, scanErr := scanProfileChangeFromRow(rows)
			if scanErr != nil {
				return scanErr
			}
			changes = append(changes, pc)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("list profile changes: %w", err))
	}
	return changes, nil
}

func scanProfileChangeFromRow(scanner jobRowScanner) (*model.ProfileChange, error) {
	pc := &model.ProfileChange{}
	var oldProfile, reason, triggeredBy sql.NullString
	if err := scanner.Scan(
		&pc.ID,
		&oldProfile,
		&pc.NewProfile,
		&reason,
		&triggeredBy,
		&pc.CreatedAt,
	); err != nil {
		return nil, err
	}

	pc.OldProfile = cloneNullableString(oldProfile)
	pc.Reason = cloneNullableString(reason)
	pc.TriggeredBy = cloneNullableString(triggeredBy)
	return pc, nil
}
