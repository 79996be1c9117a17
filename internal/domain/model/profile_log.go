package model

import (
	"errors"
	"time"
)

// Actor tags recorded in triggered_by on profile changes.
const (
	TriggeredByAPI       = "api"
	TriggeredByCLI       = "cli"
	TriggeredByWorker    = "worker"
	TriggeredByScheduled = "scheduled"
)

// ProfileChange is one append-only audit-trail entry for an
// environment/profile switch. Entries are recorded independently of any
// single job.
type ProfileChange struct {
	ID          int64     `json:"id"                    db:"id"`
	OldProfile  *string   `json:"old_profile,omitempty" db:"old_profile"`
	NewProfile  string    `json:"new_profile"           db:"new_profile"`
	Reason      *string   `json:"reason,omitempty"      db:"reason"`
	TriggeredBy *string   `json:"triggered_by,omitempty" db:"triggered_by"`
	CreatedAt   time.Time `json:"created_at"            db:"created_at"`
}

// AppendProfileChangeRequest carries the fields for one profile switch entry.
type AppendProfileChangeRequest struct {
	OldProfile  *string
	NewProfile  string
	Reason      *string
	TriggeredBy *string
}

// Validate validates the AppendProfileChangeRequest fields.
func (r *AppendProfileChangeRequest) Validate() error {
	if r.NewProfile == "" {
		return errors.New("new profile is required")
	}
	return nil
}
