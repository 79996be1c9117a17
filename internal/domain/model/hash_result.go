package model

import (
	"errors"
	"time"
)

// Well-known external service names for hash/intelligence results.
const (
	ServiceOnlineHashCrack = "onlinehashcrack"
	ServiceLeakCheck       = "leakcheck"
	ServiceWPASec          = "wpa_sec"
)

// HashResult is an external-service or intelligence finding tied to a job.
// Rows are append-only: retries and multi-stage responses accumulate rather
// than overwrite.
type HashResult struct {
	ID      int64  `json:"id"      db:"id"`
	JobID   *int64 `json:"job_id,omitempty" db:"job_id"`
	Service string `json:"service" db:"service"`
	// Hash is the primary lookup key: the original hash for cracking
	// submissions, or the queried identifier (email, username) for breach
	// lookups.
	Hash string `json:"hash" db:"hash"`
	// Plaintext carries the recovered value or a human-readable summary such
	// as "3 breach(es) detected". Nil for fire-and-forget attempt markers.
	Plaintext *string `json:"plaintext,omitempty" db:"plaintext"`
	// Confidence uses whatever scale the reporting service defines; no range
	// is enforced here.
	Confidence *float64  `json:"confidence,omitempty" db:"confidence"`
	CreatedAt  time.Time `json:"created_at"           db:"created_at"`
}

// CreateHashResultRequest carries the fields a handler records for one
// external-service answer.
type CreateHashResultRequest struct {
	JobID      *int64
	Service    string
	Hash       string
	Plaintext  *string
	Confidence *float64
}

// Validate validates the CreateHashResultRequest fields.
func (r *CreateHashResultRequest) Validate() error {
	if r.Service == "" {
		return errors.New("service is required")
	}
	if r.Hash == "" {
		return errors.New("hash is required")
	}
	return nil
}
