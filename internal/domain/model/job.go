// Package model defines the core data types and structures used throughout the blackbox job engine.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// JobType discriminates which audit module handles a job.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Known needs value receiver
type JobType string

// JobStatus represents the lifecycle state of a job.
type JobStatus string

const (
	// JobTypeWifiRecon represents a passive Wi-Fi reconnaissance job.
	JobTypeWifiRecon JobType = "wifi_recon"
	// JobTypeWifiActive represents an active Wi-Fi audit job.
	JobTypeWifiActive JobType = "wifi_active"
	// JobTypeBTRecon represents a passive Bluetooth reconnaissance job.
	JobTypeBTRecon JobType = "bt_recon"
	// JobTypeBTActive represents an active Bluetooth audit job.
	JobTypeBTActive JobType = "bt_active"
	// JobTypeHashLookup represents a hash-cracking / intelligence lookup job.
	JobTypeHashLookup JobType = "hash_lookup"

	// JobStatusQueued indicates a job is waiting to be claimed.
	JobStatusQueued JobStatus = "queued"
	// JobStatusRunning indicates a job has been claimed and is executing.
	JobStatusRunning JobStatus = "running"
	// JobStatusFinished indicates a job completed successfully.
	JobStatusFinished JobStatus = "finished"
	// JobStatusError indicates a job terminated with a failure.
	JobStatusError JobStatus = "error"
)

// ErrNoJobsQueued is returned when no queued jobs are available to claim.
var ErrNoJobsQueued = errors.New("no queued jobs")

// UnmarshalText implements encoding.TextUnmarshaler for JobType to allow env parsing.
func (t *JobType) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	if v == "" {
		return errors.New("empty JobType")
	}
	*t = JobType(v)
	return nil
}

// Known returns true if the JobType is one of the built-in audit types.
// Unknown types are still accepted at the write boundary; resolution happens
// against the module registry at execution time.
func (t JobType) Known() bool {
	switch t {
	case JobTypeWifiRecon, JobTypeWifiActive, JobTypeBTRecon, JobTypeBTActive, JobTypeHashLookup:
		return true
	default:
		return false
	}
}

// Valid returns true if the JobStatus is a member of the four-state enum.
func (s JobStatus) Valid() bool {
	return s == JobStatusQueued || s == JobStatusRunning || s == JobStatusFinished ||
		s == JobStatusError
}

// Terminal returns true for states a job can never leave.
func (s JobStatus) Terminal() bool {
	return s == JobStatusFinished || s == JobStatusError
}

// Job represents a requested unit of audit/lookup work.
type Job struct {
	ID        int64           `json:"id"                db:"id"`
	Type      JobType         `json:"type"              db:"type"`
	Profile   *string         `json:"profile,omitempty" db:"profile"`
	Params    json.RawMessage `json:"params"            db:"params"`
	Status    JobStatus       `json:"status"            db:"status"`
	CreatedAt time.Time       `json:"created_at"        db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"        db:"updated_at"`
}

// ParamsMap decodes the params payload into a loosely-typed map. The shape is
// determined by the job type; per-type validation belongs to the handler.
func (j *Job) ParamsMap() (map[string]any, error) {
	if len(j.Params) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(j.Params, &m); err != nil {
		return nil, fmt.Errorf("decode job params: %w", err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

// CreateJobRequest represents a request to submit a new job.
type CreateJobRequest struct {
	Type    JobType         `json:"type"`
	Profile *string         `json:"profile,omitempty"`
	Params  json.RawMessage `json:"params"`
}

// Validate validates the CreateJobRequest fields.
func (r *CreateJobRequest) Validate() error {
	if strings.TrimSpace(string(r.Type)) == "" {
		return errors.New("job type is required")
	}
	if len(r.Params) == 0 {
		return errors.New("params is required")
	}
	if !json.Valid(r.Params) {
		return errors.New("params must be valid JSON")
	}
	if r.Profile != nil && strings.TrimSpace(*r.Profile) == "" {
		return errors.New("profile must not be blank when set")
	}
	return nil
}

// JobListOptions filters job listings.
type JobListOptions struct {
	Status JobStatus
	Type   JobType
	Limit  int
	Offset int
}

// JobStats represents counts of jobs in each lifecycle state.
type JobStats struct {
	Queued   int `json:"queued"`
	Running  int `json:"running"`
	Finished int `json:"finished"`
	Error    int `json:"error"`
}
