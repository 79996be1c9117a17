package model

import "time"

// ModuleUnresolved is the module-name sentinel recorded when a job's type has
// no registered handler.
const ModuleUnresolved = "unresolved"

// Run records one execution attempt of a module against a Job, including
// captured output and exit information.
type Run struct {
	ID         int64      `json:"id"                    db:"id"`
	JobID      int64      `json:"job_id"                db:"job_id"`
	Module     string     `json:"module"                db:"module"`
	Stdout     string     `json:"stdout"                db:"stdout"`
	Stderr     string     `json:"stderr"                db:"stderr"`
	ExitCode   *int       `json:"exit_code,omitempty"   db:"exit_code"`
	StartedAt  *time.Time `json:"started_at,omitempty"  db:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" db:"finished_at"`
}

// Duration returns the wall-clock duration of the run, or zero when either
// timestamp is missing.
func (r *Run) Duration() time.Duration {
	if r.StartedAt == nil || r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(*r.StartedAt)
}
