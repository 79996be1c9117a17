package testutil

import (
	"encoding/json"

	"github.com/blackboxsec/blackbox/internal/domain/model"
)

// JobRequestBuilder provides a fluent interface for building CreateJobRequest objects for testing.
type JobRequestBuilder struct {
	req *model.CreateJobRequest
}

// NewJobRequest creates a new JobRequestBuilder with sensible defaults.
func NewJobRequest() *JobRequestBuilder {
	return &JobRequestBuilder{
		req: &model.CreateJobRequest{
			Type:   model.JobTypeWifiRecon,
			Params: json.RawMessage(`{}`),
		},
	}
}

// WithType sets the job type.
func (b *JobRequestBuilder) WithType(jobType model.JobType) *JobRequestBuilder {
	b.req.Type = jobType
	return b
}

// WithProfile sets the requested profile.
func (b *JobRequestBuilder) WithProfile(profile string) *JobRequestBuilder {
	b.req.Profile = &profile
	return b
}

// WithParams sets the job params from a string.
func (b *JobRequestBuilder) WithParams(params string) *JobRequestBuilder {
	b.req.Params = json.RawMessage(params)
	return b
}

// Build returns the constructed CreateJobRequest.
func (b *JobRequestBuilder) Build() *model.CreateJobRequest {
	return b.req
}
