package metrics

import (
	"fmt"
	"testing"
	"time"
)

type recordedMetric struct {
	name string
	tags map[string]string
}

type recordingSink struct {
	counts  []recordedMetric
	timings []recordedMetric
}

func (s *recordingSink) Count(name string, _ int64, tags map[string]string) {
	s.counts = append(s.counts, recordedMetric{name: name, tags: tags})
}

func (s *recordingSink) Gauge(string, float64, map[string]string) {}

func (s *recordingSink) Timing(name string, _ time.Duration, tags map[string]string) {
	s.timings = append(s.timings, recordedMetric{name: name, tags: tags})
}

func TestEmitJobLifecycleSuccess(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	EmitJobLifecycle(sink, JobMetric{
		JobType:    "wifi_recon",
		Transition: "finished",
		Result:     ResultSuccess,
		Duration:   3 * time.Second,
	})

	if len(sink.counts) != 1 || sink.counts[0].name != "job.transition" {
		t.Fatalf("counts = %+v", sink.counts)
	}
	if got := sink.counts[0].tags["job_type"]; got != "wifi_recon" {
		t.Fatalf("job_type tag = %q", got)
	}
	if _, ok := sink.counts[0].tags["error_class"]; ok {
		t.Fatal("success metric should not carry error_class")
	}
	if len(sink.timings) != 1 || sink.timings[0].name != "job.duration" {
		t.Fatalf("timings = %+v", sink.timings)
	}
}

func TestEmitJobLifecycleErrorClass(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	EmitJobLifecycle(sink, JobMetric{
		JobType:    "hash_lookup",
		Transition: "error",
		Result:     ResultError,
		Err:        fmt.Errorf("handler: %w", fmt.Errorf("boom")),
	})

	if len(sink.counts) != 1 {
		t.Fatalf("counts = %+v", sink.counts)
	}
	if got := sink.counts[0].tags["error_class"]; got == "" {
		t.Fatal("expected error_class tag on failed transition")
	}
	if len(sink.timings) != 0 {
		t.Fatal("zero duration must not emit a timing")
	}
}

func TestEmitJobLifecycleNilSink(t *testing.T) {
	t.Parallel()

	// Must not panic.
	EmitJobLifecycle(nil, JobMetric{JobType: "wifi_recon"})
}
