// Package metrics standardises lifecycle metric emission for jobs and rows.
package metrics

import (
	"time"

	apperrors "github.com/ahylith/formagent/internal/errors"
	"github.com/ahylith/formagent/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// JobMetric captures details about a job lifecycle event for metric emission.
type JobMetric struct {
	Transition string
	Result     string
	Duration   time.Duration
	Err        error
}

// EmitJobLifecycle emits standardised job lifecycle metrics.
func EmitJobLifecycle(sink statsd.Sink, in JobMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"transition": in.Transition,
		"result":     in.Result,
	}
	if in.Err != nil && in.Result == ResultError {
		if code := apperrors.GetCode(in.Err); code != "" {
			tags["error_class"] = string(code)
		}
	}

	sink.Count("job.transition", 1, tags)

	if in.Duration > 0 {
		sink.Timing("job.duration", in.Duration, CloneTags(tags))
	}
}

// RowMetric captures details about one processed row.
type RowMetric struct {
	Result      string
	FieldErrors int
	Duration    time.Duration
}

// EmitRowProcessed emits standardised per-row metrics.
func EmitRowProcessed(sink statsd.Sink, in RowMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{"result": in.Result}
	sink.Count("row.processed", 1, tags)
	if in.FieldErrors > 0 {
		sink.Count("row.field_errors", int64(in.FieldErrors), CloneTags(tags))
	}
	if in.Duration > 0 {
		sink.Timing("row.duration", in.Duration, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map, filtering out empty maps.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
