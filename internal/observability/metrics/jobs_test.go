package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ahylith/formagent/internal/errors"
)

type recordedMetric struct {
	kind  string
	name  string
	value int64
	tags  map[string]string
}

type fakeSink struct {
	metrics []recordedMetric
}

func (s *fakeSink) Count(name string, value int64, tags map[string]string) {
	s.metrics = append(s.metrics, recordedMetric{kind: "count", name: name, value: value, tags: tags})
}

func (s *fakeSink) Gauge(name string, _ float64, tags map[string]string) {
	s.metrics = append(s.metrics, recordedMetric{kind: "gauge", name: name, tags: tags})
}

func (s *fakeSink) Timing(name string, _ time.Duration, tags map[string]string) {
	s.metrics = append(s.metrics, recordedMetric{kind: "timing", name: name, tags: tags})
}

func TestEmitJobLifecycleTagsErrorClass(t *testing.T) {
	sink := &fakeSink{}

	EmitJobLifecycle(sink, JobMetric{
		Transition: "failed",
		Result:     ResultError,
		Duration:   2 * time.Second,
		Err:        apperrors.Session("browser died", nil),
	})

	require.Len(t, sink.metrics, 2)
	assert.Equal(t, "job.transition", sink.metrics[0].name)
	assert.Equal(t, map[string]string{
		"transition":  "failed",
		"result":      "error",
		"error_class": "session",
	}, sink.metrics[0].tags)
	assert.Equal(t, "job.duration", sink.metrics[1].name)
	assert.Equal(t, "timing", sink.metrics[1].kind)
}

func TestEmitRowProcessedIncludesFieldErrors(t *testing.T) {
	sink := &fakeSink{}

	EmitRowProcessed(sink, RowMetric{Result: ResultSuccess, FieldErrors: 2, Duration: time.Second})

	require.Len(t, sink.metrics, 3)
	assert.Equal(t, "row.processed", sink.metrics[0].name)
	assert.Equal(t, "row.field_errors", sink.metrics[1].name)
	assert.Equal(t, int64(2), sink.metrics[1].value)
	assert.Equal(t, "row.duration", sink.metrics[2].name)
}

func TestEmitToNilSinkIsNoOp(t *testing.T) {
	EmitJobLifecycle(nil, JobMetric{Transition: "completed", Result: ResultSuccess})
	EmitRowProcessed(nil, RowMetric{Result: ResultSuccess})
}

func TestCloneTags(t *testing.T) {
	src := map[string]string{"result": "success"}
	cp := CloneTags(src)
	cp["result"] = "error"
	assert.Equal(t, "success", src["result"])
	assert.Nil(t, CloneTags(nil))
}
