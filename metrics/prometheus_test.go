package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewPrometheusRecorder(reg)
	require.NoError(t, err)

	labels := map[string]string{LabelMethod: "create_stream", LabelContract: "paystream"}
	r.IncCounter("action_success", labels)
	r.IncCounter("action_success", labels)
	r.IncCounter("action_error", labels)
	r.ObserveLatency("action", 150*time.Millisecond, labels)

	require.Equal(t, 2.0, testutil.ToFloat64(r.counters.WithLabelValues("action_success", "create_stream", "paystream")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.counters.WithLabelValues("action_error", "create_stream", "paystream")))
	require.Equal(t, 1, testutil.CollectAndCount(r.histogram))

	_, err = NewPrometheusRecorder(reg)
	require.Error(t, err, "collectors register once per registry")
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.IncCounter("x", nil)
	r.ObserveLatency("x", time.Second, nil)
}
