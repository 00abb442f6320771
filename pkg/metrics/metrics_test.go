package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Observe(t *testing.T) {
	r := NewRecorder(nil)

	r.Observe("execute_query", 5*time.Millisecond, 3, nil)
	r.Observe("execute_query", time.Millisecond, 0, errors.New("boom"))
	r.Observe("store_frame", time.Second, 10, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.Operations().WithLabelValues("execute_query", StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Operations().WithLabelValues("execute_query", StatusFailure)))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.Rows().WithLabelValues("execute_query")))
	assert.Equal(t, 10.0, testutil.ToFloat64(r.Rows().WithLabelValues("store_frame")))
}

func TestNewRecorder_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)
	r.Observe("create_table", time.Millisecond, 0, nil)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "nimble_operations_total")
	assert.Contains(t, names, "nimble_operation_duration_seconds")
}

func TestTimer(t *testing.T) {
	timer := NewTimer()
	time.Sleep(2 * time.Millisecond)

	assert.GreaterOrEqual(t, timer.Stop(), 2*time.Millisecond)
}
