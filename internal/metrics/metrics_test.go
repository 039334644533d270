package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, New().Register(reg))

	// A second set on the same registry collides.
	assert.Error(t, New().Register(reg))

	// A fresh registry accepts another set.
	assert.NoError(t, New().Register(prometheus.NewRegistry()))
}

func TestObserveImport(t *testing.T) {
	m := New()

	m.ObserveImport(ResultApplied, 3)
	m.ObserveImport(ResultApplied, 2)
	m.ObserveImport(ResultInvalid, 7)
	m.ObserveImport(ResultConstraint, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ImportBatches.WithLabelValues(ResultApplied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImportBatches.WithLabelValues(ResultInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImportBatches.WithLabelValues(ResultConstraint)))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.ImportedItems))
}

func TestObserveRequest(t *testing.T) {
	m := New()

	m.ObserveRequest("/api/airdrops", "200", 15*time.Millisecond)
	m.ObserveRequest("/api/airdrops", "200", 5*time.Millisecond)
	m.ObserveRequest("/api/import", "400", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("/api/airdrops", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("/api/import", "400")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.RequestDuration))
}

func TestObserveList(t *testing.T) {
	m := New()
	m.ObserveList(3)
	m.ObserveList(0)

	assert.Equal(t, 1, testutil.CollectAndCount(m.ListedRows))
}
