package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegisterOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncrementTransition("outgoing", "Draft")
	m.IncrementTransition("outgoing", "Draft")
	m.IncrementItemDecision("ReadAttributeRequestItem", "Accepted")
	m.ObserveOperation("incoming.accept", time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestTransitions.WithLabelValues("outgoing", "Draft")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ItemDecisions.WithLabelValues("ReadAttributeRequestItem", "Accepted")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	// a second engine in the same process must not collide
	assert.NotPanics(t, func() { New(prometheus.NewRegistry()) })
}
