package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersIndependently(t *testing.T) {
	// Two instances must not collide on duplicate registration, since a
	// process can host more than one engine.
	a := New("engine")
	b := New("engine")

	a.MessagesConsumed.WithLabelValues("repeat").Inc()
	b.MessagesConsumed.WithLabelValues("repeat").Inc()

	metricFamilies, err := a.Registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, metricFamilies)
}

func TestConnectedGaugeDefaultsToZero(t *testing.T) {
	m := New("engine")
	families, err := m.Registry.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "msgflo_engine_connected" {
			found = true
			require.Len(t, f.GetMetric(), 1)
			assert.Equal(t, float64(0), f.GetMetric()[0].GetGauge().GetValue())
		}
	}
	assert.True(t, found)
}
