package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBandpassFilterResetClearsDelayRegisters(t *testing.T) {
	var f bandpassFilter
	for i := 0; i < 50; i++ {
		f.process(float32(i))
	}
	f.reset()
	require.Equal(t, float32(0), f.x1)
	require.Equal(t, float32(0), f.x2)
	require.Equal(t, float32(0), f.y1)
	require.Equal(t, float32(0), f.y2)
}

func TestBandpassFilterZeroInputStaysZero(t *testing.T) {
	var f bandpassFilter
	for i := 0; i < 10; i++ {
		require.Equal(t, float32(0), f.process(0))
	}
}

func TestGravityEstimatorTracksConstantMagnitude(t *testing.T) {
	g := newGravityEstimator()
	var last float32
	for i := 0; i < 500; i++ {
		last = g.update(9.81)
	}
	require.InDelta(t, float64(0), float64(last), 1e-3)
}

func TestGravityEstimatorResetRestoresInitialValue(t *testing.T) {
	g := newGravityEstimator()
	g.update(12)
	g.reset()
	require.Equal(t, float32(gravityInitial), g.estimate)
}
