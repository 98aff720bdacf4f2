package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPeakDetectorRejectsTooShortDuration(t *testing.T) {
	var ring bandpassRing
	d := newPeakDetector(&ring)
	h := newBreathHistory(60000)

	d.process(1, 1000, &h)
	d.process(-1, 1100, &h)
	d.process(1, 1200, &h)

	require.Equal(t, 0, h.len())
}

func TestPeakDetectorAcceptsValidDuration(t *testing.T) {
	var ring bandpassRing
	d := newPeakDetector(&ring)
	h := newBreathHistory(60000)

	ts := uint64(0)
	for cycle := 0; cycle < 3; cycle++ {
		for i := 0; i < 40; i++ {
			f := float32(math.Sin(2 * math.Pi * float64(i) / 40))
			d.process(f*2, ts, &h)
			ts += 25
		}
	}
	require.Greater(t, h.len(), 0)
}

func TestPeakDetectorResetClearsState(t *testing.T) {
	var ring bandpassRing
	d := newPeakDetector(&ring)
	h := newBreathHistory(60000)
	d.process(5, 100, &h)
	d.reset()
	require.False(t, d.inPeak)
	require.Equal(t, uint64(0), d.lastPeakTs)
	require.Equal(t, uint64(0), d.lastBreathTs)
}
