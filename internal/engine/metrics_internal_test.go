package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifySignalQualityPrecedence(t *testing.T) {
	require.Equal(t, QualityUnknown, classifySignalQuality(10, 4, 0.9))
	require.Equal(t, QualityExcellent, classifySignalQuality(6, 20, 0.8))
	require.Equal(t, QualityGood, classifySignalQuality(4, 10, 0.6))
	require.Equal(t, QualityFair, classifySignalQuality(2, 5, 0.1))
	require.Equal(t, QualityPoor, classifySignalQuality(0.5, 8, 0.9))
}

func TestClassifySleepStageCascade(t *testing.T) {
	require.Equal(t, StageUnknown, classifySleepStage(0, 0, 4))
	require.Equal(t, StageAwake, classifySleepStage(0.5, 0.9, 10))
	require.Equal(t, StageDeep, classifySleepStage(0.01, 0.9, 10))
	require.Equal(t, StageREM, classifySleepStage(0.2, 0.3, 10))
	require.Equal(t, StageLight, classifySleepStage(0.1, 0.3, 10))
}

func TestBreathingRateRequiresThreeCyclesInWindow(t *testing.T) {
	h := newBreathHistory(60000)
	h.push(breathCycle{ts: 0, durMs: 1000, amplitude: 1})
	h.push(breathCycle{ts: 1000, durMs: 1000, amplitude: 1})
	require.Equal(t, float32(0), breathingRate(&h))

	h.push(breathCycle{ts: 2000, durMs: 1000, amplitude: 1})
	require.Equal(t, float32(60), breathingRate(&h))
}

func TestBreathingRegularityRequiresFiveCycles(t *testing.T) {
	h := newBreathHistory(60000)
	for i := 0; i < 4; i++ {
		h.push(breathCycle{ts: uint64(i) * 1000, durMs: 1000, amplitude: 1})
	}
	require.Equal(t, float32(0), breathingRegularity(&h))

	h.push(breathCycle{ts: 4000, durMs: 1000, amplitude: 1})
	require.Equal(t, float32(1), breathingRegularity(&h))
}

func TestMovementIntensityRequiresMoreThanTenSamples(t *testing.T) {
	w := newScalarWindow(5000, 16)
	for i := 0; i < 10; i++ {
		w.push(float32(i), uint64(i)*10)
	}
	require.Equal(t, float32(0), movementIntensity(&w))
}

func TestSignalNoiseRatioFloorsOnZeroVariance(t *testing.T) {
	h := newBreathHistory(60000)
	for i := 0; i < 5; i++ {
		h.push(breathCycle{ts: uint64(i) * 1000, durMs: 1000, amplitude: 2})
	}
	require.Equal(t, float32(0), signalNoiseRatio(&h))
}

func TestZeroMetricsHasUnknownEnums(t *testing.T) {
	m := zeroMetrics()
	require.Equal(t, StageUnknown, m.CurrentStage)
	require.Equal(t, QualityUnknown, m.SignalQuality)
}
