// Package engine implements the RespiroSync streaming signal-processing
// core: a single-threaded, allocation-free-after-start, deterministic
// pipeline that turns a stream of chest-mounted IMU samples into a
// respiratory instability score, an instability decision, a respiratory
// rate estimate, and derived signal-quality/sleep-stage heuristics.
//
// The engine never performs I/O, never logs, never retries, and is not
// internally synchronized — callers must not invoke operations on the
// same *Engine concurrently. Distinct engines are fully independent.
package engine

import "math"

const (
	sensorWindowMs = 5000
	breathHistoryMs = 60000
	gyroBlendFactor = 0.1
)

// engineVersion is the stable version string returned by Version.
const engineVersion = "1.0.0"

// Version returns the engine's static version string, mirroring the
// external ABI's version() operation.
func Version() string {
	return engineVersion
}

// Engine owns all streaming state for one monitoring session. The zero
// value is not usable; construct with Open.
type Engine struct {
	gyroWindow  timeWindow
	accelWindow timeWindow
	accelMag    scalarWindow

	gravity  gravityEstimator
	bandpass bandpassFilter
	phase    phaseMemoryOperator

	ring     bandpassRing
	peaks    peakDetector
	breaths  breathHistory

	currentBPM        float32
	movementIntensity float32
	sessionStartMs    uint64
}

// Open constructs a new zeroed engine. Returns nil only in the
// (unreachable in Go) allocation-exhaustion case mandated by spec §4.7;
// kept as a non-nil-returning constructor plus the nil-safety of Close/
// FeedAccel/FeedGyro/QueryMetrics on a nil *Engine.
func Open() *Engine {
	e := &Engine{
		gyroWindow:  newTimeWindow(sensorWindowMs, 256),
		accelWindow: newTimeWindow(sensorWindowMs, 256),
		accelMag:    newScalarWindow(sensorWindowMs, 256),
		gravity:     newGravityEstimator(),
		phase:       newPhaseMemoryOperator(),
		breaths:     newBreathHistory(breathHistoryMs),
	}
	e.peaks = newPeakDetector(&e.ring)
	return e
}

// Close is a null-safe no-op; the engine owns no external resources.
func Close(e *Engine) {
	_ = e
}

// StartSession clears all windows and resets filter/phase-memory/peak-
// detector state, returning every scalar and buffer to its documented
// initial value. Safe to call repeatedly.
func (e *Engine) StartSession(tsMs uint64) {
	if e == nil {
		return
	}
	e.gyroWindow.reset()
	e.accelWindow.reset()
	e.accelMag.reset()
	e.gravity.reset()
	e.bandpass.reset()
	e.phase.reset()
	e.ring.reset()
	e.peaks.reset()
	e.breaths.reset()
	e.currentBPM = 0
	e.movementIntensity = 0
	e.sessionStartMs = tsMs
}

// FeedGyro rejects non-finite samples and otherwise appends to the gyro
// window, trimming to the last 5s.
func (e *Engine) FeedGyro(x, y, z float32, tsMs uint64) {
	if e == nil || !finite32(x) || !finite32(y) || !finite32(z) {
		return
	}
	e.gyroWindow.push(sample{x: x, y: y, z: z, ts: tsMs})
}

// FeedAccel rejects non-finite samples and otherwise drives the full
// pipeline: accel-magnitude aggregation, gravity removal, gyro blending,
// bandpass filtering, the phase-memory operator, and the peak detector —
// see spec §4.7.
func (e *Engine) FeedAccel(x, y, z float32, tsMs uint64) {
	if e == nil || !finite32(x) || !finite32(y) || !finite32(z) {
		return
	}

	s := sample{x: x, y: y, z: z, ts: tsMs}
	e.accelWindow.push(s)

	m := s.magnitude()
	e.accelMag.push(m, tsMs)

	xResp := e.gravity.update(m)

	if last, ok := e.gyroWindow.last(); ok {
		xResp += last.magnitude() * gyroBlendFactor
	}

	filtered := e.bandpass.process(xResp)

	e.phase.update(filtered)
	e.peaks.process(filtered, tsMs, &e.breaths)

	e.currentBPM = breathingRate(&e.breaths)
	e.movementIntensity = movementIntensity(&e.accelMag)
}

// QueryMetrics produces a fresh immutable metrics snapshot from current
// state without mutating any component. On a nil engine it returns the
// zero-filled snapshot mandated by spec §4.7/§7.
func (e *Engine) QueryMetrics(tsMs uint64) Metrics {
	if e == nil {
		return zeroMetrics()
	}

	regularity := breathingRegularity(&e.breaths)
	nBreath := e.breaths.len()
	snr := signalNoiseRatio(&e.breaths)

	m := Metrics{
		BreathingRateBPM:     e.currentBPM,
		BreathingRegularity:  regularity,
		MovementIntensity:    e.movementIntensity,
		BreathCyclesDetected: int32(nBreath),
		SignalNoiseRatio:     snr,
		SignalQuality:        classifySignalQuality(snr, nBreath, regularity),
		CurrentStage:         classifySleepStage(e.movementIntensity, regularity, nBreath),
		Confidence:           float32(clamp64(float64(nBreath)/20.0, 0, 1)),
		InstabilityScore:     e.phase.instabilityScore(),
	}
	if e.phase.instabilityDetected(phaseDefaultAlpha) {
		m.InstabilityDetected = 1
	}
	if e.peaks.lastBreathTs > 0 && tsMs-e.peaks.lastBreathTs > apneaThresholdMs {
		m.PossibleApnea = 1
	}
	return m
}

func finite32(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
