package engine

import "math"

const (
	peakThresholdMultiplier = 0.6
	peakSigmaFloor          = 1e-6
	peakHysteresisEps       = 1e-6
	breathMinDurMs          = 500
	breathMaxDurMs          = 6000
)

// peakDetector runs on the bandpass output in parallel with the
// phase-memory operator, maintaining an adaptive threshold with
// hysteresis over the 256-sample bandpass ring, per spec §4.5.
type peakDetector struct {
	ring          *bandpassRing
	inPeak        bool
	threshold     float32
	lastPeakTs    uint64
	lastPeakValue float32
	lastBreathTs  uint64
}

func newPeakDetector(ring *bandpassRing) peakDetector {
	return peakDetector{ring: ring, threshold: 0.1}
}

func (d *peakDetector) reset() {
	d.inPeak = false
	d.threshold = 0.1
	d.lastPeakTs = 0
	d.lastPeakValue = 0
	d.lastBreathTs = 0
}

// process feeds one bandpass sample f[n] at timestamp ts, updates the ring
// and adaptive threshold, runs the quiescent/in_peak state machine, and
// appends a breath cycle on valid peak-to-peak durations.
func (d *peakDetector) process(f float32, ts uint64, history *breathHistory) {
	d.ring.push(f)

	variance := d.ring.variance()
	sigma := float32(math.Sqrt(maxFloat64(0, variance)))
	if sigma < peakSigmaFloor {
		sigma = peakSigmaFloor
	}
	mean := float32(d.ring.mean())
	d.threshold = mean + peakThresholdMultiplier*sigma

	switch {
	case !d.inPeak && f > d.threshold:
		d.inPeak = true
		if d.lastPeakTs != 0 && ts >= d.lastPeakTs {
			duration := ts - d.lastPeakTs
			if duration > breathMinDurMs && duration < breathMaxDurMs {
				history.push(breathCycle{
					ts:        ts,
					durMs:     float32(duration),
					amplitude: f / sigma,
				})
				d.lastBreathTs = ts
			}
		}
		d.lastPeakTs = ts
		d.lastPeakValue = f
	case d.inPeak && f < 0.8*d.threshold-peakHysteresisEps:
		d.inPeak = false
	}
}
