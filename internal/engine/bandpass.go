package engine

// bandpassFilter is a direct-form 2nd-order IIR Butterworth bandpass with
// fixed coefficients tuned for a 0.1-0.5 Hz passband at ~50 Hz, per spec
// §4.3. The coefficients are pre-baked rather than computed at runtime so
// that output is bit-reproducible across platforms.
type bandpassFilter struct {
	x1, x2, y1, y2 float32
}

const (
	bpB0 float32 = 0.0201
	bpB1 float32 = 0.0
	bpB2 float32 = -0.0201
	bpA1 float32 = -1.5610
	bpA2 float32 = 0.6414
)

func (f *bandpassFilter) reset() {
	f.x1, f.x2, f.y1, f.y2 = 0, 0, 0, 0
}

// process advances the filter one sample and returns y[n].
func (f *bandpassFilter) process(x float32) float32 {
	y := bpB0*x + bpB1*f.x1 + bpB2*f.x2 - bpA1*f.y1 - bpA2*f.y2
	f.x2 = f.x1
	f.x1 = x
	f.y2 = f.y1
	f.y1 = y
	return y
}
