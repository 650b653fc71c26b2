package gaze

import "sort"

// Baseline is the per-feature median learned by one calibration cycle.
type Baseline = FeatureVector

// Calibrator accumulates feature samples over a fixed number of valid frames
// and derives a Baseline from their medians.
type Calibrator struct {
	frames  int
	samples [NumFeatures][]float64
	count   int
}

// NewCalibrator creates a calibrator completing after frames observations.
func NewCalibrator(frames int) *Calibrator {
	c := &Calibrator{frames: frames}
	for i := range c.samples {
		c.samples[i] = make([]float64, 0, frames)
	}
	return c
}

// Observe records one frame. When the cycle is complete it returns the new
// baseline and true, and the accumulator is emptied for the next cycle.
func (c *Calibrator) Observe(v FeatureVector) (Baseline, bool) {
	for f := range v {
		c.samples[f] = append(c.samples[f], v[f])
	}
	c.count++

	if c.count < c.frames {
		return Baseline{}, false
	}

	var b Baseline
	for f := range c.samples {
		b[f] = median(c.samples[f])
	}
	c.Reset()
	return b, true
}

// Reset discards the partial cycle.
func (c *Calibrator) Reset() {
	for i := range c.samples {
		c.samples[i] = c.samples[i][:0]
	}
	c.count = 0
}

// Count is the number of frames observed in the current cycle.
func (c *Calibrator) Count() int {
	return c.count
}

// Frames is the cycle length.
func (c *Calibrator) Frames() int {
	return c.frames
}

func median(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
