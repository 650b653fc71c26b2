package main

import (
	"github.com/schollz/progressbar/v3"

	"github.com/teslashibe/go-gaze/pkg/tracking"
)

// calibrationBar renders calibration progress. A new cycle (after a
// recalibration) restarts the bar.
func calibrationBar(total int) tracking.ProgressFunc {
	bar := newCalibrationBar(total)
	last := 0
	return func(count, total int) {
		if count < last {
			bar = newCalibrationBar(total)
		}
		last = count
		bar.Set(count)
		if count == total {
			bar.Finish()
		}
	}
}

func newCalibrationBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Calibrating, look straight ahead"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("frames"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)
}
