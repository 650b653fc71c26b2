package gaze

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidConfig is returned for configurations the engine cannot run with.
var ErrInvalidConfig = errors.New("invalid gaze config")

// Config holds the engine parameters.
type Config struct {
	// NumCalibrationFrames is the number of face-present frames that make
	// up one calibration cycle.
	NumCalibrationFrames int `json:"num_calibration_frames" yaml:"num_calibration_frames" validate:"gt=0"`

	// BufferSize is the majority vote window.
	BufferSize int `json:"buffer_size" yaml:"buffer_size" validate:"gt=0"`

	Tolerance           float64 `json:"tolerance" yaml:"tolerance" validate:"gt=0,lt=1"`
	HorizontalTolerance float64 `json:"horizontal_tolerance" yaml:"horizontal_tolerance" validate:"gt=0,lt=1"`

	// MinReferenceDistance rejects degenerate detections whose face span
	// is too short to normalize by.
	MinReferenceDistance float64 `json:"min_reference_distance" yaml:"min_reference_distance" validate:"gte=0"`

	// Combine selects how the two eye labels enter the window.
	Combine string `json:"combine" yaml:"combine" validate:"omitempty,oneof=per_eye agreement"`
}

// DefaultConfig returns the headless defaults: a short calibration of 20
// frames and a 20-label window.
func DefaultConfig() Config {
	return Config{
		NumCalibrationFrames: 20,
		BufferSize:           20,
		Tolerance:            DefaultTolerance,
		HorizontalTolerance:  DefaultHorizontalTolerance,
		MinReferenceDistance: DefaultMinReferenceDistance,
		Combine:              CombinePerEye,
	}
}

// InteractiveConfig returns the defaults used when a person is watching the
// dashboard: a longer calibration of 200 frames.
func InteractiveConfig() Config {
	cfg := DefaultConfig()
	cfg.NumCalibrationFrames = 200
	return cfg
}

var validate = validator.New()

// Validate checks the config ranges.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
