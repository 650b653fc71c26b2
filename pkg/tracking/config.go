package tracking

import "time"

// Config holds the frame loop parameters
type Config struct {
	// FrameInterval paces the loop. Zero pulls frames as fast as the
	// source delivers them.
	FrameInterval time.Duration

	// MaxConsecutiveErrors stops the loop after this many source errors in
	// a row. Zero retries forever.
	MaxConsecutiveErrors int

	// ErrorBackoff is the pause after a source error.
	ErrorBackoff time.Duration

	// PublishTimeout bounds one telemetry publish.
	PublishTimeout time.Duration
}

// DefaultConfig returns the live camera configuration
func DefaultConfig() Config {
	return Config{
		FrameInterval:        10 * time.Millisecond, // ~100 FPS ceiling, camera-bound in practice
		MaxConsecutiveErrors: 50,
		ErrorBackoff:         100 * time.Millisecond,
		PublishTimeout:       500 * time.Millisecond,
	}
}

// ReplayConfig returns a configuration for offline recordings: no pacing,
// and the first bad line ends the run.
func ReplayConfig() Config {
	return Config{
		MaxConsecutiveErrors: 1,
		PublishTimeout:       500 * time.Millisecond,
	}
}
