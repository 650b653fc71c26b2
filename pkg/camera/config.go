// Package camera acquires raw frames from a local webcam for landmark
// detection.
package camera

// Config holds the capture parameters.
type Config struct {
	// Device is the OpenCV device index, or a file/stream path when
	// DevicePath is set.
	Device     int    `json:"device" yaml:"device"`
	DevicePath string `json:"device_path,omitempty" yaml:"device_path"`

	Width     int `json:"width" yaml:"width"`
	Height    int `json:"height" yaml:"height"`
	Framerate int `json:"framerate" yaml:"framerate"`
	Quality   int `json:"quality" yaml:"quality"` // JPEG quality 1-100

	// Mirror flips frames horizontally before detection. Face-mesh indices
	// follow the face's own anatomy, so a mirrored frame swaps the eye
	// sides and reports LEFT for RIGHT. Leave off for gaze control.
	Mirror bool `json:"mirror" yaml:"mirror"`
}

// Capture limits
const (
	MinWidth     = 160
	MaxWidth     = 3840
	MinHeight    = 120
	MaxHeight    = 2160
	MaxFramerate = 120
)

// DefaultConfig returns the standard webcam configuration: 640x480 at 30 FPS,
// unmirrored.
func DefaultConfig() Config {
	return Config{
		Device:    0,
		Width:     640,
		Height:    480,
		Framerate: 30,
		Quality:   85,
		Mirror:    false,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Device < 0 {
		errors = append(errors, "device must be >= 0")
	}
	if c.Width < MinWidth || c.Width > MaxWidth {
		errors = append(errors, "width must be between 160 and 3840")
	}
	if c.Height < MinHeight || c.Height > MaxHeight {
		errors = append(errors, "height must be between 120 and 2160")
	}
	if c.Framerate < 1 || c.Framerate > MaxFramerate {
		errors = append(errors, "framerate must be between 1 and 120")
	}
	if c.Quality < 1 || c.Quality > 100 {
		errors = append(errors, "quality must be between 1 and 100")
	}

	return errors
}
