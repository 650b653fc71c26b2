package camera

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// ErrReadFailed is returned when the device yields no frame.
var ErrReadFailed = errors.New("camera read failed")

// Capture reads frames from an OpenCV video device and encodes them as JPEG.
type Capture struct {
	cfg Config

	mu     sync.Mutex
	cap    *gocv.VideoCapture
	frame  gocv.Mat
	closed bool
}

// Open opens the configured device.
func Open(cfg Config) (*Capture, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid camera config: %v", errs)
	}

	var device interface{} = cfg.Device
	if cfg.DevicePath != "" {
		device = cfg.DevicePath
	}
	vc, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("open camera %v: %w", device, err)
	}
	vc.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))

	return &Capture{
		cfg:   cfg,
		cap:   vc,
		frame: gocv.NewMat(),
	}, nil
}

// ReadJPEG grabs the next frame, mirrors it only if configured, and returns
// it JPEG-encoded.
func (c *Capture) ReadJPEG() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, errors.New("camera closed")
	}
	if ok := c.cap.Read(&c.frame); !ok || c.frame.Empty() {
		return nil, ErrReadFailed
	}
	if c.cfg.Mirror {
		gocv.Flip(c.frame, &c.frame, 1)
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, c.frame, []int{gocv.IMWriteJpegQuality, c.cfg.Quality})
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// Config returns the capture configuration.
func (c *Capture) Config() Config {
	return c.cfg
}

// Close releases the device. Safe to call more than once.
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.frame.Close()
	return c.cap.Close()
}
