package landmark

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/teslashibe/go-gaze/pkg/gaze"
)

// CameraSource reads frames from a camera and runs them through a Detector.
type CameraSource struct {
	frames   FrameReader
	detector Detector
	closed   atomic.Bool
}

// NewCameraSource pairs a frame reader with a detector. Close releases both
// when the detector is an io.Closer.
func NewCameraSource(frames FrameReader, detector Detector) *CameraSource {
	return &CameraSource{frames: frames, detector: detector}
}

// Next reads one frame and detects landmarks on it.
func (s *CameraSource) Next(ctx context.Context) (*gaze.Landmarks, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	jpeg, err := s.frames.ReadJPEG()
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	lm, err := s.detector.Detect(ctx, jpeg)
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}
	return lm, nil
}

// Close releases the camera and the detector.
func (s *CameraSource) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	err := s.frames.Close()
	if c, ok := s.detector.(interface{ Close() error }); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
