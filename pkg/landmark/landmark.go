// Package landmark supplies face-mesh landmarks to the gaze engine.
//
// A Source yields one *gaze.Landmarks per frame, nil when no face is
// visible. Sources are either a camera paired with a Detector, or a
// recorded JSONL file replayed offline.
package landmark

import (
	"context"
	"errors"

	"github.com/teslashibe/go-gaze/pkg/gaze"
)

// ErrClosed is returned by a Source or Detector used after Close.
var ErrClosed = errors.New("landmark source closed")

// Detector maps one JPEG frame to a face mesh. It returns nil landmarks,
// not an error, when no face is found.
type Detector interface {
	Detect(ctx context.Context, jpeg []byte) (*gaze.Landmarks, error)
}

// Source yields landmarks frame by frame. Next returns io.EOF when a
// finite source is exhausted.
type Source interface {
	Next(ctx context.Context) (*gaze.Landmarks, error)
	Close() error
}

// FrameReader yields JPEG frames. Satisfied by *camera.Capture.
type FrameReader interface {
	ReadJPEG() ([]byte, error)
	Close() error
}
