package landmark

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/teslashibe/go-gaze/pkg/gaze"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxLineSize fits a 478-point mesh with room to spare.
const maxLineSize = 1 << 20

// Frame is one line of a recording. Points is null for a frame with no face.
type Frame struct {
	Points []gaze.Point3D `json:"points"`
}

// ReplaySource reads recorded frames, one JSON object per line.
type ReplaySource struct {
	scanner *bufio.Scanner
	closer  io.Closer
	line    int

	mu     sync.Mutex
	closed bool
}

// OpenReplay opens a JSONL recording.
func OpenReplay(path string) (*ReplaySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	return NewReplaySource(f), nil
}

// NewReplaySource reads frames from r. Close closes r if it is an io.Closer.
func NewReplaySource(r io.Reader) *ReplaySource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	s := &ReplaySource{scanner: sc}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// Next returns the next recorded frame, or io.EOF. Blank lines are skipped.
func (s *ReplaySource) Next(ctx context.Context) (*gaze.Landmarks, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return nil, fmt.Errorf("read recording: %w", err)
			}
			return nil, io.EOF
		}
		s.line++
		line := s.scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var fr Frame
		if err := json.Unmarshal(line, &fr); err != nil {
			return nil, fmt.Errorf("recording line %d: %w", s.line, err)
		}
		if fr.Points == nil {
			return nil, nil
		}
		return &gaze.Landmarks{Points: fr.Points}, nil
	}
}

// Close releases the underlying reader.
func (s *ReplaySource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// Recorder wraps a Source and writes every frame it yields as JSONL.
type Recorder struct {
	Source
	w   *bufio.Writer
	out io.Closer
	mu  sync.Mutex
}

// NewRecorder tees src into w.
func NewRecorder(src Source, w io.WriteCloser) *Recorder {
	return &Recorder{Source: src, w: bufio.NewWriter(w), out: w}
}

// Next reads from the wrapped source and records the frame.
func (r *Recorder) Next(ctx context.Context) (*gaze.Landmarks, error) {
	lm, err := r.Source.Next(ctx)
	if err != nil {
		return lm, err
	}

	var fr Frame
	if lm != nil {
		fr.Points = lm.Points
	}
	line, err := json.Marshal(fr)
	if err != nil {
		return lm, fmt.Errorf("encode frame: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.w.Write(line); err != nil {
		return lm, fmt.Errorf("write recording: %w", err)
	}
	if err := r.w.WriteByte('\n'); err != nil {
		return lm, fmt.Errorf("write recording: %w", err)
	}
	return lm, nil
}

// Close flushes the recording and closes both ends.
func (r *Recorder) Close() error {
	r.mu.Lock()
	ferr := r.w.Flush()
	cerr := r.out.Close()
	r.mu.Unlock()

	serr := r.Source.Close()
	for _, err := range []error{ferr, cerr, serr} {
		if err != nil {
			return err
		}
	}
	return nil
}
