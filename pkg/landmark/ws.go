package landmark

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-gaze/internal/log"
	"github.com/teslashibe/go-gaze/pkg/gaze"
	"github.com/teslashibe/go-gaze/pkg/protocol"
)

// DefaultDetectTimeout bounds one frame round trip.
const DefaultDetectTimeout = 2 * time.Second

// WSDetector sends frames to a face-mesh service over a WebSocket and reads
// back the landmarks. One frame is in flight at a time. A broken connection
// is redialed on the next Detect.
type WSDetector struct {
	url     string
	timeout time.Duration
	dialer  websocket.Dialer
	logger  *slog.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	frameID uint64
	closed  bool
}

// DialWS connects to the landmark service at url.
func DialWS(ctx context.Context, url string, timeout time.Duration) (*WSDetector, error) {
	if timeout <= 0 {
		timeout = DefaultDetectTimeout
	}
	d := &WSDetector{
		url:     url,
		timeout: timeout,
		dialer: websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		logger: log.With("component", "landmarker", "url", url),
	}
	if err := d.connect(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *WSDetector) connect(ctx context.Context) error {
	conn, _, err := d.dialer.DialContext(ctx, d.url, nil)
	if err != nil {
		return fmt.Errorf("landmark service connect failed: %w", err)
	}
	d.conn = conn
	d.logger.Info("connected")
	return nil
}

// Detect sends jpeg and waits for the matching landmarks reply.
func (d *WSDetector) Detect(ctx context.Context, jpeg []byte) (*gaze.Landmarks, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrClosed
	}
	if d.conn == nil {
		if err := d.connect(ctx); err != nil {
			return nil, err
		}
	}

	d.frameID++
	id := d.frameID
	msg, err := protocol.NewFrameMessage(id, jpeg)
	if err != nil {
		return nil, err
	}
	raw, err := msg.Bytes()
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(d.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}

	d.conn.SetWriteDeadline(deadline)
	if err := d.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		d.drop()
		return nil, fmt.Errorf("send frame: %w", err)
	}

	d.conn.SetReadDeadline(deadline)
	for {
		_, data, err := d.conn.ReadMessage()
		if err != nil {
			d.drop()
			return nil, fmt.Errorf("read landmarks: %w", err)
		}
		reply, err := protocol.ParseMessage(data)
		if err != nil {
			d.logger.Debug("skipping malformed message", "error", err)
			continue
		}

		switch reply.Type {
		case protocol.TypeLandmarks:
			var lm protocol.LandmarksData
			if err := reply.ParseData(&lm); err != nil {
				return nil, fmt.Errorf("decode landmarks: %w", err)
			}
			if lm.FrameID != id {
				continue // late reply to a timed-out frame
			}
			return lm.FirstFace(), nil

		case protocol.TypeError:
			var e protocol.ErrorData
			if err := reply.ParseData(&e); err != nil {
				return nil, fmt.Errorf("decode error: %w", err)
			}
			if e.FrameID != id {
				continue
			}
			return nil, fmt.Errorf("landmark service: %s", e.Message)
		}
	}
}

// drop discards a broken connection. Callers hold mu.
func (d *WSDetector) drop() {
	if d.conn != nil {
		d.conn.Close()
		d.conn = nil
		d.logger.Warn("connection dropped")
	}
}

// Close closes the connection. Detect returns ErrClosed afterwards.
func (d *WSDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	if d.conn == nil {
		return nil
	}
	d.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	err := d.conn.Close()
	d.conn = nil
	return err
}
