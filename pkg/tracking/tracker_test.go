package tracking

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/teslashibe/go-gaze/pkg/gaze"
	"github.com/teslashibe/go-gaze/pkg/robot"
	"github.com/teslashibe/go-gaze/pkg/telemetry"
)

type eyeGeom struct {
	inner, outer, top, bottom float64
}

var (
	neutral   = eyeGeom{inner: 0.10, outer: 0.10, top: 0.05, bottom: 0.05}
	rightLeft = eyeGeom{inner: 0.08, outer: 0.12, top: 0.05, bottom: 0.05}
	leftLeft  = eyeGeom{inner: 0.12, outer: 0.08, top: 0.05, bottom: 0.05}
)

// mesh builds a face with a unit span and each eye laid out around its iris.
func mesh(right, left eyeGeom) *gaze.Landmarks {
	pts := make([]gaze.Point3D, gaze.MinLandmarks)
	pts[gaze.MeshTop] = gaze.Point3D{X: 0.5, Y: 0}
	pts[gaze.MeshBottom] = gaze.Point3D{X: 0.5, Y: 1}

	place := func(top, bottom, inner, outer, iris int, cx float64, g eyeGeom) {
		c := gaze.Point3D{X: cx, Y: 0.4}
		pts[iris] = c
		pts[inner] = gaze.Point3D{X: c.X - g.inner, Y: c.Y}
		pts[outer] = gaze.Point3D{X: c.X + g.outer, Y: c.Y}
		pts[top] = gaze.Point3D{X: c.X, Y: c.Y - g.top}
		pts[bottom] = gaze.Point3D{X: c.X, Y: c.Y + g.bottom}
	}
	place(gaze.RightTop, gaze.RightBottom, gaze.RightInner, gaze.RightOuter, gaze.RightIris, 0.3, right)
	place(gaze.LeftTop, gaze.LeftBottom, gaze.LeftInner, gaze.LeftOuter, gaze.LeftIris, 0.7, left)
	return &gaze.Landmarks{Points: pts}
}

func frames(lm *gaze.Landmarks, n int) []*gaze.Landmarks {
	out := make([]*gaze.Landmarks, n)
	for i := range out {
		out[i] = lm
	}
	return out
}

// sliceSource yields fixed frames then io.EOF.
type sliceSource struct {
	frames []*gaze.Landmarks
}

func (s *sliceSource) Next(ctx context.Context) (*gaze.Landmarks, error) {
	if len(s.frames) == 0 {
		return nil, io.EOF
	}
	lm := s.frames[0]
	s.frames = s.frames[1:]
	return lm, nil
}

func (s *sliceSource) Close() error { return nil }

// failingSource always errors.
type failingSource struct{}

func (failingSource) Next(ctx context.Context) (*gaze.Landmarks, error) {
	return nil, errors.New("camera unplugged")
}

func (failingSource) Close() error { return nil }

// endlessSource yields no-face frames forever.
type endlessSource struct{}

func (endlessSource) Next(ctx context.Context) (*gaze.Landmarks, error) { return nil, nil }
func (endlessSource) Close() error                                      { return nil }

type mockDispatcher struct {
	mu   sync.Mutex
	dirs []gaze.Direction
}

func (m *mockDispatcher) Dispatch(ctx context.Context, dir gaze.Direction) (robot.Command, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs = append(m.dirs, dir)
	cmd, ok := robot.CommandFor(dir)
	if !ok {
		return "", robot.ErrNoCommand
	}
	return cmd, nil
}

type mockPublisher struct {
	mu     sync.Mutex
	events []telemetry.Event
}

func (m *mockPublisher) Publish(ctx context.Context, ev telemetry.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) ofType(t telemetry.EventType) []telemetry.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []telemetry.Event
	for _, ev := range m.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

type mockState struct {
	updates []gaze.Snapshot
	logs    []string
}

func (m *mockState) UpdateGaze(s gaze.Snapshot)     { m.updates = append(m.updates, s) }
func (m *mockState) AddLog(logType, message string) { m.logs = append(m.logs, message) }

func newEngine(t *testing.T) *gaze.Engine {
	t.Helper()
	e, err := gaze.New(gaze.DefaultConfig())
	if err != nil {
		t.Fatalf("gaze.New: %v", err)
	}
	return e
}

func TestTracker_RunToEOF(t *testing.T) {
	engine := newEngine(t)
	src := &sliceSource{frames: append(
		frames(mesh(neutral, neutral), 20),
		frames(mesh(rightLeft, leftLeft), 10)...,
	)}

	tr := New(ReplayConfig(), engine, src)
	disp := &mockDispatcher{}
	pub := &mockPublisher{}
	tr.SetDispatcher(disp)
	tr.SetPublisher(pub)

	var progress []int
	tr.OnCalibrationProgress(func(count, total int) {
		if total != 20 {
			t.Errorf("total = %d, want 20", total)
		}
		progress = append(progress, count)
	})

	if err := tr.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := engine.Direction(); got != gaze.Left {
		t.Errorf("direction = %v, want LEFT", got)
	}
	if len(progress) != 20 || progress[0] != 1 || progress[19] != 20 {
		t.Errorf("progress = %v", progress)
	}
	if s := tr.Stats(); s.Frames != 30 || s.Errors != 0 {
		t.Errorf("stats = %+v", s)
	}

	// Dispatch is only attempted while tracking: from the calibrating
	// frame onwards.
	if n := len(disp.dirs); n != 11 {
		t.Errorf("dispatch attempts = %d, want 11", n)
	}
	if last := disp.dirs[len(disp.dirs)-1]; last != gaze.Left {
		t.Errorf("last dispatched = %v, want LEFT", last)
	}
	if tr.Stats().Commands != 1 {
		t.Errorf("commands = %d, want 1 (UNKNOWN frames send nothing)", tr.Stats().Commands)
	}

	if cal := pub.ofType(telemetry.EventCalibrated); len(cal) != 1 || cal[0].Cycle != 1 {
		t.Errorf("calibrated events = %+v", cal)
	}
	changes := pub.ofType(telemetry.EventDirection)
	if len(changes) != 1 || changes[0].Previous != gaze.Unknown || changes[0].Direction != gaze.Left {
		t.Errorf("direction events = %+v", changes)
	}
}

func TestTracker_StopsOnRepeatedErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FrameInterval = 0
	cfg.ErrorBackoff = 0
	cfg.MaxConsecutiveErrors = 3

	tr := New(cfg, newEngine(t), failingSource{})
	if err := tr.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if got := tr.Stats().Errors; got != 3 {
		t.Errorf("errors = %d, want 3", got)
	}
}

func TestTracker_StopsOnCancel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FrameInterval = time.Millisecond

	engine := newEngine(t)
	tr := New(cfg, engine, endlessSource{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- tr.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	if !tr.IsRunning() {
		t.Error("expected running")
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
	if tr.IsRunning() {
		t.Error("still running after stop")
	}
	if tr.Stats().NoFaceFrames == 0 {
		t.Error("no frames processed")
	}
}

func TestTracker_StateUpdatesOnChangeOnly(t *testing.T) {
	engine := newEngine(t)
	tr := New(ReplayConfig(), engine, nil)
	state := &mockState{}
	tr.SetStateUpdater(state)
	ctx := context.Background()

	tr.Step(ctx, nil)
	tr.Step(ctx, nil)
	if n := len(state.updates); n != 1 {
		t.Fatalf("updates = %d, want 1 for identical frames", n)
	}

	tr.Step(ctx, mesh(neutral, neutral))
	if n := len(state.updates); n != 2 {
		t.Errorf("updates = %d, want 2 after calibration progress", n)
	}
	if got := state.updates[1].CalibrationCount; got != 1 {
		t.Errorf("CalibrationCount = %d, want 1", got)
	}
}

func TestTracker_RecalibrationEvent(t *testing.T) {
	engine := newEngine(t)
	tr := New(ReplayConfig(), engine, nil)
	pub := &mockPublisher{}
	state := &mockState{}
	tr.SetPublisher(pub)
	tr.SetStateUpdater(state)
	ctx := context.Background()

	for _, lm := range frames(mesh(neutral, neutral), 21) {
		tr.Step(ctx, lm)
	}
	engine.Recalibrate()
	tr.Step(ctx, mesh(neutral, neutral))

	if n := len(pub.ofType(telemetry.EventRecalibrating)); n != 1 {
		t.Errorf("recalibrating events = %d, want 1", n)
	}
	if len(state.logs) != 2 || state.logs[1] != "Recalibrating" {
		t.Errorf("logs = %v", state.logs)
	}
}
