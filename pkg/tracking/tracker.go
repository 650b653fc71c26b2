// Package tracking runs the frame loop: landmarks in, smoothed gaze
// direction out, with robot commands and events as side effects.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-gaze/internal/log"
	"github.com/teslashibe/go-gaze/pkg/gaze"
	"github.com/teslashibe/go-gaze/pkg/landmark"
	"github.com/teslashibe/go-gaze/pkg/robot"
	"github.com/teslashibe/go-gaze/pkg/telemetry"
)

// CommandDispatcher turns a direction into a robot command.
// Satisfied by *robot.Dispatcher.
type CommandDispatcher interface {
	Dispatch(ctx context.Context, dir gaze.Direction) (robot.Command, error)
}

// StateUpdater interface for updating dashboard state
type StateUpdater interface {
	UpdateGaze(s gaze.Snapshot)
	AddLog(logType, message string)
}

// ProgressFunc is called for every frame spent calibrating.
type ProgressFunc func(count, total int)

// Stats counts loop activity.
type Stats struct {
	Frames       uint64 `json:"frames"`
	NoFaceFrames uint64 `json:"no_face_frames"`
	Errors       uint64 `json:"errors"`
	Commands     uint64 `json:"commands"`
}

// Tracker feeds a landmark source into the gaze engine.
type Tracker struct {
	config     Config
	engine     *gaze.Engine
	source     landmark.Source
	dispatcher CommandDispatcher
	publisher  telemetry.Publisher
	state      StateUpdater
	progress   ProgressFunc
	logger     *slog.Logger

	// Loop-local, only touched by Run
	last     gaze.Snapshot
	haveLast bool

	frames   atomic.Uint64
	noFace   atomic.Uint64
	failures atomic.Uint64
	commands atomic.Uint64

	mu        sync.RWMutex
	isRunning bool
}

// New creates a tracker. Dispatcher, publisher and state updater are
// optional.
func New(config Config, engine *gaze.Engine, source landmark.Source) *Tracker {
	return &Tracker{
		config:    config,
		engine:    engine,
		source:    source,
		publisher: telemetry.NopPublisher{},
		logger:    log.With("component", "tracker"),
	}
}

// SetDispatcher enables robot actuation.
func (t *Tracker) SetDispatcher(d CommandDispatcher) {
	t.dispatcher = d
}

// SetPublisher sets the event publisher.
func (t *Tracker) SetPublisher(p telemetry.Publisher) {
	if p == nil {
		p = telemetry.NopPublisher{}
	}
	t.publisher = p
}

// SetStateUpdater sets the dashboard state updater
func (t *Tracker) SetStateUpdater(state StateUpdater) {
	t.state = state
}

// OnCalibrationProgress registers a calibration progress callback.
func (t *Tracker) OnCalibrationProgress(fn ProgressFunc) {
	t.progress = fn
}

// IsRunning reports whether Run is active.
func (t *Tracker) IsRunning() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.isRunning
}

// Stats returns loop counters.
func (t *Tracker) Stats() Stats {
	return Stats{
		Frames:       t.frames.Load(),
		NoFaceFrames: t.noFace.Load(),
		Errors:       t.failures.Load(),
		Commands:     t.commands.Load(),
	}
}

// Run pulls frames until ctx is done or the source is exhausted. It
// returns nil on either, and an error when the source keeps failing.
func (t *Tracker) Run(ctx context.Context) error {
	t.setRunning(true)
	defer t.setRunning(false)

	var tick <-chan time.Time
	if t.config.FrameInterval > 0 {
		ticker := time.NewTicker(t.config.FrameInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	cfg := t.engine.Config()
	t.logger.Info("tracker started",
		"calibration_frames", cfg.NumCalibrationFrames,
		"buffer", cfg.BufferSize,
		"combine", cfg.Combine,
		"interval", t.config.FrameInterval)

	consecutive := 0
	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return nil
		}

		lm, err := t.source.Next(ctx)
		switch {
		case err == nil:
			consecutive = 0
			t.Step(ctx, lm)

		case errors.Is(err, io.EOF):
			t.logger.Info("source exhausted", "frames", t.frames.Load())
			return nil

		case ctx.Err() != nil:
			return nil

		default:
			consecutive++
			t.failures.Add(1)
			t.logger.Warn("frame failed", "error", err, "consecutive", consecutive)
			if t.config.MaxConsecutiveErrors > 0 && consecutive >= t.config.MaxConsecutiveErrors {
				return fmt.Errorf("landmark source failing: %w", err)
			}
			if t.config.ErrorBackoff > 0 {
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(t.config.ErrorBackoff):
				}
			}
		}
	}
}

func (t *Tracker) setRunning(on bool) {
	t.mu.Lock()
	t.isRunning = on
	t.mu.Unlock()
}

// Step feeds one frame through the engine and reacts to what changed.
// It returns the smoothed direction after the frame.
func (t *Tracker) Step(ctx context.Context, lm *gaze.Landmarks) gaze.Direction {
	t.frames.Add(1)
	out := t.engine.Update(lm)
	snap := t.engine.Snapshot()

	switch out.Result {
	case gaze.ResultNoFace:
		t.noFace.Add(1)
	case gaze.ResultCalibrating:
		t.reportProgress(snap.CalibrationCount, snap.CalibrationFrames)
	case gaze.ResultCalibrated:
		t.reportProgress(snap.CalibrationFrames, snap.CalibrationFrames)
		if snap.Baseline != nil {
			t.publish(ctx, telemetry.Calibrated(*snap.Baseline, snap.Calibrations))
		}
		t.addLog("calibration", fmt.Sprintf("Calibrated (cycle %d)", snap.Calibrations))
	}

	prev := t.last
	changed := !t.haveLast ||
		snap.State != prev.State ||
		snap.Direction != prev.Direction ||
		snap.CalibrationCount != prev.CalibrationCount

	if t.haveLast && snap.State == gaze.Calibrating && prev.State == gaze.Tracking {
		t.publish(ctx, telemetry.NewEvent(telemetry.EventRecalibrating))
		t.addLog("calibration", "Recalibrating")
	}
	if t.haveLast && snap.Direction != prev.Direction {
		t.logger.Info("direction changed", "from", prev.Direction, "to", snap.Direction)
		t.publish(ctx, telemetry.DirectionChanged(prev.Direction, snap.Direction))
	}

	t.last = snap
	t.haveLast = true
	if changed && t.state != nil {
		t.state.UpdateGaze(snap)
	}

	if snap.State == gaze.Tracking && t.dispatcher != nil {
		cmd, err := t.dispatcher.Dispatch(ctx, snap.Direction)
		if err == nil {
			t.commands.Add(1)
			t.logger.Debug("command dispatched", "direction", snap.Direction, "cmd", string(cmd))
			t.publish(ctx, telemetry.CommandSent(snap.Direction, string(cmd)))
		}
	}

	return snap.Direction
}

func (t *Tracker) reportProgress(count, total int) {
	if t.progress != nil {
		t.progress(count, total)
	}
}

func (t *Tracker) addLog(logType, message string) {
	if t.state != nil {
		t.state.AddLog(logType, message)
	}
}

func (t *Tracker) publish(ctx context.Context, ev telemetry.Event) {
	pctx := ctx
	if t.config.PublishTimeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, t.config.PublishTimeout)
		defer cancel()
	}
	if err := t.publisher.Publish(pctx, ev); err != nil {
		t.logger.Warn("publish failed", "type", ev.Type, "error", err)
	}
}
