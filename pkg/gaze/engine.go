package gaze

import (
	"sync"

	"github.com/teslashibe/go-gaze/internal/log"
)

// State is the engine phase.
type State int

const (
	Calibrating State = iota
	Tracking
)

func (s State) String() string {
	switch s {
	case Calibrating:
		return "CALIBRATING"
	case Tracking:
		return "TRACKING"
	}
	return "INVALID"
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type event int

const (
	eventCalibrated event = iota
	eventRecalibrate
)

// transition is the only place the engine state changes.
func transition(s State, ev event) State {
	switch ev {
	case eventCalibrated:
		return Tracking
	case eventRecalibrate:
		return Calibrating
	}
	return s
}

// Result describes what an Update did with its frame.
type Result int

const (
	ResultNoFace      Result = iota // NoFace pushed, calibration untouched
	ResultCalibrating               // frame added to the calibration cycle
	ResultCalibrated                // frame completed the cycle, now tracking
	ResultTracked                   // frame classified, labels pushed
)

// Outcome is returned by Update.
type Outcome struct {
	Result Result
	Labels []Direction // labels pushed into the window, in order
}

// Snapshot is a consistent view of the engine.
type Snapshot struct {
	State             State     `json:"state"`
	Direction         Direction `json:"direction"`
	CalibrationCount  int       `json:"calibration_count"`
	CalibrationFrames int       `json:"calibration_frames"`
	Calibrations      int       `json:"calibrations"`
	Baseline          *Baseline `json:"baseline,omitempty"`
	BufferLen         int       `json:"buffer_len"`
	BufferCap         int       `json:"buffer_cap"`
}

// Engine sequences feature extraction, calibration, classification and
// smoothing for a stream of frames. All methods serialize on one lock, so
// frames may be fed from one goroutine while another reads the direction.
type Engine struct {
	mu sync.Mutex

	cfg        Config
	state      State
	calibrator *Calibrator
	classifier Classifier
	combiner   Combiner
	smoother   *Smoother

	baseline     Baseline
	calibrations int // completed cycles; baseline is valid when > 0
}

// New creates an engine in the Calibrating state.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	combiner, err := NewCombiner(cfg.Combine)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:        cfg,
		state:      Calibrating,
		calibrator: NewCalibrator(cfg.NumCalibrationFrames),
		classifier: NewClassifier(cfg),
		combiner:   combiner,
		smoother:   NewSmoother(cfg.BufferSize),
	}, nil
}

// SetCombiner replaces the strategy used for tracked frames.
func (e *Engine) SetCombiner(c Combiner) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.combiner = c
}

// Update processes one frame. A nil lm means no face was detected.
func (e *Engine) Update(lm *Landmarks) Outcome {
	features, ok := Extract(lm, e.cfg.MinReferenceDistance)

	e.mu.Lock()
	defer e.mu.Unlock()

	if !ok {
		e.smoother.Push(NoFace)
		return Outcome{Result: ResultNoFace, Labels: []Direction{NoFace}}
	}

	switch e.state {
	case Calibrating:
		baseline, done := e.calibrator.Observe(features)
		if !done {
			return Outcome{Result: ResultCalibrating}
		}
		e.baseline = baseline
		e.calibrations++
		e.state = transition(e.state, eventCalibrated)
		log.Info("calibration complete",
			"component", "gaze",
			"frames", e.cfg.NumCalibrationFrames,
			"cycle", e.calibrations)
		return Outcome{Result: ResultCalibrated}

	case Tracking:
		right := e.classifier.Classify(RightEye, features, e.baseline)
		left := e.classifier.Classify(LeftEye, features, e.baseline)
		labels := e.combiner.Combine(right, left)
		for _, d := range labels {
			e.smoother.Push(d)
		}
		return Outcome{Result: ResultTracked, Labels: labels}
	}
	return Outcome{}
}

// Direction returns the smoothed gaze direction. It is Unknown while
// calibrating.
func (e *Engine) Direction() Direction {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.direction()
}

func (e *Engine) direction() Direction {
	if e.state == Calibrating {
		return Unknown
	}
	return e.smoother.Current()
}

// Recalibrate discards any partial cycle and returns to Calibrating. The
// previous baseline is kept until the new cycle completes.
func (e *Engine) Recalibrate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calibrator.Reset()
	if e.state != Calibrating {
		log.Info("recalibration requested", "component", "gaze")
	}
	e.state = transition(e.state, eventRecalibrate)
}

// IsCalibrating reports whether the engine is learning a baseline.
func (e *Engine) IsCalibrating() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == Calibrating
}

// Baseline returns the most recent baseline and whether one exists.
func (e *Engine) Baseline() (Baseline, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.baseline, e.calibrations > 0
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Snapshot returns the engine state under one lock.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		State:             e.state,
		Direction:         e.direction(),
		CalibrationCount:  e.calibrator.Count(),
		CalibrationFrames: e.calibrator.Frames(),
		Calibrations:      e.calibrations,
		BufferLen:         e.smoother.Len(),
		BufferCap:         e.smoother.Cap(),
	}
	if e.calibrations > 0 {
		b := e.baseline
		s.Baseline = &b
	}
	return s
}
