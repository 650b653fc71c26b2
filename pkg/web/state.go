package web

import (
	"time"

	"github.com/teslashibe/go-gaze/pkg/gaze"
)

// Status levels, one per dashboard banner color.
const (
	LevelCalibrating = "calibrating"
	LevelNoFace      = "no_face"
	LevelUnknown     = "unknown"
	LevelTracking    = "tracking"
)

// GazeState is the dashboard view of the engine.
type GazeState struct {
	State             gaze.State     `json:"state"`
	Direction         gaze.Direction `json:"direction"`
	Status            string         `json:"status"`
	Level             string         `json:"level"`
	ControlEnabled    bool           `json:"control_enabled"`
	Control           string         `json:"control"`
	CalibrationCount  int            `json:"calibration_count"`
	CalibrationFrames int            `json:"calibration_frames"`
	Calibrations      int            `json:"calibrations"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// NewGazeState derives the banner text from a snapshot.
func NewGazeState(snap gaze.Snapshot, controlEnabled bool) GazeState {
	st := GazeState{
		State:             snap.State,
		Direction:         snap.Direction,
		ControlEnabled:    controlEnabled,
		Control:           "[Disabled]",
		CalibrationCount:  snap.CalibrationCount,
		CalibrationFrames: snap.CalibrationFrames,
		Calibrations:      snap.Calibrations,
		UpdatedAt:         time.Now(),
	}
	if controlEnabled {
		st.Control = "[Enabled]"
	}

	switch {
	case snap.State == gaze.Calibrating:
		st.Status, st.Level = "Calibrating", LevelCalibrating
	case snap.Direction == gaze.NoFace:
		st.Status, st.Level = "No Face", LevelNoFace
	case snap.Direction == gaze.Unknown:
		st.Status, st.Level = "Direction: Unknown", LevelUnknown
	default:
		st.Status, st.Level = "Direction: "+snap.Direction.String(), LevelTracking
	}
	return st
}
