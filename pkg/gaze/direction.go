// Package gaze infers a discrete gaze direction from per-frame face mesh
// landmarks. It learns a personal baseline during a calibration phase,
// classifies each eye against it, and smooths the result with a
// majority vote over a fixed window.
package gaze

import (
	"encoding/json"
	"fmt"
)

// Direction is a discrete gaze label.
type Direction int

const (
	Right Direction = iota + 1
	Left
	Up
	Down
	Center
	Unknown
	NoFace
)

// String returns the upper-case label name.
func (d Direction) String() string {
	switch d {
	case Right:
		return "RIGHT"
	case Left:
		return "LEFT"
	case Up:
		return "UP"
	case Down:
		return "DOWN"
	case Center:
		return "CENTER"
	case Unknown:
		return "UNKNOWN"
	case NoFace:
		return "NO_FACE"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// IsActionable reports whether the direction maps to a movement command.
func (d Direction) IsActionable() bool {
	switch d {
	case Right, Left, Up, Down, Center:
		return true
	case Unknown, NoFace:
		return false
	}
	return false
}

// ParseDirection is the inverse of String.
func ParseDirection(s string) (Direction, error) {
	for _, d := range allDirections {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

var allDirections = [...]Direction{Right, Left, Up, Down, Center, Unknown, NoFace}

// MarshalJSON encodes the direction by name.
func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a direction name.
func (d *Direction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDirection(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
