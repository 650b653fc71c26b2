// Package robot drives the wheeled robot that follows the user's gaze.
//
// The robot firmware exposes a single HTTP endpoint taking a command code,
// a duration in milliseconds and a motor velocity. Consumers depend on the
// small Actuator interface; HTTPController and DryRunController implement it.
package robot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teslashibe/go-gaze/pkg/gaze"
)

// Command is a firmware command code.
type Command string

const (
	MoveForward  Command = "MF"
	MoveBackward Command = "MB"
	TurnLeft     Command = "TL"
	TurnRight    Command = "TR"
	Park         Command = "P"
)

// Command defaults. The firmware falls back to 1000ms when dur is missing;
// we always send it.
const (
	DefaultDuration = 250 * time.Millisecond
	DefaultVelocity = 150
	MaxVelocity     = 255
)

var (
	// ErrUnknownCommand is returned when parsing an unrecognized command code.
	ErrUnknownCommand = errors.New("unknown robot command")

	// ErrDisabled is returned by Dispatch while gaze control is toggled off.
	ErrDisabled = errors.New("gaze control disabled")

	// ErrThrottled is returned by Dispatch when the previous command is
	// still running.
	ErrThrottled = errors.New("command throttled")

	// ErrNoCommand is returned by Dispatch for directions that map to no
	// command (UNKNOWN, NO_FACE).
	ErrNoCommand = errors.New("direction has no command")
)

// Actuator sends one command to the robot.
type Actuator interface {
	Send(ctx context.Context, cmd Command, dur time.Duration, velocity int) error
}

// Valid reports whether c is a known command code.
func (c Command) Valid() bool {
	switch c {
	case MoveForward, MoveBackward, TurnLeft, TurnRight, Park:
		return true
	}
	return false
}

// Description returns a human-readable name for the command.
func (c Command) Description() string {
	switch c {
	case MoveForward:
		return "move forward"
	case MoveBackward:
		return "move backward"
	case TurnLeft:
		return "turn left"
	case TurnRight:
		return "turn right"
	case Park:
		return "park"
	}
	return "unknown"
}

// ParseCommand accepts a command code ("MF") or its lower-case alias
// ("forward", "backward", "left", "right", "park").
func ParseCommand(s string) (Command, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mf", "forward":
		return MoveForward, nil
	case "mb", "backward":
		return MoveBackward, nil
	case "tl", "left":
		return TurnLeft, nil
	case "tr", "right":
		return TurnRight, nil
	case "p", "park":
		return Park, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}

// CommandFor maps a gaze direction to the robot command it triggers.
// UNKNOWN and NO_FACE have no command.
func CommandFor(d gaze.Direction) (Command, bool) {
	switch d {
	case gaze.Up:
		return MoveForward, true
	case gaze.Down:
		return MoveBackward, true
	case gaze.Right:
		return TurnRight, true
	case gaze.Left:
		return TurnLeft, true
	case gaze.Center:
		return Park, true
	case gaze.Unknown, gaze.NoFace:
		return "", false
	}
	return "", false
}

// clampVelocity restricts v to the PWM range the firmware accepts.
func clampVelocity(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxVelocity {
		return MaxVelocity
	}
	return v
}

// Ensure implementations satisfy Actuator
var (
	_ Actuator = (*HTTPController)(nil)
	_ Actuator = (*DryRunController)(nil)
)
