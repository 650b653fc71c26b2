// Package telemetry publishes gaze events for downstream consumers.
package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-gaze/pkg/gaze"
)

// EventType names what happened.
type EventType string

const (
	EventDirection     EventType = "direction_changed"
	EventCalibrated    EventType = "calibrated"
	EventRecalibrating EventType = "recalibrating"
	EventCommand       EventType = "command"
)

// Event is one published record.
type Event struct {
	ID        uuid.UUID          `json:"id"`
	Type      EventType          `json:"type"`
	Direction gaze.Direction     `json:"direction,omitempty"`
	Previous  gaze.Direction     `json:"previous,omitempty"`
	Command   string             `json:"command,omitempty"`
	Baseline  map[string]float64 `json:"baseline,omitempty"`
	Cycle     int                `json:"cycle,omitempty"`
	Time      time.Time          `json:"time"`
}

// NewEvent stamps an event with a fresh ID and the current time.
func NewEvent(t EventType) Event {
	return Event{
		ID:   uuid.New(),
		Type: t,
		Time: time.Now().UTC(),
	}
}

// DirectionChanged builds an EventDirection.
func DirectionChanged(prev, cur gaze.Direction) Event {
	ev := NewEvent(EventDirection)
	ev.Previous = prev
	ev.Direction = cur
	return ev
}

// Calibrated builds an EventCalibrated carrying the new baseline.
func Calibrated(b gaze.Baseline, cycle int) Event {
	ev := NewEvent(EventCalibrated)
	ev.Baseline = b.Map()
	ev.Cycle = cycle
	return ev
}

// CommandSent builds an EventCommand.
func CommandSent(dir gaze.Direction, cmd string) Event {
	ev := NewEvent(EventCommand)
	ev.Direction = dir
	ev.Command = cmd
	return ev
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
