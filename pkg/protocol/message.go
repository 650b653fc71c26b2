// Package protocol defines the WebSocket messages exchanged with the
// face-mesh landmark service.
package protocol

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/teslashibe/go-gaze/pkg/gaze"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Client → service
	TypeFrame MessageType = "frame" // JPEG frame to analyze

	// Service → client
	TypeLandmarks MessageType = "landmarks" // Face mesh for one frame
	TypeError     MessageType = "error"     // Frame could not be processed

	// Bidirectional
	TypePing MessageType = "ping"
	TypePong MessageType = "pong"
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType         `json:"type"`
	Timestamp int64               `json:"ts,omitempty"` // Unix milliseconds
	Data      jsoniter.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData jsoniter.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// FrameData carries one camera frame.
type FrameData struct {
	FrameID uint64 `json:"frame_id"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Format  string `json:"format"` // "jpeg"
	Data    []byte `json:"data"`   // base64 in JSON
}

// LandmarksData is the service's answer for a frame. Faces holds one mesh
// per detected face, in the service's order; empty means no face.
type LandmarksData struct {
	FrameID uint64           `json:"frame_id"`
	Faces   [][]gaze.Point3D `json:"faces"`
}

// ErrorData reports a frame the service failed on.
type ErrorData struct {
	FrameID uint64 `json:"frame_id"`
	Message string `json:"message"`
}

// PingData is sent to check service health.
type PingData struct {
	Seq int64 `json:"seq"`
}

// PongData answers a ping.
type PongData struct {
	Seq int64 `json:"seq"`
}

// NewFrameMessage creates a frame message from raw JPEG data
func NewFrameMessage(frameID uint64, jpegData []byte) (*Message, error) {
	return NewMessage(TypeFrame, FrameData{
		FrameID: frameID,
		Format:  "jpeg",
		Data:    jpegData,
	})
}

// NewLandmarksMessage creates a landmarks message. Used by service fakes.
func NewLandmarksMessage(frameID uint64, faces ...[]gaze.Point3D) (*Message, error) {
	return NewMessage(TypeLandmarks, LandmarksData{FrameID: frameID, Faces: faces})
}

// FirstFace returns the first face as Landmarks, or nil if none.
func (d LandmarksData) FirstFace() *gaze.Landmarks {
	if len(d.Faces) == 0 || len(d.Faces[0]) == 0 {
		return nil
	}
	return &gaze.Landmarks{Points: d.Faces[0]}
}
