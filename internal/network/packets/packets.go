// Package packets defines the JSON messages exchanged with viewers.
package packets

import (
	"encoding/json"
	"fmt"

	"github.com/Faultbox/offshore-diorama/internal/engine/scene"
	"github.com/Faultbox/offshore-diorama/pkg/interp"
)

// Message types for viewer commands
const (
	// Viewer -> Server
	TypeSelect   = "select"   // Select a bookmark
	TypeActivate = "activate" // Switch a bookmark on or off
	TypeNext     = "next"     // Select the next bookmark
	TypePrevious = "previous" // Select the previous bookmark
)

// Message types for scene updates
const (
	// Server -> Viewer
	TypeTransform = "transform" // Entity transform changed
	TypeCamera    = "camera"    // Camera pose changed
	TypeBookmark  = "bookmark"  // Bookmark selected or toggled
	TypeError     = "error"     // Command rejected
)

// Envelope wraps every message on the wire.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Transform is the payload of TypeTransform.
type Transform struct {
	ID        string          `json:"id"`
	Transform scene.Transform `json:"transform"`
}

// Camera is the payload of TypeCamera.
type Camera = interp.CameraPose

// Bookmark is the payload of TypeBookmark.
type Bookmark struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Command is the payload of TypeSelect and TypeActivate.
type Command struct {
	ID     int  `json:"id"`
	Active bool `json:"active"`
}

// Error is the payload of TypeError.
type Error struct {
	For     string `json:"for"`
	Message string `json:"message"`
}

// Marshal builds a JSON-encoded envelope from a message type and payload.
// A nil payload is omitted.
func Marshal(msgType string, payload any) ([]byte, error) {
	env := Envelope{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
		}
		env.Payload = raw
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// Unmarshal decodes an envelope.
func Unmarshal(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("decode envelope: missing type")
	}
	return env, nil
}

// Decode unmarshals the envelope payload into v.
func (e Envelope) Decode(v any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("%s: missing payload", e.Type)
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("%s payload: %w", e.Type, err)
	}
	return nil
}
