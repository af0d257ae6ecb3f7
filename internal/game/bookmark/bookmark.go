// Package bookmark maps the diorama's bookmarks to camera flights and
// entity animations.
package bookmark

import (
	"errors"
	"fmt"

	"github.com/Faultbox/offshore-diorama/pkg/interp"
	"github.com/Faultbox/offshore-diorama/pkg/math"
)

var (
	// ErrUnknownBookmark is returned for an id missing from the table.
	ErrUnknownBookmark = errors.New("bookmark: unknown id")
	// ErrInvalidBookmark is returned by Validate.
	ErrInvalidBookmark = errors.New("bookmark: invalid table")
)

// Action is the animation a bookmark toggles alongside its camera flight.
type Action string

const (
	ActionCamera    Action = "camera"
	ActionTurbines  Action = "turbines"
	ActionPinpoint  Action = "pinpoint"
	ActionBoat      Action = "boat"
	ActionSubmarine Action = "submarine"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionCamera, ActionTurbines, ActionPinpoint, ActionBoat, ActionSubmarine:
		return true
	}
	return false
}

// Bookmark is one stop of the tour.
type Bookmark struct {
	ID     int                `yaml:"id" json:"id"`
	Name   string             `yaml:"name" json:"name"`
	Action Action             `yaml:"action" json:"action"`
	Camera *interp.CameraPose `yaml:"camera,omitempty" json:"camera,omitempty"`
	// SpeedFactor scales the flight; zero means 1.
	SpeedFactor float64 `yaml:"speed_factor,omitempty" json:"speed_factor,omitempty"`
}

func pose(x, y, z, heading, tilt float64) *interp.CameraPose {
	return &interp.CameraPose{Position: math.Vec3{X: x, Y: y, Z: z}, Heading: heading, Tilt: tilt}
}

// Defaults returns the offshore scene's tour. Positions are Web Mercator
// metres.
func Defaults() []Bookmark {
	return []Bookmark{
		{ID: 0, Name: "Wind turbines", Action: ActionTurbines, Camera: pose(-13549161.92507, 4307774.12432, 174.102, 34.47, 82.31)},
		{ID: 1, Name: "Hello world", Action: ActionPinpoint, Camera: pose(-13537764.11181, 4307887.74312, 920.260, 6.32, 83.61)},
		{ID: 2, Name: "Sailing boat", Action: ActionBoat, Camera: pose(-13544598.82708, 4307484.75467, 15.41, 55.62, 82.22)},
		{ID: 3, Name: "Submarine", Action: ActionSubmarine, Camera: pose(-13545249.77396, 4302143.42422, 386.005, 52.08, 78.73)},
	}
}

// Validate checks a bookmark table: at least one entry, unique ids, known
// actions and a camera pose for camera-only stops.
func Validate(bookmarks []Bookmark) error {
	if len(bookmarks) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidBookmark)
	}
	seen := make(map[int]bool, len(bookmarks))
	for _, b := range bookmarks {
		if seen[b.ID] {
			return fmt.Errorf("%w: duplicate id %d", ErrInvalidBookmark, b.ID)
		}
		seen[b.ID] = true
		if !b.Action.Valid() {
			return fmt.Errorf("%w: bookmark %d has unknown action %q", ErrInvalidBookmark, b.ID, b.Action)
		}
		if b.Action == ActionCamera && b.Camera == nil {
			return fmt.Errorf("%w: bookmark %d has no camera pose", ErrInvalidBookmark, b.ID)
		}
		if b.SpeedFactor < 0 {
			return fmt.Errorf("%w: bookmark %d has negative speed factor", ErrInvalidBookmark, b.ID)
		}
	}
	return nil
}
