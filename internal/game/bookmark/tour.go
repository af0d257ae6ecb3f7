package bookmark

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/offshore-diorama/internal/engine/scene"
	"github.com/Faultbox/offshore-diorama/pkg/interp"
)

// Animator is the animation surface the tour drives. *animation.Manager
// satisfies it.
type Animator interface {
	// IssueCamera supersedes the current camera transition at call time
	// and returns the blocking flight.
	IssueCamera(ctx context.Context, pose interp.CameraPose, speedFactor float64) func() error

	AnimateBoat(entity scene.Entity)
	StopBoat()
	AnimateTurbines(entities []scene.Entity) error
	StopTurbines()
	AnimateSubmarine() error
	StopSubmarine()
	AnimatePinpoint(entity scene.Entity)
	StopPinpoint()
}

// Targets are the scene entities bookmarks animate. The submarine is held
// by the animator once its route is set up.
type Targets struct {
	Boat     scene.Entity
	Pinpoint scene.Entity
	Turbines []scene.Entity
}

// Tour walks the bookmark table. One bookmark is selected at a time;
// Activate and Toggle may switch others on alongside it.
type Tour struct {
	bookmarks []Bookmark
	anim      Animator
	targets   Targets
	log       *zap.Logger

	mu        sync.Mutex
	selected  int // index into bookmarks, -1 before the first Select
	status    map[int]bool
	listeners []func(Bookmark)
	flights   sync.WaitGroup
}

// NewTour creates a tour over bookmarks. The table must pass Validate.
func NewTour(bookmarks []Bookmark, anim Animator, targets Targets, log *zap.Logger) (*Tour, error) {
	if err := Validate(bookmarks); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Tour{
		bookmarks: append([]Bookmark(nil), bookmarks...),
		anim:      anim,
		targets:   targets,
		log:       log,
		selected:  -1,
		status:    make(map[int]bool),
	}, nil
}

// Bookmarks returns a copy of the table.
func (t *Tour) Bookmarks() []Bookmark {
	return append([]Bookmark(nil), t.bookmarks...)
}

// Selected returns the selected bookmark; ok is false before the first Select.
func (t *Tour) Selected() (b Bookmark, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.selected < 0 {
		return Bookmark{}, false
	}
	return t.bookmarks[t.selected], true
}

// IsActive reports whether bookmark id's animation is switched on.
func (t *Tour) IsActive(id int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status[id]
}

// OnSelect registers fn to be called after every selection change.
func (t *Tour) OnSelect(fn func(Bookmark)) {
	t.mu.Lock()
	t.listeners = append(t.listeners, fn)
	t.mu.Unlock()
}

func (t *Tour) index(id int) (int, error) {
	for i, b := range t.bookmarks {
		if b.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %d", ErrUnknownBookmark, id)
}

// Activate switches bookmark id on or off. Switching on starts the camera
// flight, which supersedes any flight in progress, and the bookmark's
// animation. Switching off stops the animation and leaves the camera.
func (t *Tour) Activate(ctx context.Context, id int, active bool) error {
	i, err := t.index(id)
	if err != nil {
		return err
	}
	b := t.bookmarks[i]

	if active {
		if b.Camera != nil {
			t.fly(ctx, b)
		}
		if err := t.start(b.Action); err != nil {
			return fmt.Errorf("bookmark %d: %w", id, err)
		}
	} else {
		t.stop(b.Action)
	}

	t.mu.Lock()
	t.status[id] = active
	t.mu.Unlock()

	t.log.Info("bookmark activated",
		zap.Int("id", id),
		zap.String("name", b.Name),
		zap.Bool("active", active))
	return nil
}

// Toggle flips bookmark id and returns its new state.
func (t *Tour) Toggle(ctx context.Context, id int) (bool, error) {
	active := !t.IsActive(id)
	if err := t.Activate(ctx, id, active); err != nil {
		return false, err
	}
	return active, nil
}

// Select makes id the selected bookmark: every other active bookmark is
// switched off, then id is switched on.
func (t *Tour) Select(ctx context.Context, id int) error {
	i, err := t.index(id)
	if err != nil {
		return err
	}

	t.mu.Lock()
	var others []int
	for other, on := range t.status {
		if on && other != id {
			others = append(others, other)
		}
	}
	t.mu.Unlock()

	for _, other := range others {
		if err := t.Activate(ctx, other, false); err != nil {
			return err
		}
	}
	if err := t.Activate(ctx, id, true); err != nil {
		return err
	}

	t.mu.Lock()
	t.selected = i
	listeners := slices.Clone(t.listeners)
	t.mu.Unlock()

	for _, fn := range listeners {
		fn(t.bookmarks[i])
	}
	return nil
}

// Next selects the following bookmark. At the end of the table it does
// nothing; before any selection it selects the first bookmark.
func (t *Tour) Next(ctx context.Context) error {
	t.mu.Lock()
	i := t.selected + 1
	t.mu.Unlock()
	if i >= len(t.bookmarks) {
		return nil
	}
	return t.Select(ctx, t.bookmarks[i].ID)
}

// Previous selects the preceding bookmark. At the start of the table, or
// before any selection, it does nothing.
func (t *Tour) Previous(ctx context.Context) error {
	t.mu.Lock()
	i := t.selected - 1
	t.mu.Unlock()
	if i < 0 {
		return nil
	}
	return t.Select(ctx, t.bookmarks[i].ID)
}

// Wait blocks until every camera flight started by the tour has ended.
func (t *Tour) Wait() {
	t.flights.Wait()
}

// fly supersedes any flight in progress before returning, then waits for
// the new one in the background. The flight outlives the caller's context;
// it ends when it arrives or a newer flight supersedes it.
func (t *Tour) fly(ctx context.Context, b Bookmark) {
	flight := t.anim.IssueCamera(context.WithoutCancel(ctx), *b.Camera, b.SpeedFactor)
	t.flights.Add(1)
	go func() {
		defer t.flights.Done()
		if err := flight(); err != nil {
			t.log.Warn("camera flight failed", zap.Int("bookmark", b.ID), zap.Error(err))
		}
	}()
}

func (t *Tour) start(a Action) error {
	switch a {
	case ActionBoat:
		if t.targets.Boat != nil {
			t.anim.AnimateBoat(t.targets.Boat)
		}
	case ActionPinpoint:
		if t.targets.Pinpoint != nil {
			t.anim.AnimatePinpoint(t.targets.Pinpoint)
		}
	case ActionTurbines:
		return t.anim.AnimateTurbines(t.targets.Turbines)
	case ActionSubmarine:
		return t.anim.AnimateSubmarine()
	}
	return nil
}

func (t *Tour) stop(a Action) {
	switch a {
	case ActionBoat:
		t.anim.StopBoat()
	case ActionPinpoint:
		t.anim.StopPinpoint()
	case ActionTurbines:
		t.anim.StopTurbines()
	case ActionSubmarine:
		t.anim.StopSubmarine()
	}
}
