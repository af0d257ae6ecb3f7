// Package camera animates the viewpoint between bookmarked poses.
package camera

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/offshore-diorama/internal/engine/frame"
	"github.com/Faultbox/offshore-diorama/pkg/interp"
)

// DefaultBaseDuration is the flight time at speed factor 1.
const DefaultBaseDuration = 2 * time.Second

// Flyer moves the camera to a target pose over several frames. It
// implements scene.Camera.
type Flyer struct {
	// BaseDuration is the flight time at speed factor 1.
	BaseDuration time.Duration

	sched *frame.Scheduler
	log   *zap.Logger

	mu       sync.Mutex
	pose     interp.CameraPose
	watchers []func(interp.CameraPose)
}

// NewFlyer creates a camera resting at pose, animated by sched.
func NewFlyer(sched *frame.Scheduler, pose interp.CameraPose, log *zap.Logger) *Flyer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Flyer{
		BaseDuration: DefaultBaseDuration,
		sched:        sched,
		log:          log,
		pose:         pose,
	}
}

// Pose returns the current camera pose.
func (f *Flyer) Pose() interp.CameraPose {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pose
}

// Watch registers fn to receive every pose the camera takes. fn is called
// immediately with the current pose.
func (f *Flyer) Watch(fn func(interp.CameraPose)) {
	f.mu.Lock()
	f.watchers = append(f.watchers, fn)
	pose := f.pose
	f.mu.Unlock()
	fn(pose)
}

// Jump places the camera at pose without animating.
func (f *Flyer) Jump(pose interp.CameraPose) {
	f.setPose(pose)
}

func (f *Flyer) setPose(pose interp.CameraPose) {
	f.setPoseLive(context.Background(), pose)
}

// setPoseLive writes pose unless ctx is already done. The check and the
// write happen under the same lock, so a flight cancelled by a newer one
// cannot write afterwards.
func (f *Flyer) setPoseLive(ctx context.Context, pose interp.CameraPose) bool {
	f.mu.Lock()
	if ctx.Err() != nil {
		f.mu.Unlock()
		return false
	}
	f.pose = pose
	watchers := slices.Clone(f.watchers)
	f.mu.Unlock()

	for _, w := range watchers {
		w(pose)
	}
	return true
}

// GoTo flies from the current pose to target. It blocks until the camera
// arrives (nil) or ctx is cancelled (ctx.Err()). A cancelled flight stops
// moving the camera on its next frame; the camera stays where it was.
// speedFactor > 1 flies faster; non-positive values mean 1.
func (f *Flyer) GoTo(ctx context.Context, target interp.CameraPose, speedFactor float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if speedFactor <= 0 {
		speedFactor = 1
	}

	fl := &flight{
		camera:   f,
		ctx:      ctx,
		to:       target,
		duration: time.Duration(float64(f.BaseDuration) / speedFactor),
		done:     make(chan struct{}),
	}
	f.log.Debug("camera flight started",
		zap.Float64("heading", target.Heading),
		zap.Float64("tilt", target.Tilt),
		zap.Duration("duration", fl.duration))
	f.sched.Add("camera", fl)

	select {
	case <-fl.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// flight is one GoTo in progress. It departs from wherever the camera is
// on its first frame.
type flight struct {
	camera   *Flyer
	ctx      context.Context
	from, to interp.CameraPose
	duration time.Duration

	started bool
	start   time.Duration
	done    chan struct{}
}

func (fl *flight) Tick(now time.Duration) bool {
	if fl.ctx.Err() != nil {
		return false
	}
	if !fl.started {
		fl.started = true
		fl.start = now
		fl.from = fl.camera.Pose()
	}

	p := interp.Progress(float64(now-fl.start), float64(fl.duration))
	pose, _ := interp.LerpCamera(fl.from, fl.to, p, 1)
	if !fl.camera.setPoseLive(fl.ctx, pose) {
		return false
	}

	if p >= 1 {
		close(fl.done)
		return false
	}
	return true
}
