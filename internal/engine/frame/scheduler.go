// Package frame drives per-frame callbacks from a single loop, the server
// side equivalent of a display refresh callback.
package frame

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultFPS is the frame rate used when Run is given a non-positive rate.
const DefaultFPS = 60

// Ticker is advanced once per frame. now is the time since the scheduler
// loop started. Returning false removes the ticker; it will not be called
// again.
type Ticker interface {
	Tick(now time.Duration) bool
}

// TickerFunc adapts a function to Ticker.
type TickerFunc func(now time.Duration) bool

// Tick calls f(now).
func (f TickerFunc) Tick(now time.Duration) bool { return f(now) }

type entry struct {
	name   string
	ticker Ticker
}

// Scheduler runs registered tickers once per frame on the goroutine that
// calls Tick. Adding is safe from any goroutine; tickers added during a
// frame first run on the following frame.
type Scheduler struct {
	mu      sync.Mutex
	entries []entry
	frames  uint64
	log     *zap.Logger
}

// NewScheduler creates an empty scheduler. A nil logger disables logging.
func NewScheduler(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{log: log}
}

// Add registers a ticker for the next frame.
func (s *Scheduler) Add(name string, t Ticker) {
	s.mu.Lock()
	s.entries = append(s.entries, entry{name: name, ticker: t})
	s.mu.Unlock()
}

// Len returns the number of live tickers.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Frames returns the number of frames run so far.
func (s *Scheduler) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Tick runs one frame: every ticker registered before the call is advanced
// once and those returning false are dropped.
func (s *Scheduler) Tick(now time.Duration) {
	s.mu.Lock()
	current := s.entries
	s.entries = nil
	s.frames++
	s.mu.Unlock()

	keep := current[:0]
	for _, e := range current {
		if e.ticker.Tick(now) {
			keep = append(keep, e)
		} else {
			s.log.Debug("ticker finished", zap.String("ticker", e.name), zap.Duration("at", now))
		}
	}

	s.mu.Lock()
	// Tickers added while this frame ran go after the survivors.
	s.entries = append(keep, s.entries...)
	s.mu.Unlock()
}

// Run ticks at fps until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		fps = DefaultFPS
	}
	interval := time.Second / time.Duration(fps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	s.log.Info("frame loop started", zap.Int("fps", fps))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("frame loop stopped", zap.Uint64("frames", s.Frames()))
			return ctx.Err()
		case t := <-ticker.C:
			s.Tick(t.Sub(start))
		}
	}
}
