package animation

import (
	"sync"
	"time"
)

// Kind identifies the animated entity a session drives.
type Kind int

const (
	KindBoat Kind = iota
	KindTurbine
	KindSubmarine
	KindPinpoint
)

var kindNames = [...]string{"boat", "turbine", "submarine", "pinpoint"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Kinds lists every session kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindBoat, KindTurbine, KindSubmarine, KindPinpoint}
}

// stepFunc computes and writes one frame. elapsed is measured from the
// session's first tick.
type stepFunc func(now, elapsed time.Duration) error

// session is one running animation. The mutex serialises a frame against
// stop, so once stop returns no further transform write can happen.
type session struct {
	kind Kind
	step stepFunc
	m    *Manager

	mu      sync.Mutex
	running bool
	started bool
	start   time.Duration
}

func newSession(m *Manager, kind Kind, step stepFunc) *session {
	return &session{kind: kind, step: step, m: m, running: true}
}

// Tick implements frame.Ticker.
func (s *session) Tick(now time.Duration) bool {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return false
	}
	if !s.started {
		s.started = true
		s.start = now
	}
	err := s.step(now, now-s.start)
	if err != nil {
		s.running = false
	}
	s.mu.Unlock()

	if err != nil {
		s.m.sessionFailed(s, err)
		return false
	}
	s.m.metrics.add(s.m.metrics.frames, s.kind)
	return true
}

// stop clears the running flag. It reports whether the session was running.
func (s *session) stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	was := s.running
	s.running = false
	return was
}

func (s *session) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
