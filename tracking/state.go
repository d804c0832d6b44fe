package tracking

import (
	"sync"
	"sync/atomic"

	"github.com/automoto/lookout/logging"
)

// SharedTrackState is a single-slot, overwrite-on-write cell holding the latest
// normalized face position, or none. The producer writes it, the render loop
// reads it; the lock is held only for the copy.
type SharedTrackState struct {
	mu  sync.RWMutex
	pos NormalizedPosition
	ok  bool

	unread    atomic.Bool // a published value nobody has read yet
	abandoned atomic.Bool
	warnOnce  sync.Once

	abandonMu  sync.Mutex
	abandonErr error

	publishes atomic.Uint64
	reads     atomic.Uint64
	coalesced atomic.Uint64
}

// SlotStats is a point-in-time view of slot activity.
type SlotStats struct {
	Publishes uint64
	Reads     uint64
	Coalesced uint64 // writes overwritten before any reader saw them
	Abandoned bool
}

var nilReadOnce sync.Once

func NewSharedTrackState() *SharedTrackState {
	return &SharedTrackState{}
}

// Publish overwrites the slot. ok=false publishes "no face".
func (s *SharedTrackState) Publish(pos NormalizedPosition, ok bool) {
	if !ok {
		pos = NormalizedPosition{}
	} else {
		pos = pos.Clamped()
	}

	s.mu.Lock()
	s.pos = pos
	s.ok = ok
	if s.unread.Swap(true) {
		s.coalesced.Add(1)
	}
	s.mu.Unlock()

	s.publishes.Add(1)
}

// PublishFace publishes a detected position.
func (s *SharedTrackState) PublishFace(pos NormalizedPosition) {
	s.Publish(pos, true)
}

// PublishNone publishes the absence of a face.
func (s *SharedTrackState) PublishNone() {
	s.Publish(NormalizedPosition{}, false)
}

// Read returns a copy of the current slot. A nil or abandoned slot reads as
// no face; the condition is logged once.
func (s *SharedTrackState) Read() (NormalizedPosition, bool) {
	if s == nil {
		nilReadOnce.Do(func() {
			logging.WithComponent("trackstate").Warn("[trackstate] read from nil slot, treating as no face")
		})
		return NormalizedPosition{}, false
	}

	if s.abandoned.Load() {
		s.warnOnce.Do(func() {
			logging.WithComponent("trackstate").
				WithError(s.abandonCause()).
				Warn("[trackstate] slot abandoned by producer, treating as no face")
		})
		return NormalizedPosition{}, false
	}

	s.mu.RLock()
	pos, ok := s.pos, s.ok
	s.unread.Store(false)
	s.mu.RUnlock()

	s.reads.Add(1)
	return pos, ok
}

// Abandon marks the slot unusable after the producer died abnormally.
// Later reads report no face instead of stale data.
func (s *SharedTrackState) Abandon(err error) {
	s.abandonMu.Lock()
	s.abandonErr = err
	s.abandonMu.Unlock()
	s.abandoned.Store(true)
}

// Abandoned reports whether Abandon has been called.
func (s *SharedTrackState) Abandoned() bool {
	return s.abandoned.Load()
}

func (s *SharedTrackState) abandonCause() error {
	s.abandonMu.Lock()
	defer s.abandonMu.Unlock()
	return s.abandonErr
}

// Stats returns slot counters. Values may be slightly stale.
func (s *SharedTrackState) Stats() SlotStats {
	return SlotStats{
		Publishes: s.publishes.Load(),
		Reads:     s.reads.Load(),
		Coalesced: s.coalesced.Load(),
		Abandoned: s.abandoned.Load(),
	}
}
