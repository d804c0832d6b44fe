// Package capture provides frame sources for the tracking loop.
package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/automoto/lookout/logging"
	"github.com/automoto/lookout/tracking"
	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
)

// ErrExhausted is returned once a non-looping directory has been played out.
var ErrExhausted = fmt.Errorf("%w: frame directory exhausted", tracking.ErrNoFrame)

// DirSource replays the still images of a directory in name order, as if
// they came from a camera running at a fixed frame interval.
type DirSource struct {
	paths    []string
	interval time.Duration
	loop     bool

	mu    sync.Mutex
	next  int
	seq   uint64
	last  time.Time
	loops int

	log *logrus.Entry
}

// NewDirSource lists every image in dir that imaging can decode.
func NewDirSource(dir string, interval time.Duration, loop bool) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frame dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := imaging.FormatFromFilename(e.Name()); err != nil {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no images found in %s", dir)
	}
	sort.Strings(paths)

	s := &DirSource{
		paths:    paths,
		interval: interval,
		loop:     loop,
		log:      logging.WithComponent("capture"),
	}
	s.log.WithFields(logrus.Fields{"dir": dir, "frames": len(paths), "loop": loop}).Info("[capture] replaying frame directory")
	return s, nil
}

// Len returns the number of frames in one pass.
func (s *DirSource) Len() int {
	return len(s.paths)
}

// Loops returns how many complete passes have been played.
func (s *DirSource) Loops() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loops
}

// NextFrame waits out the frame interval, then decodes the next image. A
// file that fails to decode is skipped with a transient error.
func (s *DirSource) NextFrame(ctx context.Context) (tracking.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.next >= len(s.paths) {
		if !s.loop {
			return tracking.Frame{}, ErrExhausted
		}
		s.next = 0
	}

	if err := s.pace(ctx); err != nil {
		return tracking.Frame{}, err
	}

	path := s.paths[s.next]
	s.next++
	if s.next == len(s.paths) {
		s.loops++
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return tracking.Frame{}, fmt.Errorf("%w: decode %s: %v", tracking.ErrNoFrame, filepath.Base(path), err)
	}

	s.seq++
	return tracking.FrameFromImage(img, s.seq), nil
}

func (s *DirSource) pace(ctx context.Context) error {
	defer func() { s.last = time.Now() }()

	if s.interval <= 0 || s.last.IsZero() {
		return ctx.Err()
	}
	wait := s.interval - time.Since(s.last)
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
