package capture

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/automoto/lookout/tracking"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFrames(t *testing.T, dir string, sizes ...[2]int) {
	t.Helper()
	for i, size := range sizes {
		img := imaging.New(size[0], size[1], color.NRGBA{R: uint8(i * 40), A: 255})
		name := filepath.Join(dir, "frame_"+string(rune('a'+i))+".png")
		require.NoError(t, imaging.Save(img, name))
	}
}

func TestDirSource(t *testing.T) {
	t.Parallel()

	t.Run("replays images in name order", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFrames(t, dir, [2]int{64, 48}, [2]int{32, 32}, [2]int{10, 20})
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0o600))

		s, err := NewDirSource(dir, 0, false)
		require.NoError(t, err)
		assert.Equal(t, 3, s.Len())

		ctx := context.Background()
		var dims [][2]int
		for i := 0; i < 3; i++ {
			f, err := s.NextFrame(ctx)
			require.NoError(t, err)
			assert.Equal(t, uint64(i+1), f.Seq)
			dims = append(dims, [2]int{f.Width, f.Height})
		}
		assert.Equal(t, [][2]int{{64, 48}, {32, 32}, {10, 20}}, dims)

		_, err = s.NextFrame(ctx)
		assert.ErrorIs(t, err, ErrExhausted)
		assert.ErrorIs(t, err, tracking.ErrNoFrame)
		assert.Equal(t, 1, s.Loops())
	})

	t.Run("loops when asked to", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFrames(t, dir, [2]int{8, 8}, [2]int{16, 16})

		s, err := NewDirSource(dir, 0, true)
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			_, err := s.NextFrame(context.Background())
			require.NoError(t, err)
		}
		assert.Equal(t, 2, s.Loops())
	})

	t.Run("undecodable file is a transient error", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a_broken.png"), []byte("not a png"), 0o600))
		writeFrames(t, dir, [2]int{8, 8})

		s, err := NewDirSource(dir, 0, false)
		require.NoError(t, err)

		_, err = s.NextFrame(context.Background())
		assert.ErrorIs(t, err, tracking.ErrNoFrame)

		f, err := s.NextFrame(context.Background())
		require.NoError(t, err)
		assert.True(t, f.Valid())
	})

	t.Run("empty directory is rejected", func(t *testing.T) {
		t.Parallel()
		_, err := NewDirSource(t.TempDir(), 0, false)
		assert.Error(t, err)
	})

	t.Run("cancellation interrupts pacing", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFrames(t, dir, [2]int{8, 8}, [2]int{8, 8})

		s, err := NewDirSource(dir, time.Hour, true)
		require.NoError(t, err)
		_, err = s.NextFrame(context.Background())
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		start := time.Now()
		_, err = s.NextFrame(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second)
	})
}

func TestBlankSource(t *testing.T) {
	t.Parallel()

	s, err := NewBlankSource(640, 480, time.Millisecond)
	require.NoError(t, err)
	defer s.Close()

	for i := 1; i <= 3; i++ {
		f, err := s.NextFrame(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 640, f.Width)
		assert.Equal(t, 480, f.Height)
		assert.Equal(t, uint64(i), f.Seq)
		assert.Nil(t, f.Image)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.NextFrame(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewBlankSource(0, 480, 0)
	assert.ErrorIs(t, err, tracking.ErrMalformedFrame)
}
