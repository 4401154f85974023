package alphafix

import (
	"errors"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairTask(t *testing.T) (Task, string) {
	t.Helper()
	dir := t.TempDir()
	return Task{
		Original: filepath.Join(dir, "orig", "sub", "a.png"),
		Upscaled: filepath.Join(dir, "up", "sub", "a.png"),
		Output:   filepath.Join(dir, "out", "sub", "a.png"),
	}, dir
}

func TestProcessOpaqueCopiesBytes(t *testing.T) {
	task, _ := pairTask(t)
	writePNG(t, task.Original, solid(8, 8, color.NRGBA{R: 4, A: 255}))
	writePNG(t, task.Upscaled, halfTransparent(32, 32))

	outcome, err := Process(task, DefaultConfig(PolicyGuarded))
	require.NoError(t, err)
	assert.Equal(t, OutcomeCopied, outcome)

	want, err := os.ReadFile(task.Upscaled)
	require.NoError(t, err)
	got, err := os.ReadFile(task.Output)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestProcessRepairs(t *testing.T) {
	for _, p := range policies {
		t.Run(p.String(), func(t *testing.T) {
			task, dir := pairTask(t)
			task.Mask = filepath.Join(dir, "masks", "a.png.png")
			writePNG(t, task.Original, halfTransparent(16, 16))
			// The upscaler half-kept the transparency on the left.
			up := solid(64, 64, color.NRGBA{R: 20, G: 40, B: 60, A: 255})
			for y := range 64 {
				for x := range 32 {
					up.SetNRGBA(x, y, color.NRGBA{R: 20, G: 40, B: 60, A: 100})
				}
			}
			writePNG(t, task.Upscaled, up)

			outcome, err := Process(task, DefaultConfig(p))
			require.NoError(t, err)
			assert.Equal(t, OutcomeRepaired, outcome)

			out := readPNG(t, task.Output)
			require.Equal(t, 64, out.Bounds().Dx())
			require.Equal(t, 64, out.Bounds().Dy())
			_, _, _, a := out.At(4, 32).RGBA()
			assert.Zero(t, a)
			_, _, _, a = out.At(60, 32).RGBA()
			assert.Equal(t, uint32(0xffff), a)

			mask := readPNG(t, task.Mask)
			assert.Equal(t, out.Bounds(), mask.Bounds())
		})
	}
}

func TestProcessErrors(t *testing.T) {
	t.Run("missing upscaled", func(t *testing.T) {
		task, _ := pairTask(t)
		writePNG(t, task.Original, halfTransparent(4, 4))
		_, err := Process(task, DefaultConfig(PolicySimple))
		assert.ErrorIs(t, err, ErrIO)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})
	t.Run("missing original", func(t *testing.T) {
		task, _ := pairTask(t)
		_, err := Process(task, DefaultConfig(PolicySimple))
		assert.ErrorIs(t, err, ErrIO)
	})
	t.Run("corrupt upscaled", func(t *testing.T) {
		task, _ := pairTask(t)
		writePNG(t, task.Original, halfTransparent(4, 4))
		require.NoError(t, os.MkdirAll(filepath.Dir(task.Upscaled), 0o755))
		require.NoError(t, os.WriteFile(task.Upscaled, []byte("not a png"), 0o644))
		_, err := Process(task, DefaultConfig(PolicySimple))
		assert.ErrorIs(t, err, ErrDecode)
	})
	t.Run("unencodable output", func(t *testing.T) {
		task, _ := pairTask(t)
		task.Output = filepath.Join(filepath.Dir(task.Output), "a.webp")
		writePNG(t, task.Original, halfTransparent(8, 8))
		writePNG(t, task.Upscaled, solid(16, 16, color.NRGBA{A: 255}))
		_, err := Process(task, DefaultConfig(PolicySimple))
		assert.ErrorIs(t, err, ErrEncode)
		_, statErr := os.Stat(task.Output)
		assert.True(t, errors.Is(statErr, fs.ErrNotExist))
	})
	t.Run("output dir blocked by file", func(t *testing.T) {
		task, dir := pairTask(t)
		writePNG(t, task.Original, halfTransparent(8, 8))
		writePNG(t, task.Upscaled, solid(16, 16, color.NRGBA{A: 255}))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "out"), nil, 0o644))
		_, err := Process(task, DefaultConfig(PolicySimple))
		assert.ErrorIs(t, err, ErrIO)
	})
}

func TestProcessFormatCoupling(t *testing.T) {
	task, _ := pairTask(t)
	task.Upscaled = filepath.Join(filepath.Dir(task.Upscaled), "a.upscaled")
	writePNG(t, task.Original, halfTransparent(8, 8))
	writePNG(t, task.Upscaled, solid(16, 16, color.NRGBA{A: 255}))

	// Own extension: unknown, so decoding fails.
	_, err := Process(task, DefaultConfig(PolicySimple))
	assert.ErrorIs(t, err, ErrDecode)

	cfg := DefaultConfig(PolicySimple)
	cfg.CoupleFormats = true
	outcome, err := Process(task, cfg)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRepaired, outcome)
}

func TestProcessOverwritesStaleOutput(t *testing.T) {
	task, _ := pairTask(t)
	writePNG(t, task.Original, halfTransparent(8, 8))
	writePNG(t, task.Upscaled, solid(16, 16, color.NRGBA{A: 255}))
	require.NoError(t, os.MkdirAll(filepath.Dir(task.Output), 0o755))
	require.NoError(t, os.WriteFile(task.Output, []byte("stale"), 0o644))

	_, err := Process(task, DefaultConfig(PolicyGuarded))
	require.NoError(t, err)
	assert.Equal(t, 16, readPNG(t, task.Output).Bounds().Dx())

	entries, err := os.ReadDir(filepath.Dir(task.Output))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}
