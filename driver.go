package alphafix

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"github.com/setanarut/alphafix/utils"
)

// Task is one original/upscaled/output triple.
type Task struct {
	Original string
	Upscaled string
	Output   string
	// Where the reconstructed mask is dumped; empty disables the dump.
	Mask string
}

type Config struct {
	Params  Params
	Workers int
	// Decode the upscaled file with the decoder chosen by the original's
	// extension instead of its own.
	CoupleFormats bool
	Matte         Matte
	Logger        zerolog.Logger
}

func DefaultConfig(p Policy) Config {
	return Config{
		Params:  DefaultParams(p),
		Workers: runtime.GOMAXPROCS(0),
		Logger:  zerolog.Nop(),
	}
}

type Outcome int

const (
	// Original fully opaque, upscaled file copied verbatim.
	OutcomeCopied Outcome = iota
	OutcomeRepaired
)

func (o Outcome) String() string {
	if o == OutcomeRepaired {
		return "repaired"
	}
	return "copied"
}

// Process repairs the alpha channel of a single task.
func Process(t Task, cfg Config) (Outcome, error) {
	orig, err := decodeFile(t.Original, t.Original)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(t.Output), 0o755); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIO, err)
	}

	formatPath := t.Upscaled
	if cfg.CoupleFormats {
		formatPath = t.Original
	}
	up, err := decodeFile(t.Upscaled, formatPath)
	if err != nil {
		return 0, err
	}

	if IsFullyOpaque(imaging.Clone(orig)) {
		if err := copyFile(t.Upscaled, t.Output); err != nil {
			return 0, err
		}
		cfg.Logger.Debug().Str("output", t.Output).Msg("copied")
		return OutcomeCopied, nil
	}

	upscaled := imaging.Clone(up)
	w, h := upscaled.Bounds().Dx(), upscaled.Bounds().Dy()
	mask, err := ReconstructMask(imaging.Clone(orig), w, h, cfg.Params)
	if err != nil {
		return 0, err
	}
	if t.Mask != "" {
		if err := utils.SaveImage(mask, t.Mask); err != nil {
			return 0, fmt.Errorf("%w: mask dump: %w", ErrIO, err)
		}
	}
	if err := Composite(upscaled, mask, cfg.Params); err != nil {
		return 0, err
	}
	if c, ok := ApplyMatte(upscaled, cfg.Matte); ok {
		cfg.Logger.Debug().Str("output", t.Output).Str("matte", fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)).Msg("matte applied")
	}

	data, err := utils.EncodeImage(upscaled, t.Output)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	if err := utils.WriteAtomic(t.Output, bytes.NewReader(data)); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIO, err)
	}

	if e := cfg.Logger.Debug(); e.Enabled() {
		st := Stats(mask)
		e.Str("output", t.Output).
			Int("width", w).
			Int("height", h).
			Float64("coverage", st.Coverage).
			Float64("partial", st.Partial).
			Msg("repaired")
	}
	return OutcomeRepaired, nil
}

// decodeFile reads path with the decoder selected by formatPath's extension.
func decodeFile(path, formatPath string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()
	img, err := utils.DecodeImage(bufio.NewReader(f), formatPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}
	return img, nil
}

func copyFile(src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()
	if err := utils.WriteAtomic(dst, f); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}
