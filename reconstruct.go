package alphafix

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/stat"
)

// ReconstructMask rebuilds the alpha of original at width×height.
//
// The result is a full NRGBA raster: its alpha is the reconstructed mask and
// its color is the resampled original, which the guarded merge falls back to
// where the upscaler judged a pixel mostly transparent. Alpha values are
// driven to 0 or 255 except for a thin anti-aliased edge.
func ReconstructMask(original *image.NRGBA, width, height int, p Params) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: target size %dx%d", ErrGeometry, width, height)
	}
	if original.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty source image", ErrGeometry)
	}

	if p.Policy == PolicyGuarded {
		// Anything narrower collapses or mirrors the inset quad and the blur
		// then wipes out the whole mask.
		if band := 2 * (p.Margin + p.Expand); float64(width) <= band || float64(height) <= band {
			return nil, fmt.Errorf("%w: target %dx%d too small for a %g px guard band", ErrGeometry, width, height, p.Margin+p.Expand)
		}
	}

	mask := imaging.Resize(original, width, height, imaging.Lanczos)

	switch p.Policy {
	case PolicyGuarded:
		var err error
		if mask, err = warpMargin(mask, p.Margin); err != nil {
			return nil, err
		}
		mask = imaging.Blur(mask, p.SmoothSigma)
		if mask, err = warpMargin(mask, -(p.Margin + p.Expand)); err != nil {
			return nil, err
		}
	default:
		mask = imaging.Blur(mask, p.SmoothSigma)
		mask = imaging.AdjustContrast(mask, p.Contrast)
	}

	threshold(mask, p.Threshold)
	return imaging.Blur(mask, p.FinalSigma), nil
}

// warpMargin maps the image corners onto the quad inset by m, filling the
// uncovered border with transparent black.
func warpMargin(img *image.NRGBA, m float64) (*image.NRGBA, error) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	hom, err := NewHomography(Corners(w, h), Quad(w, h, m))
	if err != nil {
		return nil, err
	}
	return Warp(img, hom, color.NRGBA{})
}

func threshold(img *image.NRGBA, level uint8) {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] < level {
			img.Pix[i] = 0
		} else {
			img.Pix[i] = 255
		}
	}
}

type MaskStats struct {
	// Mean alpha in [0,1].
	Coverage float64
	// Fraction of pixels with alpha strictly between 0 and 255.
	Partial float64
}

func Stats(mask *image.NRGBA) MaskStats {
	n := len(mask.Pix) / 4
	if n == 0 {
		return MaskStats{}
	}
	alpha := make([]float64, 0, n)
	partial := make([]float64, 0, n)
	for i := 3; i < len(mask.Pix); i += 4 {
		a := mask.Pix[i]
		alpha = append(alpha, float64(a)/255)
		if a != 0 && a != 255 {
			partial = append(partial, 1)
		} else {
			partial = append(partial, 0)
		}
	}
	return MaskStats{
		Coverage: stat.Mean(alpha, nil),
		Partial:  stat.Mean(partial, nil),
	}
}
