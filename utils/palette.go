package utils

import (
	"image"
	"image/color"
	"math"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

type PaletteMethod int

const (
	PaletteMethodDominantColor PaletteMethod = iota
	PaletteMethodKMeans
)

// Upper bound on pixels handed to the palette extractors.
const maxSamples = 12000

// Clusters asked from either extractor. The main color is the heaviest one.
const paletteClusters = 4

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	default:
		return "dominant"
	}
}

// VisiblePixels packs a subsample of the non-transparent pixels of img into
// a single-row image. Nil when no pixel is visible.
func VisiblePixels(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	n := b.Dx() * b.Dy()
	if n == 0 {
		return nil
	}
	step := 1
	if n > maxSamples {
		step = int(math.Sqrt(float64(n)/float64(maxSamples))) + 1
	}
	pix := make([]uint8, 0, min(n, maxSamples)*4)
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			off := img.PixOffset(x, y)
			if img.Pix[off+3] == 0 {
				continue
			}
			pix = append(pix, img.Pix[off], img.Pix[off+1], img.Pix[off+2], 255)
		}
	}
	if len(pix) == 0 {
		return nil
	}
	return &image.NRGBA{Pix: pix, Stride: len(pix), Rect: image.Rect(0, 0, len(pix)/4, 1)}
}

// DominantColor returns the heaviest dominantcolor candidate, or mid gray
// when img yields none.
func DominantColor(img image.Image) colorful.Color {
	best := dominantcolor.Color{RGBA: color.RGBA{R: 128, G: 128, B: 128, A: 255}}
	// FindWeight samples random points and panics on an empty image.
	if !img.Bounds().Empty() {
		for _, c := range dominantcolor.FindWeight(img, paletteClusters) {
			if c.Weight > best.Weight {
				best = c
			}
		}
	}
	col, _ := colorful.MakeColor(best.RGBA)
	return col.Clamped()
}

// KMeansColor returns the center of the most populated cluster of the
// visible pixels of img. ok is false when there is nothing to cluster.
func KMeansColor(img image.Image) (c colorful.Color, ok bool) {
	b := img.Bounds()
	dataset := make(clusters.Observations, 0, min(b.Dx()*b.Dy(), maxSamples))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			if a16 == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(r16) / 65535.0,
				float64(g16) / 65535.0,
				float64(b16) / 65535.0,
			})
		}
	}
	if len(dataset) == 0 {
		return c, false
	}

	cc, err := kmeans.New().Partition(dataset, min(paletteClusters, len(dataset)))
	if err != nil {
		return c, false
	}
	most := 0
	for _, cl := range cc {
		if len(cl.Center) < 3 || len(cl.Observations) <= most {
			continue
		}
		most = len(cl.Observations)
		c = colorful.Color{R: cl.Center[0], G: cl.Center[1], B: cl.Center[2]}.Clamped()
	}
	return c, most > 0
}

// MainColor falls back to the dominant color method when k-means produces
// nothing.
func MainColor(img image.Image, method PaletteMethod) colorful.Color {
	if method == PaletteMethodKMeans {
		if c, ok := KMeansColor(img); ok {
			return c
		}
	}
	return DominantColor(img)
}
