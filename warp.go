package alphafix

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"gonum.org/v1/gonum/mat"
)

type Point struct{ X, Y float64 }

// Homography is a row-major 3x3 projective transform, source to destination.
type Homography [9]float64

// Corners returns the corners of a w×h image in the order
// top-left, top-right, bottom-left, bottom-right.
func Corners(w, h int) [4]Point {
	return Quad(w, h, 0)
}

// Quad returns the corners of a w×h image moved inward by m on every side.
// Negative m moves them outward.
func Quad(w, h int, m float64) [4]Point {
	fw, fh := float64(w), float64(h)
	return [4]Point{{m, m}, {fw - m, m}, {m, fh - m}, {fw - m, fh - m}}
}

// NewHomography solves for the transform mapping each from[i] onto to[i].
func NewHomography(from, to [4]Point) (Homography, error) {
	// Scale both point sets into the unit range so the 8x8 system stays
	// well conditioned for large images.
	sf, st := pointScale(from), pointScale(to)
	if sf == 0 || st == 0 {
		return Homography{}, fmt.Errorf("%w: control points collapse to the origin", ErrGeometry)
	}

	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := range 4 {
		x, y := from[i].X*sf, from[i].Y*sf
		u, v := to[i].X*st, to[i].Y*st
		a.SetRow(2*i, []float64{x, y, 1, 0, 0, 0, -u * x, -u * y})
		a.SetRow(2*i+1, []float64{0, 0, 0, x, y, 1, -v * x, -v * y})
		b.SetVec(2*i, u)
		b.SetVec(2*i+1, v)
	}

	var sol mat.VecDense
	if err := sol.SolveVec(a, b); err != nil {
		return Homography{}, fmt.Errorf("%w: degenerate control points: %v", ErrGeometry, err)
	}

	n := mat.NewDense(3, 3, []float64{
		sol.AtVec(0), sol.AtVec(1), sol.AtVec(2),
		sol.AtVec(3), sol.AtVec(4), sol.AtVec(5),
		sol.AtVec(6), sol.AtVec(7), 1,
	})
	// H = Tto^-1 * N * Tfrom
	tFrom := mat.NewDiagDense(3, []float64{sf, sf, 1})
	tToInv := mat.NewDiagDense(3, []float64{1 / st, 1 / st, 1})
	var hm mat.Dense
	hm.Product(tToInv, n, tFrom)

	var h Homography
	for r := range 3 {
		for c := range 3 {
			h[r*3+c] = hm.At(r, c) / hm.At(2, 2)
		}
	}
	return h, nil
}

func pointScale(ps [4]Point) float64 {
	m := 0.0
	for _, p := range ps {
		m = max(m, math.Abs(p.X), math.Abs(p.Y))
	}
	if m == 0 {
		return 0
	}
	return 1 / m
}

// Apply maps (x, y) through h. ok is false for points sent to infinity.
func (h Homography) Apply(x, y float64) (float64, float64, bool) {
	w := h[6]*x + h[7]*y + h[8]
	if w == 0 {
		return 0, 0, false
	}
	return (h[0]*x + h[1]*y + h[2]) / w, (h[3]*x + h[4]*y + h[5]) / w, true
}

func (h Homography) IsAffine() bool {
	const eps = 1e-12
	return math.Abs(h[6]) < eps && math.Abs(h[7]) < eps && math.Abs(h[8]-1) < eps
}

func (h Homography) Inverse() (Homography, error) {
	var inv mat.Dense
	if err := inv.Inverse(mat.NewDense(3, 3, h[:])); err != nil {
		return Homography{}, fmt.Errorf("%w: singular transform: %v", ErrGeometry, err)
	}
	var out Homography
	for r := range 3 {
		for c := range 3 {
			out[r*3+c] = inv.At(r, c) / inv.At(2, 2)
		}
	}
	return out, nil
}

// Warp resamples src through h with bicubic interpolation. The result has
// the same size as src; destination pixels whose preimage falls outside src
// are set to fill.
func Warp(src *image.NRGBA, h Homography, fill color.NRGBA) (*image.NRGBA, error) {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for i := 0; i < len(dst.Pix); i += 4 {
		dst.Pix[i+0] = fill.R
		dst.Pix[i+1] = fill.G
		dst.Pix[i+2] = fill.B
		dst.Pix[i+3] = fill.A
	}
	if b.Empty() {
		return dst, nil
	}

	if h.IsAffine() {
		// Transform leaves destination pixels outside the mapped source alone.
		s2d := f64.Aff3{h[0], h[1], h[2], h[3], h[4], h[5]}
		draw.CatmullRom.Transform(dst, s2d, src, b, draw.Src, nil)
		return dst, nil
	}

	inv, err := h.Inverse()
	if err != nil {
		return nil, err
	}
	w, ht := b.Dx(), b.Dy()
	for y := range ht {
		for x := range w {
			sx, sy, ok := inv.Apply(float64(x)+0.5, float64(y)+0.5)
			if !ok || sx < 0 || sy < 0 || sx >= float64(w) || sy >= float64(ht) {
				continue
			}
			dst.SetNRGBA(x, y, sampleBicubic(src, sx-0.5, sy-0.5))
		}
	}
	return dst, nil
}

// catmullRom is the cubic convolution kernel with a = -0.5.
func catmullRom(t float64) float64 {
	t = math.Abs(t)
	switch {
	case t < 1:
		return (1.5*t-2.5)*t*t + 1
	case t < 2:
		return ((-0.5*t+2.5)*t-4)*t + 2
	}
	return 0
}

// sampleBicubic samples src at the pixel-center coordinate (fx, fy) in
// premultiplied space, clamping at the borders.
func sampleBicubic(src *image.NRGBA, fx, fy float64) color.NRGBA {
	b := src.Bounds()
	x0, y0 := int(math.Floor(fx)), int(math.Floor(fy))
	var r, g, bl, a, wsum float64
	for j := -1; j <= 2; j++ {
		wy := catmullRom(fy - float64(y0+j))
		yy := clampInt(y0+j, 0, b.Dy()-1) + b.Min.Y
		for i := -1; i <= 2; i++ {
			wgt := wy * catmullRom(fx-float64(x0+i))
			if wgt == 0 {
				continue
			}
			xx := clampInt(x0+i, 0, b.Dx()-1) + b.Min.X
			off := src.PixOffset(xx, yy)
			pa := float64(src.Pix[off+3])
			r += wgt * float64(src.Pix[off+0]) * pa / 255
			g += wgt * float64(src.Pix[off+1]) * pa / 255
			bl += wgt * float64(src.Pix[off+2]) * pa / 255
			a += wgt * pa
			wsum += wgt
		}
	}
	if wsum != 0 {
		r, g, bl, a = r/wsum, g/wsum, bl/wsum, a/wsum
	}
	a = clampFloat(a, 0, 255)
	if a == 0 {
		return color.NRGBA{}
	}
	return color.NRGBA{
		R: uint8(clampFloat(r*255/a, 0, 255) + 0.5),
		G: uint8(clampFloat(g*255/a, 0, 255) + 0.5),
		B: uint8(clampFloat(bl*255/a, 0, 255) + 0.5),
		A: uint8(a + 0.5),
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
