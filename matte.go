package alphafix

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/setanarut/alphafix/utils"
)

// Matte selects how the color of fully transparent output pixels is filled.
type Matte int

const (
	MatteNone Matte = iota
	MatteDominant
	MatteKMeans
)

func (m Matte) String() string {
	switch m {
	case MatteDominant:
		return "dominant"
	case MatteKMeans:
		return "kmeans"
	default:
		return "none"
	}
}

func ParseMatte(s string) (Matte, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return MatteNone, nil
	case "dominant":
		return MatteDominant, nil
	case "kmeans":
		return MatteKMeans, nil
	}
	return MatteNone, fmt.Errorf("unknown matte %q (want none, dominant or kmeans)", s)
}

// ApplyMatte sets the color of every alpha-0 pixel of img to the main color
// of its visible pixels. Alpha is untouched. ok is false when nothing was
// changed.
func ApplyMatte(img *image.NRGBA, m Matte) (c color.NRGBA, ok bool) {
	if m == MatteNone {
		return c, false
	}
	visible := utils.VisiblePixels(img)
	if visible == nil {
		return c, false
	}
	method := utils.PaletteMethodDominantColor
	if m == MatteKMeans {
		method = utils.PaletteMethodKMeans
	}
	c.R, c.G, c.B = utils.MainColor(visible, method).RGB255()
	c.A = 255

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		row := img.Pix[off : off+b.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			if row[i+3] == 0 {
				row[i], row[i+1], row[i+2] = c.R, c.G, c.B
			}
		}
	}
	return c, true
}
