package alphafix

import (
	"fmt"
	"image"
)

// Composite merges mask into upscaled in place.
//
// Simple overwrites the alpha channel. Guarded keeps the upscaler's own
// judgment where it is at least TrustAlpha and at least the mask, raises
// alpha to the mask where the upscaler is below it, and takes the whole mask
// pixel where the upscaler alpha is under TrustAlpha.
func Composite(upscaled, mask *image.NRGBA, p Params) error {
	ub, mb := upscaled.Bounds(), mask.Bounds()
	if ub.Dx() != mb.Dx() || ub.Dy() != mb.Dy() {
		return fmt.Errorf("%w: upscaled %dx%d, mask %dx%d", ErrDimension, ub.Dx(), ub.Dy(), mb.Dx(), mb.Dy())
	}
	w, h := ub.Dx(), ub.Dy()
	for y := range h {
		uo := upscaled.PixOffset(ub.Min.X, ub.Min.Y+y)
		mo := mask.PixOffset(mb.Min.X, mb.Min.Y+y)
		urow := upscaled.Pix[uo : uo+w*4]
		mrow := mask.Pix[mo : mo+w*4]
		for i := 0; i < len(urow); i += 4 {
			if p.Policy != PolicyGuarded {
				urow[i+3] = mrow[i+3]
				continue
			}
			switch ua, ma := urow[i+3], mrow[i+3]; {
			case ua < p.TrustAlpha:
				copy(urow[i:i+4], mrow[i:i+4])
			case ua < ma:
				urow[i+3] = ma
			}
		}
	}
	return nil
}
