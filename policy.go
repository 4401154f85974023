package alphafix

import (
	"fmt"
	"strings"
)

// Policy selects both the mask reconstruction algorithm and the merge rule.
// It is fixed for a whole run.
type Policy int

const (
	PolicySimple Policy = iota
	PolicyGuarded
)

func (p Policy) String() string {
	switch p {
	case PolicyGuarded:
		return "guarded"
	default:
		return "simple"
	}
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simple":
		return PolicySimple, nil
	case "guarded":
		return PolicyGuarded, nil
	}
	return PolicySimple, fmt.Errorf("unknown policy %q (want simple or guarded)", s)
}

type Params struct {
	Policy Policy
	// Blur applied right after the Lanczos upscale (simple) or after the
	// inward warp (guarded). Target-resolution pixels.
	SmoothSigma float64
	// Contrast increase in percent around the midpoint, applied to the
	// color channels before thresholding. Simple only. The default of 2.0
	// stretches by about 1.02, not by a factor of two.
	Contrast float64
	// Inward warp margin. Guarded only.
	// The outward warp uses Margin+Expand.
	Margin float64
	Expand float64
	// Alpha below Threshold becomes 0, everything else 255.
	Threshold uint8
	// Anti-aliasing blur applied to the hard thresholded edge.
	FinalSigma float64
	// Upscaler alpha below TrustAlpha is considered mostly transparent and
	// the whole mask pixel is used instead. Guarded only.
	TrustAlpha uint8
}

func DefaultParams(p Policy) Params {
	if p == PolicyGuarded {
		return Params{
			Policy:      PolicyGuarded,
			SmoothSigma: 3.0,
			Margin:      2.0,
			Expand:      2.0,
			Threshold:   128,
			FinalSigma:  0.75,
			TrustAlpha:  200,
		}
	}
	return Params{
		Policy:      PolicySimple,
		SmoothSigma: 6.0,
		Contrast:    2.0,
		Threshold:   128,
		FinalSigma:  0.5,
	}
}
