package gabor

import (
	"fmt"
	"math"
	"slices"

	"github.com/ironsheep/gabor-tools-mcp/internal/ndarray"
)

// BankSpec describes a bank of evenly rotated Gabor filters.
type BankSpec struct {
	// Size is the filter dimension; one of SupportedFilterSizes.
	Size int `json:"size" yaml:"size"`

	// Orientations is the number of filters, spread evenly over 180 degrees
	// starting at 0 (vertical bars).
	Orientations int `json:"orientations" yaml:"orientations"`

	// Wavelength of the carrier in pixels.
	Wavelength float64 `json:"wavelength" yaml:"wavelength"`

	// Sigma is the Gaussian envelope width in pixels.
	Sigma float64 `json:"sigma" yaml:"sigma"`

	// Aspect is the envelope's length-to-width ratio (gamma). Values below 1
	// elongate the filter along its bars.
	Aspect float64 `json:"aspect" yaml:"aspect"`

	// CircleEdge zeroes coefficients outside the inscribed circle.
	CircleEdge bool `json:"circle_edge" yaml:"circle_edge"`
}

// DefaultBankSpec returns a four-orientation bank of the given size with
// wavelength and envelope proportional to it.
func DefaultBankSpec(size int) BankSpec {
	return BankSpec{
		Size:         size,
		Orientations: 4,
		Wavelength:   0.62 * float64(size),
		Sigma:        0.5 * float64(size),
		Aspect:       0.3,
	}
}

// Validate reports the first unusable field.
func (s BankSpec) Validate() error {
	if !slices.Contains(SupportedFilterSizes, s.Size) {
		return fmt.Errorf("%w: %d (supported: %v)", ErrFilterSize, s.Size, SupportedFilterSizes)
	}
	if s.Orientations < 1 || s.Orientations > MaxFilters {
		return fmt.Errorf("%w: %d orientations, allowed 1-%d", ErrTooManyFilters, s.Orientations, MaxFilters)
	}
	if !(s.Wavelength > 0) || !(s.Sigma > 0) || !(s.Aspect > 0) {
		return fmt.Errorf("gabor: wavelength, sigma and aspect must be positive (got %g, %g, %g)", s.Wavelength, s.Sigma, s.Aspect)
	}
	return nil
}

// OrientationDegrees returns the angle of filter i.
func (s BankSpec) OrientationDegrees(i int) float64 {
	return 180 * float64(i) / float64(s.Orientations)
}

// NewFilterBank builds the fixed-point filter bank Compute expects, shaped
// (orientations, size, size).
//
// Each filter is the even (cosine) Gabor
//
//	exp(-(x'^2 + aspect^2*y'^2) / (2*sigma^2)) * cos(2*pi*x'/wavelength)
//
// with x' = x*cos(theta) + y*sin(theta), y' = -x*sin(theta) + y*cos(theta),
// made zero-mean over its support, scaled to unit L1 norm and multiplied
// by 1<<ScalingShift. Unit L1 norm bounds every response by the largest
// input magnitude.
func NewFilterBank(spec BankSpec) (ndarray.View[int32], error) {
	if err := spec.Validate(); err != nil {
		return ndarray.View[int32]{}, err
	}
	n := spec.Size
	half := n / 2
	bank := ndarray.Make[int32](spec.Orientations, n, n)
	scale := float64(int64(1) << ScalingShift)
	vals := make([]float64, n*n)
	support := make([]bool, n*n)

	for o := 0; o < spec.Orientations; o++ {
		theta := spec.OrientationDegrees(o) * math.Pi / 180
		cosT, sinT := math.Cos(theta), math.Sin(theta)

		var sum float64
		var count int
		for y := -half; y <= half; y++ {
			for x := -half; x <= half; x++ {
				i := (y+half)*n + (x + half)
				support[i] = !spec.CircleEdge || math.Hypot(float64(x), float64(y)) <= float64(half)+0.5
				if !support[i] {
					vals[i] = 0
					continue
				}
				xr := float64(x)*cosT + float64(y)*sinT
				yr := -float64(x)*sinT + float64(y)*cosT
				env := math.Exp(-(xr*xr + spec.Aspect*spec.Aspect*yr*yr) / (2 * spec.Sigma * spec.Sigma))
				vals[i] = env * math.Cos(2*math.Pi*xr/spec.Wavelength)
				sum += vals[i]
				count++
			}
		}

		mean := sum / float64(count)
		var l1 float64
		for i := range vals {
			if support[i] {
				vals[i] -= mean
				l1 += math.Abs(vals[i])
			}
		}
		if l1 == 0 {
			return ndarray.View[int32]{}, fmt.Errorf("gabor: orientation %d has an all-zero filter", o)
		}

		plane := bank.Plane(o)
		for i, v := range vals {
			plane.Data[i] = int32(math.Round(v / l1 * scale))
		}
	}
	return bank, nil
}
