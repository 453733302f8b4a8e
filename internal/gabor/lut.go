package gabor

import (
	"fmt"
	"math"

	"github.com/ironsheep/gabor-tools-mcp/internal/ndarray"
)

// DefaultLUTBins is the table length used when callers don't choose one.
const DefaultLUTBins = 256

// LUTScalar returns the PostProcScalar that spreads gained responses in
// [0, gainConstant] over a table of bins entries.
func LUTScalar(bins int, gainConstant float32) float32 {
	if bins < 2 || gainConstant <= 0 {
		return 0
	}
	return float32(bins-1) / gainConstant
}

// NewPostProcLUT builds the response curve for a non-raw post-processing
// method.
//
// Bin i stands for the normalized response t = i/(bins-1). Sigmoid maps t
// through 1/(1+exp(-slope*(t-midpoint))); threshold maps it to 1 when
// t >= midpoint and 0 otherwise. The result is then squeezed into
// [lo, hi], which must lie inside [0, 1].
func NewPostProcLUT(method PostProcMethod, bins int, slope, midpoint, lo, hi float32) (ndarray.View[float32], error) {
	if bins < 2 {
		return ndarray.View[float32]{}, fmt.Errorf("%w: need at least 2 bins, got %d", ErrLUT, bins)
	}
	if lo < 0 || hi > 1 || lo > hi {
		return ndarray.View[float32]{}, fmt.Errorf("%w: output range [%g, %g] not inside [0, 1]", ErrLUT, lo, hi)
	}

	lut := ndarray.Make[float32](bins)
	for i := 0; i < bins; i++ {
		t := float64(i) / float64(bins-1)
		var v float64
		switch method {
		case PostProcSigmoid:
			v = 1 / (1 + math.Exp(-float64(slope)*(t-float64(midpoint))))
		case PostProcThreshold:
			if t >= float64(midpoint) {
				v = 1
			}
		default:
			return ndarray.View[float32]{}, fmt.Errorf("%w: no table for %s post-processing", ErrLUT, method)
		}
		lut.Data[i] = float32(float64(lo) + v*float64(hi-lo))
	}
	return lut, nil
}

// checkLUT verifies a table is present, one-dimensional and bounded to
// [0, 1], and that the bin scalar is usable.
func checkLUT(lut *ndarray.View[float32], scalar float32) error {
	if lut == nil || lut.NDim() != 1 || lut.Dim(0) == 0 {
		return fmt.Errorf("%w: post-processing needs a non-empty 1-d table", ErrLUT)
	}
	if !(scalar > 0) || math.IsInf(float64(scalar), 0) {
		return fmt.Errorf("%w: post-processing scalar %g must be positive", ErrLUT, scalar)
	}
	for i := 0; i < lut.Dim(0); i++ {
		if v := lut.At(i); !(v >= 0 && v <= 1) {
			return fmt.Errorf("%w: entry %d = %g outside [0, 1]", ErrLUT, i, v)
		}
	}
	return nil
}

// lutValues returns the table as a contiguous slice.
func lutValues(lut *ndarray.View[float32]) []float32 {
	if lut.Contiguous() {
		return lut.Data[:lut.Len()]
	}
	return lut.Values()
}
