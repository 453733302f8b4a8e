package gabor

import (
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/ironsheep/gabor-tools-mcp/internal/ndarray"
)

// Request carries every argument of one Compute call. All views are
// borrowed; Compute writes only Output, WorkInput and WorkOutput, which
// must not alias each other or any input.
type Request struct {
	// FilterBank holds fixed-point coefficients shaped (planes, dim, dim) or
	// (planes, 1, dim, dim), pre-multiplied by 1<<ScalingShift.
	FilterBank ndarray.View[int32]

	// Input is the (rows, cols) float image.
	Input ndarray.View[float32]

	// Alpha optionally restricts responses to positions whose mask sample is
	// non-zero. It is indexed in input coordinates and must be at least as
	// large as Input.
	Alpha *ndarray.View[float32]

	// ROI is the region to filter, in input coordinates.
	ROI Rect

	// ImageBox bounds the part of Input holding real image data.
	ImageBox Rect

	// Output receives phases*planes response planes of OutputShape.
	Output ndarray.View[float32]

	Params Params

	// WorkInput and WorkOutput are scratch buffers shaped by
	// WorkingInputShape and WorkingOutputShape.
	WorkInput  ndarray.View[int32]
	WorkOutput ndarray.View[int32]

	// LUT is required when Params.PostProcMethod is not PostProcRaw.
	LUT *ndarray.View[float32]
}

var logger atomic.Pointer[zerolog.Logger]

func init() {
	nop := zerolog.Nop()
	logger.Store(&nop)
}

// SetLogger installs the logger Compute failures are reported to.
func SetLogger(l zerolog.Logger) {
	logger.Store(&l)
}

// Compute runs the Gabor filter bank over req.Input.
//
// Validation failures return wrapped sentinel errors (ErrGeometry,
// ErrAlignment, ErrFilterSize, ErrTooManyFilters, ErrDims, ErrLUT). A
// region of interest no larger than the filter in either direction is not
// an error: every output cell is set to NullResponse. On error the output
// buffers hold unspecified contents.
func Compute(req *Request) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	g, err := req.validate()
	if err != nil {
		return err
	}

	if g.tooSmall {
		zeroOutputs(req.Output)
		return nil
	}

	if err := prepareInput(req.Input, req.WorkInput, g.half, g.inBox, req.ImageBox, req.Params.EdgeMode, req.Params.OffImageFill); err != nil {
		return err
	}

	bank, _ := bankPlanes(req.FilterBank)
	var st statistics
	convolve(req.WorkInput, req.WorkOutput, bank, req.Alpha, g, req.Params, &st)

	var lut []float32
	if req.Params.PostProcMethod != PostProcRaw {
		lut = lutValues(req.LUT)
	}
	postProcess(req.WorkOutput, req.Output, g, req.Params, &st, lut)
	return nil
}

// ComputeCode runs Compute and reports the outcome as a status code: 0 on
// success, -1 on any failure. Failures are logged as warnings.
func ComputeCode(req *Request) int32 {
	if err := Compute(req); err != nil {
		logger.Load().Warn().Err(err).Str("component", "gabor").Msg("gabor compute failed")
		return -1
	}
	return 0
}
