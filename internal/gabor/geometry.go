package gabor

import (
	"fmt"
	"slices"

	"github.com/ironsheep/gabor-tools-mcp/internal/ndarray"
)

func alignUp(n int) int   { return (n + RowAlign - 1) / RowAlign * RowAlign }
func alignDown(n int) int { return n / RowAlign * RowAlign }

// OutputShape returns the (rows, cols) of each response plane for an input
// image of inRows x inCols.
//
// Constrained output loses filterDim-1 pixels in each direction; SweepOff
// output matches the input.
func OutputShape(edge EdgeMode, inRows, inCols, filterDim int) (int, int) {
	if edge == Constrained {
		return inRows - (filterDim - 1), inCols - (filterDim - 1)
	}
	return inRows, inCols
}

// WorkingInputShape returns the (rows, minimum cols) of the integer input
// buffer. Callers round cols up to RowAlign; WorkingInputShape already does.
//
// Constrained: the buffer mirrors the input image.
// SweepOff: the buffer holds the image offset by filterDim/2 plus a full
// filterDim of padding on the right and bottom.
func WorkingInputShape(edge EdgeMode, inRows, inCols, filterDim int) (int, int) {
	if edge == Constrained {
		return inRows, alignUp(inCols)
	}
	outRows, outCols := OutputShape(edge, inRows, inCols, filterDim)
	return outRows + filterDim, alignUp(outCols + filterDim)
}

// WorkingOutputShape returns the (planes, rows, cols) of the integer output
// buffer.
func WorkingOutputShape(edge EdgeMode, inRows, inCols, filterDim, planes int) (int, int, int) {
	outRows, outCols := OutputShape(edge, inRows, inCols, filterDim)
	return planes, outRows, alignUp(outCols)
}

// Buffers groups the caller-owned arrays one Compute call writes.
type Buffers struct {
	Output     ndarray.View[float32]
	WorkInput  ndarray.View[int32]
	WorkOutput ndarray.View[int32]
}

// NewBuffers allocates correctly shaped, aligned output and working
// buffers for an inRows x inCols image and a bank of planes filters.
func NewBuffers(edge EdgeMode, phase PhaseMode, inRows, inCols, filterDim, planes int) Buffers {
	outRows, outCols := OutputShape(edge, inRows, inCols, filterDim)
	wiRows, wiCols := WorkingInputShape(edge, inRows, inCols, filterDim)
	woPlanes, woRows, woCols := WorkingOutputShape(edge, inRows, inCols, filterDim, planes)
	return Buffers{
		Output:     ndarray.Make[float32](planes*phase.Phases(), max(outRows, 0), max(outCols, 0)),
		WorkInput:  ndarray.Make[int32](wiRows, wiCols),
		WorkOutput: ndarray.Make[int32](woPlanes, max(woRows, 0), woCols),
	}
}

// geometry is everything derived from a validated Request.
type geometry struct {
	planes    int
	filterDim int
	half      int

	inRows, inCols   int
	outRows, outCols int

	// inBox is in working-buffer coordinates, outBox in output coordinates.
	inBox  Rect
	outBox Rect

	// shrink maps output coordinates back onto the alpha mask.
	shrinkX, shrinkY int

	tooSmall bool
}

// bankPlanes returns the filter bank as (planes, rows, cols), folding the
// singleton axis of a 4-d bank.
func bankPlanes(bank ndarray.View[int32]) (ndarray.View[int32], error) {
	switch bank.NDim() {
	case 3:
		return bank, nil
	case 4:
		if bank.Dim(1) != 1 {
			return bank, fmt.Errorf("%w: 4-d filter bank must have a singleton second axis, got %v", ErrDims, bank.Dims)
		}
		return ndarray.View[int32]{
			Data:    bank.Data,
			Dims:    []int{bank.Dim(0), bank.Dim(2), bank.Dim(3)},
			Strides: []int{bank.Stride(0), bank.Stride(2), bank.Stride(3)},
		}, nil
	default:
		return bank, fmt.Errorf("%w: filter bank must be 3-d or 4-d, got %d-d", ErrDims, bank.NDim())
	}
}

func lastAxisContiguous[T ndarray.Element](name string, v ndarray.View[T]) error {
	n := v.NDim()
	if n == 0 || (v.Stride(n-1) != 1 && v.Dim(n-1) > 1) {
		return fmt.Errorf("%w: %s rows must be contiguous", ErrDims, name)
	}
	return nil
}

// validate checks every precondition of Compute and derives the working
// geometry.
func (r *Request) validate() (geometry, error) {
	var g geometry

	bank, err := bankPlanes(r.FilterBank)
	if err != nil {
		return g, err
	}
	g.planes = bank.Dim(0)
	if g.planes == 0 {
		return g, fmt.Errorf("%w: empty filter bank", ErrDims)
	}
	if g.planes > MaxFilters {
		return g, fmt.Errorf("%w: %d planes, limit %d", ErrTooManyFilters, g.planes, MaxFilters)
	}
	if bank.Dim(1) != bank.Dim(2) {
		return g, fmt.Errorf("%w: filters must be square, got %dx%d", ErrFilterSize, bank.Dim(1), bank.Dim(2))
	}
	g.filterDim = bank.Dim(1)
	if !slices.Contains(SupportedFilterSizes, g.filterDim) {
		return g, fmt.Errorf("%w: %d (supported: %v)", ErrFilterSize, g.filterDim, SupportedFilterSizes)
	}
	g.half = g.filterDim / 2

	if r.Input.NDim() != 2 {
		return g, fmt.Errorf("%w: input must be 2-d, got %d-d", ErrDims, r.Input.NDim())
	}
	g.inRows, g.inCols = r.Input.Dim(0), r.Input.Dim(1)
	g.outRows, g.outCols = OutputShape(r.Params.EdgeMode, g.inRows, g.inCols, g.filterDim)
	if g.outRows <= 0 || g.outCols <= 0 {
		return g, fmt.Errorf("%w: %dx%d input is smaller than a %d filter", ErrDims, g.inRows, g.inCols, g.filterDim)
	}

	for _, err := range []error{
		lastAxisContiguous("filter bank", bank),
		lastAxisContiguous("input", r.Input),
		lastAxisContiguous("output", r.Output),
		lastAxisContiguous("working input", r.WorkInput),
		lastAxisContiguous("working output", r.WorkOutput),
	} {
		if err != nil {
			return g, err
		}
	}

	// Output planes
	wantPlanes := g.planes * r.Params.PhaseMode.Phases()
	if r.Output.NDim() != 3 || r.Output.Dim(0) != wantPlanes || r.Output.Dim(1) != g.outRows || r.Output.Dim(2) != g.outCols {
		return g, fmt.Errorf("%w: output is %v, want [%d %d %d]", ErrDims, r.Output.Dims, wantPlanes, g.outRows, g.outCols)
	}

	// Working buffers
	wiRows, wiCols := WorkingInputShape(r.Params.EdgeMode, g.inRows, g.inCols, g.filterDim)
	if r.WorkInput.NDim() != 2 || r.WorkInput.Dim(0) != wiRows || r.WorkInput.Dim(1) < wiCols {
		return g, fmt.Errorf("%w: working input is %v, want [%d >=%d]", ErrDims, r.WorkInput.Dims, wiRows, wiCols)
	}
	if r.WorkInput.Dim(1)%RowAlign != 0 || r.WorkInput.Stride(0)%RowAlign != 0 {
		return g, fmt.Errorf("%w: working input row length %d", ErrAlignment, r.WorkInput.Dim(1))
	}
	_, woRows, woCols := WorkingOutputShape(r.Params.EdgeMode, g.inRows, g.inCols, g.filterDim, g.planes)
	if r.WorkOutput.NDim() != 3 || r.WorkOutput.Dim(0) != g.planes || r.WorkOutput.Dim(1) != woRows || r.WorkOutput.Dim(2) < woCols {
		return g, fmt.Errorf("%w: working output is %v, want [%d %d >=%d]", ErrDims, r.WorkOutput.Dims, g.planes, woRows, woCols)
	}
	if r.WorkOutput.Dim(2)%RowAlign != 0 || r.WorkOutput.Stride(1)%RowAlign != 0 {
		return g, fmt.Errorf("%w: working output row length %d", ErrAlignment, r.WorkOutput.Dim(2))
	}

	// Boxes
	bounds := Rect{Right: g.inCols, Bottom: g.inRows}
	if !r.ROI.Valid() || !r.ROI.In(bounds) {
		return g, fmt.Errorf("%w: region of interest %v outside input %v", ErrGeometry, r.ROI, bounds)
	}
	if !r.ImageBox.Valid() || !r.ImageBox.In(bounds) {
		return g, fmt.Errorf("%w: image box %v outside input %v", ErrGeometry, r.ImageBox, bounds)
	}
	if !r.ROI.In(r.ImageBox) {
		return g, fmt.Errorf("%w: region of interest %v outside image box %v", ErrGeometry, r.ROI, r.ImageBox)
	}

	if r.Alpha != nil {
		if r.Alpha.NDim() != 2 || r.Alpha.Dim(0) < g.inRows || r.Alpha.Dim(1) < g.inCols {
			return g, fmt.Errorf("%w: alpha mask %v smaller than input %v", ErrDims, r.Alpha.Dims, r.Input.Dims)
		}
		if err := lastAxisContiguous("alpha mask", *r.Alpha); err != nil {
			return g, err
		}
	}

	if r.Params.PostProcMethod != PostProcRaw {
		if err := checkLUT(r.LUT, r.Params.PostProcScalar); err != nil {
			return g, err
		}
	}

	// The window of the first output position starts at the box origin in
	// both modes.
	g.inBox = r.ROI
	g.outBox = OutputBox(r.Params.EdgeMode, r.ROI, g.filterDim)
	g.shrinkX = (g.inCols - g.outCols) / 2
	g.shrinkY = (g.inRows - g.outRows) / 2

	// A box no larger than the filter has nothing worth convolving.
	g.tooSmall = r.ROI.Width() <= g.filterDim || r.ROI.Height() <= g.filterDim

	return g, nil
}
