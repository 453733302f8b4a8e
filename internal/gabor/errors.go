package gabor

import "errors"

var (
	// ErrGeometry reports a region of interest or image box that does not
	// fit the input.
	ErrGeometry = errors.New("gabor: invalid geometry")

	// ErrAlignment reports a working buffer whose rows are not a multiple
	// of RowAlign.
	ErrAlignment = errors.New("gabor: misaligned buffer")

	// ErrFilterSize reports a non-square filter or a size outside
	// SupportedFilterSizes.
	ErrFilterSize = errors.New("gabor: unsupported filter size")

	// ErrTooManyFilters reports a bank with more than MaxFilters planes.
	ErrTooManyFilters = errors.New("gabor: too many filters")

	// ErrDims reports a buffer whose shape disagrees with the edge mode,
	// filter size or phase mode.
	ErrDims = errors.New("gabor: inconsistent dimensions")

	// ErrLUT reports a missing or out-of-range post-processing table.
	ErrLUT = errors.New("gabor: invalid lookup table")

	// ErrInternal wraps a failure raised inside the numeric core.
	ErrInternal = errors.New("gabor: internal failure")
)
