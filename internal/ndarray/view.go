package ndarray

import (
	"errors"
	"fmt"
)

// Element is the set of sample types a View can hold.
type Element interface {
	~int32 | ~float32
}

// ErrShape is returned when dims, strides and backing slice disagree.
var ErrShape = errors.New("ndarray: inconsistent shape")

// View is a non-owning strided window over a typed slice.
//
// Strides are counted in elements, not bytes. A View never copies or frees
// Data; several views may share the same backing slice.
type View[T Element] struct {
	// Data is the borrowed backing storage.
	Data []T

	// Dims holds the extent of each axis, outermost first.
	Dims []int

	// Strides holds the element distance between neighbours along each axis.
	Strides []int
}

// New returns a C-ordered (row-major) view of data with the given extents.
//
// Returns an error if any extent is negative or data is shorter than the
// product of dims.
func New[T Element](data []T, dims ...int) (View[T], error) {
	strides := make([]int, len(dims))
	acc := 1
	for i := len(dims) - 1; i >= 0; i-- {
		if dims[i] < 0 {
			return View[T]{}, fmt.Errorf("%w: negative extent %d on axis %d", ErrShape, dims[i], i)
		}
		strides[i] = acc
		acc *= dims[i]
	}
	if len(data) < acc {
		return View[T]{}, fmt.Errorf("%w: need %d elements, have %d", ErrShape, acc, len(data))
	}
	return View[T]{Data: data, Dims: append([]int(nil), dims...), Strides: strides}, nil
}

// Make allocates a zeroed C-ordered view with the given extents.
func Make[T Element](dims ...int) View[T] {
	n := 1
	for _, d := range dims {
		if d < 0 {
			panic(fmt.Sprintf("ndarray: negative extent %d", d))
		}
		n *= d
	}
	v, err := New(make([]T, n), dims...)
	if err != nil {
		panic(err)
	}
	return v
}

// Strided wraps data with explicit extents and strides.
//
// The largest reachable offset must lie inside data. Strides must be
// non-negative.
func Strided[T Element](data []T, dims, strides []int) (View[T], error) {
	if len(dims) != len(strides) {
		return View[T]{}, fmt.Errorf("%w: %d dims but %d strides", ErrShape, len(dims), len(strides))
	}
	last := 0
	empty := false
	for i := range dims {
		if dims[i] < 0 || strides[i] < 0 {
			return View[T]{}, fmt.Errorf("%w: axis %d has extent %d stride %d", ErrShape, i, dims[i], strides[i])
		}
		if dims[i] == 0 {
			empty = true
		}
		last += (dims[i] - 1) * strides[i]
	}
	if !empty && last >= len(data) {
		return View[T]{}, fmt.Errorf("%w: offset %d outside %d elements", ErrShape, last, len(data))
	}
	return View[T]{
		Data:    data,
		Dims:    append([]int(nil), dims...),
		Strides: append([]int(nil), strides...),
	}, nil
}

// NDim returns the number of axes.
func (v View[T]) NDim() int { return len(v.Dims) }

// Dim returns the extent of axis i.
func (v View[T]) Dim(i int) int { return v.Dims[i] }

// Stride returns the element stride of axis i.
func (v View[T]) Stride(i int) int { return v.Strides[i] }

// Len returns the number of addressable elements.
func (v View[T]) Len() int {
	n := 1
	for _, d := range v.Dims {
		n *= d
	}
	return n
}

// IsNil reports whether the view has no backing storage.
func (v View[T]) IsNil() bool { return v.Data == nil }

// Offset converts a full index into a position in Data, panicking on an
// index outside the view.
func (v View[T]) Offset(idx ...int) int {
	if len(idx) != len(v.Dims) {
		panic(fmt.Sprintf("ndarray: %d indices for %d-d view", len(idx), len(v.Dims)))
	}
	off := 0
	for i, x := range idx {
		if x < 0 || x >= v.Dims[i] {
			panic(fmt.Sprintf("ndarray: index %d out of range [0,%d) on axis %d", x, v.Dims[i], i))
		}
		off += x * v.Strides[i]
	}
	return off
}

// At returns the element at idx.
func (v View[T]) At(idx ...int) T { return v.Data[v.Offset(idx...)] }

// Set stores val at idx.
func (v View[T]) Set(val T, idx ...int) { v.Data[v.Offset(idx...)] = val }

// Row returns the contiguous last-axis run addressed by the leading indices.
// The last axis must have stride 1.
func (v View[T]) Row(idx ...int) []T {
	n := len(v.Dims)
	if n == 0 || len(idx) != n-1 {
		panic(fmt.Sprintf("ndarray: Row needs %d indices, got %d", n-1, len(idx)))
	}
	if v.Strides[n-1] != 1 && v.Dims[n-1] > 1 {
		panic("ndarray: Row on a view whose last axis is not contiguous")
	}
	off := v.Offset(append(append([]int(nil), idx...), 0)...)
	return v.Data[off : off+v.Dims[n-1]]
}

// Plane returns the sub-view at position i of the first axis.
func (v View[T]) Plane(i int) View[T] {
	if len(v.Dims) == 0 {
		panic("ndarray: Plane on a 0-d view")
	}
	if i < 0 || i >= v.Dims[0] {
		panic(fmt.Sprintf("ndarray: plane %d out of range [0,%d)", i, v.Dims[0]))
	}
	off := i * v.Strides[0]
	end := len(v.Data)
	return View[T]{Data: v.Data[off:end], Dims: v.Dims[1:], Strides: v.Strides[1:]}
}

// Reshape returns a C-ordered view of the same storage with new extents.
// Only contiguous views can be reshaped.
func (v View[T]) Reshape(dims ...int) (View[T], error) {
	if !v.Contiguous() {
		return View[T]{}, fmt.Errorf("%w: reshape of non-contiguous view", ErrShape)
	}
	n := 1
	for _, d := range dims {
		n *= d
	}
	if n != v.Len() {
		return View[T]{}, fmt.Errorf("%w: cannot reshape %v into %v", ErrShape, v.Dims, dims)
	}
	return New(v.Data, dims...)
}

// Contiguous reports whether the view is C-ordered without gaps.
func (v View[T]) Contiguous() bool {
	acc := 1
	for i := len(v.Dims) - 1; i >= 0; i-- {
		if v.Dims[i] != 1 && v.Strides[i] != acc {
			return false
		}
		acc *= v.Dims[i]
	}
	return true
}

// Fill writes val to every element of the view.
func (v View[T]) Fill(val T) {
	if v.Len() == 0 {
		return
	}
	if v.Contiguous() {
		d := v.Data[:v.Len()]
		for i := range d {
			d[i] = val
		}
		return
	}
	v.each(0, 0, func(off int) { v.Data[off] = val })
}

func (v View[T]) each(axis, base int, fn func(off int)) {
	if axis == len(v.Dims) {
		fn(base)
		return
	}
	for i := 0; i < v.Dims[axis]; i++ {
		v.each(axis+1, base+i*v.Strides[axis], fn)
	}
}

// Values returns a freshly allocated C-ordered copy of the view's elements.
func (v View[T]) Values() []T {
	out := make([]T, 0, v.Len())
	if v.Len() == 0 {
		return out
	}
	v.each(0, 0, func(off int) { out = append(out, v.Data[off]) })
	return out
}
