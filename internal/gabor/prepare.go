package gabor

import (
	"fmt"

	"github.com/ironsheep/gabor-tools-mcp/internal/ndarray"
)

// prepareInput converts the float input into the integer working buffer.
//
// roi is in image coordinates, imageBox bounds the real image data. In
// Constrained mode the buffer shares the image's coordinates; in SweepOff
// mode buffer (y, x) holds image (y-half, x-half).
func prepareInput(in ndarray.View[float32], work ndarray.View[int32], half int, roi, imageBox Rect, edge EdgeMode, fill float32) error {
	switch edge {
	case Constrained:
		prepareConstrained(in, work, roi, imageBox)
		return nil
	case SweepOff:
		return prepareSweepOff(in, work, half, roi, imageBox, fill)
	default:
		return fmt.Errorf("%w: unknown edge mode %d", ErrGeometry, edge)
	}
}

// prepareConstrained copies the pixels under roi into the buffer. Cells
// outside the copy box are left untouched; the convolution never reads them.
func prepareConstrained(in ndarray.View[float32], work ndarray.View[int32], roi, imageBox Rect) {
	box := roi.Intersect(imageBox)
	if box.Empty() {
		return
	}
	// Start on an aligned column, but never before the real image data.
	box.Left = max(alignDown(box.Left), imageBox.Left)

	for y := box.Top; y < box.Bottom; y++ {
		src := in.Row(y)
		dst := work.Row(y)
		truncateRow(dst[box.Left:box.Right], src[box.Left:box.Right], box.Left)
	}
}

// prepareSweepOff writes the fill region of the buffer: real pixels where
// the image box has data, the fill value everywhere else.
func prepareSweepOff(in ndarray.View[float32], work ndarray.View[int32], half int, roi, imageBox Rect, fill float32) error {
	filterDim := 2*half + 1
	bufBox := Rect{Right: work.Dim(1), Bottom: work.Dim(0)}

	// roi already describes the output footprint, so the buffer needs a full
	// filter of extra rows and columns to the right and below it.
	fillBox := Rect{
		Left:   roi.Left,
		Top:    roi.Top,
		Right:  roi.Right + filterDim,
		Bottom: roi.Bottom + filterDim,
	}.Intersect(bufBox)

	// Image pixels the windows reach, clamped so reads stay inside the box.
	pixels := roi.Intersect(imageBox).Inset(-half).Intersect(imageBox)
	pixBox := pixels.Translate(half, half)

	if !pixels.Empty() && (pixBox.Left < half || pixBox.Top < half || pixBox.Right > bufBox.Right-half || pixBox.Bottom > bufBox.Bottom-half) {
		return fmt.Errorf("%w: pixel box %v leaves the padded buffer %v", ErrGeometry, pixBox, bufBox)
	}

	fv := int32(fill)
	for y := fillBox.Top; y < fillBox.Bottom; y++ {
		dst := work.Row(y)
		if pixels.Empty() || y < pixBox.Top || y >= pixBox.Bottom {
			fillRow(dst[fillBox.Left:fillBox.Right], fv)
			continue
		}
		left := min(max(pixBox.Left, fillBox.Left), fillBox.Right)
		right := max(min(pixBox.Right, fillBox.Right), left)
		fillRow(dst[fillBox.Left:left], fv)
		src := in.Row(y - half)
		truncateRow(dst[left:right], src[left-half:right-half], left)
		fillRow(dst[right:fillBox.Right], fv)
	}
	return nil
}

// truncateRow converts src into dst with truncation toward zero. col is the
// buffer column of dst[0]; the loop runs an unaligned prefix up to the next
// multiple of RowAlign, then whole blocks, then the remainder.
func truncateRow(dst []int32, src []float32, col int) {
	n := len(dst)
	i := 0
	for ; i < n && (col+i)%RowAlign != 0; i++ {
		dst[i] = int32(src[i])
	}
	for ; i+RowAlign <= n; i += RowAlign {
		d := dst[i : i+RowAlign : i+RowAlign]
		s := src[i : i+RowAlign : i+RowAlign]
		d[0] = int32(s[0])
		d[1] = int32(s[1])
		d[2] = int32(s[2])
		d[3] = int32(s[3])
	}
	for ; i < n; i++ {
		dst[i] = int32(src[i])
	}
}

func fillRow(dst []int32, v int32) {
	for i := range dst {
		dst[i] = v
	}
}
