package gabor

import (
	"math/rand"

	"github.com/ironsheep/gabor-tools-mcp/internal/ndarray"
)

// identityBank returns planes filters with a single centre tap. weights
// overrides the tap of the first planes; the rest use 1<<ScalingShift.
func identityBank(planes, dim int, weights ...int32) ndarray.View[int32] {
	bank := ndarray.Make[int32](planes, dim, dim)
	for p := 0; p < planes; p++ {
		w := int32(1 << ScalingShift)
		if p < len(weights) {
			w = weights[p]
		}
		bank.Set(w, p, dim/2, dim/2)
	}
	return bank
}

// boxBank returns a single filter that sums its window.
func boxBank(dim int) ndarray.View[int32] {
	bank := ndarray.Make[int32](1, dim, dim)
	bank.Fill(1 << ScalingShift)
	return bank
}

func imageOf(rows, cols int, fn func(y, x int) float32) ndarray.View[float32] {
	img := ndarray.Make[float32](rows, cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			img.Set(fn(y, x), y, x)
		}
	}
	return img
}

func constImage(rows, cols int, v float32) ndarray.View[float32] {
	return imageOf(rows, cols, func(int, int) float32 { return v })
}

func randomImage(rows, cols int, seed int64) ndarray.View[float32] {
	rng := rand.New(rand.NewSource(seed))
	return imageOf(rows, cols, func(int, int) float32 { return float32(rng.Intn(256)) })
}

func testParams() Params {
	p := DefaultParams()
	p.GainConstant = 256
	return p
}

// newTestRequest builds a request over the whole image with freshly
// allocated buffers.
func newTestRequest(in ndarray.View[float32], bank ndarray.View[int32], p Params) *Request {
	planes, dim := bank.Dim(0), bank.Dim(1)
	buf := NewBuffers(p.EdgeMode, p.PhaseMode, in.Dim(0), in.Dim(1), dim, planes)
	full := Rect{Right: in.Dim(1), Bottom: in.Dim(0)}
	return &Request{
		FilterBank: bank,
		Input:      in,
		ROI:        full,
		ImageBox:   full,
		Output:     buf.Output,
		Params:     p,
		WorkInput:  buf.WorkInput,
		WorkOutput: buf.WorkOutput,
	}
}
