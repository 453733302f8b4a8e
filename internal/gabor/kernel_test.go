package gabor

import (
	"math/rand"
	"testing"
)

func TestKernels_MatchGeneric(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, dim := range SupportedFilterSizes {
		stride := 24
		in := make([]int32, stride*dim+dim)
		for i := range in {
			in[i] = int32(rng.Intn(512) - 256)
		}
		coeffs := make([]int32, dim*dim)
		for i := range coeffs {
			coeffs[i] = int32(rng.Intn(8192) - 4096)
		}

		want := genericKernel(dim)(in, 3, stride, coeffs)
		got := unrolledKernel(dim)(in, 3, stride, coeffs)
		if got != want {
			t.Errorf("size %d: unrolled %d, generic %d", dim, got, want)
		}
		if k := kernelFor(dim)(in, 3, stride, coeffs); k != want {
			t.Errorf("size %d: dispatched %d, generic %d", dim, k, want)
		}
	}
}

func TestGenericKernel_RowAdvance(t *testing.T) {
	// 5x5 window of ones at the top-left of an 8-wide buffer; everything
	// else is 100 so a wrong row skip shows up.
	stride := 8
	in := make([]int32, stride*5)
	for i := range in {
		in[i] = 100
	}
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			in[y*stride+x] = 1
		}
	}
	coeffs := make([]int32, 25)
	for i := range coeffs {
		coeffs[i] = 2
	}
	if got := genericKernel(5)(in, 0, stride, coeffs); got != 50 {
		t.Errorf("got %d, want 50", got)
	}
}

func TestUnrolledKernel_Unsupported(t *testing.T) {
	for _, dim := range []int{3, 6, 15} {
		if unrolledKernel(dim) != nil {
			t.Errorf("size %d should have no unrolled kernel", dim)
		}
	}
}

func TestKernelName(t *testing.T) {
	switch KernelName() {
	case "generic", "unrolled-avx2", "unrolled-asimd":
	default:
		t.Errorf("unexpected kernel name %q", KernelName())
	}
}
