package gabor

import (
	"os"
	"runtime"

	"golang.org/x/sys/cpu"
)

// dotFunc returns the sum over a filterDim x filterDim window of in starting
// at offset p, where consecutive window rows are stride elements apart.
type dotFunc func(in []int32, p, stride int, coeffs []int32) int32

var (
	useAVX2  = cpu.X86.HasAVX2
	useASIMD = cpu.ARM64.HasASIMD

	// unrolled selects the size-specialized kernels. GABOR_NO_UNROLL forces
	// the generic loop, which is handy when comparing the two.
	unrolled = (useAVX2 && runtime.GOARCH == "amd64" || useASIMD && runtime.GOARCH == "arm64") &&
		os.Getenv("GABOR_NO_UNROLL") == ""
)

// KernelName reports which convolution kernel family is active.
func KernelName() string {
	switch {
	case !unrolled:
		return "generic"
	case useAVX2:
		return "unrolled-avx2"
	default:
		return "unrolled-asimd"
	}
}

// kernelFor picks the dot product for a filter size.
func kernelFor(filterDim int) dotFunc {
	if unrolled {
		if k := unrolledKernel(filterDim); k != nil {
			return k
		}
	}
	return genericKernel(filterDim)
}

func unrolledKernel(filterDim int) dotFunc {
	switch filterDim {
	case 5:
		return dot5
	case 7:
		return dot7
	case 9:
		return dot9
	case 11:
		return dot11
	case 13:
		return dot13
	}
	return nil
}

// genericKernel is the reference nested loop. Between window rows the read
// position skips stride-filterDim elements.
func genericKernel(filterDim int) dotFunc {
	return func(in []int32, p, stride int, coeffs []int32) int32 {
		var sum int32
		advance := stride - filterDim
		k := 0
		for ky := 0; ky < filterDim; ky++ {
			for kx := 0; kx < filterDim; kx++ {
				sum += in[p] * coeffs[k]
				p++
				k++
			}
			p += advance
		}
		return sum
	}
}

func dot5(in []int32, p, stride int, c []int32) int32 {
	var s int32
	for k := 0; k < 25; k += 5 {
		r := in[p : p+5 : p+5]
		w := c[k : k+5 : k+5]
		s += r[0]*w[0] + r[1]*w[1] + r[2]*w[2] + r[3]*w[3] + r[4]*w[4]
		p += stride
	}
	return s
}

func dot7(in []int32, p, stride int, c []int32) int32 {
	var s int32
	for k := 0; k < 49; k += 7 {
		r := in[p : p+7 : p+7]
		w := c[k : k+7 : k+7]
		s += r[0]*w[0] + r[1]*w[1] + r[2]*w[2] + r[3]*w[3] + r[4]*w[4] + r[5]*w[5] + r[6]*w[6]
		p += stride
	}
	return s
}

func dot9(in []int32, p, stride int, c []int32) int32 {
	var s int32
	for k := 0; k < 81; k += 9 {
		r := in[p : p+9 : p+9]
		w := c[k : k+9 : k+9]
		s += r[0]*w[0] + r[1]*w[1] + r[2]*w[2] + r[3]*w[3] + r[4]*w[4] +
			r[5]*w[5] + r[6]*w[6] + r[7]*w[7] + r[8]*w[8]
		p += stride
	}
	return s
}

func dot11(in []int32, p, stride int, c []int32) int32 {
	var s int32
	for k := 0; k < 121; k += 11 {
		r := in[p : p+11 : p+11]
		w := c[k : k+11 : k+11]
		s += r[0]*w[0] + r[1]*w[1] + r[2]*w[2] + r[3]*w[3] + r[4]*w[4] + r[5]*w[5] +
			r[6]*w[6] + r[7]*w[7] + r[8]*w[8] + r[9]*w[9] + r[10]*w[10]
		p += stride
	}
	return s
}

func dot13(in []int32, p, stride int, c []int32) int32 {
	var s int32
	for k := 0; k < 169; k += 13 {
		r := in[p : p+13 : p+13]
		w := c[k : k+13 : k+13]
		s += r[0]*w[0] + r[1]*w[1] + r[2]*w[2] + r[3]*w[3] + r[4]*w[4] + r[5]*w[5] + r[6]*w[6] +
			r[7]*w[7] + r[8]*w[8] + r[9]*w[9] + r[10]*w[10] + r[11]*w[11] + r[12]*w[12]
		p += stride
	}
	return s
}
