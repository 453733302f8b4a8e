package gabor

import (
	"github.com/ironsheep/gabor-tools-mcp/internal/ndarray"
)

// statPolicy is the running statistic gathered during convolution.
type statPolicy int

const (
	statNone statPolicy = iota
	statMaxAbs
	statMaxMin
	statSumAbs
	statSumPosNeg
)

func policyFor(phase PhaseMode, method NormalizeMethod) statPolicy {
	switch {
	case method.maxClass() && phase == SinglePhase:
		return statMaxAbs
	case method.maxClass():
		return statMaxMin
	case method.meanClass() && phase == SinglePhase:
		return statSumAbs
	case method.meanClass():
		return statSumPosNeg
	default:
		return statNone
	}
}

// statistics holds the per-slot accumulators of one Compute call. Slot 0 is
// shared by every filter under ScopeGlobal. Negative statistics are kept as
// magnitudes.
type statistics struct {
	pos    [MaxFilters]uint64
	neg    [MaxFilters]uint64
	pixels int64
}

// slot returns the accumulator index for filter f.
func slot(scope NormalizeScope, f int) int {
	if scope == ScopePerOrient {
		return f
	}
	return 0
}

func planeCoeffs(bank ndarray.View[int32], f int) []int32 {
	p := bank.Plane(f)
	if p.Contiguous() {
		return p.Data[:p.Len()]
	}
	return p.Values()
}

// convolve writes the raw fixed-point response of every filter at every
// output position in g.outBox, gathering the statistics the normalization
// method needs.
//
// With an alpha mask, positions whose mask sample is zero get a zero
// response and do not count towards the statistics. Without one, every
// position in the box is computed. Cells outside the box are not touched.
func convolve(work ndarray.View[int32], out ndarray.View[int32], bank ndarray.View[int32], alpha *ndarray.View[float32], g geometry, p Params, st *statistics) {
	policy := policyFor(p.PhaseMode, p.NormalizeMethod)
	box := g.outBox
	dot := kernelFor(g.filterDim)
	stride := work.Stride(0)

	if alpha == nil {
		st.pixels = int64(box.Area())
		if p.NormalizeScope == ScopeGlobal {
			st.pixels *= int64(g.planes)
		}
	}

	for f := 0; f < g.planes; f++ {
		coeffs := planeCoeffs(bank, f)
		s := slot(p.NormalizeScope, f)
		if p.NormalizeScope == ScopePerOrient {
			st.pos[s], st.neg[s] = 0, 0
		}
		var counted int64

		for oy := box.Top; oy < box.Bottom; oy++ {
			outRow := out.Plane(f).Row(oy)
			var alphaRow []float32
			if alpha != nil {
				alphaRow = alpha.Row(oy + g.shrinkY)
			}
			base := work.Offset(oy, 0)
			var rowPos, rowNeg uint64

			for ox := box.Left; ox < box.Right; ox++ {
				if alphaRow != nil {
					if alphaRow[ox+g.shrinkX] == 0 {
						outRow[ox] = 0
						continue
					}
					if f == 0 {
						counted++
					}
				}

				r := dot(work.Data, base+ox, stride, coeffs)
				outRow[ox] = r

				switch policy {
				case statMaxAbs:
					if m := magnitude(r); m > st.pos[s] {
						st.pos[s] = m
					}
				case statMaxMin:
					if r >= 0 {
						if m := uint64(r); m > st.pos[s] {
							st.pos[s] = m
						}
					} else if m := magnitude(r); m > st.neg[s] {
						st.neg[s] = m
					}
				case statSumAbs:
					rowPos += magnitude(r)
				case statSumPosNeg:
					if r >= 0 {
						rowPos += uint64(r)
					} else {
						rowNeg += magnitude(r)
					}
				}
			}

			if policy == statSumAbs || policy == statSumPosNeg {
				st.pos[s] += rowPos >> meanRowShift
				st.neg[s] += rowNeg >> meanRowShift
			}
		}

		if alpha != nil && f == 0 {
			st.pixels = counted
		}
		if p.NormalizeScope == ScopePerOrient {
			computeNormalizers(&st.pos[s], &st.neg[s], p.NormalizeMethod, st.pixels)
		}
	}

	if p.NormalizeScope == ScopeGlobal {
		if alpha != nil {
			st.pixels *= int64(g.planes)
		}
		computeNormalizers(&st.pos[0], &st.neg[0], p.NormalizeMethod, st.pixels)
	}
}

func magnitude(r int32) uint64 {
	v := int64(r)
	if v < 0 {
		v = -v
	}
	return uint64(v)
}
