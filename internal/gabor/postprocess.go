package gabor

import (
	"math"

	"github.com/ironsheep/gabor-tools-mcp/internal/ndarray"
)

// postProcess converts the integer responses into the float output planes.
//
// Output plane f holds the (positive phase) response of filter f; under
// DualPhase plane f+planes holds its negative phase. Every cell outside
// g.outBox gets NullResponse.
func postProcess(work ndarray.View[int32], out ndarray.View[float32], g geometry, p Params, st *statistics, lut []float32) {
	var gn gains
	var binPos, binNeg int64
	for f := 0; f < g.planes; f++ {
		if f == 0 || p.NormalizeScope == ScopePerOrient {
			s := slot(p.NormalizeScope, f)
			gn = computeGains(p.GainConstant, st.pos[s], st.neg[s], p.PhaseMode, p.PhaseNorm)
			if lut != nil {
				binPos = discreteGain(gn.pos, p.PostProcScalar)
				binNeg = discreteGain(gn.neg, p.PostProcScalar)
			}
		}

		posPlane := out.Plane(f)
		var negPlane ndarray.View[float32]
		dual := p.PhaseMode == DualPhase
		if dual {
			negPlane = out.Plane(f + g.planes)
		}
		resp := work.Plane(f)

		for y := 0; y < g.outRows; y++ {
			posRow := posPlane.Row(y)
			var negRow []float32
			if dual {
				negRow = negPlane.Row(y)
			}
			if y < g.outBox.Top || y >= g.outBox.Bottom {
				fillNull(posRow)
				fillNull(negRow)
				continue
			}
			fillNull(posRow[:g.outBox.Left])
			fillNull(posRow[g.outBox.Right:])
			if dual {
				fillNull(negRow[:g.outBox.Left])
				fillNull(negRow[g.outBox.Right:])
			}

			rrow := resp.Row(y)
			for x := g.outBox.Left; x < g.outBox.Right; x++ {
				r := rrow[x]
				switch {
				case !dual:
					posRow[x] = phaseValue(magnitude(r), gn.pos, binPos, lut)
				case r >= 0:
					posRow[x] = phaseValue(uint64(r), gn.pos, binPos, lut)
					negRow[x] = 0
				default:
					posRow[x] = 0
					negRow[x] = phaseValue(magnitude(r), gn.neg, binNeg, lut)
				}
			}
		}
	}
}

// phaseValue maps a fixed-point response magnitude to its output value:
// descaled and gained when lut is nil, otherwise the table entry of its bin.
// Bins past the end of the table clamp to the last entry; only MEAN-class
// normalization can produce them.
func phaseValue(m uint64, gain float32, bin int64, lut []float32) float32 {
	if lut == nil {
		return float32(m>>ScalingShift) * gain
	}
	i := int64(m) / bin
	if i >= int64(len(lut)) {
		i = int64(len(lut)) - 1
	}
	return lut[i]
}

// discreteGain is the integer divisor taking a fixed-point magnitude
// straight to a LUT bin: bin = m / discreteGain ~ (m >> ScalingShift) *
// gain * scalar. Rounding up keeps bins from overshooting.
func discreteGain(gain, scalar float32) int64 {
	d := float64(int64(1)<<ScalingShift) / (float64(gain) * float64(scalar))
	if math.IsInf(d, 0) || math.IsNaN(d) || d > math.MaxInt32 {
		return math.MaxInt32
	}
	return max(int64(math.Ceil(d)), 1)
}

func fillNull(row []float32) {
	for i := range row {
		row[i] = NullResponse
	}
}

// zeroOutputs writes NullResponse to every output plane and phase.
func zeroOutputs(out ndarray.View[float32]) {
	out.Fill(NullResponse)
}
