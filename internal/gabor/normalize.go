package gabor

// computeNormalizers turns raw accumulated statistics into divisors in
// pixel units, in place.
//
// The stored result is always |value|+1 so it strictly exceeds the
// largest response it covers. A zero pixel count leaves MEAN-class sums
// undivided.
func computeNormalizers(pos, neg *uint64, method NormalizeMethod, pixels int64) {
	switch {
	case method == NormFixed:
		*pos, *neg = fixedNormalizer, fixedNormalizer
	case method.meanClass():
		if pixels != 0 {
			// Row folding already dropped meanRowShift of the scaling bits.
			*pos = (*pos / uint64(pixels)) >> (ScalingShift - meanRowShift)
			*neg = (*neg / uint64(pixels)) >> (ScalingShift - meanRowShift)
		}
	default:
		*pos >>= ScalingShift
		*neg >>= ScalingShift
	}
	*pos++
	*neg++
}

// gains is the pair of multipliers applied to descaled responses.
type gains struct {
	pos, neg float32
}

// computeGains derives the positive and negative phase gains from finalized
// statistics. Under PhaseNormCombo both phases share the larger statistic
// so neither phase clips relative to the other.
func computeGains(gainConstant float32, pos, neg uint64, phase PhaseMode, phaseNorm PhaseNorm) gains {
	g := gains{pos: gainConstant / float32(pos)}
	if phase != DualPhase {
		return g
	}
	if phaseNorm == PhaseNormIndiv {
		g.neg = gainConstant / float32(neg)
		return g
	}
	shared := gainConstant / float32(max(pos, neg))
	return gains{pos: shared, neg: shared}
}
