package gabor

import (
	"fmt"
	"strings"
)

const (
	// ScalingShift is the fixed-point shift pre-applied to filter coefficients.
	ScalingShift = 12

	// MaxFilters is the largest filter bank Compute accepts.
	MaxFilters = 64

	// NullResponse is written to every output cell outside the output box.
	NullResponse float32 = 0

	// RowAlign is the element multiple every working-buffer row must have.
	RowAlign = 4

	// meanRowShift bounds growth of the per-row sums folded into the
	// MEAN-class accumulators.
	meanRowShift = 8

	// fixedNormalizer stands in for the statistic under NormFixed.
	fixedNormalizer = 255
)

// SupportedFilterSizes lists the filter dimensions Compute accepts.
var SupportedFilterSizes = []int{5, 7, 9, 11, 13}

// EdgeMode selects how convolution is handled near image borders.
type EdgeMode int

const (
	// Constrained crops the output to positions whose whole window is inside
	// the image.
	Constrained EdgeMode = iota

	// SweepOff pads the input with a fill value so every image position gets
	// a response.
	SweepOff
)

// PhaseMode selects rectified or sign-split responses.
type PhaseMode int

const (
	SinglePhase PhaseMode = iota
	DualPhase
)

// Phases returns the number of output planes per filter.
func (p PhaseMode) Phases() int {
	if p == DualPhase {
		return 2
	}
	return 1
}

// NormalizeMethod selects the statistic used to derive gains.
type NormalizeMethod int

const (
	NormFixed NormalizeMethod = iota
	NormMax
	NormMean
	NormMaxPower
	NormMeanPower
)

func (m NormalizeMethod) meanClass() bool { return m == NormMean || m == NormMeanPower }
func (m NormalizeMethod) maxClass() bool  { return m == NormMax || m == NormMaxPower }

// NormalizeScope selects whether statistics are shared across filters.
type NormalizeScope int

const (
	ScopeGlobal NormalizeScope = iota
	ScopePerOrient
)

// PhaseNorm selects how the two phases of a dual-phase run share gain.
type PhaseNorm int

const (
	PhaseNormCombo PhaseNorm = iota
	PhaseNormIndiv
)

// PostProcMethod selects the response curve applied after gain.
type PostProcMethod int

const (
	PostProcRaw PostProcMethod = iota
	PostProcSigmoid
	PostProcThreshold
)

var (
	edgeModeNames    = []string{"constrained", "sweepoff"}
	phaseModeNames   = []string{"single", "dual"}
	normMethodNames  = []string{"fixed", "max", "mean", "maxpower", "meanpower"}
	normScopeNames   = []string{"global", "perorient"}
	phaseNormNames   = []string{"combo", "indiv"}
	postProcessNames = []string{"raw", "sigmoid", "threshold"}
)

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("unknown(%d)", i)
	}
	return names[i]
}

func parseEnum(kind string, names []string, s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q (valid: %s)", kind, s, strings.Join(names, ", "))
}

func (e EdgeMode) String() string        { return enumName(edgeModeNames, int(e)) }
func (p PhaseMode) String() string       { return enumName(phaseModeNames, int(p)) }
func (m NormalizeMethod) String() string { return enumName(normMethodNames, int(m)) }
func (s NormalizeScope) String() string  { return enumName(normScopeNames, int(s)) }
func (p PhaseNorm) String() string       { return enumName(phaseNormNames, int(p)) }
func (p PostProcMethod) String() string  { return enumName(postProcessNames, int(p)) }

// ParseEdgeMode parses "constrained" or "sweepoff".
func ParseEdgeMode(s string) (EdgeMode, error) {
	i, err := parseEnum("edge mode", edgeModeNames, s)
	return EdgeMode(i), err
}

// ParsePhaseMode parses "single" or "dual".
func ParsePhaseMode(s string) (PhaseMode, error) {
	i, err := parseEnum("phase mode", phaseModeNames, s)
	return PhaseMode(i), err
}

// ParseNormalizeMethod parses a normalization method name.
func ParseNormalizeMethod(s string) (NormalizeMethod, error) {
	i, err := parseEnum("normalize method", normMethodNames, s)
	return NormalizeMethod(i), err
}

// ParseNormalizeScope parses "global" or "perorient".
func ParseNormalizeScope(s string) (NormalizeScope, error) {
	i, err := parseEnum("normalize scope", normScopeNames, s)
	return NormalizeScope(i), err
}

// ParsePhaseNorm parses "combo" or "indiv".
func ParsePhaseNorm(s string) (PhaseNorm, error) {
	i, err := parseEnum("phase normalization", phaseNormNames, s)
	return PhaseNorm(i), err
}

// ParsePostProcMethod parses "raw", "sigmoid" or "threshold".
func ParsePostProcMethod(s string) (PostProcMethod, error) {
	i, err := parseEnum("post-processing method", postProcessNames, s)
	return PostProcMethod(i), err
}

// Params holds the scalar settings of a Compute call.
type Params struct {
	// GainConstant is the target magnitude of a fully normalized response.
	GainConstant float32

	EdgeMode EdgeMode

	// OffImageFill is the value SweepOff writes for pixels outside the
	// image box.
	OffImageFill float32

	PhaseMode       PhaseMode
	NormalizeMethod NormalizeMethod
	NormalizeScope  NormalizeScope
	PhaseNorm       PhaseNorm
	PostProcMethod  PostProcMethod

	// PostProcSlope, PostProcMidpoint, PostProcMin and PostProcMax shape the
	// lookup table. Compute itself never reads them; see NewPostProcLUT.
	PostProcSlope    float32
	PostProcMidpoint float32
	PostProcMin      float32
	PostProcMax      float32

	// PostProcScalar maps a gained response onto the LUT bin axis.
	// LUTScalar gives the usual value.
	PostProcScalar float32
}

// DefaultParams returns the settings used when nothing else is configured.
func DefaultParams() Params {
	return Params{
		GainConstant:     1.0,
		EdgeMode:         Constrained,
		PhaseMode:        SinglePhase,
		NormalizeMethod:  NormFixed,
		NormalizeScope:   ScopeGlobal,
		PhaseNorm:        PhaseNormCombo,
		PostProcMethod:   PostProcRaw,
		PostProcSlope:    10,
		PostProcMidpoint: 0.5,
		PostProcMin:      0,
		PostProcMax:      1,
	}
}
