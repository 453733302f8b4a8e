package server

import (
	"encoding/json"
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/gabor-tools-mcp/internal/gabor"
	"github.com/ironsheep/gabor-tools-mcp/internal/imaging"
	"github.com/ironsheep/gabor-tools-mcp/internal/ndarray"
)

// boxArgs is a half-open rectangle (x1,y1)-(x2,y2).
type boxArgs struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (b *boxArgs) rect() gabor.Rect {
	return gabor.Rect{Left: b.X1, Top: b.Y1, Right: b.X2, Bottom: b.Y2}
}

// bankArgs override the configured filter bank.
type bankArgs struct {
	FilterSize   int     `json:"filter_size"`
	Orientations int     `json:"orientations"`
	Wavelength   float64 `json:"wavelength"`
	Sigma        float64 `json:"sigma"`
	Aspect       float64 `json:"aspect"`
	CircleEdge   *bool   `json:"circle_edge"`
}

// paramArgs override the configured engine parameters.
type paramArgs struct {
	GainConstant     float32  `json:"gain_constant"`
	EdgeMode         string   `json:"edge_mode"`
	OffImageFill     *float32 `json:"off_image_fill"`
	PhaseMode        string   `json:"phase_mode"`
	NormalizeMethod  string   `json:"normalize_method"`
	NormalizeScope   string   `json:"normalize_scope"`
	PhaseNorm        string   `json:"phase_norm"`
	PostProcess      string   `json:"post_process"`
	PostProcSlope    float32  `json:"post_proc_slope"`
	PostProcMidpoint float32  `json:"post_proc_midpoint"`
	PostProcMin      *float32 `json:"post_proc_min"`
	PostProcMax      *float32 `json:"post_proc_max"`
	LUTBins          int      `json:"lut_bins"`
}

// bankSpec merges a over the configured bank. Changing the filter size
// without giving a wavelength or sigma rescales both with the size.
func (s *Server) bankSpec(a bankArgs) (gabor.BankSpec, error) {
	g := s.cfg.Gabor
	if a.FilterSize != 0 {
		g.FilterSize = a.FilterSize
		g.Wavelength, g.Sigma = 0, 0
	}
	if a.Orientations != 0 {
		g.Orientations = a.Orientations
	}
	if a.Wavelength != 0 {
		g.Wavelength = a.Wavelength
	}
	if a.Sigma != 0 {
		g.Sigma = a.Sigma
	}
	if a.Aspect != 0 {
		g.Aspect = a.Aspect
	}
	if a.CircleEdge != nil {
		g.CircleEdge = *a.CircleEdge
	}
	spec := g.BankSpec()
	return spec, spec.Validate()
}

// params merges a over the configured parameters and returns them with the
// LUT length.
func (s *Server) params(a paramArgs) (gabor.Params, int, error) {
	g := s.cfg.Gabor
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setString(&g.EdgeMode, a.EdgeMode)
	setString(&g.PhaseMode, a.PhaseMode)
	setString(&g.NormalizeMethod, a.NormalizeMethod)
	setString(&g.NormalizeScope, a.NormalizeScope)
	setString(&g.PhaseNorm, a.PhaseNorm)
	setString(&g.PostProcess, a.PostProcess)
	if a.GainConstant != 0 {
		g.GainConstant = a.GainConstant
	}
	if a.OffImageFill != nil {
		g.OffImageFill = *a.OffImageFill
	}
	if a.PostProcSlope != 0 {
		g.PostProcSlope = a.PostProcSlope
	}
	if a.PostProcMidpoint != 0 {
		g.PostProcMidpoint = a.PostProcMidpoint
	}
	if a.PostProcMin != nil {
		g.PostProcMin = *a.PostProcMin
	}
	if a.PostProcMax != nil {
		g.PostProcMax = *a.PostProcMax
	}
	if a.LUTBins != 0 {
		g.LUTBins = a.LUTBins
	}
	p, err := g.Params()
	return p, g.LUTBins, err
}

// buildLUT returns nil for raw post-processing.
func buildLUT(p gabor.Params, bins int) (*ndarray.View[float32], error) {
	if p.PostProcMethod == gabor.PostProcRaw {
		return nil, nil
	}
	lut, err := gabor.NewPostProcLUT(p.PostProcMethod, bins, p.PostProcSlope, p.PostProcMidpoint, p.PostProcMin, p.PostProcMax)
	if err != nil {
		return nil, err
	}
	return &lut, nil
}

// paramSummary is the JSON form of gabor.Params.
type paramSummary struct {
	GainConstant    float32 `json:"gain_constant"`
	EdgeMode        string  `json:"edge_mode"`
	OffImageFill    float32 `json:"off_image_fill"`
	PhaseMode       string  `json:"phase_mode"`
	NormalizeMethod string  `json:"normalize_method"`
	NormalizeScope  string  `json:"normalize_scope"`
	PhaseNorm       string  `json:"phase_norm"`
	PostProcess     string  `json:"post_process"`
}

func summarize(p gabor.Params) paramSummary {
	return paramSummary{
		GainConstant:    p.GainConstant,
		EdgeMode:        p.EdgeMode.String(),
		OffImageFill:    p.OffImageFill,
		PhaseMode:       p.PhaseMode.String(),
		NormalizeMethod: p.NormalizeMethod.String(),
		NormalizeScope:  p.NormalizeScope.String(),
		PhaseNorm:       p.PhaseNorm.String(),
		PostProcess:     p.PostProcMethod.String(),
	}
}

// === Filter Bank Handlers ===

type gaborFilterBankArgs struct {
	bankArgs
	Upscale int `json:"upscale"`
}

type gaborFilterBankResult struct {
	Spec         gabor.BankSpec        `json:"spec"`
	Orientations []float64             `json:"orientations_degrees"`
	Kernel       string                `json:"kernel"`
	Image        *imaging.RenderResult `json:"image"`
}

func (s *Server) handleGaborFilterBank(args json.RawMessage) (interface{}, error) {
	var a gaborFilterBankArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Upscale == 0 {
		a.Upscale = 8
	}
	spec, err := s.bankSpec(a.bankArgs)
	if err != nil {
		return nil, err
	}
	bank, err := gabor.NewFilterBank(spec)
	if err != nil {
		return nil, err
	}
	img, err := imaging.RenderFilterBank(bank, imaging.RenderOptions{Upscale: a.Upscale})
	if err != nil {
		return nil, err
	}

	angles := make([]float64, spec.Orientations)
	for i := range angles {
		angles[i] = spec.OrientationDegrees(i)
	}
	return &gaborFilterBankResult{
		Spec:         spec,
		Orientations: angles,
		Kernel:       gabor.KernelName(),
		Image:        img,
	}, nil
}

type gaborLUTResult struct {
	Method string    `json:"method"`
	Bins   int       `json:"bins"`
	Scalar float32   `json:"scalar"`
	Values []float32 `json:"values"`
}

func (s *Server) handleGaborLUT(args json.RawMessage) (interface{}, error) {
	var a paramArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.PostProcess == "" {
		a.PostProcess = gabor.PostProcSigmoid.String()
	}
	p, bins, err := s.params(a)
	if err != nil {
		return nil, err
	}
	if p.PostProcMethod == gabor.PostProcRaw {
		return nil, fmt.Errorf("post_process %q has no lookup table", p.PostProcMethod)
	}
	lut, err := buildLUT(p, bins)
	if err != nil {
		return nil, err
	}
	return &gaborLUTResult{
		Method: p.PostProcMethod.String(),
		Bins:   bins,
		Scalar: p.PostProcScalar,
		Values: lut.Values(),
	}, nil
}

// === Filtering Handlers ===

type gaborComputeArgs struct {
	Path         string   `json:"path"`
	Region       *boxArgs `json:"region"`
	ROI          *boxArgs `json:"roi"`
	ImageBox     *boxArgs `json:"image_box"`
	Channel      string   `json:"channel"`
	MaxDimension *int     `json:"max_dimension"`
	UseAlpha     *bool    `json:"use_alpha"`
	bankArgs
	paramArgs
}

type inputInfo struct {
	Width    int        `json:"width"`
	Height   int        `json:"height"`
	Region   gabor.Rect `json:"source_region"`
	Scale    float64    `json:"scale"`
	Channel  string     `json:"channel"`
	HasAlpha bool       `json:"alpha_mask"`
}

type outputInfo struct {
	Planes int        `json:"planes"`
	Phases int        `json:"phases"`
	Rows   int        `json:"rows"`
	Cols   int        `json:"cols"`
	Box    gabor.Rect `json:"output_box"`
}

type gaborComputeResult struct {
	ResultID     string             `json:"result_id"`
	Kernel       string             `json:"kernel"`
	Input        inputInfo          `json:"input"`
	ROI          gabor.Rect         `json:"roi"`
	Output       outputInfo         `json:"output"`
	Bank         gabor.BankSpec     `json:"filter_bank"`
	Orientations []float64          `json:"orientations_degrees"`
	Params       paramSummary       `json:"params"`
	Stats        []gabor.PlaneStats `json:"stats"`
}

func (s *Server) handleGaborCompute(args json.RawMessage) (interface{}, error) {
	var a gaborComputeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	channel, err := imaging.ParseChannel(a.Channel)
	if a.Channel == "" {
		channel, err = imaging.ParseChannel(s.cfg.Source.Channel)
	}
	if err != nil {
		return nil, err
	}
	maxDim := s.cfg.Source.MaxDimension
	if a.MaxDimension != nil {
		maxDim = *a.MaxDimension
	}
	spec, err := s.bankSpec(a.bankArgs)
	if err != nil {
		return nil, err
	}
	p, bins, err := s.params(a.paramArgs)
	if err != nil {
		return nil, err
	}
	lut, err := buildLUT(p, bins)
	if err != nil {
		return nil, err
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	opts := imaging.SourceOptions{Channel: channel, MaxDimension: maxDim}
	if a.Region != nil {
		opts.Region = a.Region.rect().Image()
	}
	plane, err := imaging.ToPlane(img, opts)
	if err != nil {
		return nil, err
	}

	rows, cols := plane.Values.Dim(0), plane.Values.Dim(1)
	if outRows, outCols := gabor.OutputShape(p.EdgeMode, rows, cols, spec.Size); outRows <= 0 || outCols <= 0 {
		return nil, fmt.Errorf("%dx%d input is too small for a %d filter in %s mode", cols, rows, spec.Size, p.EdgeMode)
	}
	full := gabor.Rect{Right: cols, Bottom: rows}
	roi, imageBox := full, full
	if a.ROI != nil {
		roi = a.ROI.rect()
	}
	if a.ImageBox != nil {
		imageBox = a.ImageBox.rect()
	}

	bank, err := gabor.NewFilterBank(spec)
	if err != nil {
		return nil, err
	}
	buf := gabor.NewBuffers(p.EdgeMode, p.PhaseMode, rows, cols, spec.Size, spec.Orientations)
	req := &gabor.Request{
		FilterBank: bank,
		Input:      plane.Values,
		ROI:        roi,
		ImageBox:   imageBox,
		Output:     buf.Output,
		Params:     p,
		WorkInput:  buf.WorkInput,
		WorkOutput: buf.WorkOutput,
		LUT:        lut,
	}
	useAlpha := a.UseAlpha == nil || *a.UseAlpha
	if useAlpha {
		req.Alpha = plane.Alpha
	}
	if err := gabor.Compute(req); err != nil {
		return nil, err
	}

	outBox := gabor.OutputBox(p.EdgeMode, roi, spec.Size)
	r := &Result{
		Path:      a.Path,
		Bank:      spec,
		Params:    p,
		Output:    buf.Output,
		ROI:       roi,
		OutputBox: outBox,
		Region:    plane.Region,
		Scale:     plane.Scale,
	}
	id := s.results.Put(r)
	s.log.Debug("gabor", "stored result", map[string]interface{}{"result_id": id, "rows": rows, "cols": cols})

	return &gaborComputeResult{
		ResultID: id,
		Kernel:   gabor.KernelName(),
		Input: inputInfo{
			Width:    cols,
			Height:   rows,
			Region:   gabor.RectFromImage(plane.Region),
			Scale:    plane.Scale,
			Channel:  string(channel),
			HasAlpha: req.Alpha != nil,
		},
		ROI: roi,
		Output: outputInfo{
			Planes: spec.Orientations,
			Phases: p.PhaseMode.Phases(),
			Rows:   buf.Output.Dim(1),
			Cols:   buf.Output.Dim(2),
			Box:    outBox,
		},
		Bank:         spec,
		Orientations: r.Orientations(),
		Params:       summarize(p),
		Stats:        gabor.ResponseStats(buf.Output, outBox),
	}, nil
}

// === Stored Result Handlers ===

type gaborResponsePlaneArgs struct {
	ResultID    string  `json:"result_id"`
	Orientation int     `json:"orientation"`
	Phase       string  `json:"phase"`
	Upscale     int     `json:"upscale"`
	White       float32 `json:"white"`
}

type gaborResponsePlaneResult struct {
	*imaging.RenderResult
	ResultID    string  `json:"result_id"`
	Orientation int     `json:"orientation"`
	Degrees     float64 `json:"degrees"`
	Phase       string  `json:"phase"`
}

func (s *Server) handleGaborResponsePlane(args json.RawMessage) (interface{}, error) {
	var a gaborResponsePlaneArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Phase == "" {
		a.Phase = "positive"
	}
	r, err := s.results.Get(a.ResultID)
	if err != nil {
		return nil, err
	}

	n := r.Bank.Orientations
	if a.Orientation < 0 || a.Orientation >= n {
		return nil, fmt.Errorf("orientation %d out of range [0,%d)", a.Orientation, n)
	}
	idx := a.Orientation
	switch a.Phase {
	case "positive":
	case "negative":
		if r.Params.PhaseMode != gabor.DualPhase {
			return nil, fmt.Errorf("result %s is single phase; it has no negative planes", r.ID)
		}
		idx += n
	default:
		return nil, fmt.Errorf("unknown phase %q (valid: positive, negative)", a.Phase)
	}

	img, err := imaging.RenderPlane(r.Output.Plane(idx), imaging.RenderOptions{Upscale: a.Upscale, White: a.White})
	if err != nil {
		return nil, err
	}
	return &gaborResponsePlaneResult{
		RenderResult: img,
		ResultID:     r.ID,
		Orientation:  a.Orientation,
		Degrees:      r.Bank.OrientationDegrees(a.Orientation),
		Phase:        a.Phase,
	}, nil
}

type gaborOrientationMapArgs struct {
	ResultID string `json:"result_id"`
	Upscale  int    `json:"upscale"`
}

func (s *Server) handleGaborOrientationMap(args json.RawMessage) (interface{}, error) {
	var a gaborOrientationMapArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	r, err := s.results.Get(a.ResultID)
	if err != nil {
		return nil, err
	}
	return imaging.RenderOrientationMap(r.Output, r.Orientations(), imaging.RenderOptions{Upscale: a.Upscale})
}

type gaborROIOverlayArgs struct {
	ResultID string `json:"result_id"`
	Color    string `json:"color"`
}

func (s *Server) handleGaborROIOverlay(args json.RawMessage) (interface{}, error) {
	var a gaborROIOverlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Color == "" {
		a.Color = "#FF0000C0"
	}
	r, err := s.results.Get(a.ResultID)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(r.Path)
	if err != nil {
		return nil, err
	}
	return imaging.BoxOverlay(img, overlayBoxes(r), a.Color)
}

// overlayBoxes maps the source region, the region of interest and the
// pixels that received a response onto source image coordinates.
func overlayBoxes(r *Result) []imaging.LabeledBox {
	centres := r.OutputBox
	if r.Params.EdgeMode == gabor.Constrained {
		h := r.Bank.Size / 2
		centres = centres.Translate(h, h)
	}
	return []imaging.LabeledBox{
		{Label: "region", Rect: r.Region},
		{Label: "roi", Rect: r.toSource(r.ROI)},
		{Label: "response", Rect: r.toSource(centres)},
	}
}

// toSource maps a plane rectangle back through the downscale.
func (r *Result) toSource(b gabor.Rect) image.Rectangle {
	scale := r.Scale
	if scale <= 0 {
		scale = 1
	}
	return image.Rect(
		int(math.Floor(float64(b.Left)/scale)),
		int(math.Floor(float64(b.Top)/scale)),
		int(math.Ceil(float64(b.Right)/scale)),
		int(math.Ceil(float64(b.Bottom)/scale)),
	).Add(r.Region.Min)
}
