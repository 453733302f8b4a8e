package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/gabor-tools-mcp/internal/gabor"
	"github.com/ironsheep/gabor-tools-mcp/internal/logger"
)

// PathEnv names the environment variable pointing at the YAML config file.
const PathEnv = "GABOR_MCP_CONFIG"

// Config represents the complete server configuration
type Config struct {
	LogLevel string       `yaml:"log_level"` // debug, info, warn, error
	Gabor    GaborConfig  `yaml:"gabor"`
	Source   SourceConfig `yaml:"source"`
	Server   ServerConfig `yaml:"server"`
}

// GaborConfig holds the default filter bank and engine parameters. Tool
// arguments override individual fields per call.
type GaborConfig struct {
	FilterSize   int     `yaml:"filter_size"`
	Orientations int     `yaml:"orientations"`
	Wavelength   float64 `yaml:"wavelength"` // 0 = proportional to filter size
	Sigma        float64 `yaml:"sigma"`      // 0 = proportional to filter size
	Aspect       float64 `yaml:"aspect"`
	CircleEdge   bool    `yaml:"circle_edge"`

	GainConstant    float32 `yaml:"gain_constant"`
	EdgeMode        string  `yaml:"edge_mode"` // constrained, sweepoff
	OffImageFill    float32 `yaml:"off_image_fill"`
	PhaseMode       string  `yaml:"phase_mode"`       // single, dual
	NormalizeMethod string  `yaml:"normalize_method"` // fixed, max, mean, maxpower, meanpower
	NormalizeScope  string  `yaml:"normalize_scope"`  // global, perorient
	PhaseNorm       string  `yaml:"phase_norm"`       // combo, indiv
	PostProcess     string  `yaml:"post_process"`     // raw, sigmoid, threshold

	PostProcSlope    float32 `yaml:"post_proc_slope"`
	PostProcMidpoint float32 `yaml:"post_proc_midpoint"`
	PostProcMin      float32 `yaml:"post_proc_min"`
	PostProcMax      float32 `yaml:"post_proc_max"`
	LUTBins          int     `yaml:"lut_bins"`
}

// SourceConfig controls how images become filter input.
type SourceConfig struct {
	Channel      string `yaml:"channel"`       // luma, lightness
	MaxDimension int    `yaml:"max_dimension"` // downscale larger images; 0 = never
}

// ServerConfig contains MCP server settings
type ServerConfig struct {
	ResultCapacity int `yaml:"result_capacity"` // stored gabor_compute results
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	p := gabor.DefaultParams()
	bank := gabor.DefaultBankSpec(7)
	return &Config{
		LogLevel: "warn",
		Gabor: GaborConfig{
			FilterSize:       bank.Size,
			Orientations:     bank.Orientations,
			Aspect:           bank.Aspect,
			GainConstant:     p.GainConstant,
			EdgeMode:         p.EdgeMode.String(),
			PhaseMode:        p.PhaseMode.String(),
			NormalizeMethod:  gabor.NormMax.String(),
			NormalizeScope:   p.NormalizeScope.String(),
			PhaseNorm:        p.PhaseNorm.String(),
			PostProcess:      p.PostProcMethod.String(),
			PostProcSlope:    p.PostProcSlope,
			PostProcMidpoint: p.PostProcMidpoint,
			PostProcMin:      p.PostProcMin,
			PostProcMax:      p.PostProcMax,
			LUTBins:          gabor.DefaultLUTBins,
		},
		Source: SourceConfig{
			Channel:      "luma",
			MaxDimension: 1024,
		},
		Server: ServerConfig{
			ResultCapacity: 16,
		},
	}
}

// Load reads and parses a YAML configuration file. Fields missing from
// the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	applyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// FromEnv loads the file named by path, or by PathEnv when path is empty.
// With neither set it returns the defaults.
func FromEnv(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path == "" {
		cfg := Default()
		applyEnv(cfg)
		return cfg, Validate(cfg)
	}
	return Load(path)
}

func applyEnv(cfg *Config) {
	if lvl := os.Getenv(logger.LevelEnv); lvl != "" {
		cfg.LogLevel = lvl
	}
}

// Validate checks every enumerated field parses and numeric fields are in
// range.
func Validate(cfg *Config) error {
	var errs []error
	if _, err := cfg.Gabor.Params(); err != nil {
		errs = append(errs, err)
	}
	if err := cfg.Gabor.BankSpec().Validate(); err != nil {
		errs = append(errs, err)
	}
	if cfg.Gabor.LUTBins < 2 {
		errs = append(errs, fmt.Errorf("lut_bins must be at least 2, got %d", cfg.Gabor.LUTBins))
	}
	if cfg.Source.Channel != "luma" && cfg.Source.Channel != "lightness" {
		errs = append(errs, fmt.Errorf("source channel %q must be luma or lightness", cfg.Source.Channel))
	}
	if cfg.Source.MaxDimension < 0 {
		errs = append(errs, fmt.Errorf("max_dimension must not be negative"))
	}
	if cfg.Server.ResultCapacity < 1 {
		errs = append(errs, fmt.Errorf("result_capacity must be at least 1, got %d", cfg.Server.ResultCapacity))
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log_level %q", cfg.LogLevel))
	}
	return errors.Join(errs...)
}

// BankSpec returns the filter bank described by the configuration, filling
// wavelength and sigma from the size when they are zero.
func (g GaborConfig) BankSpec() gabor.BankSpec {
	spec := gabor.DefaultBankSpec(g.FilterSize)
	spec.Orientations = g.Orientations
	spec.CircleEdge = g.CircleEdge
	if g.Wavelength > 0 {
		spec.Wavelength = g.Wavelength
	}
	if g.Sigma > 0 {
		spec.Sigma = g.Sigma
	}
	if g.Aspect > 0 {
		spec.Aspect = g.Aspect
	}
	return spec
}

// Params converts the enumerated strings into engine parameters.
// PostProcScalar is derived from LUTBins and the gain constant.
func (g GaborConfig) Params() (gabor.Params, error) {
	p := gabor.DefaultParams()
	var err error
	if p.EdgeMode, err = gabor.ParseEdgeMode(g.EdgeMode); err != nil {
		return p, err
	}
	if p.PhaseMode, err = gabor.ParsePhaseMode(g.PhaseMode); err != nil {
		return p, err
	}
	if p.NormalizeMethod, err = gabor.ParseNormalizeMethod(g.NormalizeMethod); err != nil {
		return p, err
	}
	if p.NormalizeScope, err = gabor.ParseNormalizeScope(g.NormalizeScope); err != nil {
		return p, err
	}
	if p.PhaseNorm, err = gabor.ParsePhaseNorm(g.PhaseNorm); err != nil {
		return p, err
	}
	if p.PostProcMethod, err = gabor.ParsePostProcMethod(g.PostProcess); err != nil {
		return p, err
	}
	if !(g.GainConstant > 0) {
		return p, fmt.Errorf("gain_constant must be positive, got %g", g.GainConstant)
	}
	p.GainConstant = g.GainConstant
	p.OffImageFill = g.OffImageFill
	p.PostProcSlope = g.PostProcSlope
	p.PostProcMidpoint = g.PostProcMidpoint
	p.PostProcMin = g.PostProcMin
	p.PostProcMax = g.PostProcMax
	p.PostProcScalar = gabor.LUTScalar(g.LUTBins, g.GainConstant)
	return p, nil
}
