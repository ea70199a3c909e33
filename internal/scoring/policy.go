package scoring

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aiact-formation/auditor/internal/model"
)

//go:embed policy/default.yaml
var policyFS embed.FS

// ErrInvalidPolicy is returned when a budget policy is inconsistent.
var ErrInvalidPolicy = errors.New("invalid budget policy")

// Buckets holds the base cost range of each budget bucket.
type Buckets struct {
	Formation     model.CostRange `yaml:"formation"`
	Consulting    model.CostRange `yaml:"consulting"`
	Tools         model.CostRange `yaml:"tools"`
	Documentation model.CostRange `yaml:"documentation"`
	Audit         model.CostRange `yaml:"audit"`
}

// SizePolicy maps company size codes to a multiplier.
type SizePolicy struct {
	Default     string             `yaml:"default"`
	Other       float64            `yaml:"other"`
	Multipliers map[string]float64 `yaml:"multipliers"`
}

// ScoreBand applies Multiplier when the global score is below Below.
type ScoreBand struct {
	Below      int     `yaml:"below"`
	Multiplier float64 `yaml:"multiplier"`
}

// HighRiskBand applies Multiplier when the high-risk system count is above Above.
type HighRiskBand struct {
	Above      int     `yaml:"above"`
	Multiplier float64 `yaml:"multiplier"`
}

// Policy is the replaceable budget policy table.
type Policy struct {
	Buckets         Buckets        `yaml:"buckets"`
	CompanySize     SizePolicy     `yaml:"company_size"`
	ScoreBands      []ScoreBand    `yaml:"score_bands"`
	ScoreDefault    float64        `yaml:"score_default"`
	HighRiskBands   []HighRiskBand `yaml:"high_risk_bands"`
	HighRiskDefault float64        `yaml:"high_risk_default"`
}

// DefaultPolicy returns the embedded policy.
func DefaultPolicy() (*Policy, error) {
	data, err := fs.ReadFile(policyFS, "policy/default.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded policy: %w", err)
	}
	return ParsePolicy(data)
}

// LoadPolicy reads a policy YAML file.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	p, err := ParsePolicy(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return p, nil
}

// ParsePolicy decodes and validates a policy.
func ParsePolicy(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Policy) validate() error {
	for name, r := range map[string]model.CostRange{
		"formation":     p.Buckets.Formation,
		"consulting":    p.Buckets.Consulting,
		"tools":         p.Buckets.Tools,
		"documentation": p.Buckets.Documentation,
		"audit":         p.Buckets.Audit,
	} {
		if r.Min < 0 || r.Max < r.Min {
			return fmt.Errorf("%w: bucket %s has range %d-%d", ErrInvalidPolicy, name, r.Min, r.Max)
		}
	}
	if p.CompanySize.Default == "" {
		p.CompanySize.Default = "pme"
	}
	if p.CompanySize.Other <= 0 {
		return fmt.Errorf("%w: company_size.other must be positive", ErrInvalidPolicy)
	}
	for size, m := range p.CompanySize.Multipliers {
		if m <= 0 {
			return fmt.Errorf("%w: company size %s multiplier must be positive", ErrInvalidPolicy, size)
		}
	}
	if p.ScoreDefault <= 0 || p.HighRiskDefault <= 0 {
		return fmt.Errorf("%w: default multipliers must be positive", ErrInvalidPolicy)
	}
	for _, b := range p.ScoreBands {
		if b.Multiplier <= 0 {
			return fmt.Errorf("%w: score band below %d has non-positive multiplier", ErrInvalidPolicy, b.Below)
		}
	}
	for _, b := range p.HighRiskBands {
		if b.Multiplier <= 0 {
			return fmt.Errorf("%w: high-risk band above %d has non-positive multiplier", ErrInvalidPolicy, b.Above)
		}
	}
	return nil
}

// SizeMultiplier returns the multiplier for a company size code. An empty
// code falls back to the policy default size.
func (p *Policy) SizeMultiplier(size string) float64 {
	size = strings.ToLower(strings.TrimSpace(size))
	if size == "" {
		size = p.CompanySize.Default
	}
	if m, ok := p.CompanySize.Multipliers[size]; ok {
		return m
	}
	return p.CompanySize.Other
}

// ScoreMultiplier returns the multiplier for a global compliance score.
func (p *Policy) ScoreMultiplier(score int) float64 {
	for _, b := range p.ScoreBands {
		if score < b.Below {
			return b.Multiplier
		}
	}
	return p.ScoreDefault
}

// HighRiskMultiplier returns the multiplier for a high-risk system count.
func (p *Policy) HighRiskMultiplier(count int) float64 {
	for _, b := range p.HighRiskBands {
		if count > b.Above {
			return b.Multiplier
		}
	}
	return p.HighRiskDefault
}

// Estimate computes the remediation budget.
func (p *Policy) Estimate(globalScore int, companySize string, highRiskCount int) model.BudgetEstimate {
	m := p.SizeMultiplier(companySize) * p.ScoreMultiplier(globalScore) * p.HighRiskMultiplier(highRiskCount)

	scale := func(r model.CostRange) model.CostRange {
		return model.CostRange{
			Min: int(math.Round(float64(r.Min) * m)),
			Max: int(math.Round(float64(r.Max) * m)),
		}
	}

	est := model.BudgetEstimate{
		Formation:     scale(p.Buckets.Formation),
		Consulting:    scale(p.Buckets.Consulting),
		Tools:         scale(p.Buckets.Tools),
		Documentation: scale(p.Buckets.Documentation),
		Audit:         scale(p.Buckets.Audit),
		Multiplier:    m,
	}
	for _, r := range []model.CostRange{est.Formation, est.Consulting, est.Tools, est.Documentation, est.Audit} {
		est.Total.Min += r.Min
		est.Total.Max += r.Max
	}
	return est
}
