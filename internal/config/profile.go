// Package config loads the report profile (what the cashier report looks like)
// and the application settings (where and how the converter runs).
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/insightdelivered/cashier-report-converter/internal/models"
)

//go:embed default_profile.yaml
var defaultProfileYAML []byte

// ErrInvalidProfile is returned when a profile cannot drive the pipeline.
var ErrInvalidProfile = errors.New("invalid report profile")

// Profile describes one report layout: the boilerplate to strip, the keyword
// lists used by the classifier and the output schema. Changing the profile is
// how format drift in the source report is absorbed.
type Profile struct {
	Name           string      `yaml:"name"`
	Delimiter      string      `yaml:"delimiter"`
	CurrencySymbol string      `yaml:"currency_symbol"`
	ZeroAmount     string      `yaml:"zero_amount"`
	Columns        []string    `yaml:"columns"`
	Boilerplate    Boilerplate `yaml:"boilerplate"`

	PaymentMethods []string `yaml:"payment_methods"`
	Stations       []string `yaml:"stations"`
	RebateTypes    []string `yaml:"rebate_types"`
	DetectMarkers  []string `yaml:"detect_markers"`

	// BatchPages is how many pages are processed before completed rows are
	// flushed to the output.
	BatchPages int `yaml:"batch_pages"`
	// DiagnosticLines is how many raw lines are kept to explain a run that
	// produced no records.
	DiagnosticLines int `yaml:"diagnostic_lines"`
}

// Boilerplate lists the recurring report strings removed by the noise filter.
// All entries are written lower-case without accents.
type Boilerplate struct {
	HeaderStart []string `yaml:"header_start"`
	HeaderEnd   []string `yaml:"header_end"`
	Banners     []string `yaml:"banners"`
	Footers     []string `yaml:"footers"`
	LegendTerms []string `yaml:"legend_terms"`
}

// DefaultProfile returns the embedded cashier report profile.
func DefaultProfile() *Profile {
	p, err := ParseProfile(defaultProfileYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded profile: %v", err))
	}
	return p
}

// LoadProfile reads a profile from path. An empty path yields the default.
func LoadProfile(path string) (*Profile, error) {
	if path == "" {
		return DefaultProfile(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes, defaults and validates a YAML profile.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	applyProfileDefaults(&p)
	if err := validateProfile(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func applyProfileDefaults(p *Profile) {
	if p.Name == "" {
		p.Name = "custom"
	}
	if p.Delimiter == "" {
		p.Delimiter = ";"
	}
	if p.CurrencySymbol == "" {
		p.CurrencySymbol = "R$"
	}
	if p.ZeroAmount == "" {
		p.ZeroAmount = p.CurrencySymbol + "0.00"
	}
	if p.BatchPages <= 0 {
		p.BatchPages = 10
	}
	if p.DiagnosticLines == 0 {
		p.DiagnosticLines = 40
	}
}

func validateProfile(p *Profile) error {
	if len(p.Columns) != models.ColumnCount {
		return fmt.Errorf("%w: expected %d columns, got %d", ErrInvalidProfile, models.ColumnCount, len(p.Columns))
	}
	if p.DiagnosticLines < 0 {
		return fmt.Errorf("%w: diagnostic_lines must not be negative", ErrInvalidProfile)
	}
	if len([]rune(p.Delimiter)) != 1 {
		return fmt.Errorf("%w: delimiter must be a single character, got %q", ErrInvalidProfile, p.Delimiter)
	}
	for _, expr := range append(append([]string{}, p.Boilerplate.Banners...), p.Boilerplate.Footers...) {
		if _, err := regexp.Compile(expr); err != nil {
			return fmt.Errorf("%w: pattern %q: %v", ErrInvalidProfile, expr, err)
		}
	}
	return nil
}

// DelimiterRune returns the field delimiter as a rune.
func (p *Profile) DelimiterRune() rune {
	return []rune(p.Delimiter)[0]
}
