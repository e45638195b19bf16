package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Direction selects which side of the sign convention a fallback band applies to.
type Direction string

const (
	// DirectionIncome covers amounts strictly greater than zero.
	DirectionIncome Direction = "income"
	// DirectionExpense covers zero and negative amounts.
	DirectionExpense Direction = "expense"
)

// FallbackBand is one row of the amount heuristic table. A band matches when
// |amount| is strictly greater than Above; a band without Above matches everything
// that reaches it. Bands are evaluated in order within their direction.
type FallbackBand struct {
	Above      *decimal.Decimal
	Direction  Direction
	CategoryID string
	Confidence float64
}

// SeedMerchant is a starter merchant mapping shipped before any learning occurs.
type SeedMerchant struct {
	Merchant   string
	CategoryID string
}

// Policy holds every constant that changes classification outcomes.
type Policy struct {
	Fallback          []FallbackBand
	SeedMerchants     []SeedMerchant
	ExactConfidence   float64
	PatternConfidence float64
	OracleThreshold   float64 // inclusive
	OracleTimeout     time.Duration
	MaxConcurrency    int
}

func mustDecimal(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// DefaultPolicy returns the shipped policy table.
func DefaultPolicy() Policy {
	return Policy{
		ExactConfidence:   0.95,
		PatternConfidence: 0.85,
		OracleThreshold:   0.6,
		OracleTimeout:     5 * time.Second,
		MaxConcurrency:    4,
		Fallback: []FallbackBand{
			{Direction: DirectionIncome, Above: mustDecimal("1000"), CategoryID: "income-salary", Confidence: 0.4},
			{Direction: DirectionIncome, CategoryID: "income-other", Confidence: 0.3},
			{Direction: DirectionExpense, Above: mustDecimal("1000"), CategoryID: "housing", Confidence: 0.4},
			{Direction: DirectionExpense, Above: mustDecimal("100"), CategoryID: "shopping", Confidence: 0.3},
			{Direction: DirectionExpense, CategoryID: "other", Confidence: 0.2},
		},
		SeedMerchants: []SeedMerchant{
			{Merchant: "netflix", CategoryID: "entertainment"},
			{Merchant: "spotify", CategoryID: "entertainment"},
			{Merchant: "amazon", CategoryID: "shopping"},
			{Merchant: "uber", CategoryID: "transportation"},
			{Merchant: "lyft", CategoryID: "transportation"},
			{Merchant: "walmart", CategoryID: "shopping"},
			{Merchant: "target", CategoryID: "shopping"},
			{Merchant: "kroger", CategoryID: "groceries"},
			{Merchant: "safeway", CategoryID: "groceries"},
			{Merchant: "trader joe", CategoryID: "groceries"},
			{Merchant: "whole foods", CategoryID: "groceries"},
			{Merchant: "cvs", CategoryID: "health"},
			{Merchant: "walgreens", CategoryID: "health"},
			{Merchant: "verizon", CategoryID: "utilities"},
			{Merchant: "at&t", CategoryID: "utilities"},
			{Merchant: "comcast", CategoryID: "utilities"},
			{Merchant: "xfinity", CategoryID: "utilities"},
		},
	}
}

// rawPolicy mirrors the YAML layout under the "policy" key.
type rawPolicy struct {
	ExactConfidence   *float64  `mapstructure:"exact_confidence"`
	PatternConfidence *float64  `mapstructure:"pattern_confidence"`
	OracleThreshold   *float64  `mapstructure:"oracle_threshold"`
	OracleTimeout     string    `mapstructure:"oracle_timeout"`
	Fallback          []rawBand `mapstructure:"fallback"`
	SeedMerchants     []rawSeed `mapstructure:"seed_merchants"`
	MaxConcurrency    int       `mapstructure:"max_concurrency"`
	DisableSeeds      bool      `mapstructure:"disable_seeds"`
}

type rawBand struct {
	Direction  string  `mapstructure:"direction"`
	Above      string  `mapstructure:"above"`
	Category   string  `mapstructure:"category"`
	Confidence float64 `mapstructure:"confidence"`
}

type rawSeed struct {
	Merchant string `mapstructure:"merchant"`
	Category string `mapstructure:"category"`
}

// LoadPolicy overlays the "policy" section of v onto DefaultPolicy.
// Fallback bands and seed merchants replace the defaults wholesale when present.
func LoadPolicy(v *viper.Viper) (Policy, error) {
	policy := DefaultPolicy()
	if v == nil || !v.IsSet("policy") {
		return policy, nil
	}

	var raw rawPolicy
	if err := v.UnmarshalKey("policy", &raw); err != nil {
		return Policy{}, fmt.Errorf("failed to decode policy: %w", err)
	}

	if raw.ExactConfidence != nil {
		policy.ExactConfidence = *raw.ExactConfidence
	}
	if raw.PatternConfidence != nil {
		policy.PatternConfidence = *raw.PatternConfidence
	}
	if raw.OracleThreshold != nil {
		policy.OracleThreshold = *raw.OracleThreshold
	}
	if raw.OracleTimeout != "" {
		d, err := time.ParseDuration(raw.OracleTimeout)
		if err != nil {
			return Policy{}, fmt.Errorf("invalid oracle_timeout %q: %w", raw.OracleTimeout, err)
		}
		policy.OracleTimeout = d
	}
	if raw.MaxConcurrency != 0 {
		policy.MaxConcurrency = raw.MaxConcurrency
	}

	if len(raw.Fallback) > 0 {
		bands := make([]FallbackBand, 0, len(raw.Fallback))
		for i, rb := range raw.Fallback {
			band := FallbackBand{
				Direction:  Direction(strings.ToLower(rb.Direction)),
				CategoryID: rb.Category,
				Confidence: rb.Confidence,
			}
			if rb.Above != "" {
				above, err := decimal.NewFromString(rb.Above)
				if err != nil {
					return Policy{}, fmt.Errorf("fallback band %d: invalid threshold %q: %w", i, rb.Above, err)
				}
				band.Above = &above
			}
			bands = append(bands, band)
		}
		policy.Fallback = bands
	}

	if raw.DisableSeeds {
		policy.SeedMerchants = nil
	} else if len(raw.SeedMerchants) > 0 {
		seeds := make([]SeedMerchant, 0, len(raw.SeedMerchants))
		for _, rs := range raw.SeedMerchants {
			seeds = append(seeds, SeedMerchant{Merchant: rs.Merchant, CategoryID: rs.Category})
		}
		policy.SeedMerchants = seeds
	}

	if err := policy.Validate(); err != nil {
		return Policy{}, err
	}
	return policy, nil
}

// Validate checks ranges and the shape of the fallback table. Confidences
// must rank exact above pattern above every fallback band.
func (p Policy) Validate() error {
	for name, c := range map[string]float64{
		"exact_confidence":   p.ExactConfidence,
		"pattern_confidence": p.PatternConfidence,
		"oracle_threshold":   p.OracleThreshold,
	} {
		if c < 0 || c > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %v", name, c)
		}
	}
	if p.PatternConfidence >= p.ExactConfidence {
		return fmt.Errorf("pattern_confidence (%v) must be below exact_confidence (%v)", p.PatternConfidence, p.ExactConfidence)
	}
	if p.MaxConcurrency <= 0 {
		return fmt.Errorf("max_concurrency must be positive, got %d", p.MaxConcurrency)
	}
	if p.OracleTimeout <= 0 {
		return fmt.Errorf("oracle_timeout must be positive, got %v", p.OracleTimeout)
	}

	for _, dir := range []Direction{DirectionIncome, DirectionExpense} {
		if err := validateBands(dir, p.BandsFor(dir), p.PatternConfidence); err != nil {
			return err
		}
	}
	for i, band := range p.Fallback {
		if band.Direction != DirectionIncome && band.Direction != DirectionExpense {
			return fmt.Errorf("fallback band %d: unknown direction %q", i, band.Direction)
		}
	}

	for i, seed := range p.SeedMerchants {
		if strings.TrimSpace(seed.Merchant) == "" || seed.CategoryID == "" {
			return fmt.Errorf("seed merchant %d: merchant and category are required", i)
		}
	}
	return nil
}

func validateBands(dir Direction, bands []FallbackBand, ceiling float64) error {
	if len(bands) == 0 {
		return fmt.Errorf("fallback table has no %s bands", dir)
	}
	var prev *decimal.Decimal
	for i, band := range bands {
		if band.CategoryID == "" {
			return fmt.Errorf("%s band %d: category is required", dir, i)
		}
		if band.Confidence < 0 || band.Confidence > 1 {
			return fmt.Errorf("%s band %d: confidence must be between 0 and 1", dir, i)
		}
		if band.Confidence >= ceiling {
			return fmt.Errorf("%s band %d: confidence must be below pattern_confidence", dir, i)
		}
		last := i == len(bands)-1
		if band.Above == nil {
			if !last {
				return fmt.Errorf("%s band %d: only the last band may omit a threshold", dir, i)
			}
			continue
		}
		if last {
			return fmt.Errorf("%s band %d: the last band must omit its threshold", dir, i)
		}
		if band.Above.IsNegative() {
			return fmt.Errorf("%s band %d: threshold must not be negative", dir, i)
		}
		if prev != nil && !band.Above.LessThan(*prev) {
			return fmt.Errorf("%s band %d: thresholds must be strictly decreasing", dir, i)
		}
		prev = band.Above
	}
	return nil
}

// BandsFor returns the bands for one direction, in evaluation order.
func (p Policy) BandsFor(dir Direction) []FallbackBand {
	var bands []FallbackBand
	for _, band := range p.Fallback {
		if band.Direction == dir {
			bands = append(bands, band)
		}
	}
	return bands
}
