package model

// Method identifies which resolution tier produced a CategoryMatch.
type Method string

// Resolution tiers, highest trust first.
const (
	MethodExact    Method = "exact"
	MethodPattern  Method = "pattern"
	MethodOracle   Method = "oracle"
	MethodFallback Method = "fallback"
)

// Methods lists every tier in resolution order.
var Methods = []Method{MethodExact, MethodPattern, MethodOracle, MethodFallback}

// CategoryMatch is the engine's decision for a single transaction.
// Rule is only set when Method is MethodPattern.
type CategoryMatch struct {
	CategoryID string  `json:"category_id"`
	Method     Method  `json:"method"`
	Rule       string  `json:"rule,omitempty"`
	Confidence float64 `json:"confidence"`
}

// Suggestion is the suggestion oracle's best guess for a piece of text.
type Suggestion struct {
	CategoryID string  `json:"category_id"`
	Confidence float64 `json:"confidence"`
}
