// Package pattern holds the rule index: ordered, case-insensitive regular
// expressions mapping transaction text to categories.
package pattern

import (
	"log/slog"
	"regexp"
	"sync/atomic"

	"github.com/Veraticus/spice-categorizer/internal/model"
)

type compiledRule struct {
	re   *regexp.Regexp
	rule model.Rule
}

// ruleSet is immutable once published.
type ruleSet struct {
	rules []compiledRule
}

// SkippedRule describes a rule that could not be loaded.
type SkippedRule struct {
	Rule   model.Rule `json:"rule"`
	Reason string     `json:"reason"`
}

// LoadReport summarizes a Load call.
type LoadReport struct {
	Skipped []SkippedRule `json:"skipped,omitempty"`
	Loaded  int           `json:"loaded"`
}

// Index matches text against rules in registration order. Reads are lock-free;
// Load replaces the whole rule set at once so matchers never observe a mix of
// old and new rules.
type Index struct {
	set atomic.Pointer[ruleSet]
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	idx := &Index{}
	idx.set.Store(&ruleSet{})
	return idx
}

// Load compiles rules and swaps them in. Every rule given is loaded; choosing
// which rules are active is the caller's job. Rules that fail to compile are
// skipped, logged, and listed in the report.
func (i *Index) Load(rules []model.Rule) LoadReport {
	var report LoadReport
	next := &ruleSet{rules: make([]compiledRule, 0, len(rules))}

	for _, rule := range rules {
		re, err := compileRule(rule)
		if err != nil {
			slog.Warn("Skipping malformed rule",
				"rule_id", rule.ID,
				"pattern", rule.Pattern,
				"error", err)
			report.Skipped = append(report.Skipped, SkippedRule{Rule: rule, Reason: err.Error()})
			continue
		}
		next.rules = append(next.rules, compiledRule{rule: rule, re: re})
	}

	i.set.Store(next)
	report.Loaded = len(next.rules)

	slog.Debug("Rule index loaded", "loaded", report.Loaded, "skipped", len(report.Skipped))
	return report
}

// Match returns the earliest registered rule whose pattern matches text.
func (i *Index) Match(text string) (model.Rule, bool) {
	for _, cr := range i.set.Load().rules {
		if cr.re.MatchString(text) {
			return cr.rule, true
		}
	}
	return model.Rule{}, false
}

// MatchFirst tries each text in order and returns the first hit.
// Empty texts are skipped.
func (i *Index) MatchFirst(texts ...string) (model.Rule, bool) {
	for _, text := range texts {
		if text == "" {
			continue
		}
		if rule, ok := i.Match(text); ok {
			return rule, true
		}
	}
	return model.Rule{}, false
}

// Len returns the number of loaded rules.
func (i *Index) Len() int {
	return len(i.set.Load().rules)
}

// Rules returns a copy of the loaded rules in evaluation order.
func (i *Index) Rules() []model.Rule {
	set := i.set.Load()
	out := make([]model.Rule, len(set.rules))
	for j, cr := range set.rules {
		out[j] = cr.rule
	}
	return out
}
