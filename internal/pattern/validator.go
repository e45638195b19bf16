package pattern

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Veraticus/spice-categorizer/internal/common"
	"github.com/Veraticus/spice-categorizer/internal/model"
)

// compile builds the case-insensitive matcher for a rule pattern.
func compile(pattern string) (*regexp.Regexp, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("%w: pattern must not be empty", common.ErrInvalidRule)
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidRule, err)
	}
	return re, nil
}

// ValidatePattern reports whether pattern would load into an Index.
func ValidatePattern(pattern string) error {
	_, err := compile(pattern)
	return err
}

// ValidateRule checks the pattern and that the rule targets a category.
func ValidateRule(rule model.Rule) error {
	_, err := compileRule(rule)
	return err
}

func compileRule(rule model.Rule) (*regexp.Regexp, error) {
	if rule.CategoryID == "" {
		return nil, fmt.Errorf("%w: rule %q has no category", common.ErrInvalidRule, rule.Pattern)
	}
	return compile(rule.Pattern)
}
