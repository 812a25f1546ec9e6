package model

import (
	"errors"
	"time"
)

// ErrEmptyFromText indicates a correction rule with no text to match.
var ErrEmptyFromText = errors.New("correction rule from_text cannot be empty")

// CorrectionRule represents a from→to text substitution, optionally scoped to
// a single field category. An empty FieldCategory means the rule applies to
// every field.
type CorrectionRule struct {
	LastModified  time.Time `json:"last_modified"`
	FromText      string    `json:"from_text"`
	ToText        string    `json:"to_text"`
	FieldCategory string    `json:"field_category,omitempty"`
	Priority      int       `json:"priority"`
	Enabled       bool      `json:"enabled"`
}

// Validate checks the structural invariants of the rule.
func (r *CorrectionRule) Validate() error {
	if r.FromText == "" {
		return ErrEmptyFromText
	}
	return nil
}

// AppliesTo reports whether the rule is in scope for the named field.
func (r *CorrectionRule) AppliesTo(field string) bool {
	return r.FieldCategory == "" || r.FieldCategory == field
}

// Matches reports whether the rule rewrites the given field value. Matching
// is a case-sensitive comparison of the whole value, never a substring
// replacement.
func (r *CorrectionRule) Matches(field, value string) bool {
	return r.Enabled && r.AppliesTo(field) && value == r.FromText
}

// CloneRules copies a slice of correction rules.
func CloneRules(rules []CorrectionRule) []CorrectionRule {
	if rules == nil {
		return nil
	}
	out := make([]CorrectionRule, len(rules))
	copy(out, rules)
	return out
}
