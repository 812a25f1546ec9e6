package store

import (
	"fmt"

	"github.com/wtharvey/chestkeeper/internal/model"
)

// GetCorrectionRules returns a copy of the currently staged correction
// rules, in insertion order.
func (s *Store) GetCorrectionRules() []model.CorrectionRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneRules(s.current.rules)
}

// SetCorrectionRules replaces the rules table. Every rule must have a
// non-empty from_text.
func (s *Store) SetCorrectionRules(rules []model.CorrectionRule) error {
	for i := range rules {
		if err := rules[i].Validate(); err != nil {
			return fmt.Errorf("rule at index %d: %w", i, err)
		}
	}
	return s.write(func() error {
		s.current.rules = model.CloneRules(rules)
		return nil
	})
}
