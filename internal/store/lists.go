package store

import (
	"github.com/wtharvey/chestkeeper/internal/model"
)

// GetValidationList returns the values of the named list in insertion order.
// The second return reports whether the list exists.
func (s *Store) GetValidationList(name string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.current.lists[name]
	if !ok {
		return nil, false
	}
	return l.Values(), true
}

// GetValidationLists returns deep copies of every list, in the order the
// lists were first created.
func (s *Store) GetValidationLists() []model.ValidationList {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.ValidationList, 0, len(s.current.lists))
	for _, name := range s.current.listOrder {
		out = append(out, s.current.lists[name].Clone())
	}
	return out
}

// ValidationListNames returns the list names in creation order.
func (s *Store) ValidationListNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.current.listOrder))
	copy(out, s.current.listOrder)
	return out
}

// SetValidationList creates or replaces the named list with the given
// values. Duplicates are dropped at ingestion, preserving first-seen order.
func (s *Store) SetValidationList(name string, values []string) error {
	return s.write(func() error {
		if _, exists := s.current.lists[name]; !exists {
			s.current.listOrder = append(s.current.listOrder, name)
		}
		s.current.lists[name] = model.NewValidationList(name, "", values)
		return nil
	})
}

// AddValidationEntry adds a value to the named list, creating the list on
// first use. Returns false when the value is already present; a duplicate is
// a no-op, not an error.
func (s *Store) AddValidationEntry(name, value string) (bool, error) {
	added := false
	err := s.write(func() error {
		l, exists := s.current.lists[name]
		if !exists {
			l = model.NewValidationList(name, "", nil)
			s.current.listOrder = append(s.current.listOrder, name)
		}
		added = l.Add(value)
		s.current.lists[name] = l
		return nil
	})
	return added, err
}

// RemoveValidationEntry deletes a value from the named list. Returns false
// when the list or the value does not exist.
func (s *Store) RemoveValidationEntry(name, value string) (bool, error) {
	removed := false
	err := s.write(func() error {
		l, exists := s.current.lists[name]
		if !exists {
			return nil
		}
		removed = l.Remove(value)
		s.current.lists[name] = l
		return nil
	})
	return removed, err
}
