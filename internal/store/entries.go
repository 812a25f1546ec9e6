package store

import (
	"fmt"

	"github.com/wtharvey/chestkeeper/internal/model"
)

// GetEntries returns a deep copy of the currently staged entries, in order.
// Uncommitted writes are visible to the caller before commit.
func (s *Store) GetEntries() []model.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneEntries(s.current.entries)
}

// GetEntry returns a copy of the entry with the given id.
func (s *Store) GetEntry(id string) (model.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.current.entries {
		if s.current.entries[i].ID == id {
			return s.current.entries[i].Clone(), true
		}
	}
	return model.Entry{}, false
}

// EntryCount returns the number of staged entries.
func (s *Store) EntryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.current.entries)
}

// SetEntries replaces the entries table. The source tag identifies the
// writer (e.g. "validation_service") and is carried on the EntriesUpdated
// event so subscribers can avoid feedback loops.
func (s *Store) SetEntries(entries []model.Entry, source string) error {
	for i := range entries {
		if entries[i].ID == "" {
			return fmt.Errorf("entry at index %d: %w", i, ErrEmptyEntryID)
		}
	}
	return s.write(func() error {
		s.current.entries = model.CloneEntries(entries)
		s.txSource = source
		return nil
	})
}

// AddEntry appends a single entry. The id must be set and unused.
func (s *Store) AddEntry(entry model.Entry) error {
	if entry.ID == "" {
		return ErrEmptyEntryID
	}
	return s.write(func() error {
		for i := range s.current.entries {
			if s.current.entries[i].ID == entry.ID {
				return fmt.Errorf("%w: %s", ErrDuplicateEntry, entry.ID)
			}
		}
		s.current.entries = append(s.current.entries, entry.Clone())
		return nil
	})
}

// UpdateEntry replaces the stored entry with the same id.
func (s *Store) UpdateEntry(entry model.Entry) error {
	if entry.ID == "" {
		return ErrEmptyEntryID
	}
	return s.write(func() error {
		for i := range s.current.entries {
			if s.current.entries[i].ID == entry.ID {
				s.current.entries[i] = entry.Clone()
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrEntryNotFound, entry.ID)
	})
}

// RemoveEntry deletes the entry with the given id.
func (s *Store) RemoveEntry(id string) error {
	return s.write(func() error {
		for i := range s.current.entries {
			if s.current.entries[i].ID == id {
				s.current.entries = append(s.current.entries[:i], s.current.entries[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	})
}
