// Package model defines the core data structures for the chestkeeper application.
package model

import (
	"sort"
)

// Status represents the validation state of an entry.
type Status string

// Entry statuses.
const (
	StatusPending Status = "Pending"
	StatusValid   Status = "Valid"
	StatusInvalid Status = "Invalid"
)

// Well-known field names. Every entry carries these three semantic fields;
// anything else lives in Extra.
const (
	FieldPlayer    = "player"
	FieldChestType = "chest_type"
	FieldSource    = "source"
)

// ValidationError records a single field that failed validation.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Entry represents a single chest log row as produced by OCR import.
type Entry struct {
	Extra            map[string]string `json:"extra,omitempty"`
	OriginalValues   map[string]string `json:"original_values,omitempty"`
	ID               string            `json:"id"`
	Player           string            `json:"player"`
	ChestType        string            `json:"chest_type"`
	Source           string            `json:"source"`
	Status           Status            `json:"status"`
	ValidationErrors []ValidationError `json:"validation_errors,omitempty"`
}

// Field returns the value of the named field. The second return reports
// whether the field exists on this entry.
func (e *Entry) Field(name string) (string, bool) {
	switch name {
	case FieldPlayer:
		return e.Player, true
	case FieldChestType:
		return e.ChestType, true
	case FieldSource:
		return e.Source, true
	}
	v, ok := e.Extra[name]
	return v, ok
}

// SetField sets the value of the named field, creating an extra field if the
// name is not one of the semantic columns.
func (e *Entry) SetField(name, value string) {
	switch name {
	case FieldPlayer:
		e.Player = value
	case FieldChestType:
		e.ChestType = value
	case FieldSource:
		e.Source = value
	default:
		if e.Extra == nil {
			e.Extra = make(map[string]string)
		}
		e.Extra[name] = value
	}
}

// FieldNames returns all field names present on the entry: the semantic
// columns first, then extra fields in sorted order for determinism.
func (e *Entry) FieldNames() []string {
	names := []string{FieldPlayer, FieldChestType, FieldSource}
	if len(e.Extra) == 0 {
		return names
	}
	extras := make([]string, 0, len(e.Extra))
	for k := range e.Extra {
		extras = append(extras, k)
	}
	sort.Strings(extras)
	return append(names, extras...)
}

// RecordOriginal remembers the pre-correction value of a field. The first
// recorded value wins; later corrections to the same field do not overwrite
// it. Returns whether a value was recorded.
func (e *Entry) RecordOriginal(field, value string) bool {
	if e.OriginalValues == nil {
		e.OriginalValues = make(map[string]string)
	}
	if _, ok := e.OriginalValues[field]; ok {
		return false
	}
	e.OriginalValues[field] = value
	return true
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	c := e
	if e.Extra != nil {
		c.Extra = make(map[string]string, len(e.Extra))
		for k, v := range e.Extra {
			c.Extra[k] = v
		}
	}
	if e.OriginalValues != nil {
		c.OriginalValues = make(map[string]string, len(e.OriginalValues))
		for k, v := range e.OriginalValues {
			c.OriginalValues[k] = v
		}
	}
	if e.ValidationErrors != nil {
		c.ValidationErrors = make([]ValidationError, len(e.ValidationErrors))
		copy(c.ValidationErrors, e.ValidationErrors)
	}
	return c
}

// CloneEntries deep-copies a slice of entries.
func CloneEntries(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	out := make([]Entry, len(entries))
	for i := range entries {
		out[i] = entries[i].Clone()
	}
	return out
}
