package model

// ValidationList is a named, ordered set of accepted values for one field
// category. Insertion order is preserved for display; membership has set
// semantics, so duplicate inserts are rejected.
type ValidationList struct {
	index    map[string]struct{}
	Name     string
	Category string
	values   []string
}

// NewValidationList builds a list from the given values, dropping duplicates
// while preserving first-seen order. Category defaults to the list name when
// empty.
func NewValidationList(name, category string, values []string) ValidationList {
	if category == "" {
		category = name
	}
	l := ValidationList{
		Name:     name,
		Category: category,
		index:    make(map[string]struct{}, len(values)),
	}
	for _, v := range values {
		l.Add(v)
	}
	return l
}

// Add appends a value to the list. Returns false without modifying the list
// when the value is already present.
func (l *ValidationList) Add(value string) bool {
	if l.index == nil {
		l.index = make(map[string]struct{})
	}
	if _, ok := l.index[value]; ok {
		return false
	}
	l.index[value] = struct{}{}
	l.values = append(l.values, value)
	return true
}

// Remove deletes a value from the list, preserving the order of the rest.
// Returns false when the value was not present.
func (l *ValidationList) Remove(value string) bool {
	if _, ok := l.index[value]; !ok {
		return false
	}
	delete(l.index, value)
	for i, v := range l.values {
		if v == value {
			l.values = append(l.values[:i], l.values[i+1:]...)
			break
		}
	}
	return true
}

// Contains reports exact membership.
func (l *ValidationList) Contains(value string) bool {
	_, ok := l.index[value]
	return ok
}

// Values returns the list contents in insertion order. The returned slice is
// a copy; mutating it does not affect the list.
func (l *ValidationList) Values() []string {
	out := make([]string, len(l.values))
	copy(out, l.values)
	return out
}

// Len returns the number of values in the list.
func (l *ValidationList) Len() int {
	return len(l.values)
}

// Clone returns a deep copy of the list.
func (l ValidationList) Clone() ValidationList {
	return NewValidationList(l.Name, l.Category, l.values)
}
