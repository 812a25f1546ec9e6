// Package validation implements the engine that checks entry field values
// against the store's validation lists, with optional fuzzy matching.
package validation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/agext/levenshtein"

	"github.com/wtharvey/chestkeeper/internal/events"
	"github.com/wtharvey/chestkeeper/internal/model"
	"github.com/wtharvey/chestkeeper/internal/store"
)

// Validation errors.
var (
	ErrValidationInFlight = errors.New("validation already in progress")
	ErrInvalidThreshold   = errors.New("fuzzy threshold must be between 0 and 1")
)

// reasonNotInList is recorded on every field that fails validation.
const reasonNotInList = "not in list"

// Result summarises one validation pass.
type Result struct {
	Total   int
	Valid   int
	Invalid int
}

// Engine validates store entries against validation lists.
type Engine struct {
	store   *store.Store
	running atomic.Bool
}

// New creates a validation engine bound to the given store.
func New(s *store.Store) *Engine {
	return &Engine{store: s}
}

// Validate checks every entry field that has an associated validation list.
// Exact membership is checked first; when fuzzy is enabled, a normalized
// Levenshtein similarity of at least threshold (inclusive) against the
// closest list member also counts as valid. Results are written back inside
// one store transaction.
//
// The engine refuses to start while a pass is already running, which keeps
// an EntriesUpdated subscriber that re-validates from looping forever.
func (e *Engine) Validate(_ context.Context, fuzzy bool, threshold float64) (Result, error) {
	if threshold < 0 || threshold > 1 {
		return Result{}, fmt.Errorf("%w: %g", ErrInvalidThreshold, threshold)
	}
	if !e.running.CompareAndSwap(false, true) {
		return Result{}, ErrValidationInFlight
	}
	defer e.running.Store(false)

	entries := e.store.GetEntries()
	byField := listsByCategory(e.store.GetValidationLists())

	e.store.Bus().Emit(events.ValidationStarted, events.Payload{
		events.KeyCount: len(entries),
	})

	if err := e.store.BeginTransaction(); err != nil {
		return Result{}, fmt.Errorf("validation: %w", err)
	}

	result := Result{Total: len(entries)}
	for i := range entries {
		validateEntry(&entries[i], byField, fuzzy, threshold)
		if entries[i].Status == model.StatusValid {
			result.Valid++
		} else {
			result.Invalid++
		}
	}

	if err := e.store.SetEntries(entries, "validation_service"); err != nil {
		_ = e.store.RollbackTransaction()
		return Result{}, fmt.Errorf("validation: %w", err)
	}
	if err := e.store.CommitTransaction(); err != nil {
		return Result{}, fmt.Errorf("validation: %w", err)
	}

	slog.Info("validation completed",
		"total", result.Total, "valid", result.Valid, "invalid", result.Invalid)

	e.store.Bus().Emit(events.ValidationCompleted, events.Payload{
		events.KeyTotalCount:   result.Total,
		events.KeyValidCount:   result.Valid,
		events.KeyInvalidCount: result.Invalid,
	})
	return result, nil
}

// Running reports whether a validation pass is in flight.
func (e *Engine) Running() bool {
	return e.running.Load()
}

func validateEntry(entry *model.Entry, byField map[string]model.ValidationList, fuzzy bool, threshold float64) {
	entry.ValidationErrors = nil
	for _, field := range entry.FieldNames() {
		list, ok := byField[field]
		if !ok {
			continue
		}
		value, _ := entry.Field(field)
		if list.Contains(value) {
			continue
		}
		if fuzzy && bestSimilarity(value, list.Values()) >= threshold {
			continue
		}
		entry.ValidationErrors = append(entry.ValidationErrors, model.ValidationError{
			Field:  field,
			Reason: reasonNotInList,
		})
	}
	if len(entry.ValidationErrors) == 0 {
		entry.Status = model.StatusValid
	} else {
		entry.Status = model.StatusInvalid
	}
}

// bestSimilarity returns the highest normalized similarity between value and
// any list member, in [0, 1].
func bestSimilarity(value string, members []string) float64 {
	best := 0.0
	for _, m := range members {
		if score := levenshtein.Similarity(value, m, nil); score > best {
			best = score
		}
	}
	return best
}

// listsByCategory indexes lists by the field category they validate. When
// two lists share a category the later one wins.
func listsByCategory(lists []model.ValidationList) map[string]model.ValidationList {
	byField := make(map[string]model.ValidationList, len(lists))
	for _, l := range lists {
		byField[l.Category] = l
	}
	return byField
}
