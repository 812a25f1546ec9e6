// Package correction implements the engine that rewrites entry field values
// using the store's correction rules, preserving undo information.
package correction

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/wtharvey/chestkeeper/internal/events"
	"github.com/wtharvey/chestkeeper/internal/model"
	"github.com/wtharvey/chestkeeper/internal/store"
)

// Result summarises one correction pass.
type Result struct {
	TotalCorrections int
	EntriesModified  int
}

// Engine applies correction rules to store entries.
type Engine struct {
	store *store.Store
}

// New creates a correction engine bound to the given store.
func New(s *store.Store) *Engine {
	return &Engine{store: s}
}

// Apply runs every enabled rule over every entry inside one store
// transaction. Rules are matched in ascending priority, then insertion
// order; the first rule to correct a field wins, and a corrected field is
// not re-matched against later rules in the same pass, so repeated runs are
// idempotent and rules cannot cascade into cycles.
func (e *Engine) Apply(_ context.Context) (Result, error) {
	rules := activeRules(e.store.GetCorrectionRules())
	entries := e.store.GetEntries()

	e.store.Bus().Emit(events.CorrectionStarted, events.Payload{
		events.KeyCount: len(entries),
	})

	if err := e.store.BeginTransaction(); err != nil {
		return Result{}, fmt.Errorf("corrections: %w", err)
	}

	var result Result
	corrected := make([]map[string]bool, len(entries))
	touched := make([]bool, len(entries))
	for i := range corrected {
		corrected[i] = make(map[string]bool)
	}

	for _, rule := range rules {
		for i := range entries {
			if e.applyRule(&entries[i], rule, corrected[i], &result) && !touched[i] {
				touched[i] = true
				result.EntriesModified++
			}
		}
	}

	if err := e.store.SetEntries(entries, "correction_service"); err != nil {
		_ = e.store.RollbackTransaction()
		return Result{}, fmt.Errorf("corrections: %w", err)
	}
	if err := e.store.CommitTransaction(); err != nil {
		return Result{}, fmt.Errorf("corrections: %w", err)
	}

	slog.Info("corrections applied",
		"total_corrections", result.TotalCorrections,
		"entries_modified", result.EntriesModified)

	e.store.Bus().Emit(events.CorrectionApplied, events.Payload{
		events.KeyTotalCorrections: result.TotalCorrections,
		events.KeyEntriesModified:  result.EntriesModified,
	})
	return result, nil
}

// applyRule rewrites every in-scope field of one entry. Returns whether the
// entry was modified by this rule.
func (e *Engine) applyRule(entry *model.Entry, rule model.CorrectionRule, corrected map[string]bool, result *Result) bool {
	modified := false
	for _, field := range entry.FieldNames() {
		if corrected[field] {
			continue
		}
		value, ok := entry.Field(field)
		if !ok || !rule.Matches(field, value) {
			continue
		}
		if value == rule.ToText {
			// Already at the target value; rewriting would double-count
			continue
		}
		entry.RecordOriginal(field, value)
		entry.SetField(field, rule.ToText)
		corrected[field] = true
		result.TotalCorrections++
		modified = true
	}
	return modified
}

// Reset restores every corrected field of the entry to its recorded original
// and clears the undo information. Returns false when the entry has no
// recorded originals or does not exist.
func (e *Engine) Reset(entryID string) bool {
	entry, ok := e.store.GetEntry(entryID)
	if !ok || len(entry.OriginalValues) == 0 {
		return false
	}

	for field, original := range entry.OriginalValues {
		entry.SetField(field, original)
	}
	entry.OriginalValues = nil

	if err := e.store.UpdateEntry(entry); err != nil {
		slog.Error("failed to reset corrections", "entry_id", entryID, "error", err)
		return false
	}
	return true
}

// ResetAll restores recorded originals on every entry inside one
// transaction and returns the number of entries reset.
func (e *Engine) ResetAll() (int, error) {
	if err := e.store.BeginTransaction(); err != nil {
		return 0, fmt.Errorf("reset corrections: %w", err)
	}

	entries := e.store.GetEntries()
	reset := 0
	for i := range entries {
		if len(entries[i].OriginalValues) == 0 {
			continue
		}
		for field, original := range entries[i].OriginalValues {
			entries[i].SetField(field, original)
		}
		entries[i].OriginalValues = nil
		reset++
	}

	if err := e.store.SetEntries(entries, "correction_service"); err != nil {
		_ = e.store.RollbackTransaction()
		return 0, fmt.Errorf("reset corrections: %w", err)
	}
	if err := e.store.CommitTransaction(); err != nil {
		return 0, fmt.Errorf("reset corrections: %w", err)
	}

	e.store.Bus().Emit(events.CorrectionsReset, events.Payload{
		events.KeyCount: reset,
	})
	return reset, nil
}

// activeRules filters to enabled rules and orders them by ascending
// priority; the stable sort keeps insertion order within equal priorities.
func activeRules(rules []model.CorrectionRule) []model.CorrectionRule {
	active := make([]model.CorrectionRule, 0, len(rules))
	for _, r := range rules {
		if r.Enabled {
			active = append(active, r)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Priority < active[j].Priority
	})
	return active
}
