// Package events provides the publish/subscribe bus that decouples store
// mutation from UI refresh and other collaborators.
package events

// Kind identifies the category of an event. The set of kinds is closed;
// subscribing to an unknown kind is a programming error.
type Kind string

// Data-changed events, emitted by the store on commit.
const (
	EntriesUpdated         Kind = "entries_updated"
	CorrectionRulesUpdated Kind = "correction_rules_updated"
	ValidationListsUpdated Kind = "validation_lists_updated"
	ValidationListUpdated  Kind = "validation_list_updated"
)

// Process-lifecycle events, emitted by the engines and import/export
// collaborators around long-running passes.
const (
	ValidationStarted   Kind = "validation_started"
	ValidationCompleted Kind = "validation_completed"
	CorrectionStarted   Kind = "correction_started"
	CorrectionApplied   Kind = "correction_applied"
	CorrectionsReset    Kind = "corrections_reset"
	ImportStarted       Kind = "import_started"
	ImportCompleted     Kind = "import_completed"
	ExportStarted       Kind = "export_started"
	ExportCompleted     Kind = "export_completed"
)

// Status events.
const (
	ErrorOccurred Kind = "error_occurred"
	WarningIssued Kind = "warning_issued"
	InfoMessage   Kind = "info_message"
)

// UI-hint events. These exist only for cross-component hints and never carry
// store data.
const (
	UIRefreshNeeded  Kind = "ui_refresh_needed"
	SelectionChanged Kind = "selection_changed"
	FilterChanged    Kind = "filter_changed"
)

// Well-known payload keys.
const (
	KeyEventType = "event_type"
	KeyCount     = "count"
	KeySource    = "source"
	KeyListType  = "list_type"

	KeyTotalCount       = "total_count"
	KeyValidCount       = "valid_count"
	KeyInvalidCount     = "invalid_count"
	KeyTotalCorrections = "total_corrections"
	KeyEntriesModified  = "entries_modified"
)

var validKinds = map[Kind]struct{}{
	EntriesUpdated:         {},
	CorrectionRulesUpdated: {},
	ValidationListsUpdated: {},
	ValidationListUpdated:  {},
	ValidationStarted:      {},
	ValidationCompleted:    {},
	CorrectionStarted:      {},
	CorrectionApplied:      {},
	CorrectionsReset:       {},
	ImportStarted:          {},
	ImportCompleted:        {},
	ExportStarted:          {},
	ExportCompleted:        {},
	ErrorOccurred:          {},
	WarningIssued:          {},
	InfoMessage:            {},
	UIRefreshNeeded:        {},
	SelectionChanged:       {},
	FilterChanged:          {},
}

// Valid reports whether k is one of the enumerated event kinds.
func (k Kind) Valid() bool {
	_, ok := validKinds[k]
	return ok
}

// Payload is the key-value data delivered with an event. Emit always merges
// the event kind in under KeyEventType.
type Payload map[string]any

// Clone returns a shallow copy of the payload.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Handler is a callback invoked synchronously for each emitted event.
type Handler func(Payload)
