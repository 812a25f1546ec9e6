package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wtharvey/chestkeeper/internal/events"
	"github.com/wtharvey/chestkeeper/internal/model"
)

func TestStore_TransactionStateMachine(t *testing.T) {
	s := newTestStore(t)

	assert.ErrorIs(t, s.CommitTransaction(), ErrNoTransaction)
	assert.ErrorIs(t, s.RollbackTransaction(), ErrNoTransaction)

	require.NoError(t, s.BeginTransaction())
	assert.True(t, s.InTransaction())
	assert.ErrorIs(t, s.BeginTransaction(), ErrTransactionActive)

	require.NoError(t, s.CommitTransaction())
	assert.False(t, s.InTransaction())
}

func TestStore_ConcurrentBeginFailsFast(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.BeginTransaction())

	errCh := make(chan error, 1)
	go func() { errCh <- s.BeginTransaction() }()
	assert.ErrorIs(t, <-errCh, ErrTransactionActive)

	require.NoError(t, s.RollbackTransaction())
}

func TestStore_RollbackRestoresAllTables(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SetEntries(testEntries(), "import"))
	require.NoError(t, s.SetCorrectionRules([]model.CorrectionRule{
		{FromText: "VVood", ToText: "Wood", Enabled: true},
	}))
	require.NoError(t, s.SetValidationList("player", []string{"Player1"}))

	entriesBefore := s.GetEntries()
	rulesBefore := s.GetCorrectionRules()
	listBefore, _ := s.GetValidationList("player")

	require.NoError(t, s.BeginTransaction())
	require.NoError(t, s.RemoveEntry("e1"))
	require.NoError(t, s.SetEntries(nil, "test"))
	require.NoError(t, s.SetCorrectionRules(nil))
	_, err := s.AddValidationEntry("player", "Player2")
	require.NoError(t, err)
	require.NoError(t, s.RollbackTransaction())

	assert.Equal(t, entriesBefore, s.GetEntries())
	assert.Equal(t, rulesBefore, s.GetCorrectionRules())
	listAfter, _ := s.GetValidationList("player")
	assert.Equal(t, listBefore, listAfter)
}

func TestStore_ReadYourWritesInsideTransaction(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.BeginTransaction())

	require.NoError(t, s.AddEntry(model.Entry{ID: "e1", Player: "Player1"}))

	// The staged view, not the pre-transaction view, is visible before commit
	assert.Equal(t, 1, s.EntryCount())
	e, ok := s.GetEntry("e1")
	require.True(t, ok)
	assert.Equal(t, "Player1", e.Player)

	require.NoError(t, s.RollbackTransaction())
	assert.Equal(t, 0, s.EntryCount())
}

func TestStore_CommitCoalescesEntriesEvents(t *testing.T) {
	s := newTestStore(t)
	r := record(t, s.Bus(), events.EntriesUpdated)

	require.NoError(t, s.BeginTransaction())
	require.NoError(t, s.AddEntry(model.Entry{ID: "e1", Player: "Player1"}))
	require.NoError(t, s.AddEntry(model.Entry{ID: "e2", Player: "Player2"}))
	require.NoError(t, s.AddEntry(model.Entry{ID: "e3", Player: "Player3"}))
	require.NoError(t, s.RemoveEntry("e3"))
	assert.Empty(t, r.payloads, "no events before commit")

	require.NoError(t, s.CommitTransaction())

	require.Len(t, r.payloads, 1, "exactly one EntriesUpdated per commit")
	assert.Equal(t, 2, r.payloads[0][events.KeyCount])
	assert.Equal(t, events.EntriesUpdated, r.payloads[0][events.KeyEventType])
}

func TestStore_CommitEmitsPerChangedTable(t *testing.T) {
	s := newTestStore(t)
	entries := record(t, s.Bus(), events.EntriesUpdated)
	rules := record(t, s.Bus(), events.CorrectionRulesUpdated)
	lists := record(t, s.Bus(), events.ValidationListsUpdated)

	require.NoError(t, s.BeginTransaction())
	require.NoError(t, s.SetEntries(testEntries(), "import"))
	require.NoError(t, s.SetCorrectionRules([]model.CorrectionRule{
		{FromText: "a", ToText: "b", Enabled: true},
	}))
	require.NoError(t, s.CommitTransaction())

	assert.Len(t, entries.payloads, 1)
	assert.Len(t, rules.payloads, 1)
	assert.Empty(t, lists.payloads, "untouched table emits nothing")
}

func TestStore_CommitWithoutNetChangeEmitsNothing(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SetValidationList("player", []string{"Player1"}))

	lists := record(t, s.Bus(), events.ValidationListsUpdated)
	list := record(t, s.Bus(), events.ValidationListUpdated)

	require.NoError(t, s.BeginTransaction())
	added, err := s.AddValidationEntry("player", "Player2")
	require.NoError(t, err)
	require.True(t, added)
	removed, err := s.RemoveValidationEntry("player", "Player2")
	require.NoError(t, err)
	require.True(t, removed)
	require.NoError(t, s.CommitTransaction())

	assert.Empty(t, lists.payloads)
	assert.Empty(t, list.payloads)
}

func TestStore_RollbackEmitsNothing(t *testing.T) {
	s := newTestStore(t)
	r := record(t, s.Bus(), events.EntriesUpdated)

	require.NoError(t, s.BeginTransaction())
	require.NoError(t, s.SetEntries(testEntries(), "import"))
	require.NoError(t, s.RollbackTransaction())

	assert.Empty(t, r.payloads)
}

func TestStore_ImplicitTransactionEmitsImmediately(t *testing.T) {
	s := newTestStore(t)
	r := record(t, s.Bus(), events.EntriesUpdated)

	require.NoError(t, s.SetEntries(testEntries(), "ocr_import"))

	require.Len(t, r.payloads, 1)
	assert.Equal(t, 2, r.payloads[0][events.KeyCount])
	assert.Equal(t, "ocr_import", r.payloads[0][events.KeySource])
}

func TestStore_ImplicitTransactionRollsBackOnFailure(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SetEntries(testEntries(), "import"))
	r := record(t, s.Bus(), events.EntriesUpdated)

	assert.ErrorIs(t, s.RemoveEntry("missing"), ErrEntryNotFound)
	assert.Equal(t, 2, s.EntryCount())
	assert.Empty(t, r.payloads)
}

func TestStore_SourceTagLastWriterWins(t *testing.T) {
	s := newTestStore(t)
	r := record(t, s.Bus(), events.EntriesUpdated)

	require.NoError(t, s.BeginTransaction())
	require.NoError(t, s.SetEntries(testEntries(), "import"))
	require.NoError(t, s.SetEntries(testEntries(), "validation_service"))
	require.NoError(t, s.CommitTransaction())

	require.Len(t, r.payloads, 1)
	assert.Equal(t, "validation_service", r.payloads[0][events.KeySource])
}

func TestStore_ValidationListEventCarriesListType(t *testing.T) {
	s := newTestStore(t)
	list := record(t, s.Bus(), events.ValidationListUpdated)
	lists := record(t, s.Bus(), events.ValidationListsUpdated)

	_, err := s.AddValidationEntry("player", "Player1")
	require.NoError(t, err)

	require.Len(t, list.payloads, 1)
	assert.Equal(t, "player", list.payloads[0][events.KeyListType])
	assert.Equal(t, 1, list.payloads[0][events.KeyCount])
	require.Len(t, lists.payloads, 1)
	assert.Equal(t, 1, lists.payloads[0][events.KeyCount])
}

func TestStore_HandlerMayReenterAfterCommit(t *testing.T) {
	s := newTestStore(t)

	var seen int
	_, err := s.Bus().Subscribe(events.EntriesUpdated, func(events.Payload) {
		// Handlers run after the commit releases the store lock, so
		// re-entering the store is legal here.
		seen = s.EntryCount()
	})
	require.NoError(t, err)

	require.NoError(t, s.SetEntries(testEntries(), "import"))
	assert.Equal(t, 2, seen)
}
