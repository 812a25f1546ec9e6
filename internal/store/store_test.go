package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wtharvey/chestkeeper/internal/events"
	"github.com/wtharvey/chestkeeper/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(events.NewBus())
}

func testEntries() []model.Entry {
	return []model.Entry{
		{ID: "e1", Player: "Player1", ChestType: "Wood Chest", Source: "Level 10 Crypt"},
		{ID: "e2", Player: "Player2", ChestType: "Gold Chest", Source: "Level 15 Crypt"},
	}
}

// recorder collects every payload emitted for one kind.
type recorder struct {
	payloads []events.Payload
}

func record(t *testing.T, bus *events.Bus, kind events.Kind) *recorder {
	t.Helper()
	r := &recorder{}
	_, err := bus.Subscribe(kind, func(p events.Payload) {
		r.payloads = append(r.payloads, p)
	})
	require.NoError(t, err)
	return r
}

func TestStore_SetAndGetEntries(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SetEntries(testEntries(), "import"))

	got := s.GetEntries()
	require.Len(t, got, 2)
	assert.Equal(t, "Player1", got[0].Player)
	assert.Equal(t, 2, s.EntryCount())
}

func TestStore_GetEntriesReturnsCopy(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SetEntries(testEntries(), "import"))

	got := s.GetEntries()
	got[0].Player = "mutated"
	got[0].SetField("clan", "Ravens")

	fresh := s.GetEntries()
	assert.Equal(t, "Player1", fresh[0].Player)
	_, ok := fresh[0].Field("clan")
	assert.False(t, ok)
}

func TestStore_SetEntriesRejectsEmptyID(t *testing.T) {
	s := newTestStore(t)

	err := s.SetEntries([]model.Entry{{Player: "nobody"}}, "import")
	assert.ErrorIs(t, err, ErrEmptyEntryID)
	assert.Equal(t, 0, s.EntryCount())
}

func TestStore_AddEntry(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AddEntry(model.Entry{ID: "e1", Player: "Player1"}))
	assert.ErrorIs(t, s.AddEntry(model.Entry{ID: "e1"}), ErrDuplicateEntry)
	assert.ErrorIs(t, s.AddEntry(model.Entry{}), ErrEmptyEntryID)
	assert.Equal(t, 1, s.EntryCount())
}

func TestStore_UpdateEntry(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SetEntries(testEntries(), "import"))

	e, ok := s.GetEntry("e1")
	require.True(t, ok)
	e.Player = "Renamed"
	require.NoError(t, s.UpdateEntry(e))

	updated, ok := s.GetEntry("e1")
	require.True(t, ok)
	assert.Equal(t, "Renamed", updated.Player)

	assert.ErrorIs(t, s.UpdateEntry(model.Entry{ID: "missing"}), ErrEntryNotFound)
}

func TestStore_RemoveEntry(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SetEntries(testEntries(), "import"))

	require.NoError(t, s.RemoveEntry("e1"))
	assert.Equal(t, 1, s.EntryCount())
	assert.ErrorIs(t, s.RemoveEntry("e1"), ErrEntryNotFound)
}

func TestStore_SetCorrectionRulesValidates(t *testing.T) {
	s := newTestStore(t)

	err := s.SetCorrectionRules([]model.CorrectionRule{{ToText: "x", Enabled: true}})
	assert.ErrorIs(t, err, model.ErrEmptyFromText)
	assert.Empty(t, s.GetCorrectionRules())
}

func TestStore_ValidationListSetSemantics(t *testing.T) {
	s := newTestStore(t)

	added, err := s.AddValidationEntry("player", "Player1")
	require.NoError(t, err)
	assert.True(t, added)

	// Duplicate add is a boolean no-op
	added, err = s.AddValidationEntry("player", "Player1")
	require.NoError(t, err)
	assert.False(t, added)

	values, ok := s.GetValidationList("player")
	require.True(t, ok)
	assert.Equal(t, []string{"Player1"}, values)

	removed, err := s.RemoveValidationEntry("player", "Player1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.RemoveValidationEntry("player", "Player1")
	require.NoError(t, err)
	assert.False(t, removed)

	// Removing from a list that never existed is also a boolean no-op
	removed, err = s.RemoveValidationEntry("no_such_list", "x")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestStore_ValidationListOrderPreserved(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SetValidationList("chest_type", []string{"Wood", "Gold", "Wood", "Silver"}))

	values, ok := s.GetValidationList("chest_type")
	require.True(t, ok)
	assert.Equal(t, []string{"Wood", "Gold", "Silver"}, values)
}

func TestStore_ValidationListNamesInCreationOrder(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SetValidationList("player", nil))
	require.NoError(t, s.SetValidationList("chest_type", nil))
	_, err := s.AddValidationEntry("source", "Arena")
	require.NoError(t, err)

	assert.Equal(t, []string{"player", "chest_type", "source"}, s.ValidationListNames())

	lists := s.GetValidationLists()
	require.Len(t, lists, 3)
	assert.Equal(t, "player", lists[0].Name)
}

func TestStore_GetValidationListMissing(t *testing.T) {
	s := newTestStore(t)

	_, ok := s.GetValidationList("player")
	assert.False(t, ok)
}
