// Package store implements the transactional in-memory table store that owns
// all entries, correction rules and validation lists. It is the only place
// state is mutated; committed changes are announced on the event bus.
package store

import (
	"errors"
	"log/slog"
	"reflect"
	"sync"

	"github.com/wtharvey/chestkeeper/internal/events"
	"github.com/wtharvey/chestkeeper/internal/model"
)

// Store errors.
var (
	ErrTransactionActive = errors.New("transaction already active")
	ErrNoTransaction     = errors.New("no active transaction")
	ErrEntryNotFound     = errors.New("entry not found")
	ErrDuplicateEntry    = errors.New("duplicate entry")
	ErrEmptyEntryID      = errors.New("entry id cannot be empty")
)

// tables holds the three logical tables as one copyable unit.
type tables struct {
	lists     map[string]model.ValidationList
	entries   []model.Entry
	rules     []model.CorrectionRule
	listOrder []string
}

func newTables() tables {
	return tables{lists: make(map[string]model.ValidationList)}
}

func (t tables) clone() tables {
	c := tables{
		entries: model.CloneEntries(t.entries),
		rules:   model.CloneRules(t.rules),
		lists:   make(map[string]model.ValidationList, len(t.lists)),
	}
	for name, l := range t.lists {
		c.lists[name] = l.Clone()
	}
	if t.listOrder != nil {
		c.listOrder = make([]string, len(t.listOrder))
		copy(c.listOrder, t.listOrder)
	}
	return c
}

// emission is a deferred event, dispatched after the store lock is released
// so handlers may re-enter the store.
type emission struct {
	payload events.Payload
	kind    events.Kind
}

// Store owns the three tables. It is designed for a single logical writer:
// one coarse mutex guards all state, and a second concurrent
// BeginTransaction fails fast instead of blocking.
type Store struct {
	bus      *events.Bus
	snapshot *tables
	txSource string
	current  tables
	mu       sync.Mutex
}

// New constructs an empty store announcing committed changes on bus.
func New(bus *events.Bus) *Store {
	return &Store{bus: bus, current: newTables()}
}

// Bus returns the event bus this store announces on.
func (s *Store) Bus() *events.Bus {
	return s.bus
}

// InTransaction reports whether an explicit transaction is open.
func (s *Store) InTransaction() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot != nil
}

// BeginTransaction snapshots all three tables and opens a transaction.
// Transactions do not nest; a second begin fails with ErrTransactionActive.
func (s *Store) BeginTransaction() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot != nil {
		return ErrTransactionActive
	}
	snap := s.current.clone()
	s.snapshot = &snap
	s.txSource = ""
	slog.Debug("transaction started")
	return nil
}

// CommitTransaction closes the open transaction and emits one *Updated event
// for each table that differs from its pre-transaction snapshot, however
// many operations touched it.
func (s *Store) CommitTransaction() error {
	s.mu.Lock()
	if s.snapshot == nil {
		s.mu.Unlock()
		return ErrNoTransaction
	}
	emissions := s.changedSince(*s.snapshot)
	s.snapshot = nil
	s.txSource = ""
	s.mu.Unlock()

	slog.Debug("transaction committed", "events", len(emissions))
	s.dispatch(emissions)
	return nil
}

// RollbackTransaction restores all three tables verbatim from the snapshot.
// No data-changed events are emitted.
func (s *Store) RollbackTransaction() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot == nil {
		return ErrNoTransaction
	}
	s.current = *s.snapshot
	s.snapshot = nil
	s.txSource = ""
	slog.Debug("transaction rolled back")
	return nil
}

// write runs fn against the staged tables. Inside an explicit transaction it
// simply applies; outside one it wraps fn in an implicit single-operation
// transaction that commits on success and rolls back on failure.
func (s *Store) write(fn func() error) error {
	s.mu.Lock()

	if s.snapshot != nil {
		err := fn()
		s.mu.Unlock()
		return err
	}

	before := s.current.clone()
	if err := fn(); err != nil {
		s.current = before
		s.txSource = ""
		s.mu.Unlock()
		return err
	}
	emissions := s.changedSince(before)
	s.txSource = ""
	s.mu.Unlock()

	s.dispatch(emissions)
	return nil
}

// changedSince compares the staged tables against a snapshot and builds the
// coalesced event set for a commit. Caller must hold the lock.
func (s *Store) changedSince(before tables) []emission {
	var out []emission

	if !reflect.DeepEqual(s.current.entries, before.entries) {
		out = append(out, emission{
			kind: events.EntriesUpdated,
			payload: events.Payload{
				events.KeyCount:  len(s.current.entries),
				events.KeySource: s.txSource,
			},
		})
	}
	if !reflect.DeepEqual(s.current.rules, before.rules) {
		out = append(out, emission{
			kind:    events.CorrectionRulesUpdated,
			payload: events.Payload{events.KeyCount: len(s.current.rules)},
		})
	}

	// Per-list events first, in display order, then removed lists.
	changedLists := false
	for _, name := range s.current.listOrder {
		cur := s.current.lists[name]
		prev, existed := before.lists[name]
		if existed && reflect.DeepEqual(cur, prev) {
			continue
		}
		changedLists = true
		out = append(out, emission{
			kind: events.ValidationListUpdated,
			payload: events.Payload{
				events.KeyListType: name,
				events.KeyCount:    cur.Len(),
			},
		})
	}
	for _, name := range before.listOrder {
		if _, still := s.current.lists[name]; still {
			continue
		}
		changedLists = true
		out = append(out, emission{
			kind: events.ValidationListUpdated,
			payload: events.Payload{
				events.KeyListType: name,
				events.KeyCount:    0,
			},
		})
	}
	if changedLists {
		out = append(out, emission{
			kind:    events.ValidationListsUpdated,
			payload: events.Payload{events.KeyCount: len(s.current.lists)},
		})
	}
	return out
}

func (s *Store) dispatch(emissions []emission) {
	for _, e := range emissions {
		s.bus.Emit(e.kind, e.payload)
	}
}
