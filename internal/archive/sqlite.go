// Package archive persists store snapshots to SQLite between runs. The core
// store stays memory-resident; this package is the external caller that
// saves and restores it.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/wtharvey/chestkeeper/internal/events"
	"github.com/wtharvey/chestkeeper/internal/model"
	"github.com/wtharvey/chestkeeper/internal/store"
)

// Archive reads and writes store snapshots in a SQLite database.
type Archive struct {
	db   *sql.DB
	path string
}

// New opens (creating if needed) the snapshot database at dbPath.
func New(dbPath string) (*Archive, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("dbPath cannot be empty")
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	a := &Archive{db: db, path: dbPath}
	if err := a.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) ensureSchema(ctx context.Context) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			id TEXT PRIMARY KEY,
			player TEXT NOT NULL,
			chest_type TEXT NOT NULL,
			source TEXT NOT NULL,
			status TEXT NOT NULL,
			extra TEXT,
			original_values TEXT,
			validation_errors TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS correction_rules (
			from_text TEXT NOT NULL,
			to_text TEXT NOT NULL,
			field_category TEXT NOT NULL DEFAULT '',
			priority INTEGER NOT NULL DEFAULT 0,
			enabled INTEGER NOT NULL DEFAULT 1,
			last_modified TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS validation_lists (
			list_name TEXT NOT NULL,
			value TEXT NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := a.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Save writes the store's current tables to the database, replacing any
// previous snapshot.
func (a *Archive) Save(ctx context.Context, st *store.Store) error {
	entries := st.GetEntries()
	rules := st.GetCorrectionRules()
	lists := st.GetValidationLists()

	st.Bus().Emit(events.ExportStarted, events.Payload{events.KeyCount: len(entries)})

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"entries", "correction_rules", "validation_lists"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := saveEntries(ctx, tx, entries); err != nil {
		return err
	}
	if err := saveRules(ctx, tx, rules); err != nil {
		return err
	}
	if err := saveLists(ctx, tx, lists); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	st.Bus().Emit(events.ExportCompleted, events.Payload{events.KeyCount: len(entries)})
	return nil
}

func saveEntries(ctx context.Context, tx *sql.Tx, entries []model.Entry) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (id, player, chest_type, source, status, extra, original_values, validation_errors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare entry insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range entries {
		e := &entries[i]
		extra, err := marshalMap(e.Extra)
		if err != nil {
			return fmt.Errorf("entry %s: %w", e.ID, err)
		}
		originals, err := marshalMap(e.OriginalValues)
		if err != nil {
			return fmt.Errorf("entry %s: %w", e.ID, err)
		}
		verrs, err := marshalErrors(e.ValidationErrors)
		if err != nil {
			return fmt.Errorf("entry %s: %w", e.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, e.ID, e.Player, e.ChestType, e.Source, string(e.Status), extra, originals, verrs); err != nil {
			return fmt.Errorf("failed to save entry %s: %w", e.ID, err)
		}
	}
	return nil
}

func saveRules(ctx context.Context, tx *sql.Tx, rules []model.CorrectionRule) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO correction_rules (from_text, to_text, field_category, priority, enabled, last_modified)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare rule insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range rules {
		if _, err := stmt.ExecContext(ctx, r.FromText, r.ToText, r.FieldCategory, r.Priority, r.Enabled, r.LastModified); err != nil {
			return fmt.Errorf("failed to save rule %q: %w", r.FromText, err)
		}
	}
	return nil
}

func saveLists(ctx context.Context, tx *sql.Tx, lists []model.ValidationList) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO validation_lists (list_name, value) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare list insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, l := range lists {
		for _, v := range l.Values() {
			if _, err := stmt.ExecContext(ctx, l.Name, v); err != nil {
				return fmt.Errorf("failed to save list %q: %w", l.Name, err)
			}
		}
	}
	return nil
}

// Load replaces the store's tables with the saved snapshot inside one store
// transaction. An empty database loads an empty store.
func (a *Archive) Load(ctx context.Context, st *store.Store) error {
	entries, err := a.loadEntries(ctx)
	if err != nil {
		return err
	}
	rules, err := a.loadRules(ctx)
	if err != nil {
		return err
	}
	listNames, listValues, err := a.loadLists(ctx)
	if err != nil {
		return err
	}

	st.Bus().Emit(events.ImportStarted, events.Payload{events.KeyCount: len(entries)})

	if err := st.BeginTransaction(); err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	if err := st.SetEntries(entries, "archive"); err != nil {
		_ = st.RollbackTransaction()
		return fmt.Errorf("failed to load entries: %w", err)
	}
	if err := st.SetCorrectionRules(rules); err != nil {
		_ = st.RollbackTransaction()
		return fmt.Errorf("failed to load rules: %w", err)
	}
	for _, name := range listNames {
		if err := st.SetValidationList(name, listValues[name]); err != nil {
			_ = st.RollbackTransaction()
			return fmt.Errorf("failed to load list %q: %w", name, err)
		}
	}
	if err := st.CommitTransaction(); err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	st.Bus().Emit(events.ImportCompleted, events.Payload{events.KeyCount: len(entries)})
	return nil
}

func (a *Archive) loadEntries(ctx context.Context) ([]model.Entry, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, player, chest_type, source, status, extra, original_values, validation_errors
		FROM entries ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.Entry
	for rows.Next() {
		var e model.Entry
		var status string
		var extra, originals, verrs sql.NullString
		if err := rows.Scan(&e.ID, &e.Player, &e.ChestType, &e.Source, &status, &extra, &originals, &verrs); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Status = model.Status(status)
		if e.Extra, err = unmarshalMap(extra); err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		if e.OriginalValues, err = unmarshalMap(originals); err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		if e.ValidationErrors, err = unmarshalErrors(verrs); err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (a *Archive) loadRules(ctx context.Context) ([]model.CorrectionRule, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT from_text, to_text, field_category, priority, enabled, last_modified
		FROM correction_rules ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.CorrectionRule
	for rows.Next() {
		var r model.CorrectionRule
		var lastModified sql.NullTime
		if err := rows.Scan(&r.FromText, &r.ToText, &r.FieldCategory, &r.Priority, &r.Enabled, &lastModified); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		if lastModified.Valid {
			r.LastModified = lastModified.Time
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func (a *Archive) loadLists(ctx context.Context) ([]string, map[string][]string, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT list_name, value FROM validation_lists ORDER BY rowid`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query lists: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	values := make(map[string][]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, nil, fmt.Errorf("failed to scan list value: %w", err)
		}
		if _, seen := values[name]; !seen {
			names = append(names, name)
		}
		values[name] = append(values[name], value)
	}
	return names, values, rows.Err()
}

func marshalMap(m map[string]string) (sql.NullString, error) {
	if len(m) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to marshal map: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalMap(s sql.NullString) (map[string]string, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(s.String), &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal map: %w", err)
	}
	return m, nil
}

func marshalErrors(errs []model.ValidationError) (sql.NullString, error) {
	if len(errs) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(errs)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to marshal validation errors: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalErrors(s sql.NullString) ([]model.ValidationError, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var errs []model.ValidationError
	if err := json.Unmarshal([]byte(s.String), &errs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal validation errors: %w", err)
	}
	return errs, nil
}
