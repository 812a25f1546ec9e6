package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/wtharvey/chestkeeper/internal/archive"
	"github.com/wtharvey/chestkeeper/internal/common"
	"github.com/wtharvey/chestkeeper/internal/config"
	"github.com/wtharvey/chestkeeper/internal/events"
	"github.com/wtharvey/chestkeeper/internal/store"
)

// workspace bundles the explicitly constructed collaborators every command
// needs: one bus, one store, and the snapshot archive they load from and
// save to.
type workspace struct {
	bus     *events.Bus
	store   *store.Store
	archive *archive.Archive
}

// openWorkspace wires a fresh store to the snapshot database and loads the
// previous snapshot into it.
func openWorkspace(ctx context.Context) (*workspace, error) {
	dbPath := config.DataPath(viper.GetString("data.path"))

	a, err := archive.New(dbPath)
	if err != nil {
		return nil, common.NewUserError("failed to open snapshot database", err)
	}

	bus := events.NewBus()
	st := store.New(bus)
	if err := a.Load(ctx, st); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	return &workspace{bus: bus, store: st, archive: a}, nil
}

// saveAndClose persists the store back to the snapshot database.
func (w *workspace) saveAndClose(ctx context.Context) error {
	defer func() { _ = w.archive.Close() }()
	if err := w.archive.Save(ctx, w.store); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (w *workspace) close() {
	_ = w.archive.Close()
}
