package adapters

import (
	"context"

	"desayunos/internal/core"
	"desayunos/internal/services"
	"desayunos/internal/storage"
	"desayunos/internal/store"
)

// SQLiteAdapter adapts SQLiteRepository and EntryService to the
// store.EntryStore interfaces. Reads go straight to the repository;
// mutations go through the service so each one also publishes the
// event that drives the cloud mirror.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.EntryService
}

var _ store.EntryStore = (*SQLiteAdapter)(nil)

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.EntryService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

// ListAll implements store.EntryLister.
func (a *SQLiteAdapter) ListAll(ctx context.Context) ([]core.Entry, error) {
	return a.storage.ListEntries(ctx)
}

// Create implements store.EntryCreator.
func (a *SQLiteAdapter) Create(ctx context.Context, e core.Entry) (string, error) {
	return a.service.CreateEntry(ctx, e)
}

// Update implements store.EntryUpdater.
func (a *SQLiteAdapter) Update(ctx context.Context, id, payer string, participants []string) error {
	return a.service.UpdateEntry(ctx, id, payer, participants)
}

// Delete implements store.EntryDeleter.
func (a *SQLiteAdapter) Delete(ctx context.Context, id string) error {
	return a.service.DeleteEntry(ctx, id)
}
