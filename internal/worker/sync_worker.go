package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"desayunos/internal/amqp"
	"desayunos/internal/storage"
	"desayunos/internal/store"
)

// SyncWorker mirrors ledger entries from the local SQLite database to
// the cloud store. Events from AMQP drive the normal path; a periodic
// scan of sync-pending rows catches anything the broker dropped.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	mirror    store.EntryMirror
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, mirror store.EntryMirror, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		mirror:    mirror,
		batchSize: batchSize,
	}
}

// HandleEvent processes a single entry event from AMQP.
func (w *SyncWorker) HandleEvent(ctx context.Context, msg *amqp.EntryEventMessage) error {
	slog.InfoContext(ctx, "Processing entry event",
		"entry_id", msg.EntryID,
		"op", msg.Op)

	switch msg.Op {
	case amqp.OpDelete:
		return w.deleteFromMirror(ctx, msg.EntryID)
	case amqp.OpUpsert:
		return w.syncEntry(ctx, msg.EntryID)
	default:
		return fmt.Errorf("unknown entry event op %q", msg.Op)
	}
}

// ProcessPending scans the local database for entries that never
// reached the mirror and pushes them, one batch per call.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncEntries(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending entries: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending entries", "count", len(pending))

	for _, entry := range pending {
		if err := w.syncEntry(ctx, entry.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync entry",
				"entry_id", entry.ID, "error", err)
		}
	}

	return nil
}

// StartupSyncCheck runs one pending scan at boot so entries written
// while the worker was down are mirrored before consumption starts.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	return w.ProcessPending(ctx)
}

func (w *SyncWorker) syncEntry(ctx context.Context, id string) error {
	entry, err := w.storage.GetEntry(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		// Deleted locally before the event was handled. The delete
		// event takes care of the mirror.
		slog.InfoContext(ctx, "Entry gone from local storage, skipping sync",
			"entry_id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get entry from storage: %w", err)
	}

	if err := w.mirror.Upsert(ctx, entry); err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error",
				"entry_id", id, "error", markErr)
		}
		return fmt.Errorf("upsert entry to mirror: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		return fmt.Errorf("mark entry synced: %w", err)
	}

	slog.InfoContext(ctx, "Entry mirrored", "entry_id", id)
	return nil
}

func (w *SyncWorker) deleteFromMirror(ctx context.Context, id string) error {
	err := w.mirror.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		// Already gone, a requeued delete is not an error.
		slog.InfoContext(ctx, "Entry already absent from mirror",
			"entry_id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete entry from mirror: %w", err)
	}

	slog.InfoContext(ctx, "Entry removed from mirror", "entry_id", id)
	return nil
}
