package worker

import (
	"context"
	"path/filepath"
	"testing"

	"desayunos/internal/amqp"
	"desayunos/internal/core"
	"desayunos/internal/storage"
	"desayunos/internal/store/memory"
)

func newTestWorker(t *testing.T) (*SyncWorker, *storage.SQLiteRepository, *memory.Store) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "desayunos.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	mirror := memory.New()
	return NewSyncWorker(repo, mirror, 10), repo, mirror
}

func TestHandleEventUpsert(t *testing.T) {
	w, repo, mirror := newTestWorker(t)
	ctx := context.Background()

	id, err := repo.CreateEntry(ctx, core.Entry{
		Date:         core.NewDate(2025, 3, 14),
		Payer:        "Roman",
		Participants: []string{"Roman", "Arturo"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	msg := amqp.NewEntryEventMessage(id, amqp.OpUpsert)
	if err := w.HandleEvent(ctx, msg); err != nil {
		t.Fatalf("handle upsert: %v", err)
	}

	mirrored, err := mirror.ListAll(ctx)
	if err != nil {
		t.Fatalf("list mirror: %v", err)
	}
	if len(mirrored) != 1 || mirrored[0].ID != id || mirrored[0].Payer != "Roman" {
		t.Fatalf("entry not mirrored: %v", mirrored)
	}

	pending, _ := repo.GetPendingSyncEntries(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("entry still pending after successful sync")
	}
}

func TestHandleEventUpsertForMissingEntry(t *testing.T) {
	w, _, mirror := newTestWorker(t)
	ctx := context.Background()

	// Entry was deleted locally before the event arrived. The handler
	// acks it; the matching delete event cleans the mirror.
	msg := amqp.NewEntryEventMessage("gone", amqp.OpUpsert)
	if err := w.HandleEvent(ctx, msg); err != nil {
		t.Fatalf("upsert for missing entry should be a no-op, got %v", err)
	}
	if mirror.Len() != 0 {
		t.Fatalf("mirror should stay empty")
	}
}

func TestHandleEventDelete(t *testing.T) {
	w, _, mirror := newTestWorker(t)
	ctx := context.Background()

	if err := mirror.Upsert(ctx, core.Entry{
		ID:           "e1",
		Date:         core.NewDate(2025, 3, 14),
		Payer:        "Roman",
		Participants: []string{"Roman"},
	}); err != nil {
		t.Fatalf("seed mirror: %v", err)
	}

	msg := amqp.NewEntryEventMessage("e1", amqp.OpDelete)
	if err := w.HandleEvent(ctx, msg); err != nil {
		t.Fatalf("handle delete: %v", err)
	}
	if mirror.Len() != 0 {
		t.Fatalf("entry not removed from mirror")
	}

	// A requeued delete for an absent entry is acked, not retried.
	if err := w.HandleEvent(ctx, msg); err != nil {
		t.Fatalf("second delete should be a no-op, got %v", err)
	}
}

func TestHandleEventUnknownOp(t *testing.T) {
	w, _, _ := newTestWorker(t)

	msg := &amqp.EntryEventMessage{EntryID: "e1", Op: "replace"}
	if err := w.HandleEvent(context.Background(), msg); err == nil {
		t.Fatal("expected error for unknown op")
	}
}

func TestProcessPending(t *testing.T) {
	w, repo, mirror := newTestWorker(t)
	ctx := context.Background()

	id1, _ := repo.CreateEntry(ctx, core.Entry{Date: core.NewDate(2025, 3, 10), Payer: "Roman", Participants: []string{"Roman"}})
	id2, _ := repo.CreateEntry(ctx, core.Entry{Date: core.NewDate(2025, 3, 11), Payer: "Luis", Participants: []string{"Luis"}})

	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("process pending: %v", err)
	}

	if mirror.Len() != 2 {
		t.Fatalf("expected 2 mirrored entries, got %d", mirror.Len())
	}

	pending, _ := repo.GetPendingSyncEntries(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("entries still pending: %v", pending)
	}

	entries, _ := mirror.ListAll(ctx)
	seen := map[string]bool{}
	for _, e := range entries {
		seen[e.ID] = true
	}
	if !seen[id1] || !seen[id2] {
		t.Fatalf("mirror missing entries: %v", seen)
	}
}

func TestProcessPendingEmptyIsNoop(t *testing.T) {
	w, _, mirror := newTestWorker(t)

	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("process pending on empty db: %v", err)
	}
	if mirror.Len() != 0 {
		t.Fatalf("mirror should be empty")
	}
}

func TestFailedMirrorPushStaysPending(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "desayunos.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	w := NewSyncWorker(repo, failingMirror{}, 10)
	ctx := context.Background()

	id, _ := repo.CreateEntry(ctx, core.Entry{Date: core.NewDate(2025, 3, 10), Payer: "Roman", Participants: []string{"Roman"}})

	msg := amqp.NewEntryEventMessage(id, amqp.OpUpsert)
	if err := w.HandleEvent(ctx, msg); err == nil {
		t.Fatal("expected error when mirror push fails")
	}

	pending, _ := repo.GetPendingSyncEntries(ctx, 10)
	if len(pending) != 1 {
		t.Fatalf("failed entry should stay pending for the backstop scan")
	}
}

type failingMirror struct{}

func (failingMirror) Upsert(ctx context.Context, e core.Entry) error {
	return context.DeadlineExceeded
}

func (failingMirror) Delete(ctx context.Context, id string) error {
	return context.DeadlineExceeded
}
