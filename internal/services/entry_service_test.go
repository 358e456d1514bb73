package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"desayunos/internal/core"
	"desayunos/internal/storage"
	"desayunos/internal/store"
)

func newEntryService(t *testing.T) *EntryService {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "desayunos.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	// nil AMQP client: publishes are skipped, mutations still succeed.
	svc := NewEntryService(repo, nil)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestEntryServiceLifecycleWithoutBroker(t *testing.T) {
	svc := newEntryService(t)
	ctx := context.Background()

	id, err := svc.CreateEntry(ctx, core.Entry{
		Date:         core.NewDate(2025, 3, 14),
		Payer:        "Roman",
		Participants: []string{"Roman", "Arturo"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.UpdateEntry(ctx, id, "Arturo", []string{"Arturo"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := svc.storage.GetEntry(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Payer != "Arturo" {
		t.Fatalf("payer = %q after update", got.Payer)
	}

	if err := svc.DeleteEntry(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.storage.GetEntry(ctx, id); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestEntryServiceUpdateMissing(t *testing.T) {
	svc := newEntryService(t)

	err := svc.UpdateEntry(context.Background(), "missing", "Roman", []string{"Roman"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
