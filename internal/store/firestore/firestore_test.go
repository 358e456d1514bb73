package firestore

import (
	"errors"
	"net/http"
	"testing"

	"desayunos/internal/core"
	"desayunos/internal/store"

	gfirestore "google.golang.org/api/firestore/v1"
	"google.golang.org/api/googleapi"
)

const docName = "projects/p/databases/(default)/documents/breakfasts/abc-123"

func TestEntryDocumentCodec(t *testing.T) {
	entry := core.Entry{
		ID:           "abc-123",
		Date:         core.NewDate(2025, 3, 14),
		Payer:        "Roman",
		Participants: []string{"Roman", "Arturo", "Luis"},
	}

	doc := entryToDocument(entry)
	if got := doc.Fields["date"].StringValue; got != "14/03/2025" {
		t.Fatalf("date field = %q, want 14/03/2025", got)
	}
	if got := doc.Fields["payer"].StringValue; got != "Roman" {
		t.Fatalf("payer field = %q", got)
	}
	if got := len(doc.Fields["participants"].ArrayValue.Values); got != 3 {
		t.Fatalf("participants length = %d", got)
	}

	doc.Name = docName
	back, err := documentToEntry(doc)
	if err != nil {
		t.Fatalf("documentToEntry: %v", err)
	}
	if back.ID != entry.ID || back.Payer != entry.Payer {
		t.Fatalf("round trip changed entry: %+v", back)
	}
	if !back.Date.Equal(entry.Date) {
		t.Fatalf("round trip changed date: %v", back.Date)
	}
	if len(back.Participants) != 3 || back.Participants[2] != "Luis" {
		t.Fatalf("round trip changed participants: %v", back.Participants)
	}
}

func TestDocumentToEntryRejectsMalformed(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]gfirestore.Value
	}{
		{"missing date", map[string]gfirestore.Value{
			"payer": {StringValue: "Roman"},
		}},
		{"bad date format", map[string]gfirestore.Value{
			"date":  {StringValue: "2025-03-14"},
			"payer": {StringValue: "Roman"},
		}},
		{"missing payer", map[string]gfirestore.Value{
			"date": {StringValue: "14/03/2025"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &gfirestore.Document{Name: docName, Fields: tt.fields}
			if _, err := documentToEntry(doc); err == nil {
				t.Fatal("expected error for malformed document")
			}
		})
	}
}

func TestDocumentToEntryToleratesMissingParticipants(t *testing.T) {
	doc := &gfirestore.Document{
		Name: docName,
		Fields: map[string]gfirestore.Value{
			"date":  {StringValue: "14/03/2025"},
			"payer": {StringValue: "Roman"},
		},
	}

	entry, err := documentToEntry(doc)
	if err != nil {
		t.Fatalf("documentToEntry: %v", err)
	}
	if len(entry.Participants) != 0 {
		t.Fatalf("expected no participants, got %v", entry.Participants)
	}
}

func TestDocumentID(t *testing.T) {
	if got := documentID(docName); got != "abc-123" {
		t.Fatalf("documentID = %q, want abc-123", got)
	}
}

func TestWrapAPIError(t *testing.T) {
	notFound := wrapAPIError("delete document", &googleapi.Error{Code: http.StatusNotFound})
	if !errors.Is(notFound, store.ErrNotFound) {
		t.Fatalf("404 should map to ErrNotFound, got %v", notFound)
	}

	unavailable := wrapAPIError("list documents", &googleapi.Error{Code: http.StatusServiceUnavailable})
	if !errors.Is(unavailable, store.ErrUnavailable) {
		t.Fatalf("503 should map to ErrUnavailable, got %v", unavailable)
	}

	plain := wrapAPIError("list documents", errors.New("dial tcp: timeout"))
	if !errors.Is(plain, store.ErrUnavailable) {
		t.Fatalf("transport errors should map to ErrUnavailable, got %v", plain)
	}
}
