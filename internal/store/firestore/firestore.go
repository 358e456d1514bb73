package firestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"desayunos/internal/cache"
	"desayunos/internal/core"
	"desayunos/internal/store"

	gfirestore "google.golang.org/api/firestore/v1"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
)

const (
	defaultCollection = "breakfasts"
	listCacheKey      = "entries"
	listCacheTTL      = 30 * time.Second
	listPageSize      = 100
)

// Client stores ledger entries in a Firestore collection through the
// REST API. It serves as the cloud mirror behind the sync worker and
// as a standalone backend when no local database is configured.
type Client struct {
	svc        *gfirestore.Service
	parent     string
	collection string
	listCache  *cache.LRUCache[[]core.Entry]
}

// Ensure interface conformance
var (
	_ store.EntryStore  = (*Client)(nil)
	_ store.EntryMirror = (*Client)(nil)
)

// NewFromEnv creates a Firestore client using environment variables.
// Required: FIRESTORE_PROJECT_ID
// Optional: FIRESTORE_COLLECTION (default "breakfasts"), credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	projectID := strings.TrimSpace(os.Getenv("FIRESTORE_PROJECT_ID"))
	if projectID == "" {
		return nil, errors.New("missing FIRESTORE_PROJECT_ID")
	}

	collection := strings.TrimSpace(os.Getenv("FIRESTORE_COLLECTION"))
	if collection == "" {
		collection = defaultCollection
	}

	svc, err := newFirestoreService(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore service: %w", err)
	}

	return New(svc, projectID, collection), nil
}

// New creates a client over an already-built Firestore service.
func New(svc *gfirestore.Service, projectID, collection string) *Client {
	return &Client{
		svc:        svc,
		parent:     fmt.Sprintf("projects/%s/databases/(default)/documents", projectID),
		collection: collection,
		listCache:  cache.NewLRUCache[[]core.Entry](1, listCacheTTL),
	}
}

// ListCache exposes the list cache so a cache manager can sweep it.
func (c *Client) ListCache() cache.Cleaner {
	return c.listCache
}

// newFirestoreService initializes a Firestore Service using Service
// Account credentials, read the same way the other Google clients in
// this project read theirs.
func newFirestoreService(ctx context.Context) (*gfirestore.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Firestore service with Service Account",
		"credentials_size", len(credentialsJSON))

	service, err := gfirestore.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gfirestore.DatastoreScope))
	if err != nil {
		return nil, fmt.Errorf("create firestore service: %w", err)
	}

	return service, nil
}

// ListAll implements store.EntryLister. Results are cached briefly so
// bursts of reads hit the network once.
func (c *Client) ListAll(ctx context.Context) ([]core.Entry, error) {
	if cached, ok := c.listCache.Get(listCacheKey); ok {
		out := make([]core.Entry, len(cached))
		for i := range cached {
			out[i] = cached[i].Clone()
		}
		return out, nil
	}

	var entries []core.Entry
	pageToken := ""
	for {
		call := c.svc.Projects.Databases.Documents.List(c.parent, c.collection).
			PageSize(listPageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, wrapAPIError("list documents", err)
		}

		for _, doc := range resp.Documents {
			entry, err := documentToEntry(doc)
			if err != nil {
				slog.ErrorContext(ctx, "Skipping malformed document",
					"name", doc.Name, "error", err)
				continue
			}
			entries = append(entries, entry)
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	c.listCache.Set(listCacheKey, entries)

	out := make([]core.Entry, len(entries))
	for i := range entries {
		out[i] = entries[i].Clone()
	}
	return out, nil
}

// Create implements store.EntryCreator. Firestore assigns the document ID.
func (c *Client) Create(ctx context.Context, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}

	doc, err := c.svc.Projects.Databases.Documents.
		CreateDocument(c.parent, c.collection, entryToDocument(e)).
		Context(ctx).
		Do()
	if err != nil {
		return "", wrapAPIError("create document", err)
	}

	c.listCache.Delete(listCacheKey)
	return documentID(doc.Name), nil
}

// Update implements store.EntryUpdater. Only payer and participants
// change; the date field is left untouched by the update mask.
func (c *Client) Update(ctx context.Context, id, payer string, participants []string) error {
	doc := &gfirestore.Document{
		Fields: map[string]gfirestore.Value{
			"payer":        {StringValue: payer},
			"participants": {ArrayValue: stringArray(participants)},
		},
	}

	_, err := c.svc.Projects.Databases.Documents.
		Patch(c.documentName(id), doc).
		UpdateMaskFieldPaths("payer", "participants").
		CurrentDocumentExists(true).
		Context(ctx).
		Do()
	if err != nil {
		return wrapAPIError("update document", err)
	}

	c.listCache.Delete(listCacheKey)
	return nil
}

// Delete implements store.EntryDeleter.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.svc.Projects.Databases.Documents.
		Delete(c.documentName(id)).
		CurrentDocumentExists(true).
		Context(ctx).
		Do()
	if err != nil {
		return wrapAPIError("delete document", err)
	}

	c.listCache.Delete(listCacheKey)
	return nil
}

// Upsert implements store.EntryMirror. The worker pushes entries under
// their local IDs, so a retried event overwrites rather than duplicates.
func (c *Client) Upsert(ctx context.Context, e core.Entry) error {
	if e.ID == "" {
		return fmt.Errorf("upsert document: missing entry id")
	}

	_, err := c.svc.Projects.Databases.Documents.
		Patch(c.documentName(e.ID), entryToDocument(e)).
		Context(ctx).
		Do()
	if err != nil {
		return wrapAPIError("upsert document", err)
	}

	c.listCache.Delete(listCacheKey)
	return nil
}

func (c *Client) documentName(id string) string {
	return fmt.Sprintf("%s/%s/%s", c.parent, c.collection, id)
}

// documentID extracts the document ID from a full resource name.
func documentID(name string) string {
	return path.Base(name)
}

func entryToDocument(e core.Entry) *gfirestore.Document {
	return &gfirestore.Document{
		Fields: map[string]gfirestore.Value{
			"date":         {StringValue: e.Date.LedgerFormat()},
			"payer":        {StringValue: e.Payer},
			"participants": {ArrayValue: stringArray(e.Participants)},
		},
	}
}

func documentToEntry(doc *gfirestore.Document) (core.Entry, error) {
	dateField, ok := doc.Fields["date"]
	if !ok {
		return core.Entry{}, fmt.Errorf("document %s missing date field", doc.Name)
	}
	date, err := core.ParseLedgerDate(dateField.StringValue)
	if err != nil {
		return core.Entry{}, fmt.Errorf("document %s: %w", doc.Name, err)
	}

	payerField, ok := doc.Fields["payer"]
	if !ok || payerField.StringValue == "" {
		return core.Entry{}, fmt.Errorf("document %s missing payer field", doc.Name)
	}

	var participants []string
	if pf, ok := doc.Fields["participants"]; ok && pf.ArrayValue != nil {
		for _, v := range pf.ArrayValue.Values {
			if v != nil && v.StringValue != "" {
				participants = append(participants, v.StringValue)
			}
		}
	}

	return core.Entry{
		ID:           documentID(doc.Name),
		Date:         date,
		Payer:        payerField.StringValue,
		Participants: participants,
	}, nil
}

func stringArray(values []string) *gfirestore.ArrayValue {
	arr := &gfirestore.ArrayValue{Values: make([]*gfirestore.Value, 0, len(values))}
	for _, v := range values {
		arr.Values = append(arr.Values, &gfirestore.Value{StringValue: v})
	}
	return arr
}

// wrapAPIError maps Firestore REST errors onto the store error
// taxonomy. A 404 means the document is gone; everything else is
// treated as the mirror being unreachable.
func wrapAPIError(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %v", op, store.ErrUnavailable, err)
}
