package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// OpUpsert tells the worker to fetch the entry and push it to the mirror.
	OpUpsert = "upsert"
	// OpDelete tells the worker to remove the entry from the mirror.
	OpDelete = "delete"
)

// EntryEventMessage is the lightweight notification published after a
// ledger mutation. It carries only the entry ID and the operation; the
// worker fetches the current row from the local database, so a stale or
// duplicated delivery converges to the same mirror state.
type EntryEventMessage struct {
	EntryID   string    `json:"entry_id"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEntryEventMessage creates an event for the given entry and operation.
func NewEntryEventMessage(entryID, op string) *EntryEventMessage {
	return &EntryEventMessage{
		EntryID:   entryID,
		Op:        op,
		Timestamp: time.Now(),
	}
}

// Validate checks the message fields before handing it to a worker.
func (m *EntryEventMessage) Validate() error {
	if m.EntryID == "" {
		return fmt.Errorf("entry event missing entry_id")
	}
	if m.Op != OpUpsert && m.Op != OpDelete {
		return fmt.Errorf("entry event has unknown op %q", m.Op)
	}
	return nil
}

// ToJSON converts the message to JSON bytes.
func (m *EntryEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntryEventMessageFromJSON creates a message from JSON bytes.
func EntryEventMessageFromJSON(data []byte) (*EntryEventMessage, error) {
	var msg EntryEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
