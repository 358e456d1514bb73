package services

import (
	"context"
	"fmt"
	"log/slog"

	"desayunos/internal/amqp"
	"desayunos/internal/core"
	"desayunos/internal/storage"
)

// EntryService orchestrates entry mutations across SQLite and AMQP.
// SQLite is the write path the handlers wait on; the AMQP event only
// nudges the worker to mirror the row, so a publish failure is logged
// and swallowed and the pending scan picks the entry up later.
type EntryService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewEntryService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *EntryService {
	return &EntryService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// CreateEntry saves an entry locally and publishes an upsert event.
func (s *EntryService) CreateEntry(ctx context.Context, e core.Entry) (string, error) {
	id, err := s.storage.CreateEntry(ctx, e)
	if err != nil {
		return "", fmt.Errorf("save entry: %w", err)
	}

	if err := s.publishEvent(ctx, id, amqp.OpUpsert); err != nil {
		slog.ErrorContext(ctx, "Failed to publish upsert event",
			"entry_id", id, "error", err)
	}

	return id, nil
}

// UpdateEntry rewrites the payer and participants of an entry locally
// and publishes an upsert event.
func (s *EntryService) UpdateEntry(ctx context.Context, id, payer string, participants []string) error {
	if err := s.storage.UpdateEntry(ctx, id, payer, participants); err != nil {
		return fmt.Errorf("update entry: %w", err)
	}

	if err := s.publishEvent(ctx, id, amqp.OpUpsert); err != nil {
		slog.ErrorContext(ctx, "Failed to publish upsert event",
			"entry_id", id, "error", err)
	}

	return nil
}

// DeleteEntry removes an entry locally and publishes a delete event.
func (s *EntryService) DeleteEntry(ctx context.Context, id string) error {
	if err := s.storage.DeleteEntry(ctx, id); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	if err := s.publishEvent(ctx, id, amqp.OpDelete); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete event",
			"entry_id", id, "error", err)
	}

	return nil
}

func (s *EntryService) publishEvent(ctx context.Context, id, op string) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping entry event")
		return nil
	}

	return s.amqpClient.PublishEntryEvent(ctx, id, op)
}

// Close closes both storage and AMQP connections.
func (s *EntryService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close entry service: %v", errs)
	}

	return nil
}
