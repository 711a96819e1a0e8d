package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tranxledger/internal/amqp"
	"tranxledger/internal/core"
	"tranxledger/internal/history"
	"tranxledger/internal/log"
)

// Publisher announces recorded transactions. *amqp.Client satisfies it.
type Publisher interface {
	PublishTranxRecorded(ctx context.Context, msg *amqp.TranxRecordedMessage) error
	Close() error
}

var _ Publisher = (*amqp.Client)(nil)

// RecordRequest carries the caller's view of a new ledger entry.
type RecordRequest struct {
	TID       string
	Purpose   core.Purpose
	Amount    core.Amount
	Direction core.Direction
	Moment    core.Moment
}

// LedgerService writes to the local ledger and notifies the broker.
type LedgerService struct {
	history   *history.TranxHistory
	publisher Publisher
}

// NewLedgerService wraps an initialized history. publisher may be nil.
func NewLedgerService(h *history.TranxHistory, publisher Publisher) *LedgerService {
	return &LedgerService{
		history:   h,
		publisher: publisher,
	}
}

// History exposes the underlying manager for reads.
func (s *LedgerService) History() *history.TranxHistory {
	return s.history
}

// Record saves the entry locally and then publishes a notification. It logs
// through the logger carried by ctx, if any.
func (s *LedgerService) Record(ctx context.Context, req RecordRequest) (core.Tranx, error) {
	// Save first; the ledger is the source of truth.
	t, err := s.history.NewTransaction(ctx, req.TID, req.Purpose, req.Amount, req.Direction, req.Moment)
	if err != nil {
		return core.Tranx{}, fmt.Errorf("record transaction: %w", err)
	}

	sl := log.NewStructuredLogger(log.FromContext(ctx).WithComponent(log.ComponentLedger))
	sl.LogTranxRecorded(ctx, t.ID, t.TID, string(t.Direction), string(t.Purpose), t.Amount.String(), t.Moment.EpochMillis())

	if err := s.publish(ctx, t); err != nil {
		// Don't fail the request - the entry is saved locally
		sl.LogError(ctx, "Failed to publish tranx recorded message", err, log.OpPublish,
			log.NewFields().WithTranx(t.ID, t.TID, string(t.Direction), string(t.Purpose), t.Amount.String(), t.Moment.EpochMillis()))
	}

	return t, nil
}

func (s *LedgerService) publish(ctx context.Context, t core.Tranx) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping notification")
		return nil
	}
	return s.publisher.PublishTranxRecorded(ctx, amqp.NewTranxRecordedMessage(t))
}

// Close closes both the ledger and the publisher.
func (s *LedgerService) Close() error {
	var errs []error

	if s.history != nil {
		if err := s.history.Close(); err != nil {
			errs = append(errs, fmt.Errorf("history: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %w", errors.Join(errs...))
	}

	return nil
}
