package app

import (
	"context"

	"talent-ledger/internal/domain/event"
	"talent-ledger/internal/metrics"
	"talent-ledger/internal/repository"
	"talent-ledger/internal/ws"
)

// publishingEventRepository decorates the audit log: every persisted
// event also increments the ledger metrics and fans out to websocket
// subscribers.
type publishingEventRepository struct {
	inner repository.EventRepository
}

func newPublishingEventRepository(inner repository.EventRepository) repository.EventRepository {
	return &publishingEventRepository{inner: inner}
}

func (p *publishingEventRepository) Append(ctx context.Context, e event.Event) error {
	if err := p.inner.Append(ctx, e); err != nil {
		return err
	}
	metrics.LedgerEvents.WithLabelValues(string(e.Type)).Inc()
	ws.NotifyLedgerEvent(e)
	return nil
}

func (p *publishingEventRepository) ListRecent(ctx context.Context, limit int) ([]event.Event, error) {
	return p.inner.ListRecent(ctx, limit)
}
