package repository

import (
	"context"
	"encoding/json"

	"talent-ledger/internal/database"
	"talent-ledger/internal/domain/event"
)

type EventRepository interface {
	Append(ctx context.Context, e event.Event) error
	ListRecent(ctx context.Context, limit int) ([]event.Event, error)
}

type PostgresEventRepository struct {
	db database.DB
}

func NewPostgresEventRepository(db database.DB) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

func (r *PostgresEventRepository) Append(ctx context.Context, e event.Event) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
INSERT INTO ledger_events (id, event_type, pool_id, credential_id, actor, payload, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.Type, e.PoolID, e.CredentialID, e.Actor, payload, e.CreatedAt)
	return err
}

func (r *PostgresEventRepository) ListRecent(ctx context.Context, limit int) ([]event.Event, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
SELECT id, event_type, pool_id, credential_id, actor, payload, created_at
FROM ledger_events ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]event.Event, 0, limit)
	for rows.Next() {
		var e event.Event
		var payload []byte
		if err := rows.Scan(&e.ID, &e.Type, &e.PoolID, &e.CredentialID, &e.Actor, &payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &e.Payload); err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
