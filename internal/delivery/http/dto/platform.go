package dto

import (
	"time"

	"github.com/google/uuid"

	"talent-ledger/internal/domain/event"
	"talent-ledger/internal/repository"
)

type SetFeeRateRequest struct {
	RateBP int `json:"rate_bp"`
}

type DepositRequest struct {
	Account uuid.UUID `json:"account"`
	Amount  int64     `json:"amount"`
}

type SetRoleRequest struct {
	Account uuid.UUID `json:"account"`
	Role    string    `json:"role"`
}

type AccountResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func FromAccount(acc repository.Account) AccountResponse {
	return AccountResponse{
		ID:        acc.ID,
		Email:     acc.Email,
		Role:      acc.Role,
		CreatedAt: acc.CreatedAt,
	}
}

type EventResponse struct {
	ID           uuid.UUID      `json:"id"`
	Type         string         `json:"type"`
	PoolID       *int64         `json:"pool_id,omitempty"`
	CredentialID *int64         `json:"credential_id,omitempty"`
	Actor        *uuid.UUID     `json:"actor,omitempty"`
	Payload      map[string]any `json:"payload"`
	CreatedAt    time.Time      `json:"created_at"`
}

func FromEvents(events []event.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, EventResponse{
			ID:           e.ID,
			Type:         string(e.Type),
			PoolID:       e.PoolID,
			CredentialID: e.CredentialID,
			Actor:        e.Actor,
			Payload:      e.Payload,
			CreatedAt:    e.CreatedAt,
		})
	}
	return out
}
