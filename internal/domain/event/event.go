// Package event defines the audit log entries emitted on every ledger
// state transition. Entries are append-only; nothing updates or deletes
// them.
package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeCredentialMinted   Type = "credential_minted"
	TypeCredentialLevelSet Type = "credential_level_set"
	TypeCredentialRevoked  Type = "credential_revoked"
	TypeCredentialEndorsed Type = "credential_endorsed"

	TypePoolCreated          Type = "pool_created"
	TypePoolPaused           Type = "pool_paused"
	TypePoolResumed          Type = "pool_resumed"
	TypeApplicationSubmitted Type = "application_submitted"
	TypeApplicationWithdrawn Type = "application_withdrawn"
	TypeCandidateSelected    Type = "candidate_selected"
	TypePoolClosed           Type = "pool_closed"
	TypePoolExpired          Type = "pool_expired"

	TypeFeeRateChanged Type = "fee_rate_changed"
	TypeRoleChanged    Type = "role_changed"
)

type Event struct {
	ID           uuid.UUID
	Type         Type
	PoolID       *int64
	CredentialID *int64
	Actor        *uuid.UUID
	Payload      map[string]any
	CreatedAt    time.Time
}

// New stamps a fresh event with id and timestamp.
func New(t Type, actor uuid.UUID, payload map[string]any) Event {
	a := actor
	if payload == nil {
		payload = map[string]any{}
	}
	return Event{
		ID:        uuid.New(),
		Type:      t,
		Actor:     &a,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
}

func (e Event) WithPool(id int64) Event {
	e.PoolID = &id
	return e
}

func (e Event) WithCredential(id int64) Event {
	e.CredentialID = &id
	return e
}
