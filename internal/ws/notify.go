package ws

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"talent-ledger/internal/domain/event"
)

type ledgerEventMessage struct {
	Type         string `json:"type"`
	PoolID       *int64 `json:"pool_id,omitempty"`
	CredentialID *int64 `json:"credential_id,omitempty"`
	Timestamp    string `json:"timestamp"`
}

var defaultHub atomic.Pointer[Hub]

func SetDefaultHub(h *Hub) {
	defaultHub.Store(h)
}

// NotifyLedgerEvent pushes a ledger state change to every subscriber.
// Payload details stay server-side; clients get the event type and the
// affected ids and re-fetch what they need.
func NotifyLedgerEvent(e event.Event) {
	h := defaultHub.Load()
	if h == nil {
		return
	}

	msg := ledgerEventMessage{
		Type:         string(e.Type),
		PoolID:       e.PoolID,
		CredentialID: e.CredentialID,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.Broadcast(b)
}
