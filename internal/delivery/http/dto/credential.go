package dto

import (
	"time"

	"github.com/google/uuid"

	"talent-ledger/internal/domain/credential"
)

type MintCredentialRequest struct {
	Holder      uuid.UUID  `json:"holder"`
	Category    string     `json:"category"`
	Subcategory string     `json:"subcategory"`
	Level       int        `json:"level"`
	ExpiresAt   *time.Time `json:"expires_at"`
	Metadata    string     `json:"metadata"`
}

type UpdateLevelRequest struct {
	Level    int    `json:"level"`
	Evidence string `json:"evidence"`
}

type RevokeCredentialRequest struct {
	Reason string `json:"reason"`
}

type EndorseCredentialRequest struct {
	Data string `json:"data"`
}

type EndorsementResponse struct {
	Endorser  uuid.UUID `json:"endorser"`
	Data      string    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}

type CredentialResponse struct {
	ID           int64                 `json:"id"`
	Holder       uuid.UUID             `json:"holder"`
	Category     string                `json:"category"`
	Subcategory  string                `json:"subcategory,omitempty"`
	Level        int                   `json:"level"`
	IssuedAt     time.Time             `json:"issued_at"`
	ExpiresAt    *time.Time            `json:"expires_at,omitempty"`
	Issuer       uuid.UUID             `json:"issuer"`
	IsActive     bool                  `json:"is_active"`
	Metadata     string                `json:"metadata,omitempty"`
	Endorsements []EndorsementResponse `json:"endorsements"`
}

func FromCredential(c credential.Credential) CredentialResponse {
	out := CredentialResponse{
		ID:           c.ID,
		Holder:       c.Holder,
		Category:     c.Category,
		Subcategory:  c.Subcategory,
		Level:        c.Level,
		IssuedAt:     c.IssuedAt,
		ExpiresAt:    c.ExpiresAt,
		Issuer:       c.Issuer,
		IsActive:     c.IsActive,
		Metadata:     c.Metadata,
		Endorsements: make([]EndorsementResponse, 0, len(c.Endorsements)),
	}
	for _, e := range c.Endorsements {
		if !e.IsActive {
			continue
		}
		out.Endorsements = append(out.Endorsements, EndorsementResponse{
			Endorser:  e.Endorser,
			Data:      e.Data,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}

func FromCredentials(creds []credential.Credential) []CredentialResponse {
	out := make([]CredentialResponse, 0, len(creds))
	for _, c := range creds {
		out = append(out, FromCredential(c))
	}
	return out
}
