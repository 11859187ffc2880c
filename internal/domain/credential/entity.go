package credential

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinLevel = 1
	MaxLevel = 10
)

// Credential is a non-transferable skill record. The holder is fixed at
// mint time; no operation anywhere in the codebase reassigns it.
type Credential struct {
	ID          int64
	Holder      uuid.UUID
	Category    string
	Subcategory string
	Level       int
	IssuedAt    time.Time
	ExpiresAt   *time.Time
	Issuer      uuid.UUID
	IsActive    bool
	Metadata    string

	Endorsements []Endorsement
}

type Endorsement struct {
	Endorser  uuid.UUID
	Data      string
	CreatedAt time.Time
	IsActive  bool
}

func ValidLevel(level int) bool {
	return level >= MinLevel && level <= MaxLevel
}

// Usable reports whether the credential can back an application at the
// given instant: active and not past its expiry.
func (c Credential) Usable(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.ExpiresAt != nil && !now.Before(*c.ExpiresAt) {
		return false
	}
	return true
}
