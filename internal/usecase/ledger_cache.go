package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"talent-ledger/internal/repository"
)

// LedgerCache abstracts the read-through cache in front of pool
// listings. Implementations must degrade gracefully; a cache outage is
// never a caller-visible failure.
type LedgerCache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// PoolListCacheKey derives a stable cache key from the listing filter.
// Hashing keeps the key short regardless of filter contents.
func PoolListCacheKey(f repository.PoolFilter) string {
	company := ""
	if f.Company != nil {
		company = f.Company.String()
	}
	raw := fmt.Sprintf("%s|%s|%d|%d", f.Status, company, f.Limit, f.Offset)
	sum := sha256.Sum256([]byte(raw))
	return "pools:list:" + hex.EncodeToString(sum[:8])
}
