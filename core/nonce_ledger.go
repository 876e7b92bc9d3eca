package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const defaultNonceLedgerTTL = 10 * time.Minute

// NonceLedger records nonces that were already bound to a credential header.
type NonceLedger interface {
	Claim(ctx context.Context, nonce string) (bool, error)
}

// MemoryNonceLedger keeps claimed nonces in process memory only; entries expire
// after the ledger TTL and are never written anywhere else.
type MemoryNonceLedger struct {
	ttl     time.Duration
	entries *cache.Cache
}

func NewMemoryNonceLedger(ttl time.Duration) *MemoryNonceLedger {
	if ttl <= 0 {
		ttl = defaultNonceLedgerTTL
	}
	return &MemoryNonceLedger{
		ttl:     ttl,
		entries: cache.New(ttl, 2*ttl),
	}
}

// Claim returns true the first time a nonce is seen within the TTL.
func (l *MemoryNonceLedger) Claim(_ context.Context, nonce string) (bool, error) {
	if l == nil || l.entries == nil {
		return false, fmt.Errorf("core: nonce ledger is not configured")
	}
	nonce = strings.TrimSpace(nonce)
	if nonce == "" {
		return false, fmt.Errorf("core: nonce is required")
	}
	if err := l.entries.Add(nonce, struct{}{}, l.ttl); err != nil {
		return false, nil
	}
	return true, nil
}

func (l *MemoryNonceLedger) Len() int {
	if l == nil || l.entries == nil {
		return 0
	}
	return l.entries.ItemCount()
}

var _ NonceLedger = (*MemoryNonceLedger)(nil)
