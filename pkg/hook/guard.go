package hook

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
)

// DefaultGuardTTL bounds how long an unreleased in-flight key blocks
// resubmission.
const DefaultGuardTTL = 30 * time.Second

// Guard rejects a write while an identical one is still in flight. Keys are
// (entity, operation, id) and expire after the TTL.
type Guard struct {
	mu       sync.Mutex
	inflight *cache.Cache
	tokens   atomic.Uint64
}

// NewGuard creates a guard whose keys expire after ttl. A non-positive ttl
// uses DefaultGuardTTL.
func NewGuard(ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = DefaultGuardTTL
	}
	return &Guard{inflight: cache.New(ttl, ttl*2)}
}

// Acquire claims key and returns its release func, or false when the key is
// already held. A release only drops the claim it made: once the key has
// expired and been claimed again, a late release is a no-op.
func (g *Guard) Acquire(entity string, op Operation, id string) (func(), bool) {
	key := guardKey(entity, op, id)
	token := g.tokens.Add(1)

	g.mu.Lock()
	err := g.inflight.Add(key, token, cache.DefaultExpiration)
	g.mu.Unlock()
	if err != nil {
		return nil, false
	}

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if held, ok := g.inflight.Get(key); ok && held == token {
			g.inflight.Delete(key)
		}
	}, true
}

// InFlight returns the number of keys currently held.
func (g *Guard) InFlight() int {
	return g.inflight.ItemCount()
}

func guardKey(entity string, op Operation, id string) string {
	return strings.Join([]string{entity, string(op), id}, "|")
}

// payloadID identifies a create by its body, since it has no id yet.
func payloadID(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
