package suggest

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

const gateKey = "cooldown"

// CooldownGate enforces minimum spacing between completed request attempts.
// Arming sets a TTL'd entry; the gate is active while the entry lives, and the
// onClear callback fires (on its own goroutine) when the TTL expires.
type CooldownGate struct {
	cache *ttlcache.Cache[string, string]
}

// NewCooldownGate creates a gate. onClear may be nil.
func NewCooldownGate(onClear func()) *CooldownGate {
	cache := ttlcache.New[string, string](
		ttlcache.WithDisableTouchOnHit[string, string](),
	)
	if onClear != nil {
		cache.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, _ *ttlcache.Item[string, string]) {
			if reason == ttlcache.EvictionReasonExpired {
				// Own goroutine: expiry can be detected during a lookup made
				// under the coordinator's lock.
				go onClear()
			}
		})
	}
	go cache.Start()
	return &CooldownGate{cache: cache}
}

// Arm starts (or restarts) a cooldown of duration d. reason is kept for
// diagnostics only.
func (g *CooldownGate) Arm(d time.Duration, reason string) {
	g.cache.Set(gateKey, reason, d)
}

// Active reports whether a cooldown is currently in effect.
func (g *CooldownGate) Active() bool {
	return g.cache.Get(gateKey) != nil
}

// Stop shuts the gate down. DeleteAll evictions carry the Deleted reason and
// never trigger onClear.
func (g *CooldownGate) Stop() {
	g.cache.Stop()
	g.cache.DeleteAll()
}
