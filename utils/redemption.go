package utils

import (
	"context"
	"sync"
	"time"
)

// The emailed link is advertised as one-time. Redeemed token ids are
// remembered until the token would have expired anyway; a marked token
// gets the same generic 403 as an invalid one. Redis carries the marker
// when available, with an in-memory fallback for single-node setups.
// Lookups fail open on redis errors so a cache outage cannot lock every
// requester out.

type redemptionEntry struct {
	expiresAt time.Time
}

var (
	redeemed   = map[string]redemptionEntry{}
	redeemedMu sync.RWMutex
)

const redemptionKeyPrefix = "datafiles:redeemed:"

// MarkRedeemed records that the token id has been used, until expiresAt.
func MarkRedeemed(jti string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if jti == "" || ttl <= 0 {
		return
	}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Set(ctx, redemptionKeyPrefix+jti, "1", ttl).Err(); err == nil {
			return
		}
		// fall through to memory on redis failure
	}
	redeemedMu.Lock()
	redeemed[jti] = redemptionEntry{expiresAt: expiresAt}
	redeemedMu.Unlock()
}

// IsRedeemed reports whether the token id was already used.
func IsRedeemed(jti string) bool {
	if jti == "" {
		return false
	}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if n, err := rc.Exists(ctx, redemptionKeyPrefix+jti).Result(); err == nil && n > 0 {
			return true
		}
	}
	redeemedMu.RLock()
	entry, ok := redeemed[jti]
	redeemedMu.RUnlock()
	if !ok {
		return false
	}
	if time.Now().After(entry.expiresAt) {
		redeemedMu.Lock()
		delete(redeemed, jti)
		redeemedMu.Unlock()
		return false
	}
	return true
}
