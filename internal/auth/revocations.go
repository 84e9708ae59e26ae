package auth

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Revocations remembers signed-out token ids until the tokens would have
// expired anyway.
type Revocations struct {
	c *cache.Cache
}

func NewRevocations() *Revocations {
	return &Revocations{c: cache.New(time.Hour, 10*time.Minute)}
}

func (r *Revocations) Revoke(tokenID string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if tokenID == "" || ttl <= 0 {
		return
	}
	r.c.Set(tokenID, struct{}{}, ttl)
}

func (r *Revocations) IsRevoked(tokenID string) bool {
	_, found := r.c.Get(tokenID)
	return found
}
