// Package memcache layers an in-process LRU in front of a slower cache tier.
package memcache

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/uiuifree/go-jismeshcode/internal/cache"
)

type entry struct {
	val      []byte
	deadline time.Time
}

// Tiered serves reads from the LRU when possible and falls through to the
// next tier. Writes and deletes go to both tiers.
type Tiered struct {
	l1          *lru.Cache[string, entry]
	next        cache.Interface
	backfillTTL time.Duration
	now         func() time.Time
}

// New builds the tiered cache. backfillTTL bounds how long an entry read
// through from the next tier may be served from the LRU; the next tier's own
// expiry is not visible here.
func New(size int, backfillTTL time.Duration, next cache.Interface) (*Tiered, error) {
	if size <= 0 {
		size = 4096
	}
	c, err := lru.New[string, entry](size)
	if err != nil {
		return nil, fmt.Errorf("l1 lru: %w", err)
	}
	return &Tiered{l1: c, next: next, backfillTTL: backfillTTL, now: time.Now}, nil
}

func (t *Tiered) MGet(keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	missing := make([]string, 0, len(keys))
	for _, k := range keys {
		e, ok := t.l1.Get(k)
		if !ok {
			missing = append(missing, k)
			continue
		}
		if !e.deadline.IsZero() && t.now().After(e.deadline) {
			t.l1.Remove(k)
			missing = append(missing, k)
			continue
		}
		out[k] = e.val
	}
	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := t.next.MGet(missing)
	if err != nil {
		// next tier down; serve what the LRU had
		if len(out) > 0 {
			return out, nil
		}
		return nil, fmt.Errorf("l2 mget: %w", err)
	}
	for k, v := range fetched {
		out[k] = v
		e := entry{val: v}
		if t.backfillTTL > 0 {
			e.deadline = t.now().Add(t.backfillTTL)
		}
		t.l1.Add(k, e)
	}
	return out, nil
}

func (t *Tiered) Set(key string, val []byte, ttl time.Duration) error {
	e := entry{val: val}
	if ttl > 0 {
		e.deadline = t.now().Add(ttl)
	}
	t.l1.Add(key, e)
	if err := t.next.Set(key, val, ttl); err != nil {
		return fmt.Errorf("l2 set %q: %w", key, err)
	}
	return nil
}

func (t *Tiered) Del(keys ...string) error {
	for _, k := range keys {
		t.l1.Remove(k)
	}
	if err := t.next.Del(keys...); err != nil {
		return fmt.Errorf("l2 del %d keys: %w", len(keys), err)
	}
	return nil
}
