package kafkaconsumer

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// eventDedupe drops events whose timestamp is not newer than the last one
// applied for the same key. Bounded by an LRU so a layer churn cannot grow it
// without limit.
type eventDedupe struct {
	mu  sync.Mutex
	lru *lru.Cache[string, uint64]
}

func newEventDedupe(size int) *eventDedupe {
	if size <= 0 {
		size = 4096
	}
	c, _ := lru.New[string, uint64](size)
	return &eventDedupe{lru: c}
}

// returns true if v is greater than the last seen value for key
func (d *eventDedupe) shouldApply(key string, v uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if last, ok := d.lru.Get(key); ok {
		if v <= last {
			return false
		}
	}
	d.lru.Add(key, v)
	return true
}
