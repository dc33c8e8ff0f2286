package kafkaconsumer

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"

	"github.com/uiuifree/go-jismeshcode/internal/invalidation"
	meshmapper "github.com/uiuifree/go-jismeshcode/internal/mapper/jismesh"
	"github.com/uiuifree/go-jismeshcode/pkg/jismesh"
)

type fakeCache struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeCache) MGet([]string) (map[string][]byte, error) { return map[string][]byte{}, nil }
func (f *fakeCache) Set(string, []byte, time.Duration) error  { return nil }

func (f *fakeCache) Del(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, keys...)
	return nil
}

func newTestConsumer(fc *fakeCache) *Consumer {
	cfg := Config{DedupeSize: 16}
	levels := []jismesh.Level{jismesh.LevelSecond, jismesh.LevelThird}
	return New(cfg, slog.New(slog.DiscardHandler), fc, meshmapper.New(), levels)
}

func eventMsg(t *testing.T, ev invalidation.Event) *sarama.ConsumerMessage {
	t.Helper()
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return &sarama.ConsumerMessage{Topic: "mesh-invalidation", Value: b}
}

func testEvent(ts time.Time) invalidation.Event {
	return invalidation.Event{
		Version: 1,
		Op:      "update",
		Layer:   "roads",
		TS:      ts,
		BBox:    &invalidation.BBox{X1: 139.76, Y1: 35.68, X2: 139.77, Y2: 35.69, SRID: "EPSG:4326"},
	}
}

func TestProcessOne_DeletesKeysAtAllLevels(t *testing.T) {
	fc := &fakeCache{}
	c := newTestConsumer(fc)

	msg := eventMsg(t, testEvent(time.Now()))
	if err := c.ProcessOne(context.Background(), msg); err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	if len(fc.deleted) == 0 {
		t.Fatalf("no keys deleted")
	}
	var second, third bool
	for _, k := range fc.deleted {
		if !strings.HasPrefix(k, "roads:") {
			t.Fatalf("key %q not scoped to the event layer", k)
		}
		if strings.Contains(k, ":second:") {
			second = true
		}
		if strings.Contains(k, ":third:") {
			third = true
		}
	}
	if !second || !third {
		t.Fatalf("expected keys at both configured levels, got %v", fc.deleted)
	}
}

func TestProcessOne_BadJSONIsAnError(t *testing.T) {
	fc := &fakeCache{}
	c := newTestConsumer(fc)

	msg := &sarama.ConsumerMessage{Topic: "mesh-invalidation", Value: []byte("{not json")}
	if err := c.ProcessOne(context.Background(), msg); err == nil {
		t.Fatalf("expected decode error")
	}
	if len(fc.deleted) != 0 {
		t.Fatalf("deletes after decode failure: %v", fc.deleted)
	}
}

func TestProcessOne_InvalidEventIsDropped(t *testing.T) {
	fc := &fakeCache{}
	c := newTestConsumer(fc)

	ev := testEvent(time.Now())
	ev.Op = "truncate"
	if err := c.ProcessOne(context.Background(), eventMsg(t, ev)); err != nil {
		t.Fatalf("invalid event should be dropped, not retried: %v", err)
	}
	if len(fc.deleted) != 0 {
		t.Fatalf("deletes for invalid event: %v", fc.deleted)
	}
}

func TestProcessOne_StaleEventIsSkipped(t *testing.T) {
	fc := &fakeCache{}
	c := newTestConsumer(fc)

	now := time.Now()
	if err := c.ProcessOne(context.Background(), eventMsg(t, testEvent(now))); err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	fresh := len(fc.deleted)
	if fresh == 0 {
		t.Fatalf("first event deleted nothing")
	}

	// an older timestamp for the same layer must not invalidate again
	if err := c.ProcessOne(context.Background(), eventMsg(t, testEvent(now.Add(-time.Minute)))); err != nil {
		t.Fatalf("ProcessOne stale: %v", err)
	}
	if len(fc.deleted) != fresh {
		t.Fatalf("stale event deleted keys")
	}

	// a newer one does
	if err := c.ProcessOne(context.Background(), eventMsg(t, testEvent(now.Add(time.Minute)))); err != nil {
		t.Fatalf("ProcessOne newer: %v", err)
	}
	if len(fc.deleted) <= fresh {
		t.Fatalf("newer event skipped")
	}
}

func TestEventDedupe_Monotonic(t *testing.T) {
	d := newEventDedupe(4)
	if !d.shouldApply("roads", 10) {
		t.Fatalf("first version rejected")
	}
	if d.shouldApply("roads", 10) || d.shouldApply("roads", 9) {
		t.Fatalf("replay accepted")
	}
	if !d.shouldApply("roads", 11) {
		t.Fatalf("newer version rejected")
	}
	if !d.shouldApply("rivers", 1) {
		t.Fatalf("independent key rejected")
	}
}
