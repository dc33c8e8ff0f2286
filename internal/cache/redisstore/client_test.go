package redisstore

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

// creates a client connected to miniredis for testing
func newMini(t *testing.T) *Client {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	t.Cleanup(cancel)

	rc, err := New(ctx, mr.Addr())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = rc.Close() })
	return rc
}

func TestSetMGetDel_HappyPath_AndMGetFiltersMissing(t *testing.T) {
	rc := newMini(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := rc.Set(ctx, "k1", []byte("v1"), 5*time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := rc.Set(ctx, "k2", []byte("v2"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := rc.MGet(ctx, []string{"k1", "k2", "missing"})
	if err != nil {
		t.Fatalf("MGet: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("MGet size=%d want 2", len(got))
	}
	if string(got["k1"]) != "v1" || string(got["k2"]) != "v2" {
		t.Fatalf("unexpected values: %+v", got)
	}

	if err := rc.Del(ctx, "k1", "k2"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	got, err = rc.MGet(ctx, []string{"k1", "k2"})
	if err != nil || len(got) != 0 {
		t.Fatalf("post-delete MGet got=%v err=%v", got, err)
	}
}

func TestMSetWithTTL_WritesBatch(t *testing.T) {
	rc := newMini(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	kv := map[string][]byte{
		"b1": []byte("v1"),
		"b2": []byte("v2"),
		"b3": []byte("v3"),
	}
	if err := rc.MSetWithTTL(ctx, kv, time.Minute); err != nil {
		t.Fatalf("MSetWithTTL: %v", err)
	}

	got, err := rc.MGet(ctx, []string{"b1", "b2", "b3"})
	if err != nil {
		t.Fatalf("MGet: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("MGet size=%d want 3", len(got))
	}

	if err := rc.MSetWithTTL(ctx, nil, time.Minute); err != nil {
		t.Fatalf("empty MSetWithTTL: %v", err)
	}
}

func TestContextCancel_IsRespected(t *testing.T) {
	rc := newMini(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := rc.Set(ctx, "k", []byte("v"), time.Second); err == nil {
		t.Fatalf("expected error on Set with canceled context")
	}
	if _, err := rc.MGet(ctx, []string{"k"}); err == nil {
		t.Fatalf("expected error on MGet with canceled context")
	}
	if err := rc.Del(ctx, "k"); err == nil {
		t.Fatalf("expected error on Del with canceled context")
	}
}
