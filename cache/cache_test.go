package cache

import (
	"context"
	"testing"
	"time"

	"livebait-directory/testhelpers"

	"github.com/alicebob/miniredis/v2"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(Config{Address: mr.Addr()})
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	log, _ := testhelpers.NewTestLogger()
	return NewRedisCache(client, log), mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if _, ok := c.Get(ctx, "regions"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set(ctx, "regions", []byte(`[1,2]`), RegionTTL)
	got, ok := c.Get(ctx, "regions")
	if !ok || string(got) != `[1,2]` {
		t.Errorf("expected cached value, got %q %v", got, ok)
	}
	if !mr.Exists("livebait:regions") {
		t.Error("expected prefixed key in redis")
	}
	if ttl := mr.TTL("livebait:regions"); ttl != RegionTTL {
		t.Errorf("expected ttl %v, got %v", RegionTTL, ttl)
	}
}

func TestRedisCacheExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "listing:bobs", []byte("x"), ListingTTL)
	mr.FastForward(ListingTTL + time.Second)
	if _, ok := c.Get(ctx, "listing:bobs"); ok {
		t.Error("expected entry to expire")
	}
}

func TestRedisCacheOutageIsAMiss(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), CityTTL)
	mr.Close()

	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("expected miss when redis is down")
	}
	c.Set(ctx, "k", []byte("v"), CityTTL)
}

func TestNewFallsBackToNop(t *testing.T) {
	log, hook := testhelpers.NewTestLogger()

	if _, ok := New(Config{}, log).(Nop); !ok {
		t.Error("expected Nop without an address")
	}

	if _, ok := New(Config{Address: "127.0.0.1:1"}, log).(Nop); !ok {
		t.Error("expected Nop when redis is unreachable")
	}
	if len(hook.Entries) != 1 {
		t.Errorf("expected one warning, got %d", len(hook.Entries))
	}
}

func TestJSONHelpers(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}
	SetJSON(ctx, c, "p", payload{Name: "Maine"}, time.Minute)

	var got payload
	if !GetJSON(ctx, c, "p", &got) || got.Name != "Maine" {
		t.Errorf("expected decoded payload, got %+v", got)
	}
	if GetJSON(ctx, Nop{}, "p", &got) {
		t.Error("Nop should always miss")
	}
}
