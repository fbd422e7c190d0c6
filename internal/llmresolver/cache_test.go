package llmresolver

import (
	"context"
	"testing"
	"time"
)

func TestMapCache_SetThenGet(t *testing.T) {
	c := NewMapCache(10)
	ctx := context.Background()
	res := &Resolution{HomeTeam: "Arsenal", AwayTeam: "Chelsea", Confidence: ConfidenceHigh}

	c.Set(ctx, "epl::arsenal vs chelsea", res, time.Minute)

	got, hit := c.Get(ctx, "epl::arsenal vs chelsea")
	if !hit {
		t.Fatal("expected cache hit")
	}
	if got.HomeTeam != "Arsenal" {
		t.Errorf("got %+v", got)
	}
}

func TestMapCache_Miss(t *testing.T) {
	c := NewMapCache(10)
	if _, hit := c.Get(context.Background(), "nope"); hit {
		t.Error("expected cache miss for unknown key")
	}
}

func TestMapCache_RejectionIsCachedAsNilHit(t *testing.T) {
	c := NewMapCache(10)
	ctx := context.Background()

	c.Set(ctx, "key", nil, time.Minute)

	got, hit := c.Get(ctx, "key")
	if !hit {
		t.Fatal("expected a cache hit for a cached rejection")
	}
	if got != nil {
		t.Errorf("expected nil resolution for a cached rejection, got %+v", got)
	}
}

func TestMapCache_ExpiredEntryIsEvicted(t *testing.T) {
	c := NewMapCache(10)
	ctx := context.Background()
	res := &Resolution{HomeTeam: "A", AwayTeam: "B"}

	c.Set(ctx, "key", res, -time.Second)

	if _, hit := c.Get(ctx, "key"); hit {
		t.Error("expected expired entry to be evicted on read")
	}
}

func TestMapCache_BoundedSize(t *testing.T) {
	c := NewMapCache(2)
	ctx := context.Background()
	res := &Resolution{HomeTeam: "A", AwayTeam: "B"}

	c.Set(ctx, "k1", res, time.Minute)
	c.Set(ctx, "k2", res, time.Minute)
	c.Set(ctx, "k3", res, time.Minute)

	if len(c.entries) > 2 {
		t.Errorf("expected cache to stay bounded at 2 entries, got %d", len(c.entries))
	}
}
