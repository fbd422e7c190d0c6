package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiter_AllowWithinBurst(t *testing.T) {
	rl := NewRateLimiter(10, 5)
	for i := 0; i < 5; i++ {
		if !rl.Allow() {
			t.Fatalf("expected token %d to be available within burst", i)
		}
	}
	if rl.Allow() {
		t.Error("expected burst to be exhausted after 5 tokens")
	}
}

func TestRateLimiter_WaitUnblocksAfterRefill(t *testing.T) {
	rl := NewRateLimiter(1000, 1) // высокая скорость пополнения для быстрого теста
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := rl.Wait(ctx); err != nil {
		t.Fatalf("first wait: unexpected error: %v", err)
	}
	if err := rl.Wait(ctx); err != nil {
		t.Fatalf("second wait: unexpected error: %v", err)
	}
}

func TestRateLimiter_WaitRespectsCancellation(t *testing.T) {
	rl := NewRateLimiter(0.001, 1) // почти не пополняется
	rl.Allow()                    // исчерпываем единственный токен

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := rl.Wait(ctx)
	if err == nil {
		t.Fatal("expected context deadline error")
	}
}

func TestRateLimiter_DefaultsAppliedForInvalidInput(t *testing.T) {
	rl := NewRateLimiter(-1, -1)
	if rl.Rate() <= 0 {
		t.Errorf("expected positive default rate, got %f", rl.Rate())
	}
	if rl.Burst() < rl.Rate() {
		t.Errorf("burst %f should be >= rate %f", rl.Burst(), rl.Rate())
	}
}

func TestMultiLimiter_PerCategoryQuota(t *testing.T) {
	ml := NewMultiLimiter()
	ml.Add("odds_us", 1000, 2)
	ml.Add("llm_resolver", 1000, 1)

	if !ml.Allow("odds_us") {
		t.Error("expected first odds_us token to be available")
	}
	if !ml.Allow("odds_us") {
		t.Error("expected second odds_us token to be available")
	}
	if !ml.Allow("llm_resolver") {
		t.Error("expected first llm_resolver token to be available")
	}
	if ml.Allow("llm_resolver") {
		t.Error("expected llm_resolver burst of 1 to be exhausted")
	}

	// категория без лимита - всегда разрешено
	if !ml.Allow("unregistered") {
		t.Error("expected unregistered category to pass through unlimited")
	}
}

func TestReservation_CancelReturnsToken(t *testing.T) {
	rl := NewRateLimiter(10, 1)
	rl.Allow() // исчерпываем токен

	res := rl.Reserve()
	if !res.OK() {
		t.Fatal("expected reservation to succeed")
	}
	res.Cancel()

	if rl.Tokens() < 0 {
		t.Errorf("tokens should not be negative after cancel, got %f", rl.Tokens())
	}
}
