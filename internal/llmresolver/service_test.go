package llmresolver

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type fakeResolver struct {
	res      *Resolution
	err      error
	callCount int
}

func (f *fakeResolver) Resolve(ctx context.Context, exchangeTitle, sportCode string) (*Resolution, error) {
	f.callCount++
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

func TestService_ResolveValidatesAndCaches(t *testing.T) {
	fake := &fakeResolver{res: &Resolution{HomeTeam: "Chicago Blackhawks", AwayTeam: "Detroit Red Wings", Confidence: ConfidenceHigh}}
	svc := NewService(fake, NewMapCache(10), zap.NewNop())

	res, ok := svc.Resolve(context.Background(), "CHI blackhawks @ DET", "nhl")
	if !ok {
		t.Fatal("expected resolution to validate")
	}
	if res.HomeTeam != "Chicago Blackhawks" {
		t.Errorf("got %+v", res)
	}

	// second call for the same title must hit the cache, not the client.
	if _, ok := svc.Resolve(context.Background(), "CHI blackhawks @ DET", "nhl"); !ok {
		t.Fatal("expected cached resolution to still validate")
	}
	if fake.callCount != 1 {
		t.Errorf("expected exactly 1 client call, got %d", fake.callCount)
	}
}

func TestService_RejectsWhenNicknameAbsentFromTitle(t *testing.T) {
	fake := &fakeResolver{res: &Resolution{HomeTeam: "Arsenal", AwayTeam: "Chelsea", Confidence: ConfidenceHigh}}
	svc := NewService(fake, NewMapCache(10), zap.NewNop())

	if _, ok := svc.Resolve(context.Background(), "totally unrelated game title", "epl"); ok {
		t.Fatal("expected rejection when neither resolved team appears in the title")
	}
}

func TestService_NilClientAlwaysMisses(t *testing.T) {
	svc := NewService(nil, NewMapCache(10), zap.NewNop())
	if _, ok := svc.Resolve(context.Background(), "anything", "nhl"); ok {
		t.Fatal("expected disabled LLM tier to always miss")
	}
}

func TestService_ClientErrorCachesRejection(t *testing.T) {
	fake := &fakeResolver{err: errors.New("boom")}
	cache := NewMapCache(10)
	svc := NewService(fake, cache, zap.NewNop())

	if _, ok := svc.Resolve(context.Background(), "A vs B", "nhl"); ok {
		t.Fatal("expected failure to propagate as a miss")
	}
	if fake.callCount != 1 {
		t.Errorf("expected 1 call, got %d", fake.callCount)
	}

	// second call for the same title should hit the cached rejection, not call again.
	if _, ok := svc.Resolve(context.Background(), "A vs B", "nhl"); ok {
		t.Fatal("expected second call to also miss via cached rejection")
	}
	if fake.callCount != 1 {
		t.Errorf("expected cached rejection to avoid a second client call, got %d calls", fake.callCount)
	}
}
