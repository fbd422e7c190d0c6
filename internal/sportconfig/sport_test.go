package sportconfig

import "testing"

func TestDetectSport_NHLBeforeNBA(t *testing.T) {
	code, ok := DetectSport("Chicago Blackhawks vs Detroit Red Wings")
	if !ok {
		t.Fatal("expected a sport match")
	}
	if code != "nhl" {
		t.Errorf("got %q, want nhl (Blackhawks must not be caught by the NBA Hawks pattern)", code)
	}
}

func TestDetectSport_NBAHawks(t *testing.T) {
	code, ok := DetectSport("Atlanta Hawks vs Miami Heat")
	if !ok {
		t.Fatal("expected a sport match")
	}
	if code != "nba" {
		t.Errorf("got %q, want nba", code)
	}
}

func TestDetectSport_NoMatch(t *testing.T) {
	if _, ok := DetectSport("some unrelated free text"); ok {
		t.Error("expected no sport match")
	}
}

func TestIsSupported(t *testing.T) {
	if !IsSupported("nhl") {
		t.Error("expected nhl to be supported")
	}
	if IsSupported("curling") {
		t.Error("expected curling to be unsupported")
	}
}

func TestOddsAPISportKey(t *testing.T) {
	key, ok := OddsAPISportKey("nhl")
	if !ok || key != "icehockey_nhl" {
		t.Errorf("got (%q, %v), want (icehockey_nhl, true)", key, ok)
	}
	if _, ok := OddsAPISportKey("curling"); ok {
		t.Error("expected no odds API mapping for an unsupported sport")
	}
}

func TestSharpBookWeight(t *testing.T) {
	if w := SharpBookWeight("pinnacle"); w != 1.5 {
		t.Errorf("got %f, want 1.5 for sharp book", w)
	}
	if w := SharpBookWeight("some_random_book"); w != 1.0 {
		t.Errorf("got %f, want 1.0 for non-sharp book", w)
	}
}
