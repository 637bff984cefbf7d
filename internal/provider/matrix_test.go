package provider

import (
	"testing"
	"time"
)

// fixedMatrix pins the clock so age-based scoring is deterministic.
func fixedMatrix() *FeatureMatrix {
	m := DefaultMatrix()
	m.now = func() time.Time {
		return time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	}
	return m
}

func contains(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}

func TestSuggestAlternativesRecentWindow(t *testing.T) {
	m := fixedMatrix()
	start := time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.June, 21, 0, 0, 0, 0, time.UTC)

	got := m.SuggestAlternatives("yfinance", start, end, nil)

	if contains(got, "yfinance") {
		t.Errorf("failed vendor must be excluded, got %v", got)
	}
	// alphavantage does not serve recent data and is disqualified
	if contains(got, "alphavantage") {
		t.Errorf("non-recent vendor must be disqualified for a recent window, got %v", got)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 candidates, got %v", got)
	}
	// Lowest lag plus free tier wins for recent windows
	if got[0] != "alpaca" {
		t.Errorf("best candidate = %s, want alpaca (full ranking: %v)", got[0], got)
	}
	// polygon has the lowest lag but no free tier; every free vendor outranks it
	if got[len(got)-1] != "polygon" {
		t.Errorf("last candidate = %s, want polygon (full ranking: %v)", got[len(got)-1], got)
	}
}

func TestSuggestAlternativesHistoricalWindow(t *testing.T) {
	m := fixedMatrix()
	start := time.Date(2019, time.January, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2019, time.December, 31, 0, 0, 0, 0, time.UTC)

	got := m.SuggestAlternatives("polygon", start, end, nil)

	if contains(got, "polygon") {
		t.Errorf("failed vendor must be excluded, got %v", got)
	}
	// finnhub cannot reach five years back
	if contains(got, "finnhub") {
		t.Errorf("vendor with insufficient historical depth must be disqualified, got %v", got)
	}
	for _, want := range []string{"yfinance", "alpaca", "tiingo", "alphavantage"} {
		if !contains(got, want) {
			t.Errorf("expected %s among candidates, got %v", want, got)
		}
	}
}

func TestSuggestAlternativesDeepHistory(t *testing.T) {
	m := fixedMatrix()
	start := time.Date(2012, time.January, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2012, time.December, 31, 0, 0, 0, 0, time.UTC)

	got := m.SuggestAlternatives("yfinance", start, end, nil)

	// Only vendors with unlimited depth can reach twelve years back
	for _, name := range got {
		if name != "tiingo" && name != "alphavantage" {
			t.Errorf("unexpected candidate %s for deep history, got %v", name, got)
		}
	}
	if len(got) != 2 {
		t.Errorf("expected 2 candidates, got %v", got)
	}
}

func TestSuggestAlternativesExclude(t *testing.T) {
	m := fixedMatrix()
	start := time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.June, 21, 0, 0, 0, 0, time.UTC)

	got := m.SuggestAlternatives("yfinance", start, end, map[string]bool{"alpaca": true})
	if contains(got, "alpaca") {
		t.Errorf("excluded vendor must not appear, got %v", got)
	}
	if got[0] != "finnhub" {
		t.Errorf("best candidate = %s, want finnhub (full ranking: %v)", got[0], got)
	}
}

func TestHas(t *testing.T) {
	m := DefaultMatrix()
	if !m.Has("yfinance") {
		t.Error("expected yfinance in the default matrix")
	}
	if m.Has("bloomberg") {
		t.Error("did not expect bloomberg in the default matrix")
	}
}
