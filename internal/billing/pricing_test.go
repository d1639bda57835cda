package billing

import (
	"math"
	"testing"
)

func TestCost_KnownModel(t *testing.T) {
	// gpt-3.5-turbo: 0.0005 in / 0.0015 out per 1K tokens
	cost := Cost("openai", "gpt-3.5-turbo", 1000, 1000)
	want := 0.002
	if math.Abs(cost-want) > 1e-9 {
		t.Errorf("expected cost %v, got %v", want, cost)
	}
}

func TestCost_SmallTokenCounts(t *testing.T) {
	// 5 input + 3 output tokens on the free pair
	cost := Cost("openai", "gpt-3.5-turbo", 5, 3)
	want := math.Round((5.0/1000*0.0005+3.0/1000*0.0015)*1e6) / 1e6
	if cost != want {
		t.Errorf("expected cost %v, got %v", want, cost)
	}
}

func TestCost_FallbackPricing(t *testing.T) {
	// Unknown model gets the 0.01/0.03 fallback slab.
	cost := Cost("openai", "gpt-99-ultra", 1000, 1000)
	want := 0.04
	if math.Abs(cost-want) > 1e-9 {
		t.Errorf("expected fallback cost %v, got %v", want, cost)
	}
}

func TestCost_FallbackUnknownProvider(t *testing.T) {
	cost := Cost("unknown-vendor", "gpt-4o", 2000, 0)
	want := 0.02
	if math.Abs(cost-want) > 1e-9 {
		t.Errorf("expected fallback cost %v, got %v", want, cost)
	}
}

func TestCost_DatedModelNameMissesExactMatch(t *testing.T) {
	// Dated vendor model IDs are not in the table; exact match only, so
	// they land on the fallback slab.
	cost := Cost("anthropic", "claude-3-5-sonnet-20241022", 1000, 1000)
	want := 0.04
	if math.Abs(cost-want) > 1e-9 {
		t.Errorf("expected fallback cost %v, got %v", want, cost)
	}
}

func TestCost_RoundsToSixDecimals(t *testing.T) {
	cost := Cost("openai", "gpt-3.5-turbo", 1, 1)
	// 1/1000*0.0005 + 1/1000*0.0015 = 0.000002
	want := 0.000002
	if cost != want {
		t.Errorf("expected cost %v, got %v", want, cost)
	}

	scaled := cost * 1e6
	if scaled != math.Round(scaled) {
		t.Errorf("cost %v has more than 6 decimal places", cost)
	}
}

func TestCost_ZeroTokens(t *testing.T) {
	if cost := Cost("openai", "gpt-4o", 0, 0); cost != 0 {
		t.Errorf("expected zero cost, got %v", cost)
	}
}

func TestPricingFor_ExactMatchTable(t *testing.T) {
	pricing := PricingFor("gemini", "gemini-1.5-flash")
	if pricing.Input != 0.000075 || pricing.Output != 0.0003 {
		t.Errorf("unexpected pricing: %+v", pricing)
	}

	if got := PricingFor("gemini", "gemini-2.0"); got != fallbackPricing {
		t.Errorf("expected fallback pricing for unlisted model, got %+v", got)
	}
}
