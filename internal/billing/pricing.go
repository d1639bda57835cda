// Package billing provides token pricing, tier limits, and billing
// webhook verification.
package billing

import "math"

// ModelPricing holds USD prices per 1K tokens for a vendor model.
type ModelPricing struct {
	Input  float64
	Output float64
}

// fallbackPricing applies when a (provider, model) pair is not in the table.
var fallbackPricing = ModelPricing{Input: 0.01, Output: 0.03}

// providerPricing maps provider -> model -> price per 1K tokens.
var providerPricing = map[string]map[string]ModelPricing{
	"openai": {
		"gpt-4o":        {Input: 0.015, Output: 0.045},
		"gpt-4o-mini":   {Input: 0.0005, Output: 0.0015},
		"gpt-3.5-turbo": {Input: 0.0005, Output: 0.0015},
	},
	"anthropic": {
		"claude-3-5-sonnet": {Input: 0.003, Output: 0.015},
		"claude-3-haiku":    {Input: 0.00025, Output: 0.00125},
	},
	"gemini": {
		"gemini-1.5-pro":   {Input: 0.00125, Output: 0.005},
		"gemini-1.5-flash": {Input: 0.000075, Output: 0.0003},
	},
	"grok": {
		"grok-2": {Input: 0.002, Output: 0.01},
	},
}

// PricingFor looks up prices by exact (provider, model) match, falling
// back to the default slab on a miss.
func PricingFor(provider, model string) ModelPricing {
	if models, ok := providerPricing[provider]; ok {
		if p, ok := models[model]; ok {
			return p
		}
	}
	return fallbackPricing
}

// Cost computes the USD cost of a turn, rounded to 6 decimal places.
// Pure and deterministic; never fails.
func Cost(provider, model string, inputTokens, outputTokens int) float64 {
	p := PricingFor(provider, model)
	cost := float64(inputTokens)/1000*p.Input + float64(outputTokens)/1000*p.Output
	return math.Round(cost*1e6) / 1e6
}
