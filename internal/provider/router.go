package provider

import "github.com/gltch/gltch-cloud/internal/model"

// FreeTierModel is the only model free-tier users may run.
const FreeTierModel = "gpt-3.5-turbo"

// defaultModels maps each provider to its default model.
var defaultModels = map[string]string{
	model.ProviderOpenAI:    "gpt-4o",
	model.ProviderAnthropic: "claude-3-5-sonnet-20241022",
	model.ProviderGemini:    "gemini-1.5-pro",
	model.ProviderGrok:      "grok-2-latest",
}

// Credentials holds the platform's managed vendor keys.
type Credentials struct {
	OpenAI    string
	Anthropic string
	Google    string
	XAI       string
}

// Router selects the adapter, model and credential for a chat turn based
// on tier, key mode and the user's provider preference.
type Router struct {
	adapters map[string]Adapter
	fallback Adapter
}

// NewRouter builds a router over the four vendor adapters.
func NewRouter(creds Credentials) *Router {
	openAI := NewOpenAI(creds.OpenAI)
	r := &Router{
		adapters: map[string]Adapter{
			model.ProviderOpenAI:    openAI,
			model.ProviderAnthropic: NewAnthropic(creds.Anthropic),
			model.ProviderGemini:    NewGemini(creds.Google),
			model.ProviderGrok:      NewGrok(creds.XAI),
		},
		fallback: openAI,
	}
	return r
}

// NewRouterWithAdapters builds a router over explicit adapters. Used by
// tests to point vendors at local servers.
func NewRouterWithAdapters(adapters map[string]Adapter, fallback Adapter) *Router {
	return &Router{adapters: adapters, fallback: fallback}
}

// RouteInput describes the user-side state a selection depends on.
type RouteInput struct {
	Tier     string
	KeyMode  string
	Provider string
	// BYOKKeys maps provider -> plaintext user credential. Consulted only
	// in BYOK mode; a missing entry selects the empty credential and the
	// call proceeds (the adapter falls back to the managed key, and the
	// vendor rejects if that is empty too).
	BYOKKeys map[string]string
}

// Selection is a resolved routing decision.
type Selection struct {
	Adapter  Adapter
	Provider string
	Model    string
	APIKey   string
}

// Select resolves provider, model and credential for one turn.
// Free-tier users are always forced to the free vendor and model,
// regardless of stored preference and ignoring BYOK keys. Unrecognized
// providers fall back to the OpenAI adapter.
func (r *Router) Select(in RouteInput) Selection {
	if in.Tier == model.TierFree {
		return Selection{
			Adapter:  r.adapters[model.ProviderOpenAI],
			Provider: model.ProviderOpenAI,
			Model:    FreeTierModel,
		}
	}

	providerName := in.Provider
	adapter, ok := r.adapters[providerName]
	if !ok {
		adapter = r.fallback
		providerName = adapter.Name()
	}

	sel := Selection{
		Adapter:  adapter,
		Provider: providerName,
		Model:    defaultModels[providerName],
	}

	if in.KeyMode == model.KeyModeBYOK {
		sel.APIKey = in.BYOKKeys[providerName]
	}

	return sel
}
