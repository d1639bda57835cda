package provider

import (
	"context"
	"testing"

	"github.com/gltch/gltch-cloud/internal/model"
)

type stubAdapter struct {
	name string
}

func (s *stubAdapter) Chat(ctx context.Context, req Request) (*Response, error) {
	return &Response{Content: "stub", Model: req.Model}, nil
}

func (s *stubAdapter) Name() string { return s.name }

func testRouter() *Router {
	openAI := &stubAdapter{name: model.ProviderOpenAI}
	return NewRouterWithAdapters(map[string]Adapter{
		model.ProviderOpenAI:    openAI,
		model.ProviderAnthropic: &stubAdapter{name: model.ProviderAnthropic},
		model.ProviderGemini:    &stubAdapter{name: model.ProviderGemini},
		model.ProviderGrok:      &stubAdapter{name: model.ProviderGrok},
	}, openAI)
}

func TestSelect_FreeTierForcedToFreeModel(t *testing.T) {
	r := testRouter()

	sel := r.Select(RouteInput{
		Tier:     model.TierFree,
		KeyMode:  model.KeyModeBYOK,
		Provider: model.ProviderAnthropic,
		BYOKKeys: map[string]string{model.ProviderAnthropic: "user-key"},
	})

	if sel.Provider != model.ProviderOpenAI {
		t.Errorf("expected openai, got %q", sel.Provider)
	}
	if sel.Model != FreeTierModel {
		t.Errorf("expected %q, got %q", FreeTierModel, sel.Model)
	}
	// Free tier never uses BYOK keys.
	if sel.APIKey != "" {
		t.Errorf("expected empty key for free tier, got %q", sel.APIKey)
	}
}

func TestSelect_ProManagedUsesDefaultModel(t *testing.T) {
	r := testRouter()

	sel := r.Select(RouteInput{
		Tier:     model.TierPro,
		KeyMode:  model.KeyModeManaged,
		Provider: model.ProviderAnthropic,
	})

	if sel.Provider != model.ProviderAnthropic {
		t.Errorf("expected anthropic, got %q", sel.Provider)
	}
	if sel.Model != defaultModels[model.ProviderAnthropic] {
		t.Errorf("expected default model, got %q", sel.Model)
	}
	if sel.APIKey != "" {
		t.Errorf("managed mode should not carry a user key, got %q", sel.APIKey)
	}
}

func TestSelect_BYOKSelectsUserKey(t *testing.T) {
	r := testRouter()

	sel := r.Select(RouteInput{
		Tier:     model.TierPro,
		KeyMode:  model.KeyModeBYOK,
		Provider: model.ProviderGemini,
		BYOKKeys: map[string]string{
			model.ProviderGemini: "user-google-key",
			model.ProviderOpenAI: "user-openai-key",
		},
	})

	if sel.APIKey != "user-google-key" {
		t.Errorf("expected the gemini key, got %q", sel.APIKey)
	}
}

func TestSelect_BYOKMissingKeyProceedsEmpty(t *testing.T) {
	r := testRouter()

	sel := r.Select(RouteInput{
		Tier:     model.TierPro,
		KeyMode:  model.KeyModeBYOK,
		Provider: model.ProviderGrok,
		BYOKKeys: map[string]string{},
	})

	if sel.Provider != model.ProviderGrok {
		t.Errorf("expected grok, got %q", sel.Provider)
	}
	if sel.APIKey != "" {
		t.Errorf("expected empty key, got %q", sel.APIKey)
	}
}

func TestSelect_UnknownProviderFallsBack(t *testing.T) {
	r := testRouter()

	sel := r.Select(RouteInput{
		Tier:     model.TierPro,
		KeyMode:  model.KeyModeManaged,
		Provider: "mystery-vendor",
	})

	if sel.Provider != model.ProviderOpenAI {
		t.Errorf("expected fallback to openai, got %q", sel.Provider)
	}
	if sel.Model != defaultModels[model.ProviderOpenAI] {
		t.Errorf("expected openai default model, got %q", sel.Model)
	}
}
