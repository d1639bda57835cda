package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gltch/gltch-cloud/internal/auth"
	"github.com/gltch/gltch-cloud/internal/billing"
	"github.com/gltch/gltch-cloud/internal/model"
)

func newUserFixture() (*fakeStore, *auth.Sealer, *UserService) {
	store := newFakeStore()
	sealer := auth.NewSealer("test-seal-secret")
	return store, sealer, NewUserService(store, sealer)
}

func TestProvision_CreatesWithDefaults(t *testing.T) {
	_, _, svc := newUserFixture()

	user, err := svc.Provision(context.Background(), &model.AuthContext{UserID: "u1", Email: "op@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if user.Tier != model.TierFree {
		t.Errorf("expected free tier, got %q", user.Tier)
	}
	if user.Provider != model.ProviderOpenAI {
		t.Errorf("expected openai default, got %q", user.Provider)
	}
	if user.Callsign != "Operator" {
		t.Errorf("expected default callsign, got %q", user.Callsign)
	}
	if user.Email != "op@example.com" {
		t.Errorf("expected identity email, got %q", user.Email)
	}
}

func TestProvision_MissingEmailGetsPlaceholder(t *testing.T) {
	_, _, svc := newUserFixture()

	user, err := svc.Provision(context.Background(), &model.AuthContext{UserID: "u1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Email != "user@gltch.app" {
		t.Errorf("expected placeholder email, got %q", user.Email)
	}
}

func TestRegister_NewAndExisting(t *testing.T) {
	_, _, svc := newUserFixture()
	ctx := context.Background()

	user, created, err := svc.Register(ctx, RegisterInput{
		UserID:   "u1",
		Email:    "op@example.com",
		Callsign: "Ghost",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected created=true on first registration")
	}
	if user.Callsign != "Ghost" {
		t.Errorf("expected requested callsign, got %q", user.Callsign)
	}

	// Registering again is not an error.
	again, created, err := svc.Register(ctx, RegisterInput{UserID: "u1", Email: "op@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("expected created=false on repeat registration")
	}
	if again.Callsign != "Ghost" {
		t.Errorf("repeat registration must not overwrite, got %q", again.Callsign)
	}
}

func TestRegister_InvalidEnums(t *testing.T) {
	_, _, svc := newUserFixture()
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, RegisterInput{UserID: "u1", Provider: "cohere"}); !errors.Is(err, ErrInvalidProvider) {
		t.Errorf("expected ErrInvalidProvider, got %v", err)
	}
	if _, _, err := svc.Register(ctx, RegisterInput{UserID: "u1", KeyMode: "stolen"}); !errors.Is(err, ErrInvalidKeyMode) {
		t.Errorf("expected ErrInvalidKeyMode, got %v", err)
	}
}

func TestUpdateSettings_SealsVendorKeys(t *testing.T) {
	store, sealer, svc := newUserFixture()
	ctx := context.Background()

	_, _ = store.GetOrCreateUser(ctx, defaultUser("u1", ""))

	provider := model.ProviderAnthropic
	keyMode := model.KeyModeBYOK
	plainKey := "sk-ant-user-key"
	user, err := svc.UpdateSettings(ctx, "u1", SettingsInput{
		Provider:     &provider,
		KeyMode:      &keyMode,
		AnthropicKey: &plainKey,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if user.Provider != model.ProviderAnthropic || user.KeyMode != model.KeyModeBYOK {
		t.Errorf("settings not applied: %+v", user)
	}

	stored := store.user("u1").AnthropicKey
	if stored == plainKey {
		t.Error("vendor key stored in plaintext")
	}
	opened, err := sealer.Open(stored)
	if err != nil {
		t.Fatalf("stored key not openable: %v", err)
	}
	if opened != plainKey {
		t.Errorf("round-trip mismatch: %q", opened)
	}
}

func TestUpdateSettings_PartialLeavesOthersUntouched(t *testing.T) {
	store, _, svc := newUserFixture()
	ctx := context.Background()

	_, _ = store.GetOrCreateUser(ctx, defaultUser("u1", ""))

	mode := "loyal"
	if _, err := svc.UpdateSettings(ctx, "u1", SettingsInput{PersonalityMode: &mode}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user := store.user("u1")
	if user.PersonalityMode != "loyal" {
		t.Errorf("mode not applied, got %q", user.PersonalityMode)
	}
	if user.Provider != model.ProviderOpenAI {
		t.Errorf("unrelated field changed: %q", user.Provider)
	}
}

func TestUpdateSettings_Validation(t *testing.T) {
	store, _, svc := newUserFixture()
	ctx := context.Background()
	_, _ = store.GetOrCreateUser(ctx, defaultUser("u1", ""))

	bad := "cohere"
	if _, err := svc.UpdateSettings(ctx, "u1", SettingsInput{Provider: &bad}); !errors.Is(err, ErrInvalidProvider) {
		t.Errorf("expected ErrInvalidProvider, got %v", err)
	}

	badMode := "pirate"
	if _, err := svc.UpdateSettings(ctx, "u1", SettingsInput{PersonalityMode: &badMode}); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("expected ErrInvalidMode, got %v", err)
	}
}

func TestUpdateSettings_UnknownUser(t *testing.T) {
	_, _, svc := newUserFixture()

	mode := "loyal"
	if _, err := svc.UpdateSettings(context.Background(), "ghost", SettingsInput{PersonalityMode: &mode}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSetPersonalityMode(t *testing.T) {
	store, _, svc := newUserFixture()
	ctx := context.Background()
	_, _ = store.GetOrCreateUser(ctx, defaultUser("u1", ""))

	if err := svc.SetPersonalityMode(ctx, "u1", "unhinged"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.user("u1").PersonalityMode; got != "unhinged" {
		t.Errorf("mode not stored, got %q", got)
	}

	if err := svc.SetPersonalityMode(ctx, "u1", "pirate"); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("expected ErrInvalidMode, got %v", err)
	}
}

func TestUsage_ReportsCountersAndLimits(t *testing.T) {
	store, _, svc := newUserFixture()
	ctx := context.Background()

	user, _ := store.GetOrCreateUser(ctx, defaultUser("u1", ""))
	store.users[user.ID].MessagesToday = 7
	store.users[user.ID].TokensThisMonth = 4242

	stats, err := svc.Usage(ctx, &model.AuthContext{UserID: "u1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.Tier != model.TierFree {
		t.Errorf("unexpected tier %q", stats.Tier)
	}
	if stats.MessagesToday != 7 || stats.TokensThisMonth != 4242 {
		t.Errorf("unexpected counters: %+v", stats)
	}
	if stats.Limits.MessagesPerDay != billing.FreeMessagesPerDay {
		t.Errorf("unexpected limits: %+v", stats.Limits)
	}
}
