package billing

import "github.com/gltch/gltch-cloud/internal/model"

// UnlimitedMessages is the sentinel for "no daily cap".
const UnlimitedMessages = -1

// FreeMessagesPerDay is the daily message cap for the free tier.
const FreeMessagesPerDay = 25

// TierLimits describes what a subscription tier may use.
type TierLimits struct {
	MessagesPerDay int      `json:"messages_per_day"`
	Providers      []string `json:"providers"`
	Features       []string `json:"features"`
}

// LimitsFor returns the usage limits for a tier. Unknown tiers get the
// free limits.
func LimitsFor(tier string) TierLimits {
	if tier == model.TierPro {
		return TierLimits{
			MessagesPerDay: UnlimitedMessages,
			Providers:      model.ValidProviders,
			Features:       []string{"browser", "telegram", "all_modes"},
		}
	}
	return TierLimits{
		MessagesPerDay: FreeMessagesPerDay,
		Providers:      []string{model.ProviderOpenAI},
		Features:       []string{"basic_modes"},
	}
}
