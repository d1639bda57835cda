package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gltch/gltch-cloud/internal/auth"
	"github.com/gltch/gltch-cloud/internal/billing"
	"github.com/gltch/gltch-cloud/internal/metrics"
	"github.com/gltch/gltch-cloud/internal/model"
	"github.com/gltch/gltch-cloud/internal/personality"
	"github.com/gltch/gltch-cloud/internal/provider"
	"github.com/gltch/gltch-cloud/internal/repository"
)

const (
	// maxContentLength bounds a single chat message.
	maxContentLength = 10000
	// contextWindow is how many trailing messages are sent to the vendor.
	// The full history is retained regardless.
	contextWindow = 10
	// defaultSessionTitle names sessions created lazily on first turn.
	defaultSessionTitle = "New Chat"
)

// ChatService orchestrates a chat turn: quota gate, context build,
// provider selection, vendor call, metering and persistence.
type ChatService struct {
	store   Store
	router  *provider.Router
	sealer  *auth.Sealer
	logger  *slog.Logger
	metrics metrics.Recorder

	// now is injectable for tests.
	now func() time.Time
}

// NewChatService creates a ChatService.
func NewChatService(store Store, router *provider.Router, sealer *auth.Sealer, logger *slog.Logger, recorder metrics.Recorder) *ChatService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ChatService{
		store:   store,
		router:  router,
		sealer:  sealer,
		logger:  logger,
		metrics: recorder,
		now:     time.Now,
	}
}

// ChatInput is one inbound chat turn.
type ChatInput struct {
	UserID    string
	Email     string
	Content   string
	SessionID string
}

// ChatResult is the outcome of a completed turn.
type ChatResult struct {
	Content      string
	SessionID    string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
}

// Chat runs one turn. Validation and quota failures short-circuit before
// any vendor call with no side effects. After a successful vendor call,
// both turn messages are appended, counters are bumped atomically and the
// spend is logged; a persistence failure at that point is surfaced as a
// fatal error for the turn, never hidden as success.
func (s *ChatService) Chat(ctx context.Context, input ChatInput) (*ChatResult, error) {
	if input.Content == "" {
		return nil, ErrContentRequired
	}
	if len(input.Content) > maxContentLength {
		return nil, ErrContentTooLong
	}

	user, err := s.store.GetOrCreateUser(ctx, defaultUser(input.UserID, input.Email))
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	// Quota gate. The daily window reset and the counter read are a
	// single atomic statement; the cap check happens before any money is
	// spent on a vendor.
	messagesToday, err := s.store.BeginDailyWindow(ctx, user.ID, utcToday(s.now()))
	if err != nil {
		return nil, fmt.Errorf("begin daily window: %w", err)
	}

	limits := billing.LimitsFor(user.Tier)
	if limits.MessagesPerDay != billing.UnlimitedMessages && messagesToday >= limits.MessagesPerDay {
		s.metrics.IncQuotaRejected()
		return nil, &QuotaExceededError{Cap: limits.MessagesPerDay}
	}

	sessionID, err := s.resolveSession(ctx, user.ID, input.SessionID)
	if err != nil {
		return nil, err
	}

	history, err := s.store.ListRecentMessages(ctx, sessionID, contextWindow)
	if err != nil {
		return nil, fmt.Errorf("load context: %w", err)
	}

	turns := make([]provider.Message, 0, len(history)+1)
	for _, msg := range history {
		turns = append(turns, provider.Message{Role: msg.Role, Content: msg.Content})
	}
	turns = append(turns, provider.Message{Role: model.RoleUser, Content: input.Content})

	sel := s.router.Select(provider.RouteInput{
		Tier:     user.Tier,
		KeyMode:  user.KeyMode,
		Provider: user.Provider,
		BYOKKeys: s.unsealedKeys(user),
	})

	prompt := personality.PromptFor(personality.Parse(user.PersonalityMode))

	start := s.now()
	resp, err := sel.Adapter.Chat(ctx, provider.Request{
		Messages:     turns,
		APIKey:       sel.APIKey,
		Model:        sel.Model,
		SystemPrompt: prompt,
	})
	s.metrics.ObserveProviderDuration(sel.Provider, s.now().Sub(start))
	if err != nil {
		s.metrics.IncProviderError(sel.Provider)
		return nil, fmt.Errorf("provider %s: %w", sel.Provider, err)
	}

	// Success path. From here the vendor cost is already incurred; any
	// persistence failure is surfaced, not masked.
	now := s.now().UTC()
	userMsg := &model.Message{
		ID:        newULID(),
		SessionID: sessionID,
		Role:      model.RoleUser,
		Content:   input.Content,
		CreatedAt: now,
	}
	assistantMsg := &model.Message{
		ID:           newULID(),
		SessionID:    sessionID,
		Role:         model.RoleAssistant,
		Content:      resp.Content,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		CreatedAt:    now,
	}

	if err := s.store.CreateMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}
	if err := s.store.CreateMessage(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("persist assistant message: %w", err)
	}

	totalTokens := resp.InputTokens + resp.OutputTokens
	if err := s.store.IncrementUsage(ctx, user.ID, totalTokens); err != nil {
		return nil, fmt.Errorf("update usage counters: %w", err)
	}

	cost := billing.Cost(sel.Provider, resp.Model, resp.InputTokens, resp.OutputTokens)

	if err := s.store.InsertUsageLog(ctx, &model.UsageLog{
		ID:           newULID(),
		UserID:       user.ID,
		Provider:     sel.Provider,
		Model:        resp.Model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		CostUSD:      cost,
		CreatedAt:    now,
	}); err != nil {
		return nil, fmt.Errorf("record usage log: %w", err)
	}

	s.metrics.IncChatTurn()
	s.metrics.AddTokens(resp.InputTokens, resp.OutputTokens)

	return &ChatResult{
		Content:      resp.Content,
		SessionID:    sessionID,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		CostUSD:      cost,
	}, nil
}

// resolveSession finds or lazily creates the conversation for a turn.
// A turn without a session ID starts a fresh session; a turn naming a
// session another user owns is rejected.
func (s *ChatService) resolveSession(ctx context.Context, userID, sessionID string) (string, error) {
	if sessionID != "" {
		session, err := s.store.GetSession(ctx, sessionID)
		if err == nil {
			if session.UserID != userID {
				return "", ErrAccessDenied
			}
			return session.ID, nil
		}
		if !errors.Is(err, repository.ErrSessionNotFound) {
			return "", fmt.Errorf("load session: %w", err)
		}
	}

	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	now := s.now().UTC()
	session := &model.ChatSession{
		ID:        sessionID,
		UserID:    userID,
		Title:     defaultSessionTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return session.ID, nil
}

// unsealedKeys opens the user's stored BYOK keys. A key that cannot be
// opened is treated as absent; the turn proceeds and the vendor decides.
func (s *ChatService) unsealedKeys(user *model.User) map[string]string {
	if user.Tier == model.TierFree || user.KeyMode != model.KeyModeBYOK {
		return nil
	}

	keys := make(map[string]string, len(model.ValidProviders))
	for _, p := range model.ValidProviders {
		sealed := user.SealedKeyFor(p)
		if sealed == "" {
			continue
		}
		plaintext, err := s.sealer.Open(sealed)
		if err != nil {
			s.logger.Warn("failed to open stored vendor key",
				slog.String("user_id", user.ID),
				slog.String("provider", p),
			)
			continue
		}
		keys[p] = plaintext
	}
	return keys
}
