package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/gltch/gltch-cloud/internal/model"
	"github.com/gltch/gltch-cloud/internal/repository"
)

// fakeStore is an in-memory Store with the repository's semantics,
// including the daily-window reset behavior.
type fakeStore struct {
	mu sync.Mutex

	users     map[string]*model.User
	sessions  map[string]*model.ChatSession
	messages  map[string][]*model.Message
	usageLogs []*model.UsageLog

	failIncrement error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[string]*model.User),
		sessions: make(map[string]*model.ChatSession),
		messages: make(map[string][]*model.Message),
	}
}

func (f *fakeStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (f *fakeStore) GetOrCreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.users[user.ID]; ok {
		cp := *existing
		return &cp, nil
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	cp := *user
	f.users[user.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeStore) UpdateUserSettings(ctx context.Context, id string, update repository.UserSettingsUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	if update.Provider != nil {
		user.Provider = *update.Provider
	}
	if update.KeyMode != nil {
		user.KeyMode = *update.KeyMode
	}
	if update.OpenAIKey != nil {
		user.OpenAIKey = *update.OpenAIKey
	}
	if update.AnthropicKey != nil {
		user.AnthropicKey = *update.AnthropicKey
	}
	if update.GoogleKey != nil {
		user.GoogleKey = *update.GoogleKey
	}
	if update.XAIKey != nil {
		user.XAIKey = *update.XAIKey
	}
	if update.PersonalityMode != nil {
		user.PersonalityMode = *update.PersonalityMode
	}
	return nil
}

func (f *fakeStore) BeginDailyWindow(ctx context.Context, id string, today time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return 0, repository.ErrUserNotFound
	}
	if user.LastMessageDate == nil || !user.LastMessageDate.Equal(today) {
		user.MessagesToday = 0
	}
	stamped := today
	user.LastMessageDate = &stamped
	return user.MessagesToday, nil
}

func (f *fakeStore) IncrementUsage(ctx context.Context, id string, tokens int) error {
	if f.failIncrement != nil {
		return f.failIncrement
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.MessagesToday++
	user.TokensThisMonth += int64(tokens)
	return nil
}

func (f *fakeStore) SetTierByCustomer(ctx context.Context, customerID, tier string, subscriptionID *string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.StripeCustomerID != nil && *user.StripeCustomerID == customerID {
			user.Tier = tier
			user.StripeSubscriptionID = subscriptionID
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateSession(ctx context.Context, session *model.ChatSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *session
	f.sessions[session.ID] = &cp
	return nil
}

func (f *fakeStore) GetSession(ctx context.Context, id string) (*model.ChatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	cp := *session
	return &cp, nil
}

func (f *fakeStore) ListSessionsByUser(ctx context.Context, userID string) ([]*model.ChatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.ChatSession, 0)
	for _, s := range f.sessions {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *model.ChatSession) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (f *fakeStore) CreateMessage(ctx context.Context, msg *model.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *msg
	f.messages[msg.SessionID] = append(f.messages[msg.SessionID], &cp)
	return nil
}

func (f *fakeStore) ListMessages(ctx context.Context, sessionID string) ([]*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages[sessionID]
	out := make([]*model.Message, 0, len(msgs))
	for _, m := range msgs {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeStore) ListRecentMessages(ctx context.Context, sessionID string, limit int) ([]*model.Message, error) {
	msgs, err := f.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (f *fakeStore) InsertUsageLog(ctx context.Context, log *model.UsageLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *log
	f.usageLogs = append(f.usageLogs, &cp)
	return nil
}

func (f *fakeStore) user(id string) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id]
}
