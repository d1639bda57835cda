package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gltch/gltch-cloud/internal/model"
	"github.com/gltch/gltch-cloud/internal/repository"
)

// SessionService serves conversation history with ownership checks.
type SessionService struct {
	store Store
}

// NewSessionService creates a SessionService.
func NewSessionService(store Store) *SessionService {
	return &SessionService{store: store}
}

// ListSessions returns the caller's sessions, newest first.
func (s *SessionService) ListSessions(ctx context.Context, userID string) ([]*model.ChatSession, error) {
	sessions, err := s.store.ListSessionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// GetMessages returns a session's full history in creation order.
// Fails with ErrSessionNotFound for unknown sessions and ErrAccessDenied
// when the session belongs to another user.
func (s *SessionService) GetMessages(ctx context.Context, sessionID, requesterID string) ([]*model.Message, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	if session.UserID != requesterID {
		return nil, ErrAccessDenied
	}

	messages, err := s.store.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}
