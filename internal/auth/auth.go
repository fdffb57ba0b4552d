// Package auth implements the identity side of the application:
// sessions are established by sign-in, carried as signed bearer tokens,
// revoked by sign-out, and every transition is pushed to observers
// through the Broker.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Satyam216/todo-collab/internal/models"
	"github.com/Satyam216/todo-collab/internal/store"
)

// ErrSignInFailed is the single user-facing failure for sign-in; the
// underlying cause is logged, not surfaced.
var ErrSignInFailed = errors.New("auth: sign-in failed")

// Identity is the verified result of presenting a session token.
type Identity struct {
	UserID    uuid.UUID
	SessionID string
	Name      string
}

// Session is what a successful sign-in hands back to the client.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Service issues, verifies and revokes sessions.
type Service struct {
	users    store.DataStore
	sessions SessionStore
	broker   *Broker
	secret   []byte
	ttl      time.Duration
	logger   zerolog.Logger
}

// NewService creates the identity service.
func NewService(users store.DataStore, sessions SessionStore, broker *Broker, secret string, ttl time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		broker:   broker,
		secret:   []byte(secret),
		ttl:      ttl,
		logger:   logger,
	}
}

// SignIn establishes a session for the identity and announces the
// transition. Any failure collapses to ErrSignInFailed for the caller.
func (s *Service) SignIn(ctx context.Context, name, email string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrSignInFailed
	}

	user, err := s.users.UpsertUser(ctx, strings.TrimSpace(name), email)
	if err != nil {
		s.logger.Error().Err(err).Msg("sign-in: upsert user failed")
		return nil, ErrSignInFailed
	}

	sessionID := uuid.NewString()
	now := time.Now().UTC()

	token, err := issueToken(s.secret, user.ID.String(), sessionID, user.Name, s.ttl, now)
	if err != nil {
		s.logger.Error().Err(err).Msg("sign-in: token issue failed")
		return nil, ErrSignInFailed
	}

	if err := s.sessions.TrackSession(ctx, sessionID, s.ttl); err != nil {
		s.logger.Error().Err(err).Msg("sign-in: session tracking failed")
		return nil, ErrSignInFailed
	}

	s.broker.Publish(ctx, Event{
		Type:      EventSignedIn,
		UserID:    user.ID.String(),
		SessionID: sessionID,
	})

	return &Session{Token: token, ExpiresAt: now.Add(s.ttl), User: user}, nil
}

// SignOut revokes the session and announces the transition. Revoking an
// already-dead session is not an error.
func (s *Service) SignOut(ctx context.Context, ident Identity) error {
	if err := s.sessions.RevokeSession(ctx, ident.SessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	s.broker.Publish(ctx, Event{
		Type:      EventSignedOut,
		UserID:    ident.UserID.String(),
		SessionID: ident.SessionID,
	})
	return nil
}

// Verify checks a bearer token and that its session is still live.
func (s *Service) Verify(ctx context.Context, token string) (*Identity, error) {
	claims, err := parseToken(s.secret, token)
	if err != nil {
		return nil, err
	}

	active, err := s.sessions.IsSessionActive(ctx, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("session lookup: %w", err)
	}
	if !active {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &Identity{UserID: userID, SessionID: claims.SessionID, Name: claims.Name}, nil
}

// Broker exposes the auth-state broker so other components (the
// websocket hub) can observe session transitions.
func (s *Service) Broker() *Broker {
	return s.broker
}
