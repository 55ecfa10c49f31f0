package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionRevoked     = errors.New("session revoked")
)

type Service struct {
	verifier Verifier
	tokens   *TokenIssuer
	sessions SessionStore
	logger   *slog.Logger
}

func NewService(verifier Verifier, tokens *TokenIssuer, sessions SessionStore, logger *slog.Logger) *Service {
	return &Service{
		verifier: verifier,
		tokens:   tokens,
		sessions: sessions,
		logger:   logger,
	}
}

// Login opens a staff session when the secret is accepted by the verifier.
func (s *Service) Login(ctx context.Context, secret string) (string, error) {
	if !s.verifier.Verify(secret) {
		return "", ErrInvalidCredentials
	}

	token, sessionID, err := s.tokens.Issue()
	if err != nil {
		return "", err
	}
	if err := s.sessions.Create(ctx, sessionID, s.tokens.TTL()); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.InfoContext(ctx, "staff session opened", "session_id", sessionID)
	return token, nil
}

// Authenticate returns the claims of a valid token whose session is live.
func (s *Service) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	ok, err := s.sessions.Exists(ctx, claims.SessionID())
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if !ok {
		return nil, ErrSessionRevoked
	}
	return claims, nil
}

// Logout revokes the session behind token. Invalid or expired tokens are
// ignored since there is nothing left to revoke.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	if err := s.sessions.Revoke(ctx, claims.SessionID()); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	s.logger.InfoContext(ctx, "staff session closed", "session_id", claims.SessionID())
	return nil
}
