package session

import (
	"context"
	"encoding/json"
	"time"

	v1 "adminpanel/pkg/api/v1"
	"adminpanel/pkg/constraints"
	"adminpanel/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Session owns the credentials of the signed-in administrator. It is the only
// reader and writer of the credential keys in its Store.
type Session struct {
	store Store
}

func New(store Store) *Session {
	return &Session{store: store}
}

func (s *Session) Store() Store {
	return s.store
}

func (s *Session) get(ctx context.Context, key string) string {
	val, ok, err := s.store.Get(ctx, key)
	if err != nil {
		logger.Warn("session read failed", zap.String("key", key), zap.Error(err))
		return ""
	}
	if !ok {
		return ""
	}
	return val
}

func (s *Session) AccessToken(ctx context.Context) string {
	return s.get(ctx, constraints.KeyAccessToken)
}

func (s *Session) RefreshToken(ctx context.Context) string {
	return s.get(ctx, constraints.KeyRefreshToken)
}

func (s *Session) TempToken(ctx context.Context) string {
	return s.get(ctx, constraints.KeyTempToken)
}

func (s *Session) SetAccessToken(ctx context.Context, token string) error {
	return s.store.Set(ctx, constraints.KeyAccessToken, token)
}

func (s *Session) SetRefreshToken(ctx context.Context, token string) error {
	return s.store.Set(ctx, constraints.KeyRefreshToken, token)
}

func (s *Session) SetTempToken(ctx context.Context, token string) error {
	return s.store.Set(ctx, constraints.KeyTempToken, token)
}

// User returns the stored user snapshot, or nil when absent or unreadable.
func (s *Session) User(ctx context.Context) *v1.User {
	raw := s.get(ctx, constraints.KeyUser)
	if raw == "" {
		return nil
	}
	var u v1.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		logger.Warn("stored user is not valid json", zap.Error(err))
		return nil
	}
	return &u
}

func (s *Session) SetUser(ctx context.Context, u *v1.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, constraints.KeyUser, string(b))
}

// SaveLogin persists the result of a successful login and drops any pending
// two-factor token.
func (s *Session) SaveLogin(ctx context.Context, res *v1.LoginResult) error {
	if err := s.SetAccessToken(ctx, res.AccessToken); err != nil {
		return err
	}
	if res.RefreshToken != "" {
		if err := s.SetRefreshToken(ctx, res.RefreshToken); err != nil {
			return err
		}
	}
	if res.User != nil {
		if err := s.SetUser(ctx, res.User); err != nil {
			return err
		}
	}
	return s.store.Remove(ctx, constraints.KeyTempToken)
}

// Clear removes every credential key.
func (s *Session) Clear(ctx context.Context) error {
	return s.store.Remove(ctx,
		constraints.KeyAccessToken,
		constraints.KeyRefreshToken,
		constraints.KeyUser,
		constraints.KeyTempToken,
	)
}

// IsAuthenticated is true when both an access token and a user are stored.
// Token expiry is deliberately not consulted.
func (s *Session) IsAuthenticated(ctx context.Context) bool {
	return s.AccessToken(ctx) != "" && s.User(ctx) != nil
}

// AccessTokenExpiry decodes the exp claim of the stored access token without
// verifying its signature. ok is false for opaque or exp-less tokens.
func (s *Session) AccessTokenExpiry(ctx context.Context) (exp time.Time, ok bool) {
	raw := s.AccessToken(ctx)
	if raw == "" {
		return time.Time{}, false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Expired reports whether the access token carries an exp in the past.
func (s *Session) Expired(ctx context.Context, now time.Time) bool {
	exp, ok := s.AccessTokenExpiry(ctx)
	return ok && !now.Before(exp)
}

// MarkPasswordChanged leaves a flag that forces a logout on the next start.
func (s *Session) MarkPasswordChanged(ctx context.Context) error {
	return s.store.Set(ctx, constraints.KeyPasswordChanged, "true")
}

// ConsumePasswordChanged reports and clears the password-changed flag.
func (s *Session) ConsumePasswordChanged(ctx context.Context) bool {
	if s.get(ctx, constraints.KeyPasswordChanged) != "true" {
		return false
	}
	if err := s.store.Remove(ctx, constraints.KeyPasswordChanged); err != nil {
		logger.Warn("failed to clear password-changed flag", zap.Error(err))
	}
	return true
}
