// Package devserver is an in-process stand-in for the admin backend. It speaks
// both response envelopes, issues real JWTs and rotates refresh tokens, which
// is enough to exercise the client end to end.
package devserver

import (
	"context"
	"errors"
	"sync"
	"time"

	"adminpanel/internal/middleware"
	"adminpanel/internal/session"
	v1 "adminpanel/pkg/api/v1"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
	TempTokenTTL    = 5 * time.Minute
	Issuer          = "adminpanel-devserver"

	refreshKeyPrefix = "refresh:"
)

const (
	kindAccess  = "access"
	kindRefresh = "refresh"
	kindTemp    = "2fa"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrSessionExpired     = errors.New("session expired")
)

type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"sub"`
	Role   string `json:"role"`
	Kind   string `json:"kind"`
	jwt.RegisteredClaims
}

// TokenIssuer signs access, refresh and two-factor tokens. The current refresh
// token of each user is kept in an allow-list so a rotated token cannot be
// replayed.
type TokenIssuer struct {
	// rotateMu serializes the check-and-rotate in Refresh.
	rotateMu   sync.Mutex
	store      session.Store
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(store session.Store, signingKey string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = AccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = RefreshTokenTTL
	}
	return &TokenIssuer{
		store:      store,
		key:        []byte(signingKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (t *TokenIssuer) sign(u v1.User, kind string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    Issuer,
			ID:        uuid.New().String(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
}

func (t *TokenIssuer) parse(token, kind string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return t.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, ErrTokenInvalid
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Kind != kind {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Issue mints a fresh token pair for u and records the refresh token.
func (t *TokenIssuer) Issue(ctx context.Context, u v1.User) (*v1.LoginResult, error) {
	access, err := t.sign(u, kindAccess, t.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := t.sign(u, kindRefresh, t.refreshTTL)
	if err != nil {
		return nil, err
	}
	if err := t.store.Set(ctx, refreshKeyPrefix+u.ID, refresh); err != nil {
		return nil, err
	}
	user := u
	return &v1.LoginResult{AccessToken: access, RefreshToken: refresh, User: &user}, nil
}

// TempToken starts a two-factor login for u.
func (t *TokenIssuer) TempToken(u v1.User) (string, error) {
	return t.sign(u, kindTemp, TempTokenTTL)
}

// ParseTemp returns the user id a temp token was issued for.
func (t *TokenIssuer) ParseTemp(token string) (string, error) {
	claims, err := t.parse(token, kindTemp)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// Refresh rotates the pair behind refreshToken. lookup resolves the current
// user record so profile edits show up in the refreshed user.
func (t *TokenIssuer) Refresh(ctx context.Context, refreshToken string, lookup func(id string) (v1.User, bool)) (*v1.LoginResult, error) {
	claims, err := t.parse(refreshToken, kindRefresh)
	if err != nil {
		return nil, err
	}
	t.rotateMu.Lock()
	defer t.rotateMu.Unlock()
	stored, ok, err := t.store.Get(ctx, refreshKeyPrefix+claims.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSessionExpired
	}
	if stored != refreshToken {
		return nil, ErrTokenInvalid
	}
	u, ok := lookup(claims.UserID)
	if !ok {
		return nil, ErrSessionExpired
	}
	return t.Issue(ctx, u)
}

// Revoke drops the allow-listed refresh token of the token's owner. Unknown
// tokens are ignored.
func (t *TokenIssuer) Revoke(ctx context.Context, refreshToken string) error {
	claims, err := t.parse(refreshToken, kindRefresh)
	if err != nil {
		return nil
	}
	return t.store.Remove(ctx, refreshKeyPrefix+claims.UserID)
}

// RevokeUser ends every session of userID.
func (t *TokenIssuer) RevokeUser(ctx context.Context, userID string) error {
	return t.store.Remove(ctx, refreshKeyPrefix+userID)
}

func (t *TokenIssuer) ParseAccess(token string) (*middleware.OperatorInfo, error) {
	claims, err := t.parse(token, kindAccess)
	if err != nil {
		return nil, err
	}
	return &middleware.OperatorInfo{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}
