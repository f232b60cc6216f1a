package client

import (
	"context"
	"strings"

	"adminpanel/internal/endpoints"
	v1 "adminpanel/pkg/api/v1"
	"adminpanel/pkg/logger"

	"go.uber.org/zap"
)

// noRefreshPaths never trigger a refresh on 401: they are unauthenticated or
// run their own credential flow.
var noRefreshPaths = []string{"/auth/login", "/auth/refresh", "/password"}

func refreshExcluded(endpoint string) bool {
	for _, p := range noRefreshPaths {
		if strings.Contains(endpoint, p) {
			return true
		}
	}
	return false
}

// shouldRefresh applies the 401 guard: skip excluded endpoints, and skip when
// no access token was ever stored (never logged in, as opposed to expired).
func (c *Client) shouldRefresh(ctx context.Context, endpoint string) bool {
	if refreshExcluded(endpoint) {
		return false
	}
	return c.session.AccessToken(ctx) != ""
}

// RefreshToken exchanges the stored refresh token for a new access token.
// Without a stored refresh token it returns false and leaves the store
// untouched; any other failure clears the session. It never returns an error.
// Concurrent callers share a single in-flight exchange.
func (c *Client) RefreshToken(ctx context.Context) bool {
	if c.session.RefreshToken(ctx) == "" {
		return false
	}

	// The shared exchange must not die with whichever caller started it.
	shared := context.WithoutCancel(ctx)
	v, _, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		// Read under the group so a rotation that just finished is seen.
		refreshToken := c.session.RefreshToken(shared)
		if refreshToken == "" {
			return false, nil
		}
		return c.exchange(shared, refreshToken), nil
	})
	ok := v.(bool)
	c.observer.RecordRefresh(ok)
	return ok
}

func (c *Client) exchange(ctx context.Context, refreshToken string) bool {
	res, err := Decode[v1.RefreshResult](c.Post(ctx, endpoints.AuthRefresh, map[string]string{
		"refreshToken": refreshToken,
	}))
	if err != nil || !res.Success || res.Data.AccessToken == "" {
		if err != nil {
			logger.Warn("token refresh failed", zap.Error(err))
		} else {
			logger.Warn("token refresh rejected", zap.String("message", res.Message))
		}
		c.clear(ctx)
		return false
	}

	if err := c.session.SetAccessToken(ctx, res.Data.AccessToken); err != nil {
		logger.Warn("failed to persist refreshed token", zap.Error(err))
		c.clear(ctx)
		return false
	}
	if res.Data.RefreshToken != "" {
		if err := c.session.SetRefreshToken(ctx, res.Data.RefreshToken); err != nil {
			logger.Warn("failed to persist rotated refresh token", zap.Error(err))
		}
	}
	if res.Data.User != nil {
		if err := c.session.SetUser(ctx, res.Data.User); err != nil {
			logger.Warn("failed to persist refreshed user", zap.Error(err))
		}
	}
	return true
}

// Logout clears stored credentials. Telling the backend is left to the auth
// service.
func (c *Client) Logout(ctx context.Context) error {
	return c.session.Clear(ctx)
}

func (c *Client) clear(ctx context.Context) {
	if err := c.session.Clear(ctx); err != nil {
		logger.Warn("failed to clear session", zap.Error(err))
	}
}

// expire ends an unrecoverable session and hands control to the login flow.
func (c *Client) expire(ctx context.Context) {
	c.clear(ctx)
	if c.onExpired != nil {
		c.onExpired()
	}
}
