package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"adminpanel/client"
	"adminpanel/internal/devserver"
	"adminpanel/internal/middleware"
	"adminpanel/internal/service"
	"adminpanel/internal/session"
	"adminpanel/pkg/constraints"
	"adminpanel/pkg/logger"

	"github.com/gin-gonic/gin"
)

func init() {
	logger.InitLogger("test")
	gin.SetMode(gin.TestMode)
}

type harness struct {
	srv      *httptest.Server
	client   *client.Client
	svcs     *service.Services
	expired  atomic.Int32
	accounts *devserver.Accounts
}

func newHarness(t *testing.T, limiter *middleware.RateLimiter) *harness {
	t.Helper()
	h := &harness{accounts: devserver.DefaultAccounts()}
	r := RegisterRoutes(RouterConfig{
		Tokens:   devserver.NewTokenIssuer(session.NewMemoryStore(), "test-key", 0, 0),
		Accounts: h.accounts,
		Admins:   devserver.DefaultAdmins(12, time.Now()),
		Limiter:  limiter,
		BasePath: "/admin",
	})
	h.srv = httptest.NewServer(r)
	t.Cleanup(h.srv.Close)

	h.client = client.New(
		client.Config{BaseURL: h.srv.URL + "/admin", Timeout: 2 * time.Second},
		session.New(session.NewMemoryStore()),
		client.WithSessionExpired(func() { h.expired.Add(1) }),
	)
	h.svcs = service.NewServices(h.client)
	return h
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	res, err := h.svcs.Auth.Login(context.Background(), devserver.SuperAdminEmail, devserver.SuperAdminPassword)
	if err != nil || !res.Success {
		t.Fatalf("Login: %+v, %v", res, err)
	}
}

func TestRouter_LoginAndListAdmins(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.login(t)

	if !h.client.Session().IsAuthenticated(ctx) {
		t.Fatal("session should hold tokens after login")
	}
	if u := h.client.Session().User(ctx); u == nil || u.Email != devserver.SuperAdminEmail {
		t.Errorf("stored user = %+v", u)
	}

	res, err := h.svcs.Admins.List(ctx, service.ListParams{Page: 2, Limit: 5})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !res.Success || len(res.Data.Items) != 5 {
		t.Fatalf("unexpected page %+v", res)
	}
	if p := res.Data.Pagination; p.Total != 12 || p.TotalPages != 3 || !p.HasNextPage || !p.HasPrevPage {
		t.Errorf("pagination = %+v", p)
	}
}

func TestRouter_AdminLifecycle(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.login(t)

	created, err := h.svcs.Admins.Create(ctx, map[string]string{"name": "Ops", "email": "ops@example.com"})
	if err != nil || created.Data.ID == "" {
		t.Fatalf("Create: %+v, %v", created, err)
	}
	_, err = h.svcs.Admins.Create(ctx, map[string]string{"name": "Ops", "email": "ops@example.com"})
	if client.TypeOf(err) != constraints.UnknownError {
		t.Errorf("duplicate create: type = %v, err = %v", client.TypeOf(err), err)
	}

	toggled, err := h.svcs.Admins.ToggleStatus(ctx, created.Data.ID)
	if err != nil || toggled.Data.Status != "inactive" {
		t.Errorf("ToggleStatus: %+v, %v", toggled, err)
	}
	if _, err := h.svcs.Admins.Delete(ctx, created.Data.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := h.svcs.Admins.Get(ctx, created.Data.ID); !client.IsType(err, constraints.NotFoundError) {
		t.Errorf("Get after delete: %v", err)
	}
}

func TestRouter_ExpiredAccessTokenIsRefreshed(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.login(t)

	sess := h.client.Session()
	oldRefresh := sess.RefreshToken(ctx)
	if err := sess.SetAccessToken(ctx, "not-a-valid-token"); err != nil {
		t.Fatal(err)
	}

	res, err := h.svcs.Auth.Profile(ctx)
	if err != nil || res.Data.Email != devserver.SuperAdminEmail {
		t.Fatalf("Profile after refresh: %+v, %v", res, err)
	}
	if sess.AccessToken(ctx) == "not-a-valid-token" {
		t.Error("access token should be replaced")
	}
	if sess.RefreshToken(ctx) == oldRefresh {
		t.Error("refresh token should rotate")
	}
	if h.expired.Load() != 0 {
		t.Error("session should not expire")
	}
}

func TestRouter_RevokedSessionExpires(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.login(t)

	sess := h.client.Session()
	stale := sess.RefreshToken(ctx)
	// Rotating once from another device makes the stored token stale.
	if !h.client.RefreshToken(ctx) {
		t.Fatal("first refresh should succeed")
	}
	if err := sess.SetRefreshToken(ctx, stale); err != nil {
		t.Fatal(err)
	}
	if err := sess.SetAccessToken(ctx, "garbage"); err != nil {
		t.Fatal(err)
	}

	_, err := h.svcs.Dashboard.Stats(ctx)
	if !client.IsType(err, constraints.AuthenticationError) {
		t.Fatalf("expected authentication error, got %v", err)
	}
	if h.expired.Load() != 1 {
		t.Errorf("expired callbacks = %d, want 1", h.expired.Load())
	}
	if sess.IsAuthenticated(ctx) {
		t.Error("session should be cleared")
	}
}

func TestRouter_TwoFactorLogin(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	res, err := h.svcs.Auth.Login(ctx, devserver.TwoFactorEmail, devserver.TwoFactorPassword)
	if err != nil || !res.Data.RequiresTwoFactor {
		t.Fatalf("Login: %+v, %v", res, err)
	}
	if h.client.Session().IsAuthenticated(ctx) {
		t.Fatal("no tokens before the second factor")
	}

	if _, err := h.svcs.Auth.VerifyTwoFactor(ctx, "000000"); !client.IsType(err, constraints.ValidationError) {
		t.Errorf("wrong code: %v", err)
	}
	if _, err := h.svcs.Auth.VerifyTwoFactor(ctx, DevCode); err != nil {
		t.Fatalf("VerifyTwoFactor: %v", err)
	}
	if !h.client.Session().IsAuthenticated(ctx) {
		t.Error("tokens should be stored after verification")
	}
}

func TestRouter_ChangePasswordForcesLogin(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.login(t)

	res, err := h.svcs.Auth.ChangePassword(ctx, service.ChangePasswordRequest{
		CurrentPassword: devserver.SuperAdminPassword,
		NewPassword:     "changed123",
		ConfirmPassword: "changed123",
	})
	if err != nil || !res.Success {
		t.Fatalf("ChangePassword: %+v, %v", res, err)
	}
	sess := h.client.Session()
	if sess.IsAuthenticated(ctx) || !sess.ConsumePasswordChanged(ctx) {
		t.Error("session should be cleared and flagged")
	}
	if _, err := h.svcs.Auth.Login(ctx, devserver.SuperAdminEmail, devserver.SuperAdminPassword); !client.IsType(err, constraints.AuthenticationError) {
		t.Errorf("old password should fail, got %v", err)
	}
	if res, err := h.svcs.Auth.Login(ctx, devserver.SuperAdminEmail, "changed123"); err != nil || !res.Success {
		t.Errorf("new password: %+v, %v", res, err)
	}
}

func TestRouter_AnalyticsSeries(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.login(t)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	res, err := h.svcs.Dashboard.Revenue(ctx, service.AnalyticsQuery{
		Range: constraints.RangeDaily,
		Start: start,
		End:   start.AddDate(0, 0, 9),
	})
	if err != nil {
		t.Fatalf("Revenue: %v", err)
	}
	if n := len(res.Data.Points); n != 10 {
		t.Errorf("points = %d, want 10", n)
	}
	if res.Data.Points[0].Category != "revenue" {
		t.Errorf("category = %q", res.Data.Points[0].Category)
	}
}

func TestRouter_LogoutRevokesRefreshToken(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.login(t)

	refresh := h.client.Session().RefreshToken(ctx)
	if err := h.svcs.Auth.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := h.client.Session().SetRefreshToken(ctx, refresh); err != nil {
		t.Fatal(err)
	}
	if h.client.RefreshToken(ctx) {
		t.Error("revoked refresh token should be rejected")
	}
}

func TestRouter_LoginIsRateLimited(t *testing.T) {
	h := newHarness(t, middleware.NewRateLimiter(nil, 1, ""))
	ctx := context.Background()

	_, _ = h.svcs.Auth.Login(ctx, "nobody@example.com", "x")
	_, err := h.svcs.Auth.Login(ctx, "nobody@example.com", "x")
	apiErr, ok := client.AsAPIError(err)
	if !ok || apiErr.Status != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %v", err)
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	h := newHarness(t, nil)
	for _, path := range []string{"/health", "/metrics"} {
		res, err := http.Get(h.srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Errorf("%s: status %d", path, res.StatusCode)
		}
	}
}
