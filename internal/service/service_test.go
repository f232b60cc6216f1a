package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"adminpanel/client"
	"adminpanel/internal/session"
	v1 "adminpanel/pkg/api/v1"
	"adminpanel/pkg/constraints"
	"adminpanel/pkg/logger"

	"github.com/gin-gonic/gin"
)

func init() {
	logger.InitLogger("test")
	gin.SetMode(gin.TestMode)
}

func newAPI(t *testing.T, r http.Handler, mock bool) *client.Client {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return client.New(client.Config{BaseURL: srv.URL + "/admin", Timeout: 2 * time.Second, UseMockData: mock},
		session.New(session.NewMemoryStore()))
}

// recorder captures "METHOD /path?query" for every request it sees.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) middleware(c *gin.Context) {
	r.mu.Lock()
	r.calls = append(r.calls, c.Request.Method+" "+c.Request.URL.RequestURI())
	r.mu.Unlock()
	c.Next()
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func TestListParams_Encode(t *testing.T) {
	tests := []struct {
		name   string
		params ListParams
		want   string
	}{
		{name: "page limit search", params: ListParams{Page: 2, Limit: 10, Search: "foo"}, want: "?page=2&limit=10&search=foo"},
		{name: "empty", params: ListParams{}, want: ""},
		{
			name: "fixed order regardless of field use",
			params: ListParams{
				SortOrder: "desc", SortBy: "name", EndDate: "2024-02-01", StartDate: "2024-01-01",
				Category: "c", Status: "active", Search: "s", Limit: 5, Page: 1,
			},
			want: "?page=1&limit=5&search=s&status=active&category=c&startDate=2024-01-01&endDate=2024-02-01&sortBy=name&sortOrder=desc",
		},
		{
			name:   "extra appended in order",
			params: ListParams{Page: 1, Extra: []Param{{"role", "editor"}, {"a", "1"}, {"skip", ""}}},
			want:   "?page=1&role=editor&a=1",
		},
		{name: "escaped", params: ListParams{Search: "a b&c"}, want: "?search=a+b%26c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.params.Encode(); got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResource_CRUD(t *testing.T) {
	rec := &recorder{}
	r := gin.New()
	r.Use(rec.middleware)
	r.GET("/admin/faqs", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"statusCode": 200, "data": gin.H{
			"faqs":       []gin.H{{"id": "1", "question": "q1"}, {"id": "2", "question": "q2"}},
			"pagination": gin.H{"page": 2, "limit": 2, "total": 6, "totalPages": 3, "hasNextPage": true, "hasPrevPage": true},
		}})
	})
	r.GET("/admin/faqs/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"id": c.Param("id"), "question": "q"}})
	})
	r.POST("/admin/faqs", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"statusCode": 201, "message": "FAQ created", "data": gin.H{"id": "3"}})
	})
	r.PUT("/admin/faqs/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"statusCode": 200, "data": gin.H{"id": c.Param("id"), "answer": "a"}})
	})
	r.DELETE("/admin/faqs/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"statusCode": 200, "message": "deleted", "data": nil})
	})

	svc := NewServices(newAPI(t, r, false))
	ctx := context.Background()

	list, err := svc.FAQs.List(ctx, ListParams{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list.Data.Items) != 2 || list.Data.Pagination.TotalPages != 3 || !list.Data.Pagination.HasNextPage {
		t.Errorf("unexpected page %+v", list.Data)
	}

	got, err := svc.FAQs.Get(ctx, "9")
	if err != nil || got.Data.ID != "9" {
		t.Fatalf("Get: %+v, %v", got, err)
	}
	created, err := svc.FAQs.Create(ctx, v1.FAQ{Question: "new"})
	if err != nil || created.Data.ID != "3" || created.Message != "FAQ created" {
		t.Fatalf("Create: %+v, %v", created, err)
	}
	updated, err := svc.FAQs.Update(ctx, "3", map[string]string{"answer": "a"})
	if err != nil || updated.Data.Answer != "a" {
		t.Fatalf("Update: %+v, %v", updated, err)
	}
	if _, err := svc.FAQs.Delete(ctx, "3"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	want := []string{
		"GET /admin/faqs?page=2&limit=2",
		"GET /admin/faqs/9",
		"POST /admin/faqs",
		"PUT /admin/faqs/3",
		"DELETE /admin/faqs/3",
	}
	calls := rec.list()
	if len(calls) != len(want) {
		t.Fatalf("calls = %v", calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, calls[i], want[i])
		}
	}
}

func TestResource_ErrorReturnedUnchanged(t *testing.T) {
	r := gin.New()
	r.GET("/admin/plans/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"statusCode": 404, "message": "Plan not found"})
	})
	svc := NewServices(newAPI(t, r, false))

	_, err := svc.Plans.Get(context.Background(), "x")
	apiErr, ok := client.AsAPIError(err)
	if !ok || apiErr.Type != constraints.NotFoundError || apiErr.Message != "Plan not found" {
		t.Errorf("unexpected error %v", err)
	}
}

func TestSubresourcePaths(t *testing.T) {
	rec := &recorder{}
	r := gin.New()
	r.Use(rec.middleware)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"id": "1"}})
	})
	svc := NewServices(newAPI(t, r, false))
	ctx := context.Background()

	_, _ = svc.Admins.ToggleStatus(ctx, "5")
	_, _ = svc.Campaigns.ToggleStatus(ctx, "6")
	_, _ = svc.Reports.UpdateStatus(ctx, "7", "resolved")
	_, _ = svc.Enquiries.Reply(ctx, "8", "thanks")
	_, _ = svc.Enquiries.UpdateStatus(ctx, "8", "closed")
	_, _ = svc.FaceVerifications.Pending(ctx, ListParams{Page: 1})
	_, _ = svc.FaceVerifications.Approve(ctx, "9")
	_, _ = svc.FaceVerifications.Reject(ctx, "9", "blurry")
	_, _ = svc.Locations.States(ctx, "in")
	_, _ = svc.Locations.Cities(ctx, "ka")
	_, _ = svc.Dashboard.Revenue(ctx, AnalyticsQuery{
		Range: constraints.RangeCustom,
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	})

	want := []string{
		"PATCH /admin/admins/5/toggle-status",
		"PATCH /admin/campaigns/6/toggle-status",
		"PATCH /admin/reports/7/status",
		"POST /admin/enquiries/8/reply",
		"PATCH /admin/enquiries/8/status",
		"GET /admin/face-verifications/pending?page=1",
		"POST /admin/face-verifications/9/approve",
		"POST /admin/face-verifications/9/reject",
		"GET /admin/countries/in/states",
		"GET /admin/states/ka/cities",
		"GET /admin/dashboard/analytics/revenue?range=custom&startDate=2024-01-01&endDate=2024-01-31",
	}
	calls := rec.list()
	if len(calls) != len(want) {
		t.Fatalf("calls = %v", calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, calls[i], want[i])
		}
	}
}

func failOnNetwork(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected network call %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	})
}

func TestAuthService_MockLogin(t *testing.T) {
	api := newAPI(t, failOnNetwork(t), true)
	auth := NewAuthService(api)
	ctx := context.Background()
	sess := api.Session()

	res, err := auth.Login(ctx, client.MockEmail, "wrong")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success || res.Message != "Invalid email or password" {
		t.Errorf("expected rejection, got %+v", res)
	}
	if sess.Store().(*session.MemoryStore).Len() != 0 {
		t.Error("nothing should be stored on rejection")
	}

	res, err = auth.Login(ctx, client.MockEmail, client.MockPassword)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success || res.Message != "Login successful" {
		t.Fatalf("expected success, got %+v", res)
	}
	if !sess.IsAuthenticated(ctx) {
		t.Error("session should be authenticated")
	}
	if sess.RefreshToken(ctx) == "" || sess.User(ctx).Email != client.MockEmail {
		t.Error("refresh token and user should be stored")
	}
}

func TestAuthService_TwoFactorFlow(t *testing.T) {
	var verifyBody string
	r := gin.New()
	r.POST("/admin/auth/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"statusCode": 200, "data": gin.H{"requiresTwoFactor": true, "tempToken": "tmp-1"}})
	})
	r.POST("/admin/auth/verify-2fa", func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		verifyBody = string(b)
		c.JSON(http.StatusOK, gin.H{"statusCode": 200, "message": "verified", "data": gin.H{
			"accessToken": "acc", "refreshToken": "ref", "user": gin.H{"id": "1", "email": "a@b.c"},
		}})
	})
	api := newAPI(t, r, false)
	auth := NewAuthService(api)
	ctx := context.Background()
	sess := api.Session()

	if _, err := auth.VerifyTwoFactor(ctx, "000000"); err != ErrNoTempToken {
		t.Errorf("expected ErrNoTempToken, got %v", err)
	}

	res, err := auth.Login(ctx, "a@b.c", "pw")
	if err != nil || !res.Data.RequiresTwoFactor {
		t.Fatalf("Login: %+v, %v", res, err)
	}
	if sess.TempToken(ctx) != "tmp-1" || sess.AccessToken(ctx) != "" {
		t.Fatal("only the temp token should be stored")
	}

	if _, err := auth.VerifyTwoFactor(ctx, "123456"); err != nil {
		t.Fatalf("VerifyTwoFactor: %v", err)
	}
	if verifyBody != `{"tempToken":"tmp-1","code":"123456"}` {
		t.Errorf("verify body = %s", verifyBody)
	}
	if sess.AccessToken(ctx) != "acc" || sess.TempToken(ctx) != "" || !sess.IsAuthenticated(ctx) {
		t.Error("login should complete and drop the temp token")
	}
}

func TestAuthService_ChangePasswordClearsSession(t *testing.T) {
	r := gin.New()
	r.POST("/admin/password/change-password", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password changed"})
	})
	api := newAPI(t, r, false)
	ctx := context.Background()
	sess := api.Session()
	_ = sess.SaveLogin(ctx, &v1.LoginResult{AccessToken: "a", RefreshToken: "r", User: &v1.User{ID: "1"}})

	res, err := NewAuthService(api).ChangePassword(ctx, ChangePasswordRequest{CurrentPassword: "x", NewPassword: "y", ConfirmPassword: "y"})
	if err != nil || !res.Success {
		t.Fatalf("ChangePassword: %+v, %v", res, err)
	}
	if sess.IsAuthenticated(ctx) || sess.RefreshToken(ctx) != "" {
		t.Error("session should be cleared")
	}
	if !sess.ConsumePasswordChanged(ctx) {
		t.Error("password-changed flag should be set")
	}
}

func TestAuthService_LogoutClearsEvenWhenBackendFails(t *testing.T) {
	r := gin.New()
	r.POST("/admin/auth/logout", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "boom"})
	})
	api := newAPI(t, r, false)
	ctx := context.Background()
	sess := api.Session()
	_ = sess.SaveLogin(ctx, &v1.LoginResult{AccessToken: "a", RefreshToken: "r", User: &v1.User{ID: "1"}})

	if err := NewAuthService(api).Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if sess.Store().(*session.MemoryStore).Len() != 0 {
		t.Error("credentials should be removed")
	}
}

func TestAuthService_ProfileUpdatesStoredUser(t *testing.T) {
	r := gin.New()
	r.GET("/admin/profile", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"id": "1", "name": "Fresh Name"}})
	})
	api := newAPI(t, r, false)
	ctx := context.Background()

	if _, err := NewAuthService(api).Profile(ctx); err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if u := api.Session().User(ctx); u == nil || u.Name != "Fresh Name" {
		t.Errorf("stored user = %+v", u)
	}
}

func TestAboutService_CreateWithImage(t *testing.T) {
	tests := []struct {
		name      string
		uploadOK  bool
		wantImage string
	}{
		{name: "upload merged", uploadOK: true, wantImage: "https://cdn/a.png"},
		{name: "upload failure keeps entity", uploadOK: false, wantImage: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/admin/about-us/sections", func(c *gin.Context) {
				c.JSON(http.StatusCreated, gin.H{"statusCode": 201, "data": gin.H{"id": "s1", "title": "Mission"}})
			})
			r.POST("/admin/about-us/sections/:id/image", func(c *gin.Context) {
				if !tt.uploadOK {
					c.JSON(http.StatusInternalServerError, gin.H{"message": "storage down"})
					return
				}
				c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"url": "https://cdn/a.png"}})
			})
			about := NewAboutService(newAPI(t, r, false))

			res, err := about.CreateSection(context.Background(), v1.AboutSection{Title: "Mission"}, &Image{Name: "a.png", Content: []byte("x")})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Data.ID != "s1" || res.Data.Image != tt.wantImage {
				t.Errorf("got %+v, want image %q", res.Data, tt.wantImage)
			}
		})
	}
}

func TestAboutService_CreateFailureSkipsUpload(t *testing.T) {
	uploaded := false
	r := gin.New()
	r.POST("/admin/about-us/team", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name required", "errors": gin.H{"name": "required"}})
	})
	r.POST("/admin/about-us/team/:id/image", func(c *gin.Context) {
		uploaded = true
		c.Status(http.StatusOK)
	})
	about := NewAboutService(newAPI(t, r, false))

	_, err := about.CreateTeamMember(context.Background(), v1.TeamMember{}, &Image{Name: "a.png"})
	if !client.IsType(err, constraints.ValidationError) {
		t.Errorf("expected validation error, got %v", err)
	}
	if uploaded {
		t.Error("upload must not run after a failed create")
	}
}

func TestServices_AnalyticsTimeout(t *testing.T) {
	slow := func(c *gin.Context) {
		select {
		case <-time.After(300 * time.Millisecond):
		case <-c.Request.Context().Done():
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{}})
	}
	r := gin.New()
	r.GET("/admin/dashboard/stats", slow)
	r.GET("/admin/dashboard/analytics/revenue", slow)
	r.GET("/admin/reports", slow)
	svc := NewServices(newAPI(t, r, false), WithAnalyticsTimeout(50*time.Millisecond))
	ctx := context.Background()

	if _, err := svc.Dashboard.Revenue(ctx, AnalyticsQuery{Range: constraints.RangeWeekly}); !client.IsType(err, constraints.TimeoutError) {
		t.Errorf("Revenue: expected timeout, got %v", err)
	}
	if _, err := svc.Reports.List(ctx, ListParams{Page: 1}); !client.IsType(err, constraints.TimeoutError) {
		t.Errorf("Reports.List: expected timeout, got %v", err)
	}
	// Stats keeps the client default.
	if _, err := svc.Dashboard.Stats(ctx); err != nil {
		t.Errorf("Stats: %v", err)
	}
}

func TestWithAnalyticsTimeout_IgnoresNonPositive(t *testing.T) {
	svc := NewServices(newAPI(t, gin.New(), false), WithAnalyticsTimeout(0))
	if svc.Dashboard.timeout != constraints.AnalyticsTimeout {
		t.Errorf("timeout = %v, want %v", svc.Dashboard.timeout, constraints.AnalyticsTimeout)
	}
}
