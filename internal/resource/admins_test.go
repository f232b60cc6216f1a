package resource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"adminpanel/client"
	"adminpanel/internal/notify"
	"adminpanel/internal/service"
	"adminpanel/internal/session"
	v1 "adminpanel/pkg/api/v1"
	"adminpanel/pkg/constraints"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// adminBackend is a tiny in-memory admins API in the statusCode shape.
type adminBackend struct {
	mu        sync.Mutex
	admins    []gin.H
	listHits  atomic.Int32
	failWrite bool
}

func (b *adminBackend) router() *gin.Engine {
	r := gin.New()
	g := r.Group("/admin")
	g.GET("/admins", func(c *gin.Context) {
		b.listHits.Add(1)
		b.mu.Lock()
		defer b.mu.Unlock()
		c.JSON(http.StatusOK, gin.H{"statusCode": 200, "data": gin.H{
			"admins":     b.admins,
			"pagination": gin.H{"page": 1, "limit": 10, "total": len(b.admins), "totalPages": 1},
		}})
	})
	g.GET("/admins/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"statusCode": 200, "data": gin.H{"id": c.Param("id"), "name": "Detail"}})
	})
	g.POST("/admins", func(c *gin.Context) {
		if b.failWrite {
			c.JSON(http.StatusBadRequest, gin.H{"message": "email taken"})
			return
		}
		b.mu.Lock()
		b.admins = append(b.admins, gin.H{"id": "new", "name": "New"})
		b.mu.Unlock()
		c.JSON(http.StatusCreated, gin.H{"statusCode": 201, "data": gin.H{"id": "new", "name": "New"}})
	})
	g.PATCH("/admins/:id/toggle-status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"statusCode": 200, "data": gin.H{"id": c.Param("id"), "name": "One", "status": "inactive"}})
	})
	g.DELETE("/admins/:id", func(c *gin.Context) {
		if b.failWrite {
			c.JSON(http.StatusInternalServerError, gin.H{})
			return
		}
		c.JSON(http.StatusOK, gin.H{"statusCode": 200, "message": "deleted"})
	})
	return r
}

func newServices(t *testing.T, h http.Handler) *service.Services {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := client.New(client.Config{BaseURL: srv.URL + "/admin", Timeout: 2 * time.Second}, session.New(session.NewMemoryStore()))
	return service.NewServices(c)
}

func TestAdmins_ListIsCached(t *testing.T) {
	b := &adminBackend{admins: []gin.H{{"id": "1", "name": "One"}}}
	svcs := newServices(t, b.router())
	a := NewAdmins(svcs.Admins, NewQueryCache(DefaultPolicy, nil), &notify.Recorder{}, service.ListParams{Page: 1, Limit: 10})
	ctx := context.Background()

	if err := a.List.Fetch(ctx); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if err := a.List.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if b.listHits.Load() != 1 {
		t.Errorf("list hits = %d, want 1 (second read from cache)", b.listHits.Load())
	}
	if items := a.List.State().Items; len(items) != 1 || items[0].ID != "1" {
		t.Errorf("unexpected items %+v", items)
	}
}

func TestAdmins_CreateInvalidatesAndToasts(t *testing.T) {
	b := &adminBackend{admins: []gin.H{{"id": "1", "name": "One"}}}
	rec := &notify.Recorder{}
	a := NewAdmins(newServices(t, b.router()).Admins, NewQueryCache(DefaultPolicy, nil), rec, service.ListParams{Page: 1})
	ctx := context.Background()
	_ = a.List.Fetch(ctx)

	res, err := a.Create(ctx, map[string]string{"name": "New"})
	if err != nil || res.Data.ID != "new" {
		t.Fatalf("Create: %+v, %v", res, err)
	}
	toast, _ := rec.Last()
	if toast.Description != "Admin created successfully" || toast.Variant != constraints.VariantDefault {
		t.Errorf("unexpected toast %+v", toast)
	}
	if b.listHits.Load() != 2 {
		t.Errorf("list should refetch after create, hits = %d", b.listHits.Load())
	}
	if len(a.List.State().Items) != 2 {
		t.Errorf("new admin should be listed, got %+v", a.List.State().Items)
	}
}

func TestAdmins_FailureToast(t *testing.T) {
	b := &adminBackend{failWrite: true}
	rec := &notify.Recorder{}
	a := NewAdmins(newServices(t, b.router()).Admins, NewQueryCache(DefaultPolicy, nil), rec, service.ListParams{})

	_, err := a.Create(context.Background(), map[string]string{})
	if !client.IsType(err, constraints.ValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
	toast, ok := rec.Last()
	if !ok || toast.Variant != constraints.VariantDestructive || toast.Description != "Failed to create admin. Please try again." {
		t.Errorf("unexpected toast %+v", toast)
	}
	if b.listHits.Load() != 0 {
		t.Error("failed create must not refetch")
	}
}

func TestAdmins_ToggleAndDeletePatchList(t *testing.T) {
	b := &adminBackend{admins: []gin.H{{"id": "1", "name": "One", "status": "active"}, {"id": "2", "name": "Two"}}}
	cache := NewQueryCache(DefaultPolicy, nil)
	a := NewAdmins(newServices(t, b.router()).Admins, cache, &notify.Recorder{}, service.ListParams{})
	ctx := context.Background()
	_ = a.List.Fetch(ctx)
	if _, err := a.Detail(ctx, "2"); err != nil {
		t.Fatal(err)
	}

	if _, err := a.ToggleStatus(ctx, "1"); err != nil {
		t.Fatalf("ToggleStatus: %v", err)
	}
	if got := a.List.State().Items[0].Status; got != "inactive" {
		t.Errorf("status = %q, want inactive", got)
	}

	if err := a.Delete(ctx, "2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if items := a.List.State().Items; len(items) != 1 || items[0].ID != "1" {
		t.Errorf("unexpected items after delete %+v", items)
	}
	if _, ok := cache.Peek(adminDetailKey("2")); ok {
		t.Error("detail cache should be dropped after delete")
	}
}

func TestMutate_RejectedEnvelope(t *testing.T) {
	rec := &notify.Recorder{}
	_, err := Mutate(context.Background(), rec, Copy{}, func(context.Context) (*v1.Response[v1.Admin], error) {
		return &v1.Response[v1.Admin]{Success: false, Message: "Quota exceeded"}, nil
	}, func(v1.Admin) { t.Error("onSuccess must not run") })

	if err == nil {
		t.Fatal("expected ErrRejected")
	}
	toast, _ := rec.Last()
	if toast.Description != "Quota exceeded" || toast.Variant != constraints.VariantDestructive {
		t.Errorf("unexpected toast %+v", toast)
	}
}

func TestMutate_CancelledIsSilent(t *testing.T) {
	rec := &notify.Recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := client.New(client.Config{BaseURL: "http://127.0.0.1:1/admin"}, session.New(session.NewMemoryStore()))

	_, err := Mutate(ctx, rec, Copy{Failure: "x"}, func(ctx context.Context) (*v1.Response[v1.Admin], error) {
		return client.Decode[v1.Admin](c.Post(ctx, "/admins", nil))
	}, nil)
	if !client.IsCanceled(err) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if len(rec.Toasts()) != 0 {
		t.Error("cancellation must not toast")
	}
}

func TestVerificationQueue_ApproveInvalidatesQueue(t *testing.T) {
	var pendingHits atomic.Int32
	r := gin.New()
	r.GET("/admin/face-verifications/pending", func(c *gin.Context) {
		pendingHits.Add(1)
		c.JSON(http.StatusOK, gin.H{"success": true, "data": []gin.H{{"id": "v1", "status": "pending"}}})
	})
	r.POST("/admin/face-verifications/:id/approve", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"statusCode": 200, "data": gin.H{"id": c.Param("id"), "status": "approved"}})
	})
	rec := &notify.Recorder{}
	q := NewVerificationQueue(newServices(t, r).FaceVerifications, NewQueryCache(DefaultPolicy, nil), rec, 0)
	ctx := context.Background()

	res, err := q.Pending(ctx)
	if err != nil || len(res.Data.Items) != 1 {
		t.Fatalf("Pending: %+v, %v", res, err)
	}
	_, _ = q.Pending(ctx)
	if pendingHits.Load() != 1 {
		t.Errorf("queue should be served fresh from cache, hits = %d", pendingHits.Load())
	}

	if _, err := q.Approve(ctx, "v1"); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if toast, _ := rec.Last(); toast.Description != "Verification approved successfully" {
		t.Errorf("unexpected toast %+v", toast)
	}
	_, _ = q.Pending(ctx)
	if pendingHits.Load() != 2 {
		t.Errorf("queue should refetch after approve, hits = %d", pendingHits.Load())
	}
}

func TestPasswordForms_InlineErrors(t *testing.T) {
	r := gin.New()
	r.POST("/admin/password/verify-otp", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid or expired OTP"})
	})
	r.POST("/admin/password/forgot-password", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"statusCode": 200, "message": "OTP sent"})
	})
	forms := NewPasswordForms(newServices(t, r).Auth)
	ctx := context.Background()

	if msg := forms.VerifyOTP(ctx, "a@b.c", "000"); msg != "Invalid or expired OTP" {
		t.Errorf("VerifyOTP = %q", msg)
	}
	if msg := forms.ForgotPassword(ctx, "a@b.c"); msg != "" {
		t.Errorf("ForgotPassword = %q, want success", msg)
	}
	if msg := forms.ChangePassword(ctx, service.ChangePasswordRequest{NewPassword: "a", ConfirmPassword: "b"}); msg != "Passwords do not match" {
		t.Errorf("ChangePassword = %q", msg)
	}
}

func TestAdmins_RejectedListIsRetried(t *testing.T) {
	var hits atomic.Int32
	r := gin.New()
	r.GET("/admin/admins", func(c *gin.Context) {
		if hits.Add(1) == 1 {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "db down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
			"admins":     []gin.H{{"id": "1", "name": "One"}},
			"pagination": gin.H{"page": 1, "limit": 10, "total": 1, "totalPages": 1},
		}})
	})
	rec := &notify.Recorder{}
	a := NewAdmins(newServices(t, r).Admins, NewQueryCache(DefaultPolicy, nil), rec, service.ListParams{Page: 1})
	ctx := context.Background()

	if err := a.List.Fetch(ctx); err == nil {
		t.Fatal("rejected list should surface an error")
	}
	if got := a.List.State().Err; got != "db down" {
		t.Errorf("Err = %q, want db down", got)
	}

	if err := a.List.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("list hits = %d, want 2 (retry must reach the backend)", hits.Load())
	}
	if items := a.List.State().Items; len(items) != 1 || items[0].ID != "1" {
		t.Errorf("unexpected items %+v", items)
	}
}
