package resource

import (
	"context"
	"encoding/json"

	"adminpanel/internal/notify"
	"adminpanel/internal/service"
	v1 "adminpanel/pkg/api/v1"
)

var (
	adminsKey     = Key{"admins"}
	adminsListKey = Key{"admins", "list"}
)

func adminDetailKey(id string) Key {
	return Key{"admins", "detail", id}
}

// Admins drives the admin management screen: a cached paginated list, cached
// detail lookups and toasting mutations.
type Admins struct {
	svc      *service.AdminService
	cache    *QueryCache
	notifier notify.Notifier
	List     *Paginated[v1.Admin]
}

func NewAdmins(svc *service.AdminService, cache *QueryCache, n notify.Notifier, params service.ListParams) *Admins {
	a := &Admins{svc: svc, cache: cache, notifier: n}
	a.List = NewPaginated[v1.Admin](a.fetchPage, params, func(ad v1.Admin) string { return ad.ID },
		WithErrorToast[v1.Admin](n, "Error loading admins"))
	return a
}

func (a *Admins) fetchPage(ctx context.Context, p service.ListParams) (*v1.Response[v1.Page[v1.Admin]], error) {
	key := append(append(Key{}, adminsListKey...), p.Key()...)
	return Fetch(ctx, a.cache, key, a.cache.Policy(), func(ctx context.Context) (*v1.Response[v1.Page[v1.Admin]], error) {
		return a.svc.List(ctx, p)
	})
}

func (a *Admins) Detail(ctx context.Context, id string) (*v1.Response[v1.Admin], error) {
	return Fetch(ctx, a.cache, adminDetailKey(id), a.cache.Policy(), func(ctx context.Context) (*v1.Response[v1.Admin], error) {
		return a.svc.Get(ctx, id)
	})
}

// reload marks the cached lists stale and refetches the visible page.
func (a *Admins) reload(ctx context.Context) {
	a.cache.Invalidate(adminsListKey)
	_ = a.List.Refresh(ctx)
}

func (a *Admins) Create(ctx context.Context, body any) (*v1.Response[v1.Admin], error) {
	res, err := Mutate(ctx, a.notifier, Copy{
		Success: "Admin created successfully",
		Failure: "Failed to create admin. Please try again.",
	}, func(ctx context.Context) (*v1.Response[v1.Admin], error) {
		return a.svc.Create(ctx, body)
	}, nil)
	if err == nil {
		a.reload(ctx)
	}
	return res, err
}

func (a *Admins) Update(ctx context.Context, id string, body any) (*v1.Response[v1.Admin], error) {
	return Mutate(ctx, a.notifier, Copy{
		Success: "Admin updated successfully",
		Failure: "Failed to update admin. Please try again.",
	}, func(ctx context.Context) (*v1.Response[v1.Admin], error) {
		return a.svc.Update(ctx, id, body)
	}, func(ad v1.Admin) {
		a.afterChange(id, ad)
	})
}

func (a *Admins) ToggleStatus(ctx context.Context, id string) (*v1.Response[v1.Admin], error) {
	return Mutate(ctx, a.notifier, Copy{
		Success: "Admin status updated successfully",
		Failure: "Failed to update admin status. Please try again.",
	}, func(ctx context.Context) (*v1.Response[v1.Admin], error) {
		return a.svc.ToggleStatus(ctx, id)
	}, func(ad v1.Admin) {
		a.afterChange(id, ad)
	})
}

func (a *Admins) Delete(ctx context.Context, id string) error {
	_, err := Mutate(ctx, a.notifier, Copy{
		Success: "Admin deleted successfully",
		Failure: "Failed to delete admin. Please try again.",
	}, func(ctx context.Context) (*v1.Response[json.RawMessage], error) {
		return a.svc.Delete(ctx, id)
	}, func(json.RawMessage) {
		a.List.Remove(id)
		a.cache.Remove(adminDetailKey(id))
		a.cache.Invalidate(adminsListKey)
	})
	return err
}

func (a *Admins) afterChange(id string, ad v1.Admin) {
	if ad.ID != "" {
		a.List.Patch(ad)
	}
	a.cache.Invalidate(adminsListKey)
	a.cache.Invalidate(adminDetailKey(id))
}

// InvalidateAll drops every cached admin query.
func (a *Admins) InvalidateAll() {
	a.cache.Invalidate(adminsKey)
}
