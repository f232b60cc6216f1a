package service

import (
	"context"
	"encoding/json"

	"adminpanel/client"
	"adminpanel/internal/endpoints"
	v1 "adminpanel/pkg/api/v1"
)

// API is the subset of *client.Client the services call.
type API interface {
	Get(ctx context.Context, endpoint string, opts ...client.CallOption) (*v1.Response[json.RawMessage], error)
	Post(ctx context.Context, endpoint string, body any, opts ...client.CallOption) (*v1.Response[json.RawMessage], error)
	Put(ctx context.Context, endpoint string, body any, opts ...client.CallOption) (*v1.Response[json.RawMessage], error)
	Patch(ctx context.Context, endpoint string, body any, opts ...client.CallOption) (*v1.Response[json.RawMessage], error)
	Delete(ctx context.Context, endpoint string, opts ...client.CallOption) (*v1.Response[json.RawMessage], error)
	Upload(ctx context.Context, endpoint string, form client.Form, opts ...client.CallOption) (*v1.Response[json.RawMessage], error)
}

// Resource is the CRUD surface shared by every list/detail backend family.
// Each method performs exactly one client call and returns its error as is.
type Resource[T any] struct {
	api        API
	collection string
	item       string
	opts       []client.CallOption
}

// NewResource binds a collection path ("/faqs") and an item template
// ("/faqs/:id").
func NewResource[T any](api API, collection, item string, opts ...client.CallOption) *Resource[T] {
	return &Resource[T]{api: api, collection: collection, item: item, opts: opts}
}

func (r *Resource[T]) List(ctx context.Context, p ListParams) (*v1.Response[v1.Page[T]], error) {
	return client.Decode[v1.Page[T]](r.api.Get(ctx, withQuery(r.collection, p.Query()), r.opts...))
}

func (r *Resource[T]) Get(ctx context.Context, id string) (*v1.Response[T], error) {
	return client.Decode[T](r.api.Get(ctx, endpoints.ID(r.item, id), r.opts...))
}

func (r *Resource[T]) Create(ctx context.Context, body any) (*v1.Response[T], error) {
	return client.Decode[T](r.api.Post(ctx, r.collection, body, r.opts...))
}

func (r *Resource[T]) Update(ctx context.Context, id string, body any) (*v1.Response[T], error) {
	return client.Decode[T](r.api.Put(ctx, endpoints.ID(r.item, id), body, r.opts...))
}

func (r *Resource[T]) Delete(ctx context.Context, id string) (*v1.Response[json.RawMessage], error) {
	return r.api.Delete(ctx, endpoints.ID(r.item, id), r.opts...)
}

// patch sends a partial update to an item sub-path such as ":id/status".
func (r *Resource[T]) patch(ctx context.Context, tpl, id string, body any) (*v1.Response[T], error) {
	return client.Decode[T](r.api.Patch(ctx, endpoints.ID(tpl, id), body, r.opts...))
}
