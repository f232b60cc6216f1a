package resource

import (
	"context"
	"time"

	"adminpanel/internal/notify"
	"adminpanel/internal/service"
	v1 "adminpanel/pkg/api/v1"
)

var (
	verificationsKey = Key{"face-verifications"}
	pendingKey       = Key{"face-verifications", "pending"}
)

// VerificationQueue is the face verification review screen: a polled pending
// queue plus approve/reject.
type VerificationQueue struct {
	svc      *service.FaceVerificationService
	cache    *QueryCache
	notifier notify.Notifier
	policy   Policy
	interval time.Duration
}

func NewVerificationQueue(svc *service.FaceVerificationService, cache *QueryCache, n notify.Notifier, interval time.Duration) *VerificationQueue {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &VerificationQueue{svc: svc, cache: cache, notifier: n, policy: QueuePolicy, interval: interval}
}

func (q *VerificationQueue) load(ctx context.Context) (*v1.Response[v1.Page[v1.FaceVerification]], error) {
	return q.svc.Pending(ctx, service.ListParams{})
}

func (q *VerificationQueue) Pending(ctx context.Context) (*v1.Response[v1.Page[v1.FaceVerification]], error) {
	return Fetch(ctx, q.cache, pendingKey, q.policy, q.load)
}

// Watch polls the queue until ctx is done.
func (q *VerificationQueue) Watch(ctx context.Context, onUpdate func(*v1.Response[v1.Page[v1.FaceVerification]], error)) {
	Poll(ctx, q.cache, pendingKey, q.policy, q.interval, q.load, onUpdate)
}

func (q *VerificationQueue) Approve(ctx context.Context, id string) (*v1.Response[v1.FaceVerification], error) {
	return Mutate(ctx, q.notifier, Copy{
		Success: "Verification approved successfully",
		Failure: "Failed to approve verification. Please try again.",
	}, func(ctx context.Context) (*v1.Response[v1.FaceVerification], error) {
		return q.svc.Approve(ctx, id)
	}, q.invalidate)
}

func (q *VerificationQueue) Reject(ctx context.Context, id, reason string) (*v1.Response[v1.FaceVerification], error) {
	return Mutate(ctx, q.notifier, Copy{
		Success: "Verification rejected",
		Failure: "Failed to reject verification. Please try again.",
	}, func(ctx context.Context) (*v1.Response[v1.FaceVerification], error) {
		return q.svc.Reject(ctx, id, reason)
	}, q.invalidate)
}

func (q *VerificationQueue) invalidate(v1.FaceVerification) {
	q.cache.Invalidate(verificationsKey)
}
