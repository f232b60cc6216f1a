// Package resource layers caching, pagination and user feedback over the
// services.
package resource

import (
	"context"
	"strings"
	"sync"
	"time"

	"adminpanel/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Key identifies a cached query, e.g. Key{"admins", "detail", "42"}.
type Key []string

func (k Key) String() string {
	return strings.Join(k, "/")
}

// HasPrefix reports whether k starts with every part of p.
func (k Key) HasPrefix(p Key) bool {
	if len(p) > len(k) {
		return false
	}
	for i := range p {
		if k[i] != p[i] {
			return false
		}
	}
	return true
}

// Policy sets how long a result is served without refetching and how long an
// unused entry is kept.
type Policy struct {
	FreshFor time.Duration
	GCAfter  time.Duration
}

var (
	DefaultPolicy = Policy{FreshFor: 5 * time.Minute, GCAfter: 10 * time.Minute}
	QueuePolicy   = Policy{FreshFor: 30 * time.Second, GCAfter: time.Minute}
)

type entry struct {
	key       Key
	value     any
	fetchedAt time.Time
	usedAt    time.Time
	gcAfter   time.Duration
	stale     bool
}

// QueryCache memoizes query results by key. Concurrent fetches of one key
// share a single call.
type QueryCache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	policy  Policy
	now     func() time.Time
	group   singleflight.Group
}

func NewQueryCache(policy Policy, now func() time.Time) *QueryCache {
	if now == nil {
		now = time.Now
	}
	if policy.FreshFor <= 0 {
		policy.FreshFor = DefaultPolicy.FreshFor
	}
	if policy.GCAfter <= 0 {
		policy.GCAfter = DefaultPolicy.GCAfter
	}
	return &QueryCache{
		entries: make(map[string]*entry),
		policy:  policy,
		now:     now,
	}
}

func (c *QueryCache) Policy() Policy {
	return c.policy
}

func (c *QueryCache) lookup(key Key, freshFor time.Duration) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok {
		return nil, false
	}
	now := c.now()
	e.usedAt = now
	if e.stale || now.Sub(e.fetchedAt) >= freshFor {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key as freshly fetched.
func (c *QueryCache) Set(key Key, value any, gcAfter time.Duration) {
	if gcAfter <= 0 {
		gcAfter = c.policy.GCAfter
	}
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key.String()] = &entry{
		key:       append(Key(nil), key...),
		value:     value,
		fetchedAt: now,
		usedAt:    now,
		gcAfter:   gcAfter,
	}
}

// Peek returns the cached value regardless of freshness.
func (c *QueryCache) Peek(key Key) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key.String()]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Invalidate marks every entry under prefix stale so the next Fetch refetches.
func (c *QueryCache) Invalidate(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			e.stale = true
			n++
		}
	}
	return n
}

// Remove drops every entry under prefix.
func (c *QueryCache) Remove(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Sweep evicts entries unused for longer than their GC window.
func (c *QueryCache) Sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.entries {
		if now.Sub(e.usedAt) > e.gcAfter {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

func (c *QueryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// RunJanitor sweeps on every tick until ctx is done.
func (c *QueryCache) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	logger.Debug("query cache janitor started", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.Sweep(); n > 0 {
				logger.Debug("query cache swept", zap.Int("evicted", n))
			}
		}
	}
}

// Fetch returns the cached value for key while it is fresh under p, otherwise
// calls fn and caches the result. Errors and rejected envelopes leave the old
// entry. Waiters share one detached load.
func Fetch[T any](ctx context.Context, c *QueryCache, key Key, p Policy, fn func(context.Context) (T, error)) (T, error) {
	if p.FreshFor <= 0 {
		p.FreshFor = c.policy.FreshFor
	}
	if v, ok := c.lookup(key, p.FreshFor); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	return refetch(ctx, c, key, p, fn)
}

// accepter is satisfied by response envelopes; a rejected envelope is handed
// back to the caller but never cached.
type accepter interface {
	Accepted() bool
}

func cacheable(v any) bool {
	if a, ok := v.(accepter); ok {
		return a.Accepted()
	}
	return true
}

// refetch shares one load per key. The load runs detached from any single
// caller; a caller whose ctx ends stops waiting without failing the others.
func refetch[T any](ctx context.Context, c *QueryCache, key Key, p Policy, fn func(context.Context) (T, error)) (T, error) {
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key.String(), func() (any, error) {
		val, err := fn(shared)
		if err != nil {
			return nil, err
		}
		if cacheable(val) {
			c.Set(key, val, p.GCAfter)
		}
		return val, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// Poll refetches key immediately and then on every interval, handing each
// outcome to onResult. It blocks until ctx is done.
func Poll[T any](ctx context.Context, c *QueryCache, key Key, p Policy, interval time.Duration, fn func(context.Context) (T, error), onResult func(T, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		v, err := refetch(ctx, c, key, p, fn)
		if ctx.Err() != nil {
			return
		}
		onResult(v, err)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
