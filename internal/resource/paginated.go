package resource

import (
	"context"
	"errors"
	"reflect"
	"sync"

	"adminpanel/client"
	"adminpanel/internal/notify"
	"adminpanel/internal/service"
	v1 "adminpanel/pkg/api/v1"
	"adminpanel/pkg/logger"

	"go.uber.org/zap"
)

// Fetcher loads one page for the given params.
type Fetcher[T any] func(ctx context.Context, p service.ListParams) (*v1.Response[v1.Page[T]], error)

type State[T any] struct {
	Items      []T
	Loading    bool
	Err        string
	Pagination v1.Pagination
}

type PaginatedOption[T any] func(*Paginated[T])

// WithErrorToast emits a destructive toast titled title on load failures.
func WithErrorToast[T any](n notify.Notifier, title string) PaginatedOption[T] {
	return func(p *Paginated[T]) {
		p.notifier = n
		p.errTitle = title
	}
}

// OnChange is called with a snapshot after every state transition.
func OnChange[T any](fn func(State[T])) PaginatedOption[T] {
	return func(p *Paginated[T]) { p.onChange = fn }
}

// Paginated holds one list page and its loading state. A Fetch while another
// is outstanding is a no-op; changing params or closing cancels the
// outstanding one, whose result is then dropped.
type Paginated[T any] struct {
	mu       sync.Mutex
	fetch    Fetcher[T]
	idOf     func(T) string
	params   service.ListParams
	state    State[T]
	inflight bool
	seq      uint64
	cancel   context.CancelFunc
	closed   bool

	notifier notify.Notifier
	errTitle string
	onChange func(State[T])
}

func NewPaginated[T any](fetch Fetcher[T], params service.ListParams, idOf func(T) string, opts ...PaginatedOption[T]) *Paginated[T] {
	p := &Paginated[T]{fetch: fetch, params: params, idOf: idOf}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Paginated[T]) State() State[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

func (p *Paginated[T]) snapshot() State[T] {
	s := p.state
	s.Items = append([]T(nil), p.state.Items...)
	return s
}

func (p *Paginated[T]) Params() service.ListParams {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.params
}

func (p *Paginated[T]) emit() {
	if p.onChange == nil {
		return
	}
	p.onChange(p.State())
}

// Fetch loads the current params. Cancellation is not reported as an error.
func (p *Paginated[T]) Fetch(ctx context.Context) error {
	p.mu.Lock()
	if p.inflight || p.closed {
		p.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.inflight = true
	p.seq++
	seq := p.seq
	params := p.params
	p.state.Loading = true
	p.state.Err = ""
	p.mu.Unlock()
	p.emit()

	res, err := p.fetch(ctx, params)
	canceled := errors.Is(ctx.Err(), context.Canceled)
	cancel()

	p.mu.Lock()
	if seq != p.seq {
		// superseded by SetParams, Refresh or Close
		p.mu.Unlock()
		return nil
	}
	p.inflight = false
	p.cancel = nil
	p.state.Loading = false

	var failure string
	switch {
	case err != nil && (client.IsCanceled(err) || canceled):
		err = nil
	case err != nil:
		failure = client.Message(err)
	case !res.Success:
		failure = res.Message
		if failure == "" {
			failure = "Failed to load data"
		}
		err = errors.New(failure)
	default:
		p.state.Items = res.Data.Items
		p.state.Pagination = res.Data.Pagination
	}
	p.state.Err = failure
	p.mu.Unlock()

	if failure != "" {
		logger.Debug("list load failed", zap.String("error", failure))
		if p.notifier != nil {
			p.notifier.Notify(notify.Failure(p.errTitle, failure))
		}
	}
	p.emit()
	return err
}

// stop cancels the outstanding fetch, if any. Caller holds mu.
func (p *Paginated[T]) stop() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if p.inflight {
		p.inflight = false
		p.state.Loading = false
	}
	p.seq++
}

// SetParams refetches when params differ from the current ones.
func (p *Paginated[T]) SetParams(ctx context.Context, params service.ListParams) error {
	p.mu.Lock()
	if reflect.DeepEqual(p.params, params) {
		p.mu.Unlock()
		return nil
	}
	p.params = params
	p.stop()
	p.mu.Unlock()
	return p.Fetch(ctx)
}

// Refresh cancels any outstanding fetch and loads again.
func (p *Paginated[T]) Refresh(ctx context.Context) error {
	p.mu.Lock()
	p.stop()
	p.mu.Unlock()
	return p.Fetch(ctx)
}

// Close cancels the outstanding fetch; later fetches are ignored.
func (p *Paginated[T]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stop()
	p.closed = true
}

// Patch replaces the item with the same id.
func (p *Paginated[T]) Patch(item T) bool {
	id := p.idOf(item)
	p.mu.Lock()
	found := false
	for i, it := range p.state.Items {
		if p.idOf(it) == id {
			p.state.Items[i] = item
			found = true
			break
		}
	}
	p.mu.Unlock()
	if found {
		p.emit()
	}
	return found
}

// Remove drops the item with id and adjusts the total.
func (p *Paginated[T]) Remove(id string) bool {
	p.mu.Lock()
	found := false
	for i, it := range p.state.Items {
		if p.idOf(it) == id {
			p.state.Items = append(p.state.Items[:i:i], p.state.Items[i+1:]...)
			if p.state.Pagination.Total > 0 {
				p.state.Pagination.Total--
			}
			found = true
			break
		}
	}
	p.mu.Unlock()
	if found {
		p.emit()
	}
	return found
}
