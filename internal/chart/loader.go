package chart

import (
	"context"
	"sync"
	"time"

	"adminpanel/internal/service"
	v1 "adminpanel/pkg/api/v1"
	"adminpanel/pkg/constraints"
	"adminpanel/pkg/logger"

	"go.uber.org/zap"
)

// LoadFunc fetches the series for a resolved window.
type LoadFunc func(ctx context.Context, f Filter, start, end time.Time) ([]v1.ChartPoint, error)

type Result struct {
	Filter    Filter
	Start     time.Time
	End       time.Time
	Points    []v1.ChartPoint
	Synthetic bool
	// Err is the load or resolve failure; Points may still hold a
	// synthetic series.
	Err error
}

type Option func(*Loader)

func WithDebounce(d time.Duration) Option {
	return func(l *Loader) { l.debounce = d }
}

func WithClock(now func() time.Time) Option {
	return func(l *Loader) { l.now = now }
}

// Loader debounces filter changes and delivers only the newest load. The first
// SetFilter loads at once; later ones wait for a quiet period. Starting a load
// cancels the one before it.
type Loader struct {
	mu       sync.Mutex
	load     LoadFunc
	onResult func(Result)
	debounce time.Duration
	now      func() time.Time

	base    context.Context
	stop    context.CancelFunc
	timer   *time.Timer
	gen     uint64
	cancel  context.CancelFunc
	started bool
	closed  bool

	deliverMu sync.Mutex
	wg        sync.WaitGroup
}

func NewLoader(load LoadFunc, onResult func(Result), opts ...Option) *Loader {
	base, stop := context.WithCancel(context.Background())
	l := &Loader{
		load:     load,
		onResult: onResult,
		debounce: constraints.ChartDebounce,
		now:      time.Now,
		base:     base,
		stop:     stop,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) SetFilter(f Filter) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	if !l.started {
		l.started = true
		l.startLocked(f)
		return
	}
	var t *time.Timer
	t = time.AfterFunc(l.debounce, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.closed || l.timer != t {
			return
		}
		l.timer = nil
		l.startLocked(f)
	})
	l.timer = t
}

func (l *Loader) startLocked(f Filter) {
	l.gen++
	gen := l.gen
	if l.cancel != nil {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(l.base)
	l.cancel = cancel
	l.wg.Add(1)
	go l.run(ctx, cancel, gen, f)
}

func (l *Loader) run(ctx context.Context, cancel context.CancelFunc, gen uint64, f Filter) {
	defer l.wg.Done()
	defer cancel()

	res := Result{Filter: f}
	start, end, err := Resolve(f, l.now())
	if err != nil {
		res.Err = err
		l.deliver(gen, res)
		return
	}
	res.Start, res.End = start, end

	points, err := l.load(ctx, f, start, end)
	if ctx.Err() != nil {
		return
	}
	res.Points, res.Err = points, err
	if err != nil || len(points) == 0 {
		if err != nil {
			logger.Warn("chart load failed, using synthetic series",
				zap.String("range", string(f.Range)),
				zap.Error(err))
		}
		res.Points = Synthetic(f, start, end)
		res.Synthetic = true
	}
	l.deliver(gen, res)
}

func (l *Loader) deliver(gen uint64, res Result) {
	l.deliverMu.Lock()
	defer l.deliverMu.Unlock()

	l.mu.Lock()
	current := gen == l.gen && !l.closed
	l.mu.Unlock()
	if !current {
		logger.Debug("discarding stale chart result", zap.Uint64("generation", gen))
		return
	}
	l.onResult(res)
}

// Close stops the pending timer and cancels the running load.
func (l *Loader) Close() {
	l.mu.Lock()
	l.closed = true
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	l.mu.Unlock()
	l.stop()
}

// Wait blocks until every started load has returned.
func (l *Loader) Wait() {
	l.wg.Wait()
}

// SeriesLoader adapts a dashboard analytics call to a LoadFunc.
func SeriesLoader(fetch func(context.Context, service.AnalyticsQuery) (*v1.Response[v1.ChartData], error)) LoadFunc {
	return func(ctx context.Context, f Filter, start, end time.Time) ([]v1.ChartPoint, error) {
		res, err := fetch(ctx, service.AnalyticsQuery{
			Range:    f.Range,
			Start:    start,
			End:      end,
			Category: f.Category,
		})
		if err != nil {
			return nil, err
		}
		return res.Data.Points, nil
	}
}
