// Package notify carries user-facing feedback (toasts) out of the resource
// layer.
package notify

import (
	"sync"

	"adminpanel/pkg/constraints"
	"adminpanel/pkg/logger"

	"go.uber.org/zap"
)

type Toast struct {
	// Seq is assigned by a Hub; zero elsewhere.
	Seq         int64
	Title       string
	Description string
	Variant     constraints.Variant
}

type Notifier interface {
	Notify(t Toast)
}

func Success(title, description string) Toast {
	return Toast{Title: title, Description: description, Variant: constraints.VariantDefault}
}

func Failure(title, description string) Toast {
	return Toast{Title: title, Description: description, Variant: constraints.VariantDestructive}
}

// LogNotifier writes toasts to the global logger; destructive ones at warn.
type LogNotifier struct{}

func (LogNotifier) Notify(t Toast) {
	fields := []zap.Field{zap.String("title", t.Title), zap.String("description", t.Description)}
	if t.Variant == constraints.VariantDestructive {
		logger.Warn("toast", fields...)
		return
	}
	logger.Info("toast", fields...)
}

// Func adapts a plain function to Notifier.
type Func func(Toast)

func (f Func) Notify(t Toast) { f(t) }

// Recorder keeps every toast it receives.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *Recorder) Notify(t Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, t)
}

func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.toasts...)
}

// Last returns the most recent toast, ok=false when none arrived.
func (r *Recorder) Last() (Toast, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.toasts) == 0 {
		return Toast{}, false
	}
	return r.toasts[len(r.toasts)-1], true
}
