package notify

import (
	"context"

	"adminpanel/pkg/logger"

	"go.uber.org/zap"
)

// Hub fans toasts out to every subscriber. A subscriber whose buffer is full
// is dropped and its channel closed. Hub satisfies Notifier once Run is
// going.
type Hub struct {
	clients    map[chan Toast]bool
	broadcast  chan Toast
	register   chan chan Toast
	unregister chan chan Toast
	done       chan struct{}
	history    *History
	seq        int64
}

func NewHub(historySize int) *Hub {
	return &Hub{
		clients:    make(map[chan Toast]bool),
		broadcast:  make(chan Toast),
		register:   make(chan chan Toast),
		unregister: make(chan chan Toast),
		done:       make(chan struct{}),
		history:    NewHistory(historySize),
	}
}

// Run serves the hub until ctx is done, then closes every subscriber.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client)
			}
			clear(h.clients)
			return
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client)
			}
		case t := <-h.broadcast:
			h.seq++
			t.Seq = h.seq
			h.history.Add(t)
			for client := range h.clients {
				select {
				case client <- t:
				default:
					logger.Warn("toast subscriber too slow, dropping", zap.Int64("seq", t.Seq))
					close(client)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Notify hands t to the hub. After Run returns it is a no-op.
func (h *Hub) Notify(t Toast) {
	select {
	case h.broadcast <- t:
	case <-h.done:
	}
}

// Subscribe registers a new subscriber. The returned func unsubscribes; the
// channel is closed either way.
func (h *Hub) Subscribe(buffer int) (<-chan Toast, func()) {
	ch := make(chan Toast, buffer)
	select {
	case h.register <- ch:
	case <-h.done:
		close(ch)
		return ch, func() {}
	}
	return ch, func() {
		select {
		case h.unregister <- ch:
		case <-h.done:
		}
	}
}

func (h *Hub) History() *History {
	return h.history
}

// Forward delivers every toast from ch to n until ch closes.
func Forward(ch <-chan Toast, n Notifier) {
	for t := range ch {
		n.Notify(t)
	}
}
