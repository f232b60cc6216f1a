package notify

import (
	"sort"
	"sync"
)

// History is a fixed-size ring of the most recent toasts, ordered by Seq.
type History struct {
	mu     sync.RWMutex
	toasts []Toast
	size   int
	head   int
	isFull bool
}

func NewHistory(size int) *History {
	if size <= 0 {
		size = 100
	}
	return &History{toasts: make([]Toast, size), size: size}
}

func (h *History) Add(t Toast) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.toasts[h.head] = t
	h.head = (h.head + 1) % h.size
	if h.head == 0 {
		h.isFull = true
	}
}

// Since returns the toasts after seq. ok is false when seq has already been
// overwritten and the caller missed some.
func (h *History) Since(seq int64) (out []Toast, ok bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count, start := h.head, 0
	if h.isFull {
		count, start = h.size, h.head
	}
	if count == 0 {
		return nil, true
	}
	if seq+1 < h.toasts[start].Seq {
		return nil, false
	}

	idx := sort.Search(count, func(i int) bool {
		return h.toasts[(start+i)%h.size].Seq > seq
	})
	if idx == count {
		return nil, true
	}
	out = make([]Toast, 0, count-idx)
	for i := idx; i < count; i++ {
		out = append(out, h.toasts[(start+i)%h.size])
	}
	return out, true
}
