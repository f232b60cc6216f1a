package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"adminpanel/pkg/logger"
)

func init() {
	logger.InitLogger("test")
}

func TestHub_Concurrency(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub(512)
	go hub.Run(ctx)

	clientCount := 20
	msgCount := 100

	var wg sync.WaitGroup
	received := make([]int, clientCount)
	for i := range clientCount {
		ch, _ := hub.Subscribe(msgCount)
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for range ch {
				received[idx]++
			}
		}(i)
	}

	var senders sync.WaitGroup
	for i := range msgCount {
		senders.Add(1)
		go func(n int) {
			defer senders.Done()
			hub.Notify(Success("Success", "toast"))
		}(i)
	}
	senders.Wait()

	cancel()
	wg.Wait()

	for i, n := range received {
		if n != msgCount {
			t.Errorf("client %d received %d, want %d", i, n, msgCount)
		}
	}
	all, ok := hub.History().Since(0)
	if !ok || len(all) != msgCount || all[len(all)-1].Seq != int64(msgCount) {
		t.Errorf("history = %d entries, ok=%v", len(all), ok)
	}
}

func TestHub_SlowSubscriberDropped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub(10)
	go hub.Run(ctx)

	slow, _ := hub.Subscribe(1)
	hub.Notify(Success("Success", "one"))
	hub.Notify(Success("Success", "two"))

	first, ok := <-slow
	if !ok || first.Description != "one" {
		t.Fatalf("first = %+v, ok=%v", first, ok)
	}
	select {
	case _, ok := <-slow:
		if ok {
			t.Error("slow subscriber should be closed")
		}
	case <-time.After(time.Second):
		t.Error("slow subscriber channel never closed")
	}
}

func TestHub_UnsubscribeAndStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(10)
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	ch, unsubscribe := hub.Subscribe(4)
	unsubscribe()
	if _, ok := <-ch; ok {
		t.Error("channel should close on unsubscribe")
	}

	cancel()
	<-done
	// After stop these must not block.
	hub.Notify(Failure("Error", "late"))
	late, _ := hub.Subscribe(1)
	if _, ok := <-late; ok {
		t.Error("subscription after stop should be closed")
	}
}

func TestForward(t *testing.T) {
	ch := make(chan Toast, 2)
	ch <- Success("Success", "a")
	ch <- Failure("Error", "b")
	close(ch)

	rec := &Recorder{}
	Forward(ch, rec)
	if got := rec.Toasts(); len(got) != 2 || got[1].Description != "b" {
		t.Errorf("forwarded %+v", got)
	}
}

func TestHistory_Since(t *testing.T) {
	h := NewHistory(3)
	for i := int64(1); i <= 5; i++ {
		h.Add(Toast{Seq: i})
	}

	tests := []struct {
		name   string
		since  int64
		want   []int64
		wantOK bool
	}{
		{name: "caught up", since: 5, want: nil, wantOK: true},
		{name: "last two", since: 3, want: []int64{4, 5}, wantOK: true},
		{name: "from oldest", since: 2, want: []int64{3, 4, 5}, wantOK: true},
		{name: "overwritten", since: 1, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := h.Since(tt.since)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d toasts, want %d", len(got), len(tt.want))
			}
			for i, seq := range tt.want {
				if got[i].Seq != seq {
					t.Errorf("got[%d].Seq = %d, want %d", i, got[i].Seq, seq)
				}
			}
		})
	}
}
