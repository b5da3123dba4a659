package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/hammamikhairi/springbreak/internal/logger"
)

func startLoop(t *testing.T) (*Loop, context.CancelFunc) {
	t.Helper()
	l := New(logger.New(logger.LevelOff, nil))
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	t.Cleanup(cancel)
	return l, cancel
}

func TestLoopRunsInOrder(t *testing.T) {
	l, _ := startLoop(t)

	var got []int
	for i := 0; i < 50; i++ {
		if !l.Post(func() { got = append(got, i) }) {
			t.Fatalf("post %d rejected", i)
		}
	}

	// Sync runs after everything posted before it.
	if !l.Sync(func() {}) {
		t.Fatal("sync rejected")
	}
	if len(got) != 50 {
		t.Fatalf("expected 50 callbacks, got %d", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("callback %d ran out of order (got %d)", i, v)
		}
	}
}

func TestPostAfterStopIsRejected(t *testing.T) {
	l, cancel := startLoop(t)
	cancel()

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}

	if l.Post(func() { t.Error("callback ran after stop") }) {
		t.Fatal("expected Post to return false after stop")
	}
	if l.Sync(func() {}) {
		t.Fatal("expected Sync to return false after stop")
	}
}

func TestTryPostWhenFull(t *testing.T) {
	// Not running, so nothing drains the queue.
	l := New(logger.New(logger.LevelOff, nil), WithQueueSize(2))

	if !l.TryPost(func() {}) || !l.TryPost(func() {}) {
		t.Fatal("TryPost rejected with room in the queue")
	}
	if l.TryPost(func() {}) {
		t.Fatal("expected TryPost to fail on a full queue")
	}
}
