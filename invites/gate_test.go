package invites

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGate_SameKeySerialized(t *testing.T) {
	g := NewGate()
	var inside, overlaps int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = g.With(context.Background(), "g1", func() error {
				if atomic.AddInt32(&inside, 1) > 1 {
					atomic.AddInt32(&overlaps, 1)
				}
				time.Sleep(2 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
		}()
	}
	wg.Wait()
	if overlaps != 0 {
		t.Errorf("%d overlapping critical sections", overlaps)
	}
	if n := g.active(); n != 0 {
		t.Errorf("active() = %d after all callers left, want 0", n)
	}
}

func TestGate_DifferentKeysParallel(t *testing.T) {
	g := NewGate()
	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = g.With(context.Background(), "g1", func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started
	done := make(chan struct{})
	go func() {
		_ = g.With(context.Background(), "g2", func() error { return nil })
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("g2 blocked by g1")
	}
	close(release)
}

func TestGate_ReleasedOnError(t *testing.T) {
	g := NewGate()
	boom := errors.New("boom")
	if err := g.With(context.Background(), "g1", func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("With() = %v, want boom", err)
	}
	ran := false
	_ = g.With(context.Background(), "g1", func() error { ran = true; return nil })
	if !ran {
		t.Error("gate not released after error")
	}
}

func TestGate_ReleasedOnPanic(t *testing.T) {
	g := NewGate()
	func() {
		defer func() { _ = recover() }()
		_ = g.With(context.Background(), "g1", func() error { panic("boom") })
	}()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := g.With(ctx, "g1", func() error { return nil }); err != nil {
		t.Errorf("gate not released after panic: %v", err)
	}
}

func TestGate_WaitCancelled(t *testing.T) {
	g := NewGate()
	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = g.With(context.Background(), "g1", func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	ran := false
	err := g.With(ctx, "g1", func() error { ran = true; return nil })
	if !errors.Is(err, context.DeadlineExceeded) || ran {
		t.Errorf("With() = %v, ran = %v; want deadline exceeded without running", err, ran)
	}
	close(release)
}

func TestGate_DoneContextNeverRuns(t *testing.T) {
	g := NewGate()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 50; i++ {
		ran := false
		if err := g.With(ctx, "g1", func() error { ran = true; return nil }); !errors.Is(err, context.Canceled) || ran {
			t.Fatalf("With() = %v, ran = %v; want canceled without running", err, ran)
		}
	}
	if n := g.active(); n != 0 {
		t.Errorf("active() = %d, want 0", n)
	}
}
