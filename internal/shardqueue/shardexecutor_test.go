package shardqueue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	perrors "github.com/photostream/photostream/internal/errors"
)

func waitFor(t *testing.T, ch <-chan struct{}, d time.Duration, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(d):
		t.Fatalf("timeout waiting for %s", what)
	}
}

// Toggles queued for one photo run in submission order.
func TestShardExecutor_FIFOPerPhoto(t *testing.T) {
	p := NewShardExecutor(Config{Shards: 4, QueueSize: 10})
	defer p.Stop()

	var (
		mu    sync.Mutex
		order []int
	)
	for i := 0; i < 5; i++ {
		v := i
		if err := p.Submit(context.Background(), "photo-1", JobFunc(func(context.Context) error {
			mu.Lock()
			order = append(order, v)
			mu.Unlock()
			return nil
		})); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}
	if err := p.Barrier(context.Background(), "photo-1"); err != nil {
		t.Fatalf("barrier: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 5 {
		t.Fatalf("expected 5 jobs, got %v", order)
	}
	for i, v := range order {
		if i != v {
			t.Fatalf("expected FIFO order, got %v", order)
		}
	}
}

// A second job for the same photo never overlaps the first.
func TestShardExecutor_NoOverlapSamePhoto(t *testing.T) {
	const n = 100
	p := NewShardExecutor(Config{Shards: 4, QueueSize: n})
	defer p.Stop()

	var inFlight, overlap int32
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_ = p.SubmitWait(context.Background(), "photo-x", JobFunc(func(context.Context) error {
				if atomic.AddInt32(&inFlight, 1) > 1 {
					atomic.StoreInt32(&overlap, 1)
				}
				time.Sleep(50 * time.Microsecond)
				atomic.AddInt32(&inFlight, -1)
				return nil
			}))
		}()
	}
	wg.Wait()
	if atomic.LoadInt32(&overlap) == 1 {
		t.Fatal("detected overlapping execution for one photo")
	}
}

// Jobs for photos on different shards do not block each other.
func TestShardExecutor_ParallelDifferentShards(t *testing.T) {
	p := NewShardExecutor(Config{Shards: 4, QueueSize: 10})
	defer p.Stop()

	keyA := "photo-a"
	keyB := "photo-b"
	for i := 0; i < 100 && p.shardFor(keyB) == p.shardFor(keyA); i++ {
		keyB += "x"
	}

	release := make(chan struct{})
	done := make(chan struct{})
	_ = p.Submit(context.Background(), keyA, JobFunc(func(context.Context) error {
		<-release
		close(done)
		return nil
	}))
	_ = p.Submit(context.Background(), keyB, JobFunc(func(context.Context) error {
		close(release)
		return nil
	}))
	waitFor(t, done, time.Second, "parallel shards")
}

func TestShardExecutor_SubmitWaitReturnsOutcome(t *testing.T) {
	p := NewShardExecutor(Config{Shards: 1, QueueSize: 4, MaxAttempts: 1})
	defer p.Stop()

	sentinel := errors.New("like rejected")
	err := p.SubmitWait(context.Background(), "p", JobFunc(func(context.Context) error { return sentinel }))
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}
	if err := p.SubmitWait(context.Background(), "p", JobFunc(func(context.Context) error { return nil })); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestShardExecutor_RetriesRecoverableOnly(t *testing.T) {
	p := NewShardExecutor(Config{
		Shards:      1,
		QueueSize:   4,
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
		Retryable:   perrors.IsRecoverable,
	})
	defer p.Stop()

	var attempts int32
	err := p.SubmitWait(context.Background(), "p", JobFunc(func(context.Context) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return perrors.NewHTTPError(503, "", "like photo")
		}
		return nil
	}))
	if err != nil || atomic.LoadInt32(&attempts) != 3 {
		t.Fatalf("expected success on third attempt, err=%v attempts=%d", err, attempts)
	}

	atomic.StoreInt32(&attempts, 0)
	err = p.SubmitWait(context.Background(), "p", JobFunc(func(context.Context) error {
		atomic.AddInt32(&attempts, 1)
		return perrors.NewHTTPError(404, "", "like photo")
	}))
	if err == nil || atomic.LoadInt32(&attempts) != 1 {
		t.Fatalf("404 must not be retried, err=%v attempts=%d", err, attempts)
	}
}

func TestShardExecutor_ErrorHandlerOncePerFinalError(t *testing.T) {
	var calls int32
	p := NewShardExecutor(Config{
		Shards:       1,
		QueueSize:    4,
		MaxAttempts:  2,
		BaseBackoff:  time.Millisecond,
		ErrorHandler: func(error) { atomic.AddInt32(&calls, 1); panic("handler panic is contained") },
	})
	defer p.Stop()

	_ = p.SubmitWait(context.Background(), "p", JobFunc(func(context.Context) error { return errors.New("boom") }))
	if err := p.SubmitWait(context.Background(), "p", JobFunc(func(context.Context) error { return nil })); err != nil {
		t.Fatalf("worker should survive handler panic: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("error handler calls = %d, want 1", got)
	}
}

func TestShardExecutor_JobPanicBecomesError(t *testing.T) {
	p := NewShardExecutor(Config{Shards: 1, QueueSize: 4, MaxAttempts: 1})
	defer p.Stop()

	err := p.SubmitWait(context.Background(), "p", JobFunc(func(context.Context) error { panic("reconcile bug") }))
	if !errors.Is(err, ErrJobPanic) {
		t.Fatalf("expected ErrJobPanic, got %v", err)
	}
	if err := p.SubmitWait(context.Background(), "p", JobFunc(func(context.Context) error { return nil })); err != nil {
		t.Fatalf("shard should keep running after a panic: %v", err)
	}
}

func TestShardExecutor_SkipsCanceledJob(t *testing.T) {
	p := NewShardExecutor(Config{Shards: 1, QueueSize: 4, MaxAttempts: 1})
	defer p.Stop()

	release := make(chan struct{})
	started := make(chan struct{})
	_ = p.Submit(context.Background(), "p", JobFunc(func(context.Context) error {
		close(started)
		<-release
		return nil
	}))
	waitFor(t, started, time.Second, "blocking job")

	var ran int32
	ctx, cancel := context.WithCancel(context.Background())
	_ = p.Submit(ctx, "p", JobFunc(func(context.Context) error {
		atomic.StoreInt32(&ran, 1)
		return nil
	}))
	cancel()
	close(release)

	if err := p.Barrier(context.Background(), "p"); err != nil {
		t.Fatalf("barrier: %v", err)
	}
	if atomic.LoadInt32(&ran) == 1 {
		t.Fatal("canceled job must not run")
	}
}

func TestShardExecutor_QueueFull(t *testing.T) {
	p := NewShardExecutor(Config{Shards: 1, QueueSize: 1, EnqueueTimeout: 10 * time.Millisecond})
	defer p.Stop()

	release := make(chan struct{})
	started := make(chan struct{})
	_ = p.Submit(context.Background(), "p", JobFunc(func(context.Context) error {
		close(started)
		<-release
		return nil
	}))
	waitFor(t, started, time.Second, "blocking job")

	_ = p.Submit(context.Background(), "p", JobFunc(func(context.Context) error { return nil }))
	err := p.Submit(context.Background(), "p", JobFunc(func(context.Context) error { return nil }))
	var qf *QueueFullError
	if !errors.Is(err, ErrQueueFull) || !errors.As(err, &qf) || qf.Capacity != 1 {
		t.Fatalf("expected queue full error, got %v", err)
	}
	close(release)
}

func TestShardExecutor_SubmitAfterStop(t *testing.T) {
	p := NewShardExecutor(Config{Shards: 2, QueueSize: 2})
	p.Stop()
	p.Stop()

	if err := p.Submit(context.Background(), "p", JobFunc(func(context.Context) error { return nil })); !errors.Is(err, ErrExecutorClosed) {
		t.Fatalf("expected ErrExecutorClosed, got %v", err)
	}
	if err := p.SubmitWait(context.Background(), "p", JobFunc(func(context.Context) error { return nil })); !errors.Is(err, ErrExecutorClosed) {
		t.Fatalf("expected ErrExecutorClosed, got %v", err)
	}
}

func TestJobFunc_NilGuard(t *testing.T) {
	var jf JobFunc
	if err := jf.Run(context.Background()); !errors.Is(err, ErrNilJobFunc) {
		t.Fatalf("expected ErrNilJobFunc, got %v", err)
	}
}
