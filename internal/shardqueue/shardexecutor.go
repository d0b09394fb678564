// Copyright 2025 The Synapse Authors.
//
// Package shardqueue provides a sharded work-queue that guarantees FIFO order
// *per key* while allowing parallelism across shards. The photo store keys it
// by photo id so that like toggles for one photo never overlap.
//
// Ordering between two Submit calls for the same key is the order in which
// they reach the shard channel; callers that need a strict order must not
// submit concurrently for that key.
package shardqueue

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/photostream/photostream/internal/errors"
)

type queuedJob struct {
	ctx  context.Context
	job  Job
	done chan error // nil for fire-and-forget submissions
}

func (qj queuedJob) finish(err error) {
	if qj.done != nil {
		qj.done <- err
	}
}

// ShardExecutor executes Jobs on worker goroutines partitioned by a stable hash
// of the key. FIFO ordering is preserved within a shard; jobs with different
// keys may run in parallel.
type ShardExecutor struct {
	cfg    Config
	queues []chan queuedJob // len == cfg.Shards

	done   chan struct{} // closed in Stop()
	closed uint32        // 0 → running, 1 → closed

	wg sync.WaitGroup
}

// NewShardExecutor constructs the executor and starts its shard workers.
func NewShardExecutor(cfg Config) *ShardExecutor {
	if cfg.Shards <= 0 {
		cfg.Shards = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 128
	}
	if cfg.EnqueueTimeout <= 0 {
		cfg.EnqueueTimeout = 100 * time.Millisecond
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 8
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 100 * time.Millisecond
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 20 * time.Second
	}
	if cfg.Retryable == nil {
		cfg.Retryable = func(err error) bool { return !errors.IsIrrecoverable(err) }
	}

	p := &ShardExecutor{
		cfg:    cfg,
		queues: make([]chan queuedJob, cfg.Shards),
		done:   make(chan struct{}),
	}
	for i := 0; i < cfg.Shards; i++ {
		ch := make(chan queuedJob, cfg.QueueSize)
		p.queues[i] = ch
		p.wg.Add(1)
		go p.runWorker(i, ch)
	}
	return p
}

// Submit enqueues job for the shard derived from key and returns once it is
// queued.
//
//   - Returns ErrExecutorClosed if the executor is stopped.
//   - Returns *QueueFullError (errors.Is ErrQueueFull) if the shard is still
//     full after EnqueueTimeout.
//   - Returns ctx.Err() if ctx is cancelled first.
func (p *ShardExecutor) Submit(ctx context.Context, key string, job Job) error {
	return p.enqueue(queuedJob{ctx: ctx, job: job}, key)
}

// SubmitWait enqueues job and blocks until it reaches a final outcome: success,
// an error that is not retried, exhausted attempts, or cancellation. The
// returned error is that outcome, or the enqueue failure.
func (p *ShardExecutor) SubmitWait(ctx context.Context, key string, job Job) error {
	qj := queuedJob{ctx: ctx, job: job, done: make(chan error, 1)}
	if err := p.enqueue(qj, key); err != nil {
		return err
	}
	select {
	case err := <-qj.done:
		return err
	case <-ctx.Done():
		// The worker will observe the same cancellation and skip or abort the job.
		return ctx.Err()
	}
}

// Barrier waits until every job submitted for key before it has finished.
func (p *ShardExecutor) Barrier(ctx context.Context, key string) error {
	return p.SubmitWait(ctx, key, JobFunc(func(context.Context) error { return nil }))
}

func (p *ShardExecutor) enqueue(qj queuedJob, key string) error {
	if atomic.LoadUint32(&p.closed) == 1 {
		return ErrExecutorClosed
	}
	select {
	case <-p.done:
		return ErrExecutorClosed
	default:
	}

	shard := p.shardFor(key)
	ch := p.queues[shard]

	timer := time.NewTimer(p.cfg.EnqueueTimeout)
	defer timer.Stop()

	select {
	case ch <- qj:
		submissionsTotal.WithLabelValues(labelFor(shard)).Inc()
		return nil
	case <-p.done:
		return ErrExecutorClosed
	case <-qj.ctx.Done():
		return qj.ctx.Err()
	case <-timer.C:
		queueFullTotal.WithLabelValues(labelFor(shard)).Inc()
		return &QueueFullError{
			Shard:    shard,
			Length:   len(ch),
			Capacity: cap(ch),
		}
	}
}

// Stop lets every worker drain its queue, waits for them and returns.
// It is idempotent and safe for concurrent use.
func (p *ShardExecutor) Stop() {
	if !atomic.CompareAndSwapUint32(&p.closed, 0, 1) {
		return
	}
	log.Debug().Int("shards", p.cfg.Shards).Msg("shardqueue: stopping executor")
	close(p.done)
	p.wg.Wait()
	log.Debug().Msg("shardqueue: executor stopped, all queues drained")
}

// Close lets ShardExecutor satisfy io.Closer.
func (p *ShardExecutor) Close() error {
	p.Stop()
	return nil
}

// ------------------------- internals -------------------------

func (p *ShardExecutor) runWorker(idx int, ch <-chan queuedJob) {
	defer p.wg.Done()
	label := labelFor(idx)

	for {
		select {
		case qj := <-ch:
			if qj.job == nil {
				qj.finish(nil)
				continue
			}
			p.process(qj, label)
			queueDepth.WithLabelValues(label).Set(float64(len(ch)))

		case <-p.done:
			drained := 0
			for {
				select {
				case qj := <-ch:
					if qj.job != nil {
						qj.finish(p.runOnce(qj, label))
						drained++
					} else {
						qj.finish(nil)
					}
				default:
					if drained > 0 {
						log.Debug().Int("shard", idx).Int("drained", drained).Msg("shardqueue: drained jobs on stop")
					}
					queueDepth.WithLabelValues(label).Set(0)
					return
				}
			}
		}
	}
}

// process runs one job with retries and delivers its final outcome.
func (p *ShardExecutor) process(qj queuedJob, label string) {
	// Honour caller context so a cancelled job doesn't stall the shard.
	if err := qj.ctx.Err(); err != nil {
		p.safeHandleError(err)
		qj.finish(err)
		return
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.cfg.BaseBackoff
	exp.Multiplier = 2
	exp.MaxInterval = p.cfg.MaxInterval
	exp.Reset()

	for attempt := 1; ; attempt++ {
		err := p.runOnce(qj, label)
		if err == nil {
			qj.finish(nil)
			return
		}
		if !p.cfg.Retryable(err) || attempt >= p.cfg.MaxAttempts {
			p.safeHandleError(err)
			qj.finish(err)
			return
		}
		retriesTotal.WithLabelValues(label).Inc()

		select {
		case <-time.After(exp.NextBackOff()):
		case <-p.done:
			// Stopping: give up on this job, the worker then drains the rest.
			qj.finish(err)
			return
		case <-qj.ctx.Done():
			p.safeHandleError(qj.ctx.Err())
			qj.finish(qj.ctx.Err())
			return
		}
	}
}

// runOnce executes the job a single time, turning a panic into an error so the
// shard keeps serving its other keys.
func (p *ShardExecutor) runOnce(qj queuedJob, label string) (err error) {
	start := time.Now()
	defer func() {
		runDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("shard", label).Msg("shardqueue: job panic")
			err = fmt.Errorf("%w: %v", ErrJobPanic, r)
		}
	}()
	return qj.job.Run(qj.ctx)
}

func (p *ShardExecutor) safeHandleError(err error) {
	if err == nil || p.cfg.ErrorHandler == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("shardqueue: error handler panic")
		}
	}()
	p.cfg.ErrorHandler(err)
}

func (p *ShardExecutor) shardFor(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(p.cfg.Shards))
}
