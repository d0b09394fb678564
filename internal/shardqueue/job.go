package shardqueue

import (
	"context"
	"errors"
)

// ErrNilJobFunc is returned when a nil JobFunc is run.
var ErrNilJobFunc = errors.New("nil JobFunc")

// Job is a unit of work executed by a ShardExecutor. A Job may run more than
// once when its error is retryable, so Run must tolerate repetition.
type Job interface {
	Run(ctx context.Context) error
}

// JobFunc adapts a closure to a Job.
type JobFunc func(ctx context.Context) error

// Run implements Job for JobFunc.
func (f JobFunc) Run(ctx context.Context) error {
	if f == nil {
		return ErrNilJobFunc
	}
	return f(ctx)
}
