// Package lock serializes mutating operations on a single request.
package lock

import (
	"context"
	"time"

	dErrors "parley/pkg/domain-errors"
)

// Locker runs fn while holding the lock for key.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// WaitObserver records how long callers waited for a lock.
type WaitObserver interface {
	ObserveLockWait(start time.Time)
}

const (
	numShards      = 128
	defaultTimeout = 5 * time.Second
)

// Sharded distributes keys over a fixed set of single-slot semaphores by
// FNV-1a hash. Distinct keys may share a shard; the same key always does.
// Waiting for a shard gives up when ctx is done.
type Sharded struct {
	shards   [numShards]chan struct{}
	timeout  time.Duration
	observer WaitObserver
}

type ShardedOption func(*Sharded)

func WithTimeout(d time.Duration) ShardedOption {
	return func(s *Sharded) { s.timeout = d }
}

func WithWaitObserver(o WaitObserver) ShardedOption {
	return func(s *Sharded) { s.observer = o }
}

func NewSharded(opts ...ShardedOption) *Sharded {
	s := &Sharded{timeout: defaultTimeout}
	for i := range s.shards {
		s.shards[i] = make(chan struct{}, 1)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sharded) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "lock aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	shard := s.shards[hash(key)%numShards]
	select {
	case shard <- struct{}{}:
	case <-ctx.Done():
		return dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "timed out waiting for request lock")
	}
	defer func() { <-shard }()
	if s.observer != nil {
		s.observer.ObserveLockWait(start)
	}
	return fn(ctx)
}

func hash(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
