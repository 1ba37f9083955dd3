//go:build integration

package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "parley/pkg/domain-errors"
	"parley/pkg/testutil/containers"
)

type RedisLockSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	ctx   context.Context
}

func TestRedisLockSuite(t *testing.T) {
	suite.Run(t, new(RedisLockSuite))
}

func (s *RedisLockSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *RedisLockSuite) SetupTest() {
	s.ctx = context.Background()
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

func (s *RedisLockSuite) TestTwoInstancesExcludeEachOther() {
	first := NewRedis(s.redis.Client, WithRetryDelay(5*time.Millisecond))
	second := NewRedis(s.redis.Client, WithRetryDelay(5*time.Millisecond))

	var inside, overlaps atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		l := first
		if i%2 == 1 {
			l = second
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.WithLock(s.ctx, "REQ-1", func(context.Context) error {
				if inside.Add(1) > 1 {
					overlaps.Add(1)
				}
				time.Sleep(5 * time.Millisecond)
				inside.Add(-1)
				return nil
			})
			s.NoError(err)
		}()
	}
	wg.Wait()
	s.Zero(overlaps.Load())
}

func (s *RedisLockSuite) TestReleasedAfterUse() {
	l := NewRedis(s.redis.Client)
	s.Require().NoError(l.WithLock(s.ctx, "REQ-1", func(context.Context) error { return nil }))

	n, err := s.redis.Client.Exists(s.ctx, keyPrefix+"REQ-1").Result()
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *RedisLockSuite) TestTimesOutWhileHeld() {
	s.Require().NoError(s.redis.Client.Set(s.ctx, keyPrefix+"REQ-1", "someone-else", time.Minute).Err())

	ctx, cancel := context.WithTimeout(s.ctx, 100*time.Millisecond)
	defer cancel()
	err := NewRedis(s.redis.Client).WithLock(ctx, "REQ-1", func(context.Context) error { return nil })
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
}
