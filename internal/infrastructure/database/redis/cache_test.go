package redis

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/suite"
)

type CacheTestSuite struct {
	suite.Suite
	mock  redismock.ClientMock
	cache Cache
}

func (s *CacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	s.cache = NewCache(newClientWithRDB(db, nil), nil, WithPrefix("test:"))
}

func (s *CacheTestSuite) TestGetHit() {
	s.mock.ExpectGet("test:ranking:v1").SetVal(`{"year":2023}`)

	var dest map[string]int
	err := s.cache.Get(context.Background(), "ranking:v1", &dest)

	s.NoError(err)
	s.Equal(2023, dest["year"])
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *CacheTestSuite) TestGetMiss() {
	s.mock.ExpectGet("test:absent").RedisNil()

	var dest map[string]int
	err := s.cache.Get(context.Background(), "absent", &dest)

	s.ErrorIs(err, ErrCacheMiss)
}

func (s *CacheTestSuite) TestGetCorruptPayload() {
	s.mock.ExpectGet("test:bad").SetVal(`not json`)

	var dest map[string]int
	err := s.cache.Get(context.Background(), "bad", &dest)

	s.Error(err)
	s.NotErrorIs(err, ErrCacheMiss)
}

func (s *CacheTestSuite) TestSetRejectsUnserializableValue() {
	// No redis expectation: marshaling fails before any command is issued.
	err := s.cache.Set(context.Background(), "k", make(chan int), time.Minute)
	s.Error(err)
}

func (s *CacheTestSuite) TestDelete() {
	s.mock.ExpectDel("test:a", "test:b").SetVal(2)

	s.NoError(s.cache.Delete(context.Background(), "a", "b"))
	s.NoError(s.cache.Delete(context.Background()), "deleting nothing is a no-op")
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *CacheTestSuite) TestDeleteByPrefix() {
	s.mock.ExpectScan(0, "test:ranking:*", 100).SetVal([]string{"test:ranking:a", "test:ranking:b"}, 0)
	s.mock.ExpectDel("test:ranking:a", "test:ranking:b").SetVal(2)

	n, err := s.cache.DeleteByPrefix(context.Background(), "ranking:")

	s.NoError(err)
	s.Equal(int64(2), n)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *CacheTestSuite) TestGetOrSetServesHit() {
	s.mock.ExpectGet("test:k").SetVal(`{"n":7}`)

	loaderCalled := false
	var dest map[string]int
	err := s.cache.GetOrSet(context.Background(), "k", &dest, time.Minute, func(context.Context) (interface{}, error) {
		loaderCalled = true
		return nil, nil
	})

	s.NoError(err)
	s.False(loaderCalled)
	s.Equal(7, dest["n"])
}

func (s *CacheTestSuite) TestGetOrSetLoadsOnMiss() {
	s.mock.ExpectGet("test:k").RedisNil()
	// The subsequent fill uses a jittered TTL the mock cannot predict; the
	// failed Set only logs and the loaded value still reaches the caller.

	var dest map[string]int
	err := s.cache.GetOrSet(context.Background(), "k", &dest, time.Minute, func(context.Context) (interface{}, error) {
		return map[string]int{"n": 9}, nil
	})

	s.NoError(err)
	s.Equal(9, dest["n"])
}

func (s *CacheTestSuite) TestGetOrSetPropagatesLoaderError() {
	s.mock.ExpectGet("test:k").RedisNil()

	var dest map[string]int
	err := s.cache.GetOrSet(context.Background(), "k", &dest, time.Minute, func(context.Context) (interface{}, error) {
		return nil, context.DeadlineExceeded
	})

	s.ErrorIs(err, context.DeadlineExceeded)
}

func TestCacheTestSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func TestJitterTTL(t *testing.T) {
	c := &redisCache{}
	if got := c.jitterTTL(0); got != 0 {
		t.Fatalf("zero ttl must stay zero, got %v", got)
	}
	base := time.Minute
	for i := 0; i < 100; i++ {
		got := c.jitterTTL(base)
		if got < 54*time.Second || got > 66*time.Second {
			t.Fatalf("jittered ttl %v outside +/-10%% of %v", got, base)
		}
	}
}
