//go:build integration

package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"trilha/pkg/testutil/containers"
)

type RedisRevocationSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	list  *RedisRevocationList
}

func TestRedisRevocationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisRevocationSuite))
}

func (s *RedisRevocationSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.list = NewRedisRevocationList(s.redis.Client)
}

func (s *RedisRevocationSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisRevocationSuite) TestRevokeAndLookup() {
	ctx := context.Background()

	revoked, err := s.list.IsRevoked(ctx, "jti-1")
	s.Require().NoError(err)
	s.False(revoked)

	s.Require().NoError(s.list.Revoke(ctx, "jti-1", time.Minute))

	revoked, err = s.list.IsRevoked(ctx, "jti-1")
	s.Require().NoError(err)
	s.True(revoked)

	revoked, err = s.list.IsRevoked(ctx, "jti-2")
	s.Require().NoError(err)
	s.False(revoked)
}

func (s *RedisRevocationSuite) TestEntryExpiresWithTheToken() {
	ctx := context.Background()

	s.Require().NoError(s.list.Revoke(ctx, "jti-short", 500*time.Millisecond))

	revoked, err := s.list.IsRevoked(ctx, "jti-short")
	s.Require().NoError(err)
	s.True(revoked)

	time.Sleep(700 * time.Millisecond)

	revoked, err = s.list.IsRevoked(ctx, "jti-short")
	s.Require().NoError(err)
	s.False(revoked)
}

func (s *RedisRevocationSuite) TestSessionManagerRoundTrip() {
	ctx := context.Background()
	manager := NewManager("integration-key", 30*time.Minute, s.list)

	token, err := manager.Issue(ctx)
	s.Require().NoError(err)
	s.Require().NoError(manager.Validate(ctx, token.Value))

	s.Require().NoError(manager.Revoke(ctx, token.Value))
	s.Error(manager.Validate(ctx, token.Value))
}
